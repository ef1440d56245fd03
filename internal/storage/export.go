package storage

import (
	"encoding/json"
	"io"
	"os"
)

// ExportFrame is one row of an exported run.
type ExportFrame struct {
	Time    float64 `json:"time"`
	Frame   int     `json:"frame"`
	Objects int     `json:"objects"`
	Extent  float64 `json:"extent"`
	Energy  float64 `json:"energy"`
	Bass    float64 `json:"bass"`
	Mid     float64 `json:"mid"`
	Treble  float64 `json:"treble"`
	Beat    bool    `json:"beat"`
	Failed  bool    `json:"failed"`
	FrameMs float64 `json:"frame_ms"`
}

type ExportData struct {
	RunMetadata
	Series []ExportFrame `json:"series"`
}

// ExportJSON writes a run's metadata and frames as one indented document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}

	data := ExportData{RunMetadata: *meta, Series: make([]ExportFrame, len(frames))}
	for i, f := range frames {
		data.Series[i] = ExportFrame{
			Time:    f.Elapsed,
			Frame:   f.Frame,
			Objects: f.Objects,
			Extent:  f.Extent,
			Energy:  f.Energy,
			Bass:    f.Bass,
			Mid:     f.Mid,
			Treble:  f.Treble,
			Beat:    f.Beat,
			Failed:  f.Failed,
			FrameMs: float64(f.Duration.Microseconds()) / 1000,
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportFile is ExportJSON to a new file at path.
func (s *Store) ExportFile(path, runID string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return s.ExportJSON(file, runID)
}
