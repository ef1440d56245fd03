package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/sonoform/internal/scheduler"
	"github.com/san-kum/sonoform/internal/vizcore"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

var frameHeader = []string{"time", "frame", "objects", "extent", "energy", "bass", "mid", "treble", "beat", "failed", "frame_ms"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Visualizer string             `json:"visualizer"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	FPS        int                `json:"fps"`
	Duration   float64            `json:"duration"`
	Audio      string             `json:"audio"`
	Params     vizcore.Params     `json:"params"`
	Frames     int                `json:"frames"`
	Failures   int                `json:"failures"`
	WallMs     float64            `json:"wall_ms"`
	Metrics    map[string]float64 `json:"metrics"`
}

// RunInfo is what the caller knows about a run beyond its Result.
type RunInfo struct {
	Seed     int64
	FPS      int
	Duration float64
	Audio    string
}

func (s *Store) Save(info RunInfo, result *scheduler.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", result.Visualizer, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Visualizer: result.Visualizer,
		Timestamp:  now,
		Seed:       info.Seed,
		FPS:        info.FPS,
		Duration:   info.Duration,
		Audio:      info.Audio,
		Params:     result.Params,
		Frames:     result.Frames,
		Failures:   result.Failures,
		WallMs:     float64(result.Wall.Microseconds()) / 1000,
		Metrics:    result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(frameHeader); err != nil {
		return "", err
	}
	for _, f := range result.Stats {
		row := []string{
			strconv.FormatFloat(f.Elapsed, 'f', 6, 64),
			strconv.Itoa(f.Frame),
			strconv.Itoa(f.Objects),
			strconv.FormatFloat(f.Extent, 'f', 6, 64),
			strconv.FormatFloat(f.Energy, 'f', 6, 64),
			strconv.FormatFloat(f.Bass, 'f', 6, 64),
			strconv.FormatFloat(f.Mid, 'f', 6, 64),
			strconv.FormatFloat(f.Treble, 'f', 6, 64),
			strconv.FormatBool(f.Beat),
			strconv.FormatBool(f.Failed),
			strconv.FormatFloat(float64(f.Duration.Microseconds())/1000, 'f', 3, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns every stored run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadFrames reads the per-frame stats of a run. Malformed rows are skipped.
func (s *Store) LoadFrames(runID string) ([]scheduler.FrameStats, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []scheduler.FrameStats{}, nil
	}

	frames := make([]scheduler.FrameStats, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < len(frameHeader) {
			continue
		}
		f, err := parseFrame(rec)
		if err != nil {
			continue
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func parseFrame(rec []string) (scheduler.FrameStats, error) {
	var f scheduler.FrameStats
	var err error
	floats := []*float64{&f.Elapsed, nil, nil, &f.Extent, &f.Energy, &f.Bass, &f.Mid, &f.Treble}
	for i, dst := range floats {
		if dst == nil {
			continue
		}
		if *dst, err = strconv.ParseFloat(rec[i], 64); err != nil {
			return f, err
		}
	}
	if f.Frame, err = strconv.Atoi(rec[1]); err != nil {
		return f, err
	}
	if f.Objects, err = strconv.Atoi(rec[2]); err != nil {
		return f, err
	}
	if f.Beat, err = strconv.ParseBool(rec[8]); err != nil {
		return f, err
	}
	if f.Failed, err = strconv.ParseBool(rec[9]); err != nil {
		return f, err
	}
	ms, err := strconv.ParseFloat(rec[10], 64)
	if err != nil {
		return f, err
	}
	f.Duration = time.Duration(ms * float64(time.Millisecond))
	return f, nil
}

// Series extracts one named column from frames for plotting.
func Series(frames []scheduler.FrameStats, column string) ([]float64, error) {
	out := make([]float64, len(frames))
	for i, f := range frames {
		switch column {
		case "energy":
			out[i] = f.Energy
		case "bass":
			out[i] = f.Bass
		case "mid":
			out[i] = f.Mid
		case "treble":
			out[i] = f.Treble
		case "extent":
			out[i] = f.Extent
		case "objects":
			out[i] = float64(f.Objects)
		case "frame_ms":
			out[i] = float64(f.Duration.Microseconds()) / 1000
		default:
			return nil, fmt.Errorf("unknown column %q", column)
		}
	}
	return out, nil
}
