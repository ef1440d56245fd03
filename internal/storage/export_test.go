package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestExportJSON(t *testing.T) {
	s := New(t.TempDir())
	id, err := s.Save(RunInfo{Seed: 3, FPS: 60, Audio: "synth"}, sampleResult("spectrumBars"))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := s.ExportJSON(&buf, id); err != nil {
		t.Fatalf("export: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got["visualizer"] != "spectrumBars" || got["id"] != id {
		t.Errorf("metadata not flattened into export: %v", got)
	}
	series, ok := got["series"].([]any)
	if !ok || len(series) != 3 {
		t.Fatalf("series = %v", got["series"])
	}
	first := series[0].(map[string]any)
	if first["objects"] != float64(13) || first["frame_ms"] != 1.5 {
		t.Errorf("frame 0 = %v", first)
	}
}

func TestExportFile(t *testing.T) {
	s := New(t.TempDir())
	id, err := s.Save(RunInfo{FPS: 60}, sampleResult("fieldLines"))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "run.json")
	if err := s.ExportFile(path, id); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("export file missing: %v", err)
	}
	if err := s.ExportJSON(&bytes.Buffer{}, "missing"); err == nil {
		t.Fatal("expected error for unknown run")
	}
}
