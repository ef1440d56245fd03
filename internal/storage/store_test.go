package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/sonoform/internal/scheduler"
	"github.com/san-kum/sonoform/internal/vizcore"
)

func sampleResult(viz string) *scheduler.Result {
	return &scheduler.Result{
		Visualizer: viz,
		Params:     vizcore.DefaultParams(),
		Frames:     3,
		Failures:   1,
		Stats: []scheduler.FrameStats{
			{Elapsed: 0, Frame: 1, Objects: 13, Extent: 11.5, Energy: 0.25, Bass: 0.5, Mid: 0.2, Treble: 0.1, Duration: 1500 * time.Microsecond},
			{Elapsed: 1.0 / 60, Frame: 2, Objects: 13, Extent: 11.7, Energy: 0.3, Beat: true, Duration: 2 * time.Millisecond},
			{Elapsed: 2.0 / 60, Frame: 3, Objects: 13, Failed: true},
		},
		Metrics: map[string]float64{"failure_rate": 1.0 / 3},
		Wall:    20 * time.Millisecond,
	}
}

func TestSaveAndLoad(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}

	id, err := s.Save(RunInfo{Seed: 7, FPS: 60, Duration: 0.05, Audio: "synth"}, sampleResult("fieldLines"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	meta, err := s.Load(id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if meta.Visualizer != "fieldLines" || meta.Seed != 7 || meta.Frames != 3 || meta.Failures != 1 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Params != vizcore.DefaultParams() {
		t.Errorf("params = %+v", meta.Params)
	}
	if meta.Metrics["failure_rate"] == 0 {
		t.Error("metrics not stored")
	}

	frames, err := s.LoadFrames(id)
	if err != nil {
		t.Fatalf("load frames: %v", err)
	}
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	if frames[0].Objects != 13 || frames[0].Bass != 0.5 || frames[0].Duration != 1500*time.Microsecond {
		t.Errorf("frame 0 = %+v", frames[0])
	}
	if !frames[1].Beat || !frames[2].Failed {
		t.Error("flags not round-tripped")
	}
}

func TestListNewestFirst(t *testing.T) {
	s := New(t.TempDir())
	first, err := s.Save(RunInfo{}, sampleResult("ringPulse"))
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	second, err := s.Save(RunInfo{}, sampleResult("starfield"))
	if err != nil {
		t.Fatal(err)
	}

	// stray files and broken runs are ignored
	if err := os.WriteFile(filepath.Join(s.baseDir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(s.baseDir, "broken"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != second || runs[1].ID != first {
		t.Errorf("unexpected listing %v", runs)
	}
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestSeries(t *testing.T) {
	frames := sampleResult("x").Stats
	got, err := Series(frames, "objects")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[2] != 13 {
		t.Errorf("objects series = %v", got)
	}
	if _, err := Series(frames, "colour"); err == nil {
		t.Error("expected error for unknown column")
	}
}
