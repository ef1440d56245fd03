package scheduler

import (
	"context"
	"log/slog"
	"sync"

	"github.com/san-kum/sonoform/internal/registry"
	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/vizcore"
)

// Bench runs each visualizer in ids concurrently, every one on its own
// scene graph, registry and audio source.
type Bench struct {
	NewSource  func() vizcore.Source
	NewMetrics func() []Metric
	Log        *slog.Logger
}

func (b *Bench) Run(ctx context.Context, ids []string, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(ids))
	errs := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(idx int, id string) {
			defer wg.Done()

			graph := scene.NewMemory()
			reg := registry.Default(graph, b.Log)
			defer reg.DeactivateCurrent()

			var src vizcore.Source
			if b.NewSource != nil {
				src = b.NewSource()
			}
			s := New(reg, src, b.Log)
			if b.NewMetrics != nil {
				for _, m := range b.NewMetrics() {
					s.AddMetric(m)
				}
			}

			cfgCopy := cfg
			cfgCopy.Visualizer = id
			results[idx], errs[idx] = s.Run(ctx, cfgCopy, nil)
		}(i, id)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
