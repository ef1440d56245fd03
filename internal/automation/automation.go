package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/san-kum/sonoform/internal/config"
	"github.com/san-kum/sonoform/internal/scheduler"
	"github.com/san-kum/sonoform/internal/vizcore"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of visualizer activations.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	FPS         int            `yaml:"fps"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep activates one visualizer and runs it for Duration seconds.
// Params overrides Preset; Intensity, when set, is applied live halfway
// through the step.
type ScenarioStep struct {
	Visualizer string          `yaml:"visualizer"`
	Preset     string          `yaml:"preset"`
	Params     *vizcore.Params `yaml:"params"`
	Duration   float64         `yaml:"duration"`
	Intensity  *float64        `yaml:"intensity"`
	SaveAs     string          `yaml:"save_as"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if scenario.FPS == 0 {
		scenario.FPS = config.DefaultFPS
	}
	return &scenario, nil
}

func (st ScenarioStep) params() (vizcore.Params, error) {
	if st.Params != nil {
		return *st.Params, nil
	}
	if st.Preset != "" {
		p := config.GetPreset(st.Visualizer, st.Preset)
		if p == nil {
			return vizcore.Params{}, fmt.Errorf("no preset %q for %s", st.Preset, st.Visualizer)
		}
		return p.Params, nil
	}
	return vizcore.DefaultParams(), nil
}

// StepResult pairs a scheduler result with the step's SaveAs label.
type StepResult struct {
	SaveAs string
	*scheduler.Result
}

// RunScenario executes every step on s. Visualizer switches go through the
// registry, so each step starts from a clean scene.
func RunScenario(ctx context.Context, scenario *Scenario, s *scheduler.Scheduler, log *slog.Logger) ([]StepResult, error) {
	if log == nil {
		log = slog.Default()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		log.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "visualizer", step.Visualizer)

		p, err := step.params()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		cfg := scheduler.Config{
			Visualizer: step.Visualizer,
			Params:     p,
			FPS:        scenario.FPS,
			Duration:   step.Duration,
			KeepStats:  step.SaveAs != "",
		}

		half := int(step.Duration * float64(scenario.FPS) / 2)
		var cb func(scheduler.FrameStats) bool
		if step.Intensity != nil {
			intensity := *step.Intensity
			cb = func(f scheduler.FrameStats) bool {
				if f.Frame == half {
					if _, err := s.Registry().Update(vizcore.ParamPatch{Intensity: &intensity}); err != nil {
						log.Warn("live intensity change failed", "step", i+1, "err", err)
					}
				}
				return true
			}
		}

		result, err := s.Run(ctx, cfg, cb)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, StepResult{SaveAs: step.SaveAs, Result: result})
	}

	return results, nil
}

// ParameterSweep runs one visualizer across a range of one parameter.
type ParameterSweep struct {
	Visualizer string
	ParamName  string
	ParamMin   float64
	ParamMax   float64
	NumSteps   int
	Duration   float64
	FPS        int
	Base       vizcore.Params
}

type SweepResult struct {
	ParamValue float64
	Objects    int
	FrameMs    float64
	Failures   int
}

func setParam(p *vizcore.Params, name string, v float64) error {
	switch name {
	case "complexity":
		p.Complexity = v
	case "pattern_density":
		p.PatternDensity = v
	case "particle_count":
		p.ParticleCount = int(v)
	case "intensity":
		p.Intensity = v
	default:
		return fmt.Errorf("unknown parameter %q", name)
	}
	return nil
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, s *scheduler.Scheduler, log *slog.Logger) ([]SweepResult, error) {
	if log == nil {
		log = slog.Default()
	}
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}
	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep
		p := sweep.Base
		if err := setParam(&p, sweep.ParamName, paramVal); err != nil {
			return nil, err
		}

		var frameNs time.Duration
		objects := 0
		result, err := s.Run(ctx, scheduler.Config{
			Visualizer: sweep.Visualizer,
			Params:     p,
			FPS:        sweep.FPS,
			Duration:   sweep.Duration,
		}, func(f scheduler.FrameStats) bool {
			frameNs += f.Duration
			objects = f.Objects
			return true
		})
		if err != nil {
			return nil, err
		}

		ms := 0.0
		if result.Frames > 0 {
			ms = float64(frameNs.Microseconds()) / 1000 / float64(result.Frames)
		}
		results = append(results, SweepResult{
			ParamValue: paramVal,
			Objects:    objects,
			FrameMs:    ms,
			Failures:   result.Failures,
		})

		log.Info("sweep", "step", i+1, "of", sweep.NumSteps, sweep.ParamName, paramVal, "objects", objects)
	}

	return results, nil
}

// FuzzConfig drives a visualizer with random parameters and checks that
// every trial stays finite, bounded and panic free.
type FuzzConfig struct {
	Visualizer string
	NumTrials  int
	Duration   float64
	FPS        int
	// ExtentLimit is the largest acceptable distance from the origin.
	ExtentLimit float64
	Seed        int64
}

type FuzzResult struct {
	TrialID int
	Params  vizcore.Params
	Extent  float64
	Stable  bool
}

func RunFuzz(ctx context.Context, cfg *FuzzConfig, s *scheduler.Scheduler, log *slog.Logger) ([]FuzzResult, error) {
	if log == nil {
		log = slog.Default()
	}
	results := make([]FuzzResult, 0, cfg.NumTrials)

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	for trial := 0; trial < cfg.NumTrials; trial++ {
		p := vizcore.Params{
			Complexity:     rng.Float64() * 3,
			PatternDensity: rng.Float64() * 3,
			ParticleCount:  rng.Intn(2000),
			Intensity:      rng.Float64() * 4,
		}

		extent := 0.0
		result, err := s.Run(ctx, scheduler.Config{
			Visualizer: cfg.Visualizer,
			Params:     p,
			FPS:        cfg.FPS,
			Duration:   cfg.Duration,
		}, func(f scheduler.FrameStats) bool {
			if f.Extent > extent {
				extent = f.Extent
			}
			return true
		})
		if err != nil {
			return nil, err
		}

		results = append(results, FuzzResult{
			TrialID: trial,
			Params:  p,
			Extent:  extent,
			Stable:  result.Failures == 0 && extent <= cfg.ExtentLimit,
		})

		if (trial+1)%10 == 0 {
			log.Info("fuzz", "done", trial+1, "of", cfg.NumTrials)
		}
	}

	return results, nil
}

func FuzzStats(results []FuzzResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
