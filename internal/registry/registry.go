package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/san-kum/sonoform/internal/recipes"
	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/vizcore"
)

// Registry maps visualizer ids to modules and owns the single current
// activation on a scene graph. Activate, Deactivate, Update and Animate
// are serialised.
type Registry struct {
	mu      sync.Mutex
	graph   scene.Graph
	log     *slog.Logger
	modules map[string]vizcore.Module
	current *Activation
}

func New(graph scene.Graph, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		graph:   graph,
		log:     log,
		modules: make(map[string]vizcore.Module),
	}
}

// Default returns a registry holding the full recipe catalogue.
func Default(graph scene.Graph, log *slog.Logger) *Registry {
	r := New(graph, log)
	for _, m := range recipes.All() {
		// names in the catalogue are unique
		_ = r.Register(m.Name(), m)
	}
	return r
}

func (r *Registry) Register(id string, m vizcore.Module) error {
	if id == "" || m == nil {
		return fmt.Errorf("register %q: empty id or nil module", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.modules[id]; ok {
		return fmt.Errorf("%w: %q", vizcore.ErrDuplicateVisualizer, id)
	}
	r.modules[id] = m
	return nil
}

func (r *Registry) Lookup(id string) (vizcore.Module, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.modules[id]
	return m, ok
}

func (r *Registry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.modules))
	for id := range r.modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Current returns the live activation, or nil.
func (r *Registry) Current() *Activation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Activate builds visualizer id with p and makes it current. The previous
// activation is fully disposed before the new one is created. An unknown id
// leaves the scene and the current activation untouched.
func (r *Registry) Activate(id string, p vizcore.Params) (*Activation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activateLocked(id, p)
}

func (r *Registry) activateLocked(id string, p vizcore.Params) (*Activation, error) {
	m, ok := r.modules[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", vizcore.ErrUnknownVisualizer, id)
	}

	clean, err := p.Sanitize()
	if err != nil {
		r.log.Warn("parameters clamped", "visualizer", id, "err", err)
	}

	if r.current != nil {
		prev := r.current
		r.current = nil
		if err := prev.dispose(); err != nil {
			r.log.Warn("previous visualizer left resources behind", "visualizer", prev.id, "err", err)
		}
	}

	a := newActivation(id, m, clean, scene.NewBatch(r.graph, r.log))
	if err := a.create(); err != nil {
		if derr := a.dispose(); derr != nil {
			r.log.Warn("partial build left resources behind", "visualizer", id, "err", derr)
		}
		return nil, fmt.Errorf("create %s: %w", id, err)
	}

	r.current = a
	r.log.Info("visualizer activated", "visualizer", id, "objects", a.Len())
	return a, nil
}

// Deactivate disposes a. It is a no-op for an already disposed activation.
func (r *Registry) Deactivate(a *Activation) error {
	if a == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == a {
		r.current = nil
	}
	return a.dispose()
}

func (r *Registry) DeactivateCurrent() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil
	}
	a := r.current
	r.current = nil
	return a.dispose()
}

// Update applies patch to the current activation. Live fields are applied
// in place; anything else rebuilds the visualizer with the merged params.
// A rebuild disposes the current activation before creating the new one, so
// when that Create fails nothing is left active and Current returns nil.
func (r *Registry) Update(patch vizcore.ParamPatch) (*Activation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := r.current
	if a == nil {
		return nil, vizcore.ErrNotActive
	}
	if patch.Empty() {
		return a, nil
	}

	merged, err := patch.Apply(a.params).Sanitize()
	if err != nil {
		r.log.Warn("parameters clamped", "visualizer", a.id, "err", err)
	}
	if patch.Live() {
		a.params = merged
		return a, nil
	}
	return r.activateLocked(a.id, merged)
}

// FrameInfo describes the scene after one animated frame.
type FrameInfo struct {
	Visualizer string
	Frame      int
	Objects    int
	Extent     float64
}

// Animate drives the current activation for one frame and reports whether
// anything was active. Panics from the recipe propagate to the caller.
func (r *Registry) Animate(f vizcore.AudioFrame, elapsed float64) (FrameInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.current
	if a == nil {
		return FrameInfo{}, false
	}
	a.animate(f, elapsed)
	return FrameInfo{Visualizer: a.id, Frame: a.frames, Objects: a.Len(), Extent: a.Extent()}, true
}
