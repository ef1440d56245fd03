package registry

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/sonoform/internal/scene"
	"github.com/san-kum/sonoform/internal/vizcore"
)

// Activation is one live instance of a visualizer: its batch of scene
// objects, its instance state and its lifecycle state.
type Activation struct {
	id      string
	module  vizcore.Module
	params  vizcore.Params
	state   vizcore.State
	batch   *scene.Batch
	inst    vizcore.Instance
	created time.Time
	frames  int
}

func newActivation(id string, m vizcore.Module, p vizcore.Params, b *scene.Batch) *Activation {
	return &Activation{id: id, module: m, params: p, batch: b, state: vizcore.Uninitialized}
}

func (a *Activation) create() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during create: %v", r)
		}
	}()
	inst, err := a.module.Create(a.batch, a.params)
	if err != nil {
		return err
	}
	if inst == nil {
		return fmt.Errorf("module returned no instance")
	}
	a.inst = inst
	a.state = vizcore.Created
	a.created = time.Now()
	return nil
}

func (a *Activation) animate(f vizcore.AudioFrame, elapsed float64) {
	if a.state != vizcore.Created && a.state != vizcore.Animating {
		return
	}
	a.state = vizcore.Animating
	a.frames++
	a.inst.Animate(f, elapsed, a.params)
}

func (a *Activation) dispose() error {
	if a.state == vizcore.Disposed {
		return nil
	}
	a.state = vizcore.Disposed
	return a.batch.Dispose()
}

func (a *Activation) ID() string             { return a.id }
func (a *Activation) Params() vizcore.Params { return a.params }
func (a *Activation) State() vizcore.State   { return a.state }
func (a *Activation) Frames() int            { return a.frames }
func (a *Activation) CreatedAt() time.Time   { return a.created }
func (a *Activation) Batch() *scene.Batch    { return a.batch }

func (a *Activation) Instance() vizcore.Instance { return a.inst }

// Len is the number of scene objects the activation owns.
func (a *Activation) Len() int { return a.batch.Len() }

func (a *Activation) Stateful() bool { return a.inst != nil && vizcore.IsStateful(a.inst) }

// Extent is the largest distance from the origin of any owned object.
func (a *Activation) Extent() float64 {
	ext := 0.0
	for _, h := range a.batch.Objects() {
		t, ok := a.batch.Transform(h)
		if !ok {
			continue
		}
		if d := t.Position.Length(); !math.IsNaN(d) && d > ext {
			ext = d
		}
	}
	return ext
}
