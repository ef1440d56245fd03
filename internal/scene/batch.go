package scene

import (
	"errors"
	"fmt"
	"log/slog"
)

// Batch records every object and material created for one activation. It is
// the only way recipes touch the graph, so disposing the batch releases
// exactly what the activation created and nothing else.
type Batch struct {
	g         Graph
	log       *slog.Logger
	objects   []Handle
	templates []MaterialID
	clones    []MaterialID
	closed    bool
}

func NewBatch(g Graph, log *slog.Logger) *Batch {
	if log == nil {
		log = slog.Default()
	}
	return &Batch{g: g, log: log}
}

func (b *Batch) Add(p Primitive) (Handle, error) {
	if b.closed {
		return 0, ErrBatchClosed
	}
	h, err := b.g.AddObject(p)
	if err != nil {
		return 0, fmt.Errorf("add %s: %w", p.Kind, err)
	}
	b.objects = append(b.objects, h)
	b.g.SetTransform(h, Identity())
	return h, nil
}

// Template creates a material owned by the batch. Templates are disposed
// after all clones derived from them.
func (b *Batch) Template(a Appearance) (MaterialID, error) {
	if b.closed {
		return 0, ErrBatchClosed
	}
	id, err := b.g.NewMaterial(a)
	if err != nil {
		return 0, fmt.Errorf("new material: %w", err)
	}
	b.templates = append(b.templates, id)
	return id, nil
}

// AddShaded adds p with its own clone of template so the object's colour can
// be animated independently.
func (b *Batch) AddShaded(p Primitive, template MaterialID) (Handle, error) {
	if b.closed {
		return 0, ErrBatchClosed
	}
	clone, err := b.g.CloneMaterial(template)
	if err != nil {
		return 0, fmt.Errorf("clone material %d: %w", template, err)
	}
	b.clones = append(b.clones, clone)
	p.Material = clone
	return b.Add(p)
}

func (b *Batch) SetTransform(h Handle, t Transform)   { b.g.SetTransform(h, t) }
func (b *Batch) SetAppearance(h Handle, a Appearance) { b.g.SetAppearance(h, a) }
func (b *Batch) SetPoints(h Handle, pts []Vec3)       { b.g.SetPoints(h, pts) }

func (b *Batch) Transform(h Handle) (Transform, bool) { return b.g.Transform(h) }

// Objects returns the owned handles in creation order.
func (b *Batch) Objects() []Handle {
	out := make([]Handle, len(b.objects))
	copy(out, b.objects)
	return out
}

func (b *Batch) Len() int       { return len(b.objects) }
func (b *Batch) Materials() int { return len(b.templates) + len(b.clones) }
func (b *Batch) Closed() bool   { return b.closed }

// Dispose removes every owned object (newest first), then every clone, then
// the templates. A failure is logged and collected; the remaining resources
// are still released. Calling Dispose again is a no-op.
func (b *Batch) Dispose() error {
	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	for i := len(b.objects) - 1; i >= 0; i-- {
		if err := b.g.RemoveObject(b.objects[i]); err != nil {
			b.log.Warn("remove object failed", "handle", b.objects[i], "err", err)
			errs = append(errs, err)
		}
	}
	for _, id := range b.clones {
		if err := b.g.DisposeMaterial(id); err != nil {
			b.log.Warn("dispose material clone failed", "material", id, "err", err)
			errs = append(errs, err)
		}
	}
	for _, id := range b.templates {
		if err := b.g.DisposeMaterial(id); err != nil {
			b.log.Warn("dispose material template failed", "material", id, "err", err)
			errs = append(errs, err)
		}
	}
	b.objects, b.clones, b.templates = nil, nil, nil

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrDisposal, errors.Join(errs...))
	}
	return nil
}
