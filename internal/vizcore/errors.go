package vizcore

import (
	"errors"
	"fmt"

	"github.com/san-kum/sonoform/internal/scene"
)

// Domain errors for visualizer operations.
var (
	// ErrUnknownVisualizer indicates an activation request for an unregistered id.
	ErrUnknownVisualizer = errors.New("vizcore: unknown visualizer")

	// ErrDuplicateVisualizer indicates a second registration under the same id.
	ErrDuplicateVisualizer = errors.New("vizcore: visualizer already registered")

	// ErrInvalidParameter indicates a NaN, infinite or negative parameter.
	// Parameters are clamped, never rejected; the error is only used for reporting.
	ErrInvalidParameter = errors.New("vizcore: parameter out of valid bounds")

	// ErrFrameCompute indicates Animate panicked for one frame.
	ErrFrameCompute = errors.New("vizcore: frame computation failed")

	// ErrResourceDisposal indicates one or more owned resources could not be released.
	ErrResourceDisposal = scene.ErrDisposal

	// ErrNotActive indicates an operation on an activation that is disposed or absent.
	ErrNotActive = errors.New("vizcore: no active visualizer")
)

// FrameError records a recovered failure inside one Animate call.
type FrameError struct {
	Visualizer string
	Frame      int
	Elapsed    float64
	Cause      any
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("%s frame %d (t=%.3f): %v", e.Visualizer, e.Frame, e.Elapsed, e.Cause)
}

func (e *FrameError) Unwrap() []error {
	if err, ok := e.Cause.(error); ok {
		return []error{ErrFrameCompute, err}
	}
	return []error{ErrFrameCompute}
}
