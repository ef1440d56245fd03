package scene

import "errors"

var (
	// ErrUnknownHandle indicates an object that is not (or no longer) in the graph.
	ErrUnknownHandle = errors.New("scene: unknown object handle")

	// ErrUnknownMaterial indicates a material that was never created or was already disposed.
	ErrUnknownMaterial = errors.New("scene: unknown material")

	// ErrBatchClosed indicates an add on a batch that has been disposed.
	ErrBatchClosed = errors.New("scene: batch already disposed")

	// ErrDisposal wraps every failure collected while releasing a batch.
	ErrDisposal = errors.New("scene: resource disposal failed")
)
