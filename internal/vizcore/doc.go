// Package vizcore defines the contract every audio-reactive visualizer obeys.
//
// The package holds the shared vocabulary of the system:
//
//   - [Params]: density/intensity controls read by Create and Animate
//   - [AudioFrame]: per-frame spectrum and beat snapshot
//   - [Module]: a recipe that builds a scene once and returns an [Instance]
//   - [Instance]: the per-activation animator driven once per frame
//   - [Object]: typed per-object record splitting immutable Base from State
//
// # Frame contract
//
// Create runs exactly once per activation and stamps every object's Base.
// Animate recomputes transient values from Base, the elapsed time and the
// current frame. Only state declared in an Object's State field may carry
// over between frames, and instances that keep such state report it via
// [Stateful]. Beat responses are layered on top of the steady state and are
// never written back into Base.
//
// # Thread Safety
//
// Instances are NOT thread-safe. The registry serialises every call that
// touches an activation.
package vizcore
