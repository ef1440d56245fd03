// Package viz is the terminal preview for sonoform visualizers.
//
// A scheduler drives the active visualizer into a [scene.Memory]; each tick
// the graph is flattened into a [Wireframe], projected through a [Camera]
// and drawn on a Braille [Canvas]. [App] lists the catalogue and hands off
// to the live [Model].
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N/P   - Next/previous visualizer
//	Up/Dn - Intensity (applied live)
//	[ ]   - Complexity (rebuilds the scene)
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//
// GIF recordings are written to sonoform.gif in the working directory.
package viz
