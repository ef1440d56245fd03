// Package recipes is the visualizer catalogue.
//
// Each recipe builds a structural skeleton once in Create (spiral, lattice,
// fractal, radial field, orbits, particle volume) and re-derives its
// transforms every frame from the immutable Base of each object. Recipes
// that simulate motion keep their accumulators in the object State and
// report it through vizcore.Stateful; free-flying ones also implement
// vizcore.Bounded.
//
// Structural counts depend only on Params. Phase and speed offsets come from
// math/rand and are deliberately not reproducible.
package recipes
