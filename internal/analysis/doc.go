// Package analysis inspects the per-frame series of saved runs.
//
//   - [PowerSpectrum]: magnitude spectrum of a series, mean removed
//   - [Dominant]: strongest periodic component in Hz
//   - [Tempo]: beats per minute implied by a series' periodicity
//   - [Scatter]: ASCII plot of one series against another
//
// Spectra of the energy column recover the tempo of the source audio:
//
//	bpm, ok := analysis.Tempo(energy, fps)
package analysis
