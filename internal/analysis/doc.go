// Package analysis post-processes recorded runs.
//
//   - [PowerSpectrum] and [DominantFrequency]: oscillation content of a
//     series such as one body's y coordinate or the total energy
//   - [ExtractTrajectory] and [TrajectoryToASCII]: the path one body traced
//   - [Summarize]: min, max, mean and spread of a series
//
// # Spectra
//
// Series are Hann-windowed and zero-padded to a power of two before the
// transform, so bin spacing is 1/(n·dt) for the padded length n:
//
//	f := analysis.DominantFrequency(ys, dt)
package analysis
