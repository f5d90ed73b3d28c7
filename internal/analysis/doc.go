// Package analysis estimates statistical quality of an accepted-energy trace.
//
// Successive Metropolis samples are correlated, so the naive standard error
// of the mean is too small. The package provides:
//
//   - [Autocorrelation]: normalized autocorrelation via FFT
//   - [IntegratedTime]: integrated autocorrelation time with a self-consistent window
//   - [BlockAverage]: mean and standard error from non-overlapping blocks
//   - [Summarize]: all of the above for one trace
//
// # Usage
//
//	s, err := analysis.Summarize(energies, 20)
//	fmt.Printf("%g ± %g (tau %.1f)\n", s.Mean, s.BlockStdErr, s.Tau)
package analysis
