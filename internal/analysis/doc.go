// Package analysis provides spectral inspection of simulated trajectories.
//
// Aggressive gains make the speed loop ring; [DominantFrequency] finds the
// ringing frequency of a series:
//
//	freq, share := analysis.DominantFrequency(result.Series.Current, 0.01)
//	if share > 0.2 {
//	    // a single tone dominates the trajectory
//	}
package analysis
