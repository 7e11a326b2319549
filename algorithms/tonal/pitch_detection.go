package tonal

import "maze.io/x/math32"

// RangeTolerance is the default relative slack around an Estimator's range.
const RangeTolerance = 0.005

// Estimator converts a refined autocorrelation lag into a fundamental
// frequency, rejecting results outside the supported range.
type Estimator struct {
	MinHz float32
	MaxHz float32

	// Tolerance widens the range by a relative amount. Frequencies inside the
	// widened range but outside [MinHz, MaxHz] are clamped to the nearer edge.
	Tolerance float32
}

// NewEstimator creates an estimator accepting frequencies in [minHz, maxHz],
// give or take RangeTolerance.
func NewEstimator(minHz, maxHz float32) Estimator {
	return Estimator{MinHz: minHz, MaxHz: maxHz, Tolerance: RangeTolerance}
}

// Estimate returns sampleRate/lag. ok is false for a non-positive lag or
// rate, a non-finite result, or a frequency outside the estimator's range.
func (e Estimator) Estimate(lag, sampleRate float32) (hz float32, ok bool) {
	if !(lag > 0) || !validFrequency(sampleRate) {
		return 0, false
	}

	hz = sampleRate / lag
	if math32.IsInf(hz, 0) || math32.IsNaN(hz) {
		return 0, false
	}
	if hz < e.MinHz*(1-e.Tolerance) || hz > e.MaxHz*(1+e.Tolerance) {
		return 0, false
	}
	return max(e.MinHz, min(e.MaxHz, hz)), true
}
