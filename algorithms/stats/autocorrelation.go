package stats

import (
	"errors"
	"fmt"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"gonum.org/v1/gonum/blas/blas32"
	"maze.io/x/math32"
)

const (
	// octaveTolerance is the fraction of the strongest correlation an earlier
	// peak needs to be preferred over it.
	octaveTolerance = 0.9

	// EdgeTolerance is the relative slack allowed around MinPeriod and
	// MaxPeriod. It covers float rounding and the bias of parabolic
	// refinement at short periods, so tones on the band edges still lock.
	EdgeTolerance = 0.005
)

// ErrNoLagBand is returned when no lag can be searched for the requested
// frequency range at a given sample rate and window size.
var ErrNoLagBand = errors.New("no searchable lag band")

// Verdict explains the outcome of an autocorrelation peak search.
type Verdict int

const (
	// PeakFound means a confident periodicity peak was located inside the band.
	PeakFound Verdict = iota

	// PeakSilence means the window energy was below the silence threshold.
	PeakSilence

	// PeakAperiodic means the curve never crossed zero inside the band.
	PeakAperiodic

	// PeakOutOfRange means the strongest candidate sat on a band edge while
	// still rising, so the true period lies outside the supported range.
	PeakOutOfRange

	// PeakLowConfidence means the best normalized correlation was too weak.
	PeakLowConfidence
)

func (v Verdict) String() string {
	switch v {
	case PeakFound:
		return "found"
	case PeakSilence:
		return "silence"
	case PeakAperiodic:
		return "aperiodic"
	case PeakOutOfRange:
		return "out_of_range"
	case PeakLowConfidence:
		return "low_confidence"
	default:
		return "unknown"
	}
}

// LagBand is the inclusive range of lags, in samples, searched for a period.
// MinPeriod and MaxPeriod are the exact, fractional bounds a refined period
// must fall within, give or take EdgeTolerance.
type LagBand struct {
	Min int
	Max int

	MinPeriod float32
	MaxPeriod float32
}

// LagBandFor converts a frequency range into a lag band for a window of n
// samples. Max is clipped to n/2 so the window always spans at least two
// periods of the lowest searchable pitch.
func LagBandFor(sampleRate, minHz, maxHz float32, n int) (LagBand, error) {
	if !(sampleRate > 0) || math32.IsInf(sampleRate, 0) {
		return LagBand{}, fmt.Errorf("%w: sample rate %v", ErrNoLagBand, sampleRate)
	}
	if !(minHz > 0) || !(maxHz > minHz) {
		return LagBand{}, fmt.Errorf("%w: frequency range [%v, %v]", ErrNoLagBand, minHz, maxHz)
	}

	band := LagBand{
		Min:       max(1, int(math32.Ceil(sampleRate/maxHz))),
		Max:       int(math32.Floor(sampleRate / minHz)),
		MinPeriod: sampleRate / maxHz,
		MaxPeriod: sampleRate / minHz,
	}
	band.Max = min(band.Max, n/2)
	band.MaxPeriod = min(band.MaxPeriod, float32(band.Max))

	// parabolic refinement reads one lag past Max
	if band.Min > band.Max || band.Max+1 >= n {
		return LagBand{}, fmt.Errorf("%w: lags [%d, %d] in a %d sample window at %v Hz",
			ErrNoLagBand, band.Min, band.Max, n, sampleRate)
	}
	return band, nil
}

// Peak is the dominant periodicity found in a window.
type Peak struct {
	Verdict Verdict

	// Lag is the integer lag of the strongest candidate.
	Lag int

	// Offset is the parabolic sub-sample refinement in [-0.5, 0.5].
	Offset float32

	// Value is the normalized correlation at the refined lag, used as confidence.
	Value float32
}

// Period returns the refined lag in samples.
func (p Peak) Period() float32 {
	return float32(p.Lag) + p.Offset
}

// Autocorrelator finds the dominant period of a window with a band-limited,
// energy-normalized autocorrelation
//
//	r(τ) = Σ x[i]·x[i+τ] / sqrt(Σ x[i]² · Σ x[i+τ]²),  i < n-τ
//
// Only lags up to the band maximum are evaluated, which bounds the cost of a
// frame. The curve buffer is allocated once, so Analyze does not allocate.
//
// References:
//   - Rabiner, L.R. (1977). "On the use of autocorrelation analysis for pitch detection"
//   - McLeod, P., Wyvill, G. (2005). "A smarter way to find pitch"
//
// An Autocorrelator is not safe for concurrent use.
type Autocorrelator struct {
	curve         []float32
	silenceRMS    float32
	minConfidence float32
}

// NewAutocorrelator creates an autocorrelator for windows of windowSize samples.
func NewAutocorrelator(windowSize int, silenceRMS, minConfidence float32) *Autocorrelator {
	return &Autocorrelator{
		curve:         make([]float32, windowSize),
		silenceRMS:    silenceRMS,
		minConfidence: minConfidence,
	}
}

// Curve returns the normalized correlation values computed by the last
// Analyze call, indexed by lag. Values past the band maximum are stale.
func (ac *Autocorrelator) Curve() []float32 {
	return ac.curve
}

// Analyze locates the dominant lag of x inside band.
// x should already have its mean removed.
func (ac *Autocorrelator) Analyze(x []float32, band LagBand) Peak {
	n := len(x)
	if n == 0 || band.Max+1 >= n || band.Max+1 >= len(ac.curve) || band.Min < 1 {
		return Peak{Verdict: PeakOutOfRange}
	}

	whole := blas32.Vector{N: n, Inc: 1, Data: x}
	energy := blas32.Dot(whole, whole)
	if energy <= 0 || energy/float32(n) < ac.silenceRMS*ac.silenceRMS {
		return Peak{Verdict: PeakSilence}
	}

	// Each lag is normalized by the energy of the two overlapping segments
	// rather than by r(0) alone. The values still lie in [-1, 1] and equal
	// r(τ)/r(0) at lag 0, but the (n-τ)/n taper of the plain estimate is gone,
	// which would otherwise pull low-pitch peaks towards shorter lags.
	ac.curve[0] = 1
	headEnergy, tailEnergy := energy, energy
	zeroCrossing := 0
	for lag := 1; lag <= band.Max+1; lag++ {
		dropHead, dropTail := x[n-lag], x[lag-1]
		headEnergy -= dropHead * dropHead
		tailEnergy -= dropTail * dropTail

		head := blas32.Vector{N: n - lag, Inc: 1, Data: x[:n-lag]}
		tail := blas32.Vector{N: n - lag, Inc: 1, Data: x[lag:]}

		var r float32
		if norm := math32.Sqrt(headEnergy * tailEnergy); norm > 0 {
			r = max(-1, min(1, blas32.Dot(head, tail)/norm))
		}
		ac.curve[lag] = r

		if zeroCrossing == 0 && r < 0 {
			zeroCrossing = lag
		}
	}

	// the lobe around lag 0 must end before a period can be picked
	if zeroCrossing == 0 || zeroCrossing > band.Max {
		return Peak{Verdict: PeakAperiodic}
	}

	best := zeroCrossing
	for lag := zeroCrossing + 1; lag <= band.Max; lag++ {
		if ac.curve[lag] > ac.curve[best] {
			best = lag
		}
	}
	if ac.curve[best] <= 0 {
		return Peak{Verdict: PeakAperiodic, Lag: best, Value: ac.curve[best]}
	}
	if ac.curve[best] < ac.minConfidence {
		return Peak{Verdict: PeakLowConfidence, Lag: best, Value: ac.curve[best]}
	}

	// Integer lag sampling can let a multiple of the period edge out the
	// period itself: a short period falling between two lags scores well
	// below 1 on both of them while its double lands on a lag. Candidates are
	// therefore compared by their interpolated height, and the earliest local
	// maximum close to the best wins.
	_, bestHeight := common.ParabolicPeak(ac.curve[best-1], ac.curve[best], ac.curve[best+1])
	floor := octaveTolerance * bestHeight

	chosen := -1
	var offset, height float32
	for lag := zeroCrossing; lag <= band.Max; lag++ {
		prev, v, next := ac.curve[lag-1], ac.curve[lag], ac.curve[lag+1]
		if v < prev || v < next {
			continue
		}
		if o, h := common.ParabolicPeak(prev, v, next); h >= floor {
			chosen, offset, height = lag, o, h
			break
		}
	}
	if chosen < 0 {
		// still rising at Max: the period is longer than the band allows
		return Peak{Verdict: PeakOutOfRange, Lag: best, Value: ac.curve[best]}
	}
	if height < ac.minConfidence {
		return Peak{Verdict: PeakLowConfidence, Lag: chosen, Value: height}
	}

	peak := Peak{
		Verdict: PeakFound,
		Lag:     chosen,
		Offset:  offset,
		Value:   min(height, 1),
	}
	p := peak.Period()
	if p < band.MinPeriod*(1-EdgeTolerance) || p > band.MaxPeriod*(1+EdgeTolerance) {
		peak.Verdict = PeakOutOfRange
	}
	return peak
}
