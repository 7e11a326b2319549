package spectral

import (
	"math"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"gonum.org/v1/gonum/floats"
)

// SpectralPeak is the fundamental suggested by a harmonic spectrum search.
type SpectralPeak struct {
	Frequency float64 `json:"frequency"` // Refined peak frequency in Hz
	Magnitude float64 `json:"magnitude"` // Harmonic sum at the peak bin
	BinIndex  int     `json:"bin_index"` // Padded FFT bin of the peak
}

// HarmonicSum estimates a fundamental by summing the magnitude spectrum at
// integer multiples of each candidate frequency, the additive form of the
// harmonic product spectrum. Weights decay geometrically with the harmonic
// number so a pure tone is not reported an octave low.
//
// It is an independent frequency-domain cross-check for the autocorrelation
// detector and allocates on every call.
type HarmonicSum struct {
	numHarmonics int
	decay        float64
	fft          *FFT
}

// NewHarmonicSum creates an estimator summing numHarmonics partials.
func NewHarmonicSum(numHarmonics int) *HarmonicSum {
	return &HarmonicSum{
		numHarmonics: max(numHarmonics, 1),
		decay:        0.8,
		fft:          NewFFT(),
	}
}

// Compute returns the weighted harmonic sum of a magnitude spectrum.
func (hs *HarmonicSum) Compute(magnitudeSpectrum []float64) []float64 {
	sum := make([]float64, len(magnitudeSpectrum))
	weight := 1.0
	for h := 1; h <= hs.numHarmonics; h++ {
		for k := range sum {
			if k*h >= len(magnitudeSpectrum) {
				break
			}
			sum[k] += weight * magnitudeSpectrum[k*h]
		}
		weight *= hs.decay
	}
	return sum
}

// Estimate finds the strongest harmonic sum between minHz and maxHz.
// ok is false for an empty or silent frame or a band with no bins.
func (hs *HarmonicSum) Estimate(samples []float32, sampleRate, minHz, maxHz float32) (SpectralPeak, bool) {
	if len(samples) == 0 || !(sampleRate > 0) || !(maxHz > minHz) {
		return SpectralPeak{}, false
	}

	magnitude := hs.fft.Magnitude(samples)
	binWidth := hs.fft.BinWidth(len(samples), sampleRate)
	sum := hs.Compute(magnitude)

	lo := max(1, int(math.Ceil(float64(minHz)/binWidth)))
	hi := min(len(sum)-2, int(math.Floor(float64(maxHz)/binWidth)))
	if lo > hi {
		return SpectralPeak{}, false
	}

	bin := lo + floats.MaxIdx(sum[lo:hi+1])
	if sum[bin] <= 0 {
		return SpectralPeak{}, false
	}

	// refine on the fundamental's own lobe when it has one
	around := sum
	if magnitude[bin] >= magnitude[bin-1] && magnitude[bin] >= magnitude[bin+1] {
		around = magnitude
	}
	offset, _ := common.ParabolicPeak(float32(around[bin-1]), float32(around[bin]), float32(around[bin+1]))
	return SpectralPeak{
		Frequency: (float64(bin) + float64(offset)) * binWidth,
		Magnitude: sum[bin],
		BinIndex:  bin,
	}, true
}
