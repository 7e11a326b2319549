package spectral

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// FFT computes windowed magnitude spectra of real frames.
type FFT struct {
	// PadFactor zero-pads each frame to PadFactor times its length before the
	// transform, interpolating the spectrum. Values below 1 are treated as 1.
	PadFactor int
}

// NewFFT creates an FFT that pads frames to four times their length.
func NewFFT() *FFT {
	return &FFT{PadFactor: 4}
}

// Magnitude applies a Hann window to samples, zero-pads the frame and returns
// the magnitude of the non-negative frequency bins. Bin k lies at
// k·sampleRate/(len(samples)·PadFactor) Hz.
func (f *FFT) Magnitude(samples []float32) []float64 {
	if len(samples) == 0 {
		return []float64{}
	}

	frame := make([]float64, len(samples)*max(f.PadFactor, 1))
	for i, s := range samples {
		frame[i] = float64(s)
	}
	window.Apply(frame[:len(samples)], window.Hann)

	spectrum := fft.FFTReal(frame)
	magnitude := make([]float64, len(frame)/2+1)
	for k := range magnitude {
		magnitude[k] = cmplx.Abs(spectrum[k])
	}
	return magnitude
}

// BinWidth returns the frequency spacing of the bins Magnitude produces for a
// frame of n samples.
func (f *FFT) BinWidth(n int, sampleRate float32) float64 {
	return float64(sampleRate) / float64(n*max(f.PadFactor, 1))
}
