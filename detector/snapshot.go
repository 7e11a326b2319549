package detector

import (
	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/RyanBlaney/sonido-tuner/algorithms/spectral"
)

// spectrumFloorDB clamps the diagnostic spectrum.
const spectrumFloorDB = -120.0

// Snapshot bundles a result with the intermediate data behind it, for
// visualisation and debugging. Unlike Detect, Inspect allocates.
type Snapshot struct {
	Result     Result  `json:"result"`
	SampleRate float32 `json:"sample_rate"`

	// Window after preprocessing, and the part of it starting at the first
	// rising zero crossing so successive frames line up when drawn.
	Samples []float32 `json:"samples"`
	Aligned []float32 `json:"aligned"`

	// Normalized autocorrelation by lag, up to one past the band maximum.
	Curve  []float32 `json:"curve"`
	MinLag int       `json:"min_lag"`
	MaxLag int       `json:"max_lag"`

	// Level statistics of the raw window.
	RMS      float64 `json:"rms"`
	DCOffset float64 `json:"dc_offset"`
	Peak     float64 `json:"peak"`

	// Independent frequency-domain estimate and the log power spectrum it
	// was derived from.
	Spectral   spectral.SpectralPeak `json:"spectral"`
	SpectralOK bool                  `json:"spectral_ok"`
	SpectrumDB []float64             `json:"spectrum_db"`
	BinWidth   float64               `json:"bin_width"`
}

// Inspect runs Detect and captures its intermediate state.
func (d *Detector) Inspect(samples []float32, sampleRate float32) (*Snapshot, error) {
	result, err := d.Detect(samples, sampleRate)
	if err != nil {
		return nil, err
	}

	raw := common.Float64s(samples)

	processed := make([]float32, len(d.work))
	copy(processed, d.work)

	curve := make([]float32, d.band.Max+2)
	copy(curve, d.autocorr.Curve())

	snap := &Snapshot{
		Result:     result,
		SampleRate: sampleRate,
		Samples:    processed,
		Aligned:    common.RisingEdge(processed),
		Curve:      curve,
		MinLag:     d.band.Min,
		MaxLag:     d.band.Max,
		RMS:        common.RMS(raw),
		DCOffset:   common.Mean(raw),
		Peak:       common.PeakAbs(raw),
	}

	// the correlation curve is only filled once the window is loud enough
	if result.Reason == ReasonSilence {
		clear(snap.Curve)
	}

	fft := spectral.NewFFT()
	magnitude := fft.Magnitude(processed)
	snap.SpectrumDB = spectral.NewPowerSpectrum(spectrumFloorDB).Decibels(magnitude)
	snap.BinWidth = fft.BinWidth(len(processed), sampleRate)
	snap.Spectral, snap.SpectralOK = spectral.NewHarmonicSum(5).Estimate(
		processed, sampleRate, d.config.MinFrequency, d.config.MaxFrequency)

	return snap, nil
}

// CorrelationAt samples the normalized curve at a fractional lag.
func (s *Snapshot) CorrelationAt(lag float32) float32 {
	return common.LinearAt(s.Curve, lag)
}
