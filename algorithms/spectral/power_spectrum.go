package spectral

import "math"

// PowerSpectrum converts magnitude spectra to power in decibels.
type PowerSpectrum struct {
	// FloorDB clamps bins with little or no energy so the result stays finite.
	FloorDB float64
}

// NewPowerSpectrum creates a converter clamping at floorDB.
func NewPowerSpectrum(floorDB float64) *PowerSpectrum {
	return &PowerSpectrum{FloorDB: floorDB}
}

// Decibels returns 10·log10(|X|²) per bin, never below FloorDB.
func (ps *PowerSpectrum) Decibels(magnitude []float64) []float64 {
	floor := math.Pow(10, ps.FloorDB/10)
	db := make([]float64, len(magnitude))
	for i, mag := range magnitude {
		db[i] = 10 * math.Log10(math.Max(mag*mag, floor))
	}
	return db
}
