package filters

import (
	"math"
	"testing"
)

func TestRemoveMean(t *testing.T) {
	samples := []float32{1.5, 0.5, 1.5, 0.5}

	mean := RemoveMean(samples)
	if mean != 1 {
		t.Errorf("mean = %v, want 1", mean)
	}

	want := []float32{0.5, -0.5, 0.5, -0.5}
	for i := range samples {
		if samples[i] != want[i] {
			t.Errorf("samples[%d] = %v, want %v", i, samples[i], want[i])
		}
	}
}

func TestRemoveMeanOffsetSine(t *testing.T) {
	const n = 441 // ten periods of 1 kHz at 44.1 kHz
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = 0.25 + float32(0.5*math.Sin(2*math.Pi*1000*float64(i)/44100))
	}

	RemoveMean(samples)

	var sum float64
	for _, s := range samples {
		sum += float64(s)
	}
	if math.Abs(sum/n) > 1e-4 {
		t.Errorf("residual mean = %g", sum/n)
	}
}

func TestRemoveMeanEmpty(t *testing.T) {
	if got := RemoveMean(nil); got != 0 {
		t.Errorf("RemoveMean(nil) = %v, want 0", got)
	}
}
