package spectral

import (
	"math"
	"testing"
)

const testSampleRate = 44100

func tone(n int, partials map[float64]float64) []float32 {
	x := make([]float32, n)
	for i := range x {
		tm := float64(i) / testSampleRate
		var v float64
		for freq, amp := range partials {
			v += amp * math.Sin(2*math.Pi*freq*tm)
		}
		x[i] = float32(v)
	}
	return x
}

func TestMagnitudeBins(t *testing.T) {
	f := NewFFT()
	x := tone(1024, map[float64]float64{1000: 1})

	mag := f.Magnitude(x)
	if len(mag) != 1024*4/2+1 {
		t.Fatalf("len = %d", len(mag))
	}

	peak := 0
	for k := range mag {
		if mag[k] > mag[peak] {
			peak = k
		}
	}
	if got := float64(peak) * f.BinWidth(1024, testSampleRate); math.Abs(got-1000) > f.BinWidth(1024, testSampleRate) {
		t.Errorf("peak at %.1f Hz, want 1000", got)
	}

	if got := f.Magnitude(nil); len(got) != 0 {
		t.Errorf("empty frame gave %d bins", len(got))
	}
}

func TestHarmonicSumEstimate(t *testing.T) {
	hs := NewHarmonicSum(5)

	tests := []struct {
		name     string
		partials map[float64]float64
		want     float64
	}{
		{"pure a4", map[float64]float64{440: 0.8}, 440},
		{"pure g3", map[float64]float64{196: 0.8}, 196},
		{"harmonic a3", map[float64]float64{220: 0.4, 440: 0.3, 660: 0.2}, 220},
		{"strong second partial", map[float64]float64{110: 0.2, 220: 0.5, 330: 0.2}, 110},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			peak, ok := hs.Estimate(tone(2048, tt.partials), testSampleRate, 50, 1500)
			if !ok {
				t.Fatal("no peak")
			}
			if math.Abs(peak.Frequency-tt.want)/tt.want > 0.01 {
				t.Errorf("frequency %.2f Hz, want %.2f", peak.Frequency, tt.want)
			}
		})
	}
}

func TestHarmonicSumRejects(t *testing.T) {
	hs := NewHarmonicSum(3)

	if _, ok := hs.Estimate(make([]float32, 2048), testSampleRate, 50, 1500); ok {
		t.Error("silent frame produced a peak")
	}
	if _, ok := hs.Estimate(nil, testSampleRate, 50, 1500); ok {
		t.Error("empty frame produced a peak")
	}
	if _, ok := hs.Estimate(tone(2048, map[float64]float64{440: 1}), testSampleRate, 1500, 50); ok {
		t.Error("inverted band produced a peak")
	}
}

func TestPowerSpectrumDecibels(t *testing.T) {
	got := NewPowerSpectrum(-60).Decibels([]float64{1, 10, 0})

	want := []float64{0, 20, -60}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("bin %d = %v dB, want %v", i, got[i], want[i])
		}
	}
	if got := NewPowerSpectrum(-60).Decibels(nil); len(got) != 0 {
		t.Errorf("empty spectrum gave %v", got)
	}
}
