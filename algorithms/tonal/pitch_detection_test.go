package tonal

import (
	"math"
	"testing"
)

func TestEstimatorEstimate(t *testing.T) {
	e := NewEstimator(50, 1500)

	tests := []struct {
		name   string
		lag    float32
		rate   float32
		want   float32
		wantOK bool
	}{
		{"a4", 100.227, 44100, 440, true},
		{"min edge", 882, 44100, 50, true},
		{"near max", 29.5, 44100, 1494.915, true},
		{"max edge", 29.4, 44100, 1500, true},
		{"just past max", 29.3, 44100, 1500, true},
		{"just past min", 883, 44100, 50, true},
		{"too high", 20, 44100, 0, false},
		{"past max tolerance", 29.2, 44100, 0, false},
		{"past min tolerance", 890, 44100, 0, false},
		{"too low", 1000, 44100, 0, false},
		{"zero lag", 0, 44100, 0, false},
		{"negative lag", -100, 44100, 0, false},
		{"nan lag", float32(math.NaN()), 44100, 0, false},
		{"zero rate", 100, 0, 0, false},
		{"inf rate", 100, float32(math.Inf(1)), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.Estimate(tt.lag, tt.rate)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if math.Abs(float64(got-tt.want)) > 0.01 {
				t.Errorf("hz = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEstimatorExactRange(t *testing.T) {
	e := Estimator{MinHz: 50, MaxHz: 1500}

	if _, ok := e.Estimate(29.3, 44100); ok {
		t.Error("1505 Hz accepted without tolerance")
	}
	if hz, ok := e.Estimate(882, 44100); !ok || hz != 50 {
		t.Errorf("min edge = %v, %v", hz, ok)
	}
}
