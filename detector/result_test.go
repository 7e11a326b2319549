package detector

import (
	"testing"

	"github.com/RyanBlaney/sonido-tuner/algorithms/tonal"
)

func TestResultString(t *testing.T) {
	a4 := tonal.PitchFromMIDI(69)
	cs2 := tonal.PitchFromMIDI(37)

	tests := []struct {
		name string
		r    Result
		want string
	}{
		{"in tune", Result{State: Locked, Frequency: 440, Pitch: a4}, "A4 +0"},
		{"sharp", Result{State: Locked, Frequency: 441.3, Pitch: a4, Cents: 3.2}, "A4 +3"},
		{"flat", Result{State: Locked, Pitch: cs2, Cents: -11.6}, "C#2 -12"},
		{"unlocked", unlocked(ReasonSilence), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReasonString(t *testing.T) {
	for r, want := range map[Reason]string{
		ReasonNone:          "none",
		ReasonSilence:       "silence",
		ReasonAperiodic:     "aperiodic",
		ReasonLowConfidence: "low_confidence",
		ReasonOutOfRange:    "out_of_range",
		ReasonBuffering:     "buffering",
		Reason(99):          "unknown",
	} {
		if got := r.String(); got != want {
			t.Errorf("Reason(%d) = %q, want %q", int(r), got, want)
		}
	}

	if Locked.String() != "locked" || Unlocked.String() != "unlocked" {
		t.Error("unexpected State names")
	}
}

func TestZeroResultIsUnlocked(t *testing.T) {
	var r Result
	if r.Locked() {
		t.Error("zero Result is locked")
	}
	if _, ok := r.Fundamental(); ok {
		t.Error("zero Result has a fundamental")
	}
}
