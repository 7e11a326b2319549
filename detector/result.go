package detector

import (
	"strconv"

	"github.com/RyanBlaney/sonido-tuner/algorithms/tonal"
	"maze.io/x/math32"
)

// State says whether a result carries a pitch.
type State int

const (
	// Unlocked means no pitch was detected. Reason says why.
	Unlocked State = iota

	// Locked means frequency, pitch and cents are all valid.
	Locked
)

func (s State) String() string {
	if s == Locked {
		return "locked"
	}
	return "unlocked"
}

// Reason explains an unlocked result.
type Reason int

const (
	ReasonNone          Reason = iota // locked
	ReasonSilence                     // window energy below the silence threshold
	ReasonAperiodic                   // no periodicity in the searchable band
	ReasonLowConfidence               // periodicity too weak to trust
	ReasonOutOfRange                  // period outside the configured frequency range
	ReasonBuffering                   // ring buffer not yet full
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonSilence:
		return "silence"
	case ReasonAperiodic:
		return "aperiodic"
	case ReasonLowConfidence:
		return "low_confidence"
	case ReasonOutOfRange:
		return "out_of_range"
	case ReasonBuffering:
		return "buffering"
	default:
		return "unknown"
	}
}

// Result is the outcome of analysing one window. Frequency, Pitch and Cents
// are either all set (State == Locked) or all zero.
type Result struct {
	State  State  `json:"state"`
	Reason Reason `json:"reason"`

	Frequency float32     `json:"frequency"` // Fundamental in Hz
	Pitch     tonal.Pitch `json:"pitch"`     // Nearest 12-TET pitch
	Cents     float32     `json:"cents"`     // Deviation from Pitch, [-50, 50)

	// Normalized correlation at the detected period, 0-1.
	Confidence float32 `json:"confidence"`
}

func unlocked(reason Reason) Result {
	return Result{State: Unlocked, Reason: reason}
}

// Locked reports whether the result carries a pitch.
func (r Result) Locked() bool {
	return r.State == Locked
}

// Fundamental returns the detected fundamental frequency in Hz.
func (r Result) Fundamental() (float32, bool) {
	return r.Frequency, r.Locked()
}

// PitchName returns the nearest pitch name, e.g. "A4".
func (r Result) PitchName() (string, bool) {
	if !r.Locked() {
		return "", false
	}
	return r.Pitch.String(), true
}

// CentsError returns the signed deviation from the nearest pitch.
func (r Result) CentsError() (float32, bool) {
	return r.Cents, r.Locked()
}

// String renders a locked result as pitch and whole cents, e.g. "A4 +3" or
// "C#2 -12", and an unlocked result as an empty string.
func (r Result) String() string {
	if !r.Locked() {
		return ""
	}
	cents := int(math32.Floor(r.Cents + 0.5))
	sign := "+"
	if cents < 0 {
		sign = ""
	}
	return r.Pitch.String() + " " + sign + strconv.Itoa(cents)
}
