package tonal

import "maze.io/x/math32"

// Tuning maps frequencies onto the 12-tone equal tempered scale anchored at
// a reference frequency for A4.
type Tuning struct {
	Reference float32 `json:"reference" yaml:"reference"`
}

// StandardTuning anchors A4 at 440 Hz.
var StandardTuning = Tuning{Reference: ConcertPitch}

// Valid reports whether the reference is a positive finite frequency.
func (t Tuning) Valid() bool {
	return validFrequency(t.Reference)
}

// Resolve returns the nearest pitch to hz together with the signed deviation
// from it in cents. A frequency exactly halfway between two pitches resolves
// to the upper one, so cents always lie in [-50, 50).
//
// ok is false when hz or the reference is zero, negative, NaN or infinite.
func (t Tuning) Resolve(hz float32) (p Pitch, cents float32, ok bool) {
	if !validFrequency(hz) || !t.Valid() {
		return Pitch{}, 0, false
	}

	n := semitonesPerOctave * math32.Log2(hz/t.Reference)
	if math32.IsInf(n, 0) || math32.IsNaN(n) {
		return Pitch{}, 0, false
	}

	nearest := math32.Floor(n + 0.5)
	diff := n - nearest
	// n+0.5 can round up to the next integer when n sits just below a half step
	if diff < -0.5 {
		diff = -0.5
	}

	return PitchFromMIDI(midiA4 + int(nearest)), 100 * diff, true
}

// NearestPitch returns the pitch closest to hz.
func (t Tuning) NearestPitch(hz float32) (Pitch, bool) {
	p, _, ok := t.Resolve(hz)
	return p, ok
}

// CentsError returns how far hz is from its nearest pitch, in cents.
// Positive values are sharp, negative values flat.
func (t Tuning) CentsError(hz float32) (float32, bool) {
	_, cents, ok := t.Resolve(hz)
	return cents, ok
}

// NearestPitch returns the pitch closest to hz in standard tuning.
func NearestPitch(hz float32) (Pitch, bool) {
	return StandardTuning.NearestPitch(hz)
}

// CentsError returns the deviation of hz from its nearest pitch in standard
// tuning.
func CentsError(hz float32) (float32, bool) {
	return StandardTuning.CentsError(hz)
}

func validFrequency(hz float32) bool {
	return hz > 0 && !math32.IsInf(hz, 1)
}
