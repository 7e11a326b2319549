package tonal

import (
	"strconv"

	"maze.io/x/math32"
)

// ConcertPitch is the standard reference frequency of A4 in Hz.
const ConcertPitch = 440.0

const (
	// semitonesPerOctave is the number of equal tempered steps in an octave.
	semitonesPerOctave = 12

	// midiA4 is the MIDI note number of the reference pitch.
	midiA4 = 69
)

// pitchClassNames holds the twelve pitch class names indexed by pitch class,
// 0 being C. Accidentals are spelled with sharps.
var pitchClassNames = [semitonesPerOctave]string{
	"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B",
}

// PitchClassName returns the name of pitch class pc (0 = C). Values outside
// 0-11 wrap around.
func PitchClassName(pc int) string {
	return pitchClassNames[floorMod(pc, semitonesPerOctave)]
}

// Pitch is a note of the 12-tone equal tempered scale in scientific pitch
// notation.
type Pitch struct {
	Name   string `json:"name"`
	Octave int    `json:"octave"`
	MIDI   int    `json:"midi"`
}

// PitchFromMIDI returns the pitch with the given MIDI note number.
func PitchFromMIDI(midi int) Pitch {
	return Pitch{
		Name:   PitchClassName(midi),
		Octave: floorDiv(midi, semitonesPerOctave) - 1,
		MIDI:   midi,
	}
}

// String renders the pitch as name and octave, e.g. "A4" or "C#-1".
// The zero Pitch renders as an empty string.
func (p Pitch) String() string {
	if p.Name == "" {
		return ""
	}
	return p.Name + strconv.Itoa(p.Octave)
}

// Frequency returns the exact frequency of the pitch under tuning t.
func (p Pitch) Frequency(t Tuning) float32 {
	return t.Reference * math32.Pow(2, float32(p.MIDI-midiA4)/semitonesPerOctave)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
