package common

import (
	"errors"
	"fmt"

	"maze.io/x/math32"
)

var (
	// ErrEmptyWindow is returned when a zero-length window is supplied.
	ErrEmptyWindow = errors.New("sample window is empty")

	// ErrWindowSize is returned when a window does not match the configured size.
	ErrWindowSize = errors.New("sample window size mismatch")

	// ErrNonFiniteSample is returned when a window contains NaN or ±Inf.
	ErrNonFiniteSample = errors.New("sample window contains a non-finite sample")
)

// SampleWindow is a fixed-capacity buffer holding the most recent N samples.
//
// It supports two feeding styles. Load replaces the whole window at once, which
// is what a host with an analysis buffer of exactly N samples does every frame.
// Write appends chunks of any size into a ring, overwriting the oldest samples.
// Snapshot returns the window in chronological order either way.
//
// The window never keeps a reference to caller memory.
type SampleWindow struct {
	ring     []float32
	linear   []float32
	writePos int
	count    int
	dirty    bool
}

// NewSampleWindow creates a window holding size samples.
func NewSampleWindow(size int) *SampleWindow {
	if size < 1 {
		size = 1
	}
	return &SampleWindow{
		ring:   make([]float32, size),
		linear: make([]float32, size),
	}
}

// Len returns the window capacity N.
func (sw *SampleWindow) Len() int {
	return len(sw.ring)
}

// Filled reports whether N samples have been written since the last Reset.
func (sw *SampleWindow) Filled() bool {
	return sw.count == len(sw.ring)
}

// Load copies src into the window, replacing its contents.
// src must hold exactly Len() finite samples; on error the window is unchanged.
func (sw *SampleWindow) Load(src []float32) error {
	if err := CheckWindow(src, len(sw.ring)); err != nil {
		return err
	}

	copy(sw.ring, src)
	sw.writePos = 0
	sw.count = len(sw.ring)
	sw.dirty = true
	return nil
}

// CheckWindow reports whether samples is a complete window of n finite samples.
func CheckWindow(samples []float32, n int) error {
	if len(samples) == 0 {
		return ErrEmptyWindow
	}
	if len(samples) != n {
		return fmt.Errorf("%w: got %d samples, want %d", ErrWindowSize, len(samples), n)
	}
	if i := firstNonFinite(samples); i >= 0 {
		return fmt.Errorf("%w at index %d", ErrNonFiniteSample, i)
	}
	return nil
}

// Write appends chunk to the ring. Once full, the oldest samples are overwritten.
// A chunk containing a non-finite sample is rejected as a whole.
func (sw *SampleWindow) Write(chunk []float32) error {
	if i := firstNonFinite(chunk); i >= 0 {
		return fmt.Errorf("%w at index %d", ErrNonFiniteSample, i)
	}

	size := len(sw.ring)
	// only the newest size samples can survive
	if len(chunk) > size {
		chunk = chunk[len(chunk)-size:]
	}

	n := copy(sw.ring[sw.writePos:], chunk)
	if n < len(chunk) {
		copy(sw.ring, chunk[n:])
	}
	sw.writePos = (sw.writePos + len(chunk)) % size
	sw.count = min(sw.count+len(chunk), size)
	if len(chunk) > 0 {
		sw.dirty = true
	}
	return nil
}

// Snapshot returns the window in chronological order. Until Filled, the
// leading samples are zero. The slice is owned by the window and is valid
// until the next Load, Write or Reset.
func (sw *SampleWindow) Snapshot() []float32 {
	if sw.dirty {
		n := copy(sw.linear, sw.ring[sw.writePos:])
		copy(sw.linear[n:], sw.ring[:sw.writePos])
		sw.dirty = false
	}
	return sw.linear
}

// Reset zeroes the window.
func (sw *SampleWindow) Reset() {
	clear(sw.ring)
	clear(sw.linear)
	sw.writePos = 0
	sw.count = 0
	sw.dirty = false
}

// RisingEdge returns the part of samples starting at the first transition
// from negative to non-negative, so successive frames of a periodic signal
// line up when drawn. If there is no such transition samples is returned whole.
func RisingEdge(samples []float32) []float32 {
	i := 0
	for i < len(samples) && samples[i] >= 0 {
		i++
	}
	for i < len(samples) && samples[i] < 0 {
		i++
	}
	if i >= len(samples) {
		return samples
	}
	return samples[i:]
}

func firstNonFinite(samples []float32) int {
	for i, s := range samples {
		if math32.IsNaN(s) || math32.IsInf(s, 0) {
			return i
		}
	}
	return -1
}
