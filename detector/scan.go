package detector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/RyanBlaney/sonido-tuner/logging"
)

// FrameSource yields consecutive windows of mono samples. Next returns io.EOF
// once the source is exhausted. The returned slice may be reused by the next
// call.
type FrameSource interface {
	SampleRate() float32
	Next() ([]float32, error)
}

// Frame is one detection result placed on the source's timeline.
type Frame struct {
	Index   int           `json:"index"`
	Offset  time.Duration `json:"offset"`  // start of the window
	Samples int           `json:"samples"` // samples read before padding
	Result  Result        `json:"result"`
}

// Scan reads windows from src until it is exhausted, detects each one and
// passes the result to fn. It stops early when ctx is cancelled, when src
// or detection fails, or when fn returns an error; the cause is returned.
//
// A short final window is zero-padded to the detector's window size.
func (d *Detector) Scan(ctx context.Context, src FrameSource, fn func(Frame) error) error {
	logger := d.logger.WithContext(ctx)
	rate := src.SampleRate()
	if err := validSampleRate(rate); err != nil {
		return err
	}

	padded := make([]float32, d.WindowSize())
	var position int64

	for index := 0; ; index++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		samples, err := src.Next()
		if errors.Is(err, io.EOF) {
			logger.Debug("Scan finished", logging.Fields{"frames": index})
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read frame %d: %w", index, err)
		}

		n := len(samples)
		if n > 0 && n < len(padded) {
			copy(padded, samples)
			clear(padded[n:])
			samples = padded
		}

		result, err := d.Detect(samples, rate)
		if err != nil {
			return fmt.Errorf("frame %d: %w", index, err)
		}

		frame := Frame{
			Index:   index,
			Offset:  time.Duration(float64(position) / float64(rate) * float64(time.Second)),
			Samples: n,
			Result:  result,
		}
		if err := fn(frame); err != nil {
			return err
		}
		position += int64(n)
	}
}
