package detector

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RyanBlaney/sonido-tuner/detector/config"
	"github.com/RyanBlaney/sonido-tuner/transcode"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// sliceSource serves fixed windows from memory.
type sliceSource struct {
	rate   float32
	frames [][]float32
	err    error
}

func (s *sliceSource) SampleRate() float32 { return s.rate }

func (s *sliceSource) Next() ([]float32, error) {
	if len(s.frames) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	f := s.frames[0]
	s.frames = s.frames[1:]
	return f, nil
}

// writeToneWAV writes a 16 bit stereo WAV holding one tone per segment.
func writeToneWAV(t *testing.T, rate int, segment time.Duration, freqs ...float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tones.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	perSegment := int(segment.Seconds() * float64(rate))
	data := make([]int, 0, 2*perSegment*len(freqs))
	for _, freq := range freqs {
		for i := range perSegment {
			v := int(12000 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
			data = append(data, v, v)
		}
	}

	enc := wav.NewEncoder(f, rate, 16, 2, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestScanWAV(t *testing.T) {
	const rate = 44100
	d := newDetector(t, func(c *config.DetectorConfig) { c.SampleWindowSize = 2048 })
	path := writeToneWAV(t, rate, time.Second, 110, 329.63)

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	src, err := transcode.NewFrameReader(f, d.WindowSize())
	if err != nil {
		t.Fatalf("NewFrameReader: %v", err)
	}

	var frames []Frame
	err = d.Scan(context.Background(), src, func(fr Frame) error {
		frames = append(frames, fr)
		return nil
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	// 88200 samples in 2048 sample windows
	if len(frames) != 44 {
		t.Fatalf("got %d frames, want 44", len(frames))
	}

	for _, fr := range frames {
		if fr.Samples < d.WindowSize() {
			continue // zero-padded tail
		}
		start := fr.Offset
		end := start + time.Duration(float64(d.WindowSize())/rate*float64(time.Second))

		var want string
		switch {
		case end <= time.Second:
			want = "A2"
		case start >= time.Second:
			want = "E4"
		default:
			continue // straddles the change
		}
		if name, ok := fr.Result.PitchName(); !ok || name != want {
			t.Errorf("frame %d at %v: %q (%v), want %s", fr.Index, fr.Offset, name, fr.Result.Reason, want)
		}
	}

	step := time.Duration(float64(d.WindowSize()) / rate * float64(time.Second))
	if frames[1].Offset != step {
		t.Errorf("second frame offset = %v", frames[1].Offset)
	}
}

func TestScanPadsShortFrame(t *testing.T) {
	d := newDetector(t, func(c *config.DetectorConfig) { c.SampleWindowSize = 1024 })
	src := &sliceSource{
		rate:   testSampleRate,
		frames: [][]float32{sine(1024, 440, 0.5, 0), sine(700, 440, 0.5, 0)},
	}

	var got []Result
	err := d.Scan(context.Background(), src, func(fr Frame) error {
		got = append(got, fr.Result)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d frames", len(got))
	}
	for i, r := range got {
		if name, _ := r.PitchName(); name != "A4" {
			t.Errorf("frame %d: %q (%v)", i, name, r.Reason)
		}
	}
}

func TestScanStops(t *testing.T) {
	d := newDetector(t, func(c *config.DetectorConfig) { c.SampleWindowSize = 512 })
	frames := func() [][]float32 {
		return [][]float32{sine(512, 440, 0.5, 0), sine(512, 440, 0.5, 0), sine(512, 440, 0.5, 0)}
	}

	t.Run("callback error", func(t *testing.T) {
		stop := errors.New("stop")
		calls := 0
		err := d.Scan(context.Background(), &sliceSource{rate: testSampleRate, frames: frames()}, func(Frame) error {
			calls++
			return stop
		})
		if !errors.Is(err, stop) || calls != 1 {
			t.Errorf("err = %v after %d calls", err, calls)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := d.Scan(ctx, &sliceSource{rate: testSampleRate, frames: frames()}, func(Frame) error {
			calls++
			cancel()
			return nil
		})
		if !errors.Is(err, context.Canceled) || calls != 1 {
			t.Errorf("err = %v after %d calls", err, calls)
		}
	})

	t.Run("source error", func(t *testing.T) {
		boom := errors.New("device unplugged")
		err := d.Scan(context.Background(), &sliceSource{rate: testSampleRate, err: boom}, func(Frame) error { return nil })
		if !errors.Is(err, boom) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("invalid frame", func(t *testing.T) {
		bad := [][]float32{{0, float32(math.Inf(1))}}
		err := d.Scan(context.Background(), &sliceSource{rate: testSampleRate, frames: bad}, func(Frame) error { return nil })
		if !errors.Is(err, ErrNonFiniteSample) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("invalid rate", func(t *testing.T) {
		err := d.Scan(context.Background(), &sliceSource{}, func(Frame) error { return nil })
		if !errors.Is(err, ErrInvalidSampleRate) {
			t.Errorf("err = %v", err)
		}
	})
}
