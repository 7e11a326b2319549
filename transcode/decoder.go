package transcode

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/RyanBlaney/sonido-tuner/logging"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var (
	// ErrInvalidWAV is returned for input that is not a readable WAV file.
	ErrInvalidWAV = errors.New("not a valid wav file")

	// ErrUnsupportedFormat is returned for WAV encodings other than integer PCM
	// at 8, 16, 24 or 32 bits.
	ErrUnsupportedFormat = errors.New("unsupported wav format")
)

// wavFormatPCM is the WAVE_FORMAT_PCM format tag.
const wavFormatPCM = 1

// AudioInfo describes the stream behind a FrameReader.
type AudioInfo struct {
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`
	BitDepth   int           `json:"bit_depth"`
	Duration   time.Duration `json:"duration"`
}

// FrameReader decodes a PCM WAV stream into consecutive mono float32 frames
// of a fixed size, scaled to [-1, 1). Multi-channel audio is averaged down to
// one channel.
//
// Next reuses its buffers, so a returned frame is only valid until the next
// call.
type FrameReader struct {
	dec       *wav.Decoder
	info      AudioInfo
	frameSize int
	scale     float32
	offset    int

	pcm   *audio.IntBuffer
	frame []float32
}

// NewFrameReader reads the WAV header from r and prepares to deliver frames of
// frameSize samples.
func NewFrameReader(r io.ReadSeeker, frameSize int) (*FrameReader, error) {
	if frameSize < 1 {
		return nil, fmt.Errorf("frame size must be positive, got %d", frameSize)
	}

	logger := logging.WithFields(logging.Fields{
		"component": "wav_reader",
		"function":  "NewFrameReader",
	})

	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrInvalidWAV
	}
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}

	info := AudioInfo{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: format tag %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}
	if info.Channels < 1 || info.SampleRate < 1 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrInvalidWAV, info.Channels, info.SampleRate)
	}

	fr := &FrameReader{
		dec:       dec,
		frameSize: frameSize,
		frame:     make([]float32, frameSize),
		pcm: &audio.IntBuffer{
			Format: dec.Format(),
			Data:   make([]int, frameSize*info.Channels),
		},
	}

	switch info.BitDepth {
	case 8:
		// 8 bit WAV samples are unsigned
		fr.scale, fr.offset = 1.0/128, 128
	case 16, 24, 32:
		fr.scale = 1 / float32(int64(1)<<(info.BitDepth-1))
	default:
		return nil, fmt.Errorf("%w: %d bit samples", ErrUnsupportedFormat, info.BitDepth)
	}

	if d, err := dec.Duration(); err == nil {
		info.Duration = d
	}
	fr.info = info

	logger.Debug("WAV stream opened", logging.Fields{
		"sample_rate": info.SampleRate,
		"channels":    info.Channels,
		"bit_depth":   info.BitDepth,
		"duration":    info.Duration,
	})
	return fr, nil
}

// Info returns the stream's format.
func (fr *FrameReader) Info() AudioInfo {
	return fr.info
}

// SampleRate returns the stream's sample rate in Hz.
func (fr *FrameReader) SampleRate() float32 {
	return float32(fr.info.SampleRate)
}

// FrameSize returns the number of samples Next delivers per full frame.
func (fr *FrameReader) FrameSize() int {
	return fr.frameSize
}

// Next returns the next frame. The final frame may be shorter than the
// frame size. io.EOF is returned once the stream is exhausted.
func (fr *FrameReader) Next() ([]float32, error) {
	n, err := fr.dec.PCMBuffer(fr.pcm)
	if err != nil {
		return nil, fmt.Errorf("failed to decode pcm: %w", err)
	}

	channels := fr.info.Channels
	frames := n / channels
	if frames == 0 {
		return nil, io.EOF
	}

	gain := fr.scale / float32(channels)
	for i := range frames {
		var sum int
		for _, v := range fr.pcm.Data[i*channels : (i+1)*channels] {
			sum += v - fr.offset
		}
		fr.frame[i] = float32(sum) * gain
	}
	return fr.frame[:frames], nil
}
