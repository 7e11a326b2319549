package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/RyanBlaney/sonido-tuner/logging"
	"gopkg.in/yaml.v3"
	"maze.io/x/math32"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid detector config")

// Defaults for a guitar/voice range tuner at common device buffer sizes.
const (
	DefaultSampleWindowSize = 2048
	DefaultMinFrequency     = 50.0
	DefaultMaxFrequency     = 1500.0
	DefaultSilenceRMS       = 0.01 // -40 dBFS
	DefaultMinConfidence    = 0.5
	DefaultReferencePitch   = 440.0
	DefaultLogLevel         = "info"

	MinSampleWindowSize = 64
	MaxSampleWindowSize = 1 << 16
)

// envPrefix prefixes the environment variables read by ApplyEnvOverrides.
const envPrefix = "TUNER_"

// DetectorConfig configures a pitch detector at construction time.
type DetectorConfig struct {
	// Window
	SampleWindowSize int `json:"sample_window_size" yaml:"sample_window_size"`

	// Search range in Hz
	MinFrequency float32 `json:"min_frequency" yaml:"min_frequency"`
	MaxFrequency float32 `json:"max_frequency" yaml:"max_frequency"`

	// Rejection thresholds
	SilenceRMS    float32 `json:"silence_rms" yaml:"silence_rms"`       // RMS below which a window is silent
	MinConfidence float32 `json:"min_confidence" yaml:"min_confidence"` // 0-1, normalized correlation

	// Tuning
	ReferencePitch float32 `json:"reference_pitch" yaml:"reference_pitch"` // A4 in Hz

	// Preprocessing
	RemoveDCOffset bool `json:"remove_dc_offset" yaml:"remove_dc_offset"`

	LogLevel string `json:"log_level" yaml:"log_level"`
}

// DefaultDetectorConfig returns sensible defaults for a chromatic tuner.
func DefaultDetectorConfig() *DetectorConfig {
	return &DetectorConfig{
		SampleWindowSize: DefaultSampleWindowSize,
		MinFrequency:     DefaultMinFrequency,
		MaxFrequency:     DefaultMaxFrequency,
		SilenceRMS:       DefaultSilenceRMS,
		MinConfidence:    DefaultMinConfidence,
		ReferencePitch:   DefaultReferencePitch,
		RemoveDCOffset:   true,
		LogLevel:         DefaultLogLevel,
	}
}

// Validate reports the first inconsistent setting.
func (c *DetectorConfig) Validate() error {
	switch {
	case c.SampleWindowSize < MinSampleWindowSize || c.SampleWindowSize > MaxSampleWindowSize:
		return fmt.Errorf("%w: sample_window_size %d outside [%d, %d]",
			ErrInvalidConfig, c.SampleWindowSize, MinSampleWindowSize, MaxSampleWindowSize)
	case !positiveFinite(c.MinFrequency):
		return fmt.Errorf("%w: min_frequency %v must be positive", ErrInvalidConfig, c.MinFrequency)
	case !positiveFinite(c.MaxFrequency) || c.MaxFrequency <= c.MinFrequency:
		return fmt.Errorf("%w: max_frequency %v must exceed min_frequency %v",
			ErrInvalidConfig, c.MaxFrequency, c.MinFrequency)
	case !(c.SilenceRMS >= 0) || c.SilenceRMS >= 1:
		return fmt.Errorf("%w: silence_rms %v outside [0, 1)", ErrInvalidConfig, c.SilenceRMS)
	case !(c.MinConfidence > 0) || c.MinConfidence > 1:
		return fmt.Errorf("%w: min_confidence %v outside (0, 1]", ErrInvalidConfig, c.MinConfidence)
	case !positiveFinite(c.ReferencePitch):
		return fmt.Errorf("%w: reference_pitch %v must be positive", ErrInvalidConfig, c.ReferencePitch)
	}

	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

// Load reads a YAML file over the defaults, applies environment overrides
// and validates the result. Keys missing from the file keep their defaults.
func Load(path string) (*DetectorConfig, error) {
	cfg := DefaultDetectorConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides replaces settings with TUNER_* environment variables
// when present: TUNER_SAMPLE_WINDOW_SIZE, TUNER_MIN_FREQUENCY,
// TUNER_MAX_FREQUENCY, TUNER_SILENCE_RMS, TUNER_MIN_CONFIDENCE,
// TUNER_REFERENCE_PITCH, TUNER_REMOVE_DC_OFFSET and TUNER_LOG_LEVEL.
func (c *DetectorConfig) ApplyEnvOverrides() error {
	if val, ok := os.LookupEnv(envPrefix + "SAMPLE_WINDOW_SIZE"); ok {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%w: %sSAMPLE_WINDOW_SIZE: %v", ErrInvalidConfig, envPrefix, err)
		}
		c.SampleWindowSize = n
	}

	floats := []struct {
		name string
		dst  *float32
	}{
		{"MIN_FREQUENCY", &c.MinFrequency},
		{"MAX_FREQUENCY", &c.MaxFrequency},
		{"SILENCE_RMS", &c.SilenceRMS},
		{"MIN_CONFIDENCE", &c.MinConfidence},
		{"REFERENCE_PITCH", &c.ReferencePitch},
	}
	for _, f := range floats {
		val, ok := os.LookupEnv(envPrefix + f.name)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(val, 32)
		if err != nil {
			return fmt.Errorf("%w: %s%s: %v", ErrInvalidConfig, envPrefix, f.name, err)
		}
		*f.dst = float32(v)
	}

	if val, ok := os.LookupEnv(envPrefix + "REMOVE_DC_OFFSET"); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("%w: %sREMOVE_DC_OFFSET: %v", ErrInvalidConfig, envPrefix, err)
		}
		c.RemoveDCOffset = b
	}
	if val, ok := os.LookupEnv(envPrefix + "LOG_LEVEL"); ok {
		c.LogLevel = val
	}
	return nil
}

func positiveFinite(v float32) bool {
	return v > 0 && !math32.IsInf(v, 1)
}
