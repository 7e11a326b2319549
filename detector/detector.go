package detector

import (
	"fmt"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/RyanBlaney/sonido-tuner/algorithms/filters"
	"github.com/RyanBlaney/sonido-tuner/algorithms/stats"
	"github.com/RyanBlaney/sonido-tuner/algorithms/tonal"
	"github.com/RyanBlaney/sonido-tuner/detector/config"
	"github.com/RyanBlaney/sonido-tuner/logging"
	"maze.io/x/math32"
)

// Detector turns fixed-size windows of mono samples into pitch readings.
//
// All buffers are allocated by New, so Detect, DetectLatest and Push do not
// allocate, whatever the sample rate of each call. Results depend only on the
// window and the sample rate: nothing carries over between calls except the
// samples buffered by Push for DetectLatest. Detect does not touch that
// buffer, so both feeding styles can share a Detector.
//
// A Detector is not safe for concurrent use.
type Detector struct {
	config *config.DetectorConfig

	window     *common.SampleWindow
	work       []float32
	autocorr   *stats.Autocorrelator
	correlator *stats.Correlator
	estimator  tonal.Estimator
	tuning     tonal.Tuning

	// lag band for the last sample rate seen
	bandRate float32
	band     stats.LagBand

	logger logging.Logger
}

// New creates a detector. A nil config selects DefaultDetectorConfig.
func New(cfg *config.DetectorConfig) (*Detector, error) {
	if cfg == nil {
		cfg = config.DefaultDetectorConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := *cfg

	logger := logging.WithFields(logging.Fields{
		"component": "pitch_detector",
	})
	if level, ok := logging.ParseLevel(c.LogLevel); ok {
		logger.SetLevel(level)
	}

	d := &Detector{
		config:     &c,
		window:     common.NewSampleWindow(c.SampleWindowSize),
		work:       make([]float32, c.SampleWindowSize),
		autocorr:   stats.NewAutocorrelator(c.SampleWindowSize, c.SilenceRMS, c.MinConfidence),
		correlator: stats.NewCorrelator(c.SampleWindowSize),
		estimator:  tonal.NewEstimator(c.MinFrequency, c.MaxFrequency),
		tuning:     tonal.Tuning{Reference: c.ReferencePitch},
		logger:     logger,
	}

	logger.Debug("Pitch detector created", logging.Fields{
		"window_size":     c.SampleWindowSize,
		"min_frequency":   c.MinFrequency,
		"max_frequency":   c.MaxFrequency,
		"min_confidence":  c.MinConfidence,
		"reference_pitch": c.ReferencePitch,
	})
	return d, nil
}

// Config returns a copy of the detector's configuration.
func (d *Detector) Config() config.DetectorConfig {
	return *d.config
}

// WindowSize returns the number of samples Detect expects.
func (d *Detector) WindowSize() int {
	return d.window.Len()
}

// Tuning returns the tuning pitches are named against.
func (d *Detector) Tuning() tonal.Tuning {
	return d.tuning
}

// Detect analyses one window of exactly WindowSize samples taken at
// sampleRate Hz. samples is copied and never retained or modified.
//
// An error is returned only for invalid input. A window without a usable
// pitch yields an Unlocked result and a nil error.
func (d *Detector) Detect(samples []float32, sampleRate float32) (Result, error) {
	if err := d.prepare(sampleRate); err != nil {
		return Result{}, err
	}
	if err := common.CheckWindow(samples, d.window.Len()); err != nil {
		return Result{}, err
	}
	return d.analyze(samples, sampleRate), nil
}

// Push appends a chunk of samples to the detector's ring buffer, for hosts
// that deliver audio in blocks smaller than the window. Only DetectLatest
// reads the ring.
func (d *Detector) Push(chunk []float32) error {
	return d.window.Write(chunk)
}

// DetectLatest analyses the most recent WindowSize pushed samples. Until the
// ring has filled the result is Unlocked with ReasonBuffering.
func (d *Detector) DetectLatest(sampleRate float32) (Result, error) {
	if err := d.prepare(sampleRate); err != nil {
		return Result{}, err
	}
	if !d.window.Filled() {
		return unlocked(ReasonBuffering), nil
	}
	return d.analyze(d.window.Snapshot(), sampleRate), nil
}

// Reset discards buffered samples.
func (d *Detector) Reset() {
	d.window.Reset()
}

// Correlation overwrites buf with the raw autocorrelation of the window it
// holds, r(τ) for τ = 0 … WindowSize-1, after the same preprocessing Detect
// applies. It is meant for visualisation and is not used for detection.
func (d *Detector) Correlation(buf []float32, sampleRate float32) error {
	if err := validSampleRate(sampleRate); err != nil {
		return err
	}
	if err := common.CheckWindow(buf, d.window.Len()); err != nil {
		return err
	}

	if d.config.RemoveDCOffset {
		filters.RemoveMean(buf)
	}
	return d.correlator.Correlate(buf)
}

// prepare validates the sample rate and refreshes the cached lag band.
// It runs on every frame and must not log or allocate.
func (d *Detector) prepare(sampleRate float32) error {
	if err := validSampleRate(sampleRate); err != nil {
		return err
	}
	if sampleRate == d.bandRate {
		return nil
	}

	band, err := stats.LagBandFor(sampleRate, d.config.MinFrequency, d.config.MaxFrequency, d.window.Len())
	if err != nil {
		return err
	}
	d.bandRate, d.band = sampleRate, band
	return nil
}

// analyze runs the pipeline on a window that has passed validation.
func (d *Detector) analyze(window []float32, sampleRate float32) Result {
	x := d.work
	copy(x, window)
	if d.config.RemoveDCOffset {
		filters.RemoveMean(x)
	}

	peak := d.autocorr.Analyze(x, d.band)
	switch peak.Verdict {
	case stats.PeakFound:
	case stats.PeakSilence:
		return unlocked(ReasonSilence)
	case stats.PeakAperiodic:
		return unlocked(ReasonAperiodic)
	case stats.PeakLowConfidence:
		return unlocked(ReasonLowConfidence)
	default:
		return unlocked(ReasonOutOfRange)
	}

	hz, ok := d.estimator.Estimate(peak.Period(), sampleRate)
	if !ok {
		return unlocked(ReasonOutOfRange)
	}
	pitch, cents, ok := d.tuning.Resolve(hz)
	if !ok {
		return unlocked(ReasonOutOfRange)
	}

	return Result{
		State:      Locked,
		Frequency:  hz,
		Pitch:      pitch,
		Cents:      cents,
		Confidence: peak.Value,
	}
}

func validSampleRate(sampleRate float32) error {
	if !(sampleRate > 0) || math32.IsInf(sampleRate, 1) {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}
	return nil
}
