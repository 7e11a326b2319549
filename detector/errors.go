package detector

import (
	"errors"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/RyanBlaney/sonido-tuner/algorithms/stats"
)

// Invalid input. Use errors.Is to test for them.
var (
	ErrEmptyWindow       = common.ErrEmptyWindow
	ErrWindowSize        = common.ErrWindowSize
	ErrNonFiniteSample   = common.ErrNonFiniteSample
	ErrInvalidSampleRate = errors.New("sample rate must be positive and finite")
	ErrNoLagBand         = stats.ErrNoLagBand
)
