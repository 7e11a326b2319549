package stats

import (
	"fmt"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// Correlator computes the full-length raw autocorrelation of a window,
//
//	r(τ) = Σ x[i]·x[i+τ],  τ = 0 … n-1
//
// through the Wiener–Khinchin relation: the window is zero-padded to 2n,
// transformed, squared in magnitude and transformed back. Padding to 2n keeps
// the circular correlation from wrapping, so the result equals the direct sum.
//
// It backs the diagnostic correlation view and is not used for detection.
// All work buffers are allocated by NewCorrelator.
type Correlator struct {
	n     int
	fft   *fourier.FFT
	seq   []float64
	coeff []complex128
}

// NewCorrelator creates a correlator for windows of n samples.
func NewCorrelator(n int) *Correlator {
	size := 2 * max(n, 1)
	return &Correlator{
		n:     n,
		fft:   fourier.NewFFT(size),
		seq:   make([]float64, size),
		coeff: make([]complex128, size/2+1),
	}
}

// Len returns the window size the correlator was built for.
func (c *Correlator) Len() int {
	return c.n
}

// Correlate replaces buf with its raw autocorrelation curve.
func (c *Correlator) Correlate(buf []float32) error {
	if len(buf) == 0 {
		return common.ErrEmptyWindow
	}
	if len(buf) != c.n {
		return fmt.Errorf("%w: got %d samples, want %d", common.ErrWindowSize, len(buf), c.n)
	}

	for i, s := range buf {
		c.seq[i] = float64(s)
	}
	clear(c.seq[c.n:])

	c.fft.Coefficients(c.coeff, c.seq)
	for k, v := range c.coeff {
		c.coeff[k] = complex(real(v)*real(v)+imag(v)*imag(v), 0)
	}
	c.fft.Sequence(c.seq, c.coeff)

	// gonum's inverse is unnormalized
	floats.Scale(1/float64(len(c.seq)), c.seq)

	for i := range buf {
		buf[i] = float32(c.seq[i])
	}
	return nil
}

// NormalizeCurve divides a raw curve by its lag-0 value so that it lies in
// [-1, 1]. A curve with no energy is left untouched.
func NormalizeCurve(curve []float32) {
	if len(curve) == 0 || curve[0] <= 0 {
		return
	}
	blas32.Scal(1/curve[0], blas32.Vector{N: len(curve), Inc: 1, Data: curve})
}
