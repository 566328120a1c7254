// Package fourier - 2-D discrete Fourier transforms over image planes and the
// PSF to OTF conversion used by the deconvolver.
package fourier

import (
	"math"

	"github.com/nvr-ai/go-lam/common"
)

// Spectrum is an immutable complex H x W array stored as separate real and
// imaginary planes. Values are only ever set while a Spectrum is being built,
// so no caller can observe a half-written array.
type Spectrum struct {
	height, width int
	re, im        []float64
}

// NewSpectrum copies re and im into a new Spectrum.
func NewSpectrum(height, width int, re, im []float64) (Spectrum, error) {
	n := height * width
	if height <= 0 || width <= 0 || len(re) != n || len(im) != n {
		return Spectrum{}, common.NewShapeError("fourier.NewSpectrum",
			"planes of %d and %d values do not fit %dx%d", len(re), len(im), height, width)
	}
	s := Spectrum{height: height, width: width, re: make([]float64, n), im: make([]float64, n)}
	copy(s.re, re)
	copy(s.im, im)
	return s, nil
}

// Build creates a Spectrum whose element i is fn(i). Every element is
// produced before the Spectrum is returned.
func Build(height, width int, fn func(i int) (re, im float64)) Spectrum {
	n := height * width
	s := Spectrum{height: height, width: width, re: make([]float64, n), im: make([]float64, n)}
	for i := 0; i < n; i++ {
		s.re[i], s.im[i] = fn(i)
	}
	return s
}

// Height returns the number of rows.
func (s Spectrum) Height() int { return s.height }

// Width returns the number of columns.
func (s Spectrum) Width() int { return s.width }

// Len returns Height*Width.
func (s Spectrum) Len() int { return len(s.re) }

// Real returns the real part of element i.
func (s Spectrum) Real(i int) float64 { return s.re[i] }

// Imag returns the imaginary part of element i.
func (s Spectrum) Imag(i int) float64 { return s.im[i] }

// At returns element (y, x) as a complex number.
func (s Spectrum) At(y, x int) complex128 {
	i := y*s.width + x
	return complex(s.re[i], s.im[i])
}

// RealPlane returns a copy of the real plane.
func (s Spectrum) RealPlane() []float64 {
	out := make([]float64, len(s.re))
	copy(out, s.re)
	return out
}

// ImagPlane returns a copy of the imaginary plane.
func (s Spectrum) ImagPlane() []float64 {
	out := make([]float64, len(s.im))
	copy(out, s.im)
	return out
}

// Magnitude returns |z| for every element.
func (s Spectrum) Magnitude() []float64 {
	out := make([]float64, len(s.re))
	for i := range out {
		out[i] = math.Hypot(s.re[i], s.im[i])
	}
	return out
}

// SameSize reports whether s and o have identical extents.
func (s Spectrum) SameSize(o Spectrum) bool {
	return s.height == o.height && s.width == o.width
}

// Multiply returns the elementwise complex product s*o:
// Re = Re(s)Re(o) - Im(s)Im(o), Im = Re(s)Im(o) + Im(s)Re(o).
func (s Spectrum) Multiply(o Spectrum) (Spectrum, error) {
	if !s.SameSize(o) {
		return Spectrum{}, common.NewShapeError("fourier.Multiply",
			"%dx%d and %dx%d differ", s.height, s.width, o.height, o.width)
	}
	return Build(s.height, s.width, func(i int) (float64, float64) {
		return s.re[i]*o.re[i] - s.im[i]*o.im[i], s.re[i]*o.im[i] + s.im[i]*o.re[i]
	}), nil
}

// CheckFinite returns a *common.NonFiniteError naming stage if any real or
// imaginary part is NaN or Inf.
func (s Spectrum) CheckFinite(op, stage string) error {
	if i := FirstNonFinite(s.re); i >= 0 {
		return common.NewNonFiniteError(op, stage, i)
	}
	if i := FirstNonFinite(s.im); i >= 0 {
		return common.NewNonFiniteError(op, stage, i)
	}
	return nil
}

// FirstNonFinite returns the index of the first NaN or Inf in v, or -1.
func FirstNonFinite(v []float64) int {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return i
		}
	}
	return -1
}
