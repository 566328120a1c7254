// Package kernels - resampling kernels, border extension and point-spread
// functions shared by the resamplers and the deconvolver.
package kernels

import (
	"math"
)

// Family names a resampling kernel family. Only cubic convolution is
// implemented.
type Family string

const (
	// CubicFamily is Keys' cubic convolution with a = -0.5 (MATLAB "bicubic").
	CubicFamily Family = "cubic"
)

// CubicSupport is the full width of the cubic kernel in input samples.
const CubicSupport = 4

// cubicA is the Keys coefficient used by MATLAB's imresize.
const cubicA = -0.5

// Cubic evaluates the cubic convolution kernel at distance x.
//
//	|x| <= 1:     (a+2)|x|^3 - (a+3)|x|^2 + 1
//	1 < |x| < 2:  a|x|^3 - 5a|x|^2 + 8a|x| - 4a
//	otherwise:    0
//
// @example
// w := Cubic(0)   // 1
// w := Cubic(1.5) // -0.0625
func Cubic(x float64) float64 {
	ax := math.Abs(x)
	ax2 := ax * ax
	ax3 := ax2 * ax
	switch {
	case ax <= 1:
		return (cubicA+2)*ax3 - (cubicA+3)*ax2 + 1
	case ax < 2:
		return cubicA*ax3 - 5*cubicA*ax2 + 8*cubicA*ax - 4*cubicA
	default:
		return 0
	}
}

// CubicSlice evaluates Cubic over every element of xs into dst and returns
// dst. If dst is nil or too short a new slice is allocated. It shares Cubic's
// formula so the scalar and vector call sites cannot drift apart.
func CubicSlice(dst, xs []float64) []float64 {
	if len(dst) < len(xs) {
		dst = make([]float64, len(xs))
	}
	dst = dst[:len(xs)]
	for i, x := range xs {
		dst[i] = Cubic(x)
	}
	return dst
}
