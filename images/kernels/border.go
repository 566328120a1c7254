package kernels

import (
	"github.com/nvr-ai/go-lam/common"
)

// EdgeMode defines how sampling behaves outside the image bounds.
//   - Clamp: repeats edge pixels.
//   - Mirror: reflects coordinates with the edge sample repeated
//     (... 1 0 | 0 1 2 ... n-1 | n-1 n-2 ...), i.e. symmetric padding.
//   - Wrap: tiles the image, which makes spatial filtering circular.
type EdgeMode int

const (
	EdgeClamp EdgeMode = iota
	EdgeMirror
	EdgeWrap
)

// String returns the configuration name of the edge mode.
func (m EdgeMode) String() string {
	switch m {
	case EdgeClamp:
		return "clamp"
	case EdgeMirror:
		return "mirror"
	case EdgeWrap:
		return "wrap"
	default:
		return "unknown"
	}
}

// ParseEdgeMode returns the edge mode named by s. The empty string selects
// EdgeMirror.
func ParseEdgeMode(s string) (EdgeMode, error) {
	switch s {
	case "clamp":
		return EdgeClamp, nil
	case "", "mirror":
		return EdgeMirror, nil
	case "wrap":
		return EdgeWrap, nil
	default:
		return 0, common.NewUnsupportedConfigError("kernels.ParseEdgeMode", "unknown edge mode %q", s)
	}
}

// MapCoord maps an index i to [0, n) according to edge mode.
// For Mirror: ... -2,-1,0,1,2, ... -> 1,0,0,1,2, ... which matches
// SymmetricIndex.
func MapCoord(i, n int, mode EdgeMode) int {
	switch mode {
	case EdgeMirror:
		return SymmetricIndex(i, n)
	case EdgeWrap:
		i %= n
		if i < 0 {
			i += n
		}
		return i
	default:
		if i < 0 {
			return 0
		}
		if i >= n {
			return n - 1
		}
		return i
	}
}

// SymmetricIndex maps an index on a symmetrically extended axis of length n
// back into [0, n). Reflection repeats the edge sample and has period 2n, so
// any integer (including pads wider than n) lands in bounds.
func SymmetricIndex(i, n int) int {
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}

// SymmetricIndices returns, for every position of an axis of length n padded
// by start and end samples, the source index it reads from. Padding a
// sequence is then out[i] = src[idx[i]].
func SymmetricIndices(n, start, end int) []int {
	idx := make([]int, n+start+end)
	for i := range idx {
		idx[i] = SymmetricIndex(i-start, n)
	}
	return idx
}

// PadSymmetric returns src extended by start samples before and end samples
// after, mirroring the border: the first start outputs are src[start-1], ...,
// src[0] and the last end outputs are src[L-1], ..., src[L-end]. The middle L
// outputs are src unchanged. Pads longer than src keep reflecting.
//
// @example
// PadSymmetric([]float32{1, 2, 3}, 2, 1) // [2 1 1 2 3 3]
func PadSymmetric(src []float32, start, end int) []float32 {
	return PadSymmetricInto(nil, src, start, end)
}

// PadSymmetricInto is PadSymmetric writing into dst, which is reused when it
// has enough capacity.
func PadSymmetricInto(dst, src []float32, start, end int) []float32 {
	n := len(src) + start + end
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	if len(src) == 0 {
		return dst
	}
	for i := range dst {
		dst[i] = src[SymmetricIndex(i-start, len(src))]
	}
	return dst
}
