// Package resample - MATLAB-compatible separable bicubic resizing.
//
// The implementation follows imresize: per axis a weight/index table is
// planned once, the axis is symmetrically padded, and every output sample is
// the normalized weighted sum of a short run of padded input samples. Height
// is processed first, then width.
package resample

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/nvr-ai/go-lam/common"
	"github.com/nvr-ai/go-lam/images/kernels"
)

// maxTaps bounds the per-row support so a vanishing scale cannot ask for an
// unbounded allocation.
const maxTaps = 1 << 16

// WeightTable lists, for every output sample of one axis, the padded input
// indices that contribute to it and their normalized weights.
type WeightTable struct {
	// InLength is the unpadded input extent.
	InLength int
	// OutLength is the output extent (number of rows in the table).
	OutLength int
	// Indices[i][t] is a zero-based index into the padded axis.
	Indices [][]int
	// Weights[i][t] is the weight of Indices[i][t]; each row sums to 1.
	Weights [][]float64
	// SymStart is the number of mirrored samples prepended to the axis.
	SymStart int
	// SymEnd is the number of mirrored samples appended to the axis.
	SymEnd int
}

// Taps returns the number of contributing samples per output sample.
func (t *WeightTable) Taps() int {
	if len(t.Weights) == 0 {
		return 0
	}
	return len(t.Weights[0])
}

// PaddedLength returns the extent of the padded axis the indices address.
func (t *WeightTable) PaddedLength() int {
	return t.InLength + t.SymStart + t.SymEnd
}

// PlanWeights builds the weight/index table for resizing one axis.
//
// Output sample i (1-based) maps to input coordinate
// u = i/scale + 0.5*(1 - 1/scale). The P = ceil(width)+2 input samples
// starting at floor(u - width/2) are weighted by the cubic kernel, where width
// is 4, or 4/scale when downsampling with antialiasing (in which case the
// weight is scale*cubic(scale*d)). Rows are normalized to sum to 1. If the
// first column is zero in every row it is dropped, and likewise the last
// column; at most one column is dropped per end. Finally the symmetric padding
// lengths are computed and indices are shifted to address the padded axis
// from zero.
//
// Arguments:
//   - inLength: Input extent. Must be positive.
//   - outLength: Output extent. 0 yields an empty table.
//   - scale: Resize factor as used by the caller (not necessarily out/in).
//   - family: Kernel family; only kernels.CubicFamily is supported.
//   - antialias: Widen the kernel when downsampling.
//
// Returns:
//   - *WeightTable: The planned table.
//   - error: *common.ShapeError, *common.UnsupportedConfigError or
//     *common.NonFiniteError.
func PlanWeights(inLength, outLength int, scale float64, family kernels.Family, antialias bool) (*WeightTable, error) {
	const op = "resample.PlanWeights"
	if family != kernels.CubicFamily {
		return nil, common.NewUnsupportedConfigError(op, "kernel family %q is not supported", family)
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, common.NewUnsupportedConfigError(op, "scale must be positive and finite, got %v", scale)
	}
	if inLength <= 0 {
		return nil, common.NewShapeError(op, "input length must be positive, got %d", inLength)
	}
	if outLength < 0 {
		return nil, common.NewShapeError(op, "output length must be >= 0, got %d", outLength)
	}

	table := &WeightTable{InLength: inLength, OutLength: outLength}
	if outLength == 0 {
		return table, nil
	}

	width := float64(kernels.CubicSupport)
	widen := scale < 1 && antialias
	if widen {
		width /= scale
	}
	taps := int(math.Ceil(width)) + 2
	if taps > maxTaps {
		return nil, common.NewUnsupportedConfigError(op, "scale %v needs %d taps per sample (max %d)", scale, taps, maxTaps)
	}

	indices := make([][]int, outLength)
	weights := make([][]float64, outLength)
	distances := make([]float64, taps)
	for i := 0; i < outLength; i++ {
		u := float64(i+1)/scale + 0.5*(1-1/scale)
		left := int(math.Floor(u - width/2))

		idx := make([]int, taps)
		for p := range idx {
			idx[p] = left + p
			distances[p] = u - float64(idx[p])
			if widen {
				distances[p] *= scale
			}
		}
		w := kernels.CubicSlice(make([]float64, taps), distances)
		if widen {
			floats.Scale(scale, w)
		}

		sum := floats.Sum(w)
		if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
			return nil, common.NewNonFiniteError(op, "normalization", i)
		}
		for p := range w {
			w[p] /= sum
		}

		indices[i] = idx
		weights[i] = w
	}

	// Both ends are judged on the untrimmed table.
	first, last := 0, taps
	if columnIsZero(weights, 0) {
		first++
	}
	if columnIsZero(weights, taps-1) {
		last--
	}
	for i := range weights {
		weights[i] = weights[i][first:last]
		indices[i] = indices[i][first:last]
	}

	minIdx, maxIdx := indices[0][0], indices[0][0]
	for _, row := range indices {
		for _, v := range row {
			minIdx = min(minIdx, v)
			maxIdx = max(maxIdx, v)
		}
	}
	table.SymStart = max(0, 1-minIdx)
	table.SymEnd = max(0, maxIdx-inLength)

	shift := table.SymStart - 1
	for _, row := range indices {
		for p := range row {
			row[p] += shift
		}
	}

	table.Indices = indices
	table.Weights = weights
	return table, nil
}

// columnIsZero reports whether column c is zero in every row.
func columnIsZero(weights [][]float64, c int) bool {
	for _, row := range weights {
		if row[c] != 0 {
			return false
		}
	}
	return true
}
