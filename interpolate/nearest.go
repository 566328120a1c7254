package interpolate

import (
	"math"

	"github.com/nvr-ai/go-lam/common"
	"github.com/nvr-ai/go-lam/images"
)

// EnlargeFactor returns the integer replication factor used by Nearest:
// round(sqrt(area ratio)), where the ratio is output/input area when the
// output is taller than the input and input/output area otherwise. The
// factor is at least 1.
func EnlargeFactor(inH, inW, outH, outW int) int {
	in := float64(inH * inW)
	out := float64(outH * outW)
	ratio := in / out
	if outH > inH {
		ratio = out / in
	}
	return max(1, int(math.Round(math.Sqrt(ratio))))
}

// Nearest maps output pixel (i, j) to input pixel
// (floor(i/k), floor(j/k)) with k = EnlargeFactor. The same division is used
// when shrinking, so a shrink keeps the top-left block of the input rather
// than subsampling it. Indices past the input edge (possible when k rounds
// below the true ratio) are clamped to the last row or column.
//
// @example
// out, err := Nearest(img, image.Pt(64, 64), common.CPU(0))
func Nearest(img *images.Image, size Size, dev common.Device) (*images.Image, error) {
	dst, err := prepare("interpolate.Nearest", img, size, dev)
	if err != nil {
		return nil, err
	}

	inH, inW := img.Shape.Height, img.Shape.Width
	outW := size.X
	k := EnlargeFactor(inH, inW, size.Y, size.X)

	cols := make([]int, outW)
	for j := range cols {
		cols[j] = min(j/k, inW-1)
	}

	err = forEachRow(dst, dev, func(p, i int) {
		srcRow := min(i/k, inH-1) * inW
		src := img.Plane(p)[srcRow : srcRow+inW]
		out := dst.Plane(p)[i*outW : (i+1)*outW]
		for j, c := range cols {
			out[j] = src[c]
		}
	})
	if err != nil {
		return nil, err
	}
	return dst, nil
}
