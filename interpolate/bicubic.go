package interpolate

import (
	"math"

	"github.com/chewxy/math32"

	"github.com/nvr-ai/go-lam/common"
	"github.com/nvr-ai/go-lam/images"
	"github.com/nvr-ai/go-lam/images/kernels"
)

// bicubicAxis holds the floor index and the four kernel weights for offsets
// n = -1..2 of one output coordinate.
type bicubicAxis struct {
	base    int
	weights [4]float64
}

func planBicubicAxis(in, out int) []bicubicAxis {
	scale := float64(in) / float64(out)
	plan := make([]bicubicAxis, out)
	for j := range plan {
		xm := (float64(j)+0.5)*scale - 0.5
		xi := math.Floor(xm)
		u := xm - xi
		plan[j].base = int(xi)
		for n := -1; n <= 2; n++ {
			plan[j].weights[n+1] = kernels.Cubic(u - float64(n))
		}
	}
	return plan
}

// Bicubic sums the 4x4 neighbourhood (offsets -1..2 on each axis) of every
// mapped output coordinate, weighting each neighbour by
// Cubic(u-n) * Cubic(v-m). Neighbours outside the image are skipped rather
// than padded, so border pixels lose some weight; this truncation is
// intentional. Results are clipped to [0, 1].
func Bicubic(img *images.Image, size Size, dev common.Device) (*images.Image, error) {
	dst, err := prepare("interpolate.Bicubic", img, size, dev)
	if err != nil {
		return nil, err
	}

	inH, inW := img.Shape.Height, img.Shape.Width
	outW := size.X
	rows := planBicubicAxis(inH, size.Y)
	cols := planBicubicAxis(inW, outW)

	err = forEachRow(dst, dev, func(p, i int) {
		src := img.Plane(p)
		ry := rows[i]
		out := dst.Plane(p)[i*outW : (i+1)*outW]
		for j, cx := range cols {
			var sum float64
			for n := 0; n < 4; n++ {
				y := ry.base + n - 1
				if y < 0 || y >= inH {
					continue
				}
				row := src[y*inW : (y+1)*inW]
				for m := 0; m < 4; m++ {
					x := cx.base + m - 1
					if x < 0 || x >= inW {
						continue
					}
					sum += float64(row[x]) * ry.weights[n] * cx.weights[m]
				}
			}
			out[j] = math32.Max(0, math32.Min(1, float32(sum)))
		}
	})
	if err != nil {
		return nil, err
	}
	return dst, nil
}
