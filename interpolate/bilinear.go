package interpolate

import (
	"github.com/nvr-ai/go-lam/common"
	"github.com/nvr-ai/go-lam/images"
)

// axisSample is the precomputed base index and fractional offset of one
// output coordinate.
type axisSample struct {
	base, next int
	frac       float64
}

// bilinearAxis maps every output coordinate to its 2-tap neighbourhood:
// x = (j+0.5)*in/out - 0.5, truncated toward zero, with the base clamped to
// in-2 so base+1 stays in range. A one-sample axis collapses both taps onto
// index 0.
func bilinearAxis(in, out int) []axisSample {
	scale := float64(in) / float64(out)
	samples := make([]axisSample, out)
	for j := range samples {
		x := (float64(j)+0.5)*scale - 0.5
		base := min(int(x), in-2)
		base = max(base, 0)
		next := min(base+1, in-1)
		samples[j] = axisSample{base: base, next: next, frac: x - float64(base)}
	}
	return samples
}

// Bilinear blends the four neighbours of each mapped output coordinate with
// area weights (1-dx)(1-dy), dx(1-dy), (1-dx)dy and dx*dy. Results stay in
// the float domain.
func Bilinear(img *images.Image, size Size, dev common.Device) (*images.Image, error) {
	dst, err := prepare("interpolate.Bilinear", img, size, dev)
	if err != nil {
		return nil, err
	}

	inW := img.Shape.Width
	outW := size.X
	rows := bilinearAxis(img.Shape.Height, size.Y)
	cols := bilinearAxis(inW, outW)

	err = forEachRow(dst, dev, func(p, i int) {
		src := img.Plane(p)
		ry := rows[i]
		top := src[ry.base*inW : (ry.base+1)*inW]
		bottom := src[ry.next*inW : (ry.next+1)*inW]
		dy := ry.frac
		out := dst.Plane(p)[i*outW : (i+1)*outW]
		for j, cx := range cols {
			dx := cx.frac
			a := float64(top[cx.base])
			b := float64(top[cx.next])
			c := float64(bottom[cx.base])
			d := float64(bottom[cx.next])
			out[j] = float32(a*(1-dx)*(1-dy) + b*dx*(1-dy) + c*(1-dx)*dy + d*dx*dy)
		}
	})
	if err != nil {
		return nil, err
	}
	return dst, nil
}
