package resample

import (
	"math"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-lam/common"
	"github.com/nvr-ai/go-lam/images"
	"github.com/nvr-ai/go-lam/images/kernels"
)

// Options configures a separable resize.
type Options struct {
	// Antialias widens the kernel when downsampling (MATLAB's default).
	Antialias bool `json:"antialias" yaml:"antialias"`
	// Kernel is the kernel family. Empty means kernels.CubicFamily.
	Kernel kernels.Family `json:"kernel" yaml:"kernel"`
	// Device bounds the parallelism of the call.
	Device common.Device `json:"device" yaml:"device"`
}

func (o Options) family() kernels.Family {
	if o.Kernel == "" {
		return kernels.CubicFamily
	}
	return o.Kernel
}

// OutputSize returns ceil(in*scale), the extent Resize produces for an axis.
func OutputSize(in int, scale float64) int {
	return int(math.Ceil(float64(in) * scale))
}

// Resize scales img by one uniform factor on both spatial axes, reproducing
// MATLAB's imresize(img, scale, 'bicubic').
//
// Output extents are ceil(H*scale) and ceil(W*scale). Channels and batch
// presence are preserved and samples are never rounded, so [0, 1] input stays
// in the float domain (bicubic overshoot is not clipped).
//
// Arguments:
//   - img: The source image.
//   - scale: The resize factor. Must be > 0.
//   - opt: Antialiasing, kernel family and device.
//
// Returns:
//   - *images.Image: The resized image.
//   - error: A typed error from the common package.
//
// @example
// lr, err := resample.Resize(hr, 0.25, resample.Options{Antialias: true})
func Resize(img *images.Image, scale float64, opt Options) (*images.Image, error) {
	const op = "resample.Resize"
	if err := img.Validate(op); err != nil {
		return nil, err
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, common.NewUnsupportedConfigError(op, "scale must be positive and finite, got %v", scale)
	}
	outH := OutputSize(img.Shape.Height, scale)
	outW := OutputSize(img.Shape.Width, scale)
	return resize(img, outH, outW, scale, scale, opt)
}

// ResizeTo resizes img to exactly height x width, planning each axis with its
// own factor out/in.
func ResizeTo(img *images.Image, height, width int, opt Options) (*images.Image, error) {
	const op = "resample.ResizeTo"
	if err := img.Validate(op); err != nil {
		return nil, err
	}
	if height <= 0 || width <= 0 {
		return nil, common.NewShapeError(op, "invalid target size %dx%d", height, width)
	}
	scaleH := float64(height) / float64(img.Shape.Height)
	scaleW := float64(width) / float64(img.Shape.Width)
	return resize(img, height, width, scaleH, scaleW, opt)
}

func resize(img *images.Image, outH, outW int, scaleH, scaleW float64, opt Options) (*images.Image, error) {
	if err := opt.Device.Validate("resample.Resize"); err != nil {
		return nil, err
	}
	if outH <= 0 || outW <= 0 {
		return nil, common.NewShapeError("resample.Resize", "output size %dx%d is empty", outH, outW)
	}

	s := img.Shape
	tableH, err := PlanWeights(s.Height, outH, scaleH, opt.family(), opt.Antialias)
	if err != nil {
		return nil, errors.Wrap(err, "planning height weights")
	}
	tableW, err := PlanWeights(s.Width, outW, scaleW, opt.family(), opt.Antialias)
	if err != nil {
		return nil, errors.Wrap(err, "planning width weights")
	}

	tmp, err := img.WithSize(outH, s.Width)
	if err != nil {
		return nil, err
	}
	if err := resizeHeight(img, tmp, tableH, opt.Device); err != nil {
		return nil, err
	}

	dst, err := img.WithSize(outH, outW)
	if err != nil {
		return nil, err
	}
	if err := resizeWidth(tmp, dst, tableW, opt.Device); err != nil {
		return nil, err
	}
	return dst, nil
}

// resizeHeight writes dst[p][i][x] = sum_t w[i][t] * padded[p][idx[i][t]][x],
// where padded is src mirrored along the height axis.
func resizeHeight(src, dst *images.Image, table *WeightTable, dev common.Device) error {
	inW := src.Shape.Width
	outH := dst.Shape.Height
	// rowOf maps padded rows to source rows so the pad is never materialized.
	rowOf := kernels.SymmetricIndices(table.InLength, table.SymStart, table.SymEnd)

	return common.Parallel(dev, src.Planes()*outH, func(start, end int) error {
		acc := make([]float64, inW)
		for row := start; row < end; row++ {
			p, i := row/outH, row%outH
			in := src.Plane(p)
			for x := range acc {
				acc[x] = 0
			}
			for t, w := range table.Weights[i] {
				srcRow := rowOf[table.Indices[i][t]] * inW
				for x, v := range in[srcRow : srcRow+inW] {
					acc[x] += w * float64(v)
				}
			}
			out := dst.Plane(p)[i*inW : (i+1)*inW]
			for x, v := range acc {
				out[x] = float32(v)
			}
		}
		return nil
	})
}

// resizeWidth pads each row of src symmetrically and writes
// dst[p][y][j] = sum_t w[j][t] * paddedRow[idx[j][t]].
func resizeWidth(src, dst *images.Image, table *WeightTable, dev common.Device) error {
	inW := src.Shape.Width
	outW := dst.Shape.Width
	height := src.Shape.Height

	return common.Parallel(dev, src.Planes()*height, func(start, end int) error {
		var padded []float32
		for row := start; row < end; row++ {
			p, y := row/height, row%height
			padded = kernels.PadSymmetricInto(padded, src.Plane(p)[y*inW:(y+1)*inW], table.SymStart, table.SymEnd)
			out := dst.Plane(p)[y*outW : (y+1)*outW]
			for j := range out {
				var sum float64
				for t, w := range table.Weights[j] {
					sum += w * float64(padded[table.Indices[j][t]])
				}
				out[j] = float32(sum)
			}
		}
		return nil
	})
}
