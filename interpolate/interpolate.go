// Package interpolate - direct pixel-domain upscaling without weight tables.
//
// These are faster, simpler alternatives to resample.Resize for callers that
// do not need MATLAB-exact output. They share no state with the resample
// package.
package interpolate

import (
	"image"

	"github.com/nvr-ai/go-lam/common"
	"github.com/nvr-ai/go-lam/images"
)

// Method names a direct interpolation algorithm.
type Method string

const (
	// MethodNearest is nearest-neighbour replication by an integer factor.
	MethodNearest Method = "nearest"
	// MethodBilinear blends the 2x2 neighbourhood.
	MethodBilinear Method = "bilinear"
	// MethodBicubic sums the 4x4 neighbourhood with the cubic kernel.
	MethodBicubic Method = "bicubic"
)

// Size is the target spatial extent.
type Size = image.Point

// Apply dispatches to the interpolator named by method. Size.X is the width
// and Size.Y the height.
func Apply(method Method, img *images.Image, size Size, dev common.Device) (*images.Image, error) {
	switch method {
	case MethodNearest:
		return Nearest(img, size, dev)
	case MethodBilinear:
		return Bilinear(img, size, dev)
	case MethodBicubic:
		return Bicubic(img, size, dev)
	default:
		return nil, common.NewUnsupportedConfigError("interpolate.Apply", "unknown method %q", method)
	}
}

// prepare validates the inputs and allocates the destination.
func prepare(op string, img *images.Image, size Size, dev common.Device) (*images.Image, error) {
	if err := img.Validate(op); err != nil {
		return nil, err
	}
	if err := dev.Validate(op); err != nil {
		return nil, err
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, common.NewShapeError(op, "invalid target size %dx%d", size.Y, size.X)
	}
	return img.WithSize(size.Y, size.X)
}

// forEachRow runs fn for every (plane, output row) pair of dst in parallel.
func forEachRow(dst *images.Image, dev common.Device, fn func(p, y int)) error {
	h := dst.Shape.Height
	return common.Parallel(dev, dst.Planes()*h, func(start, end int) error {
		for row := start; row < end; row++ {
			fn(row/h, row%h)
		}
		return nil
	})
}
