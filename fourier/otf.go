package fourier

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-lam/common"
	"github.com/nvr-ai/go-lam/images/kernels"
)

// PSFToOTF converts every channel of psf into an H x W optical transfer
// function.
//
// Each kernel plane is placed in a zero H x W array with a circular shift
// that puts its centre sample (index side/2 on both axes) at the origin: the
// bottom-right quadrant of the kernel lands in the top-left corner, the
// bottom-left quadrant in the top-right corner and so on. The forward 2-D DFT
// of that array is the OTF.
//
// Arguments:
//   - psf: The kernel. It is not modified.
//   - height: Target height, at least the kernel side.
//   - width: Target width, at least the kernel side.
//
// Returns:
//   - []Spectrum: One OTF per kernel channel.
//   - error: *common.ShapeError for bad geometry, *common.NonFiniteError
//     (stage "otf") if the transform contains NaN or Inf.
//
// @example
// otfs, err := fourier.PSFToOTF(blur, img.Shape.Height, img.Shape.Width)
func PSFToOTF(psf kernels.PSF, height, width int) ([]Spectrum, error) {
	const op = "fourier.PSFToOTF"
	if err := psf.Validate(op); err != nil {
		return nil, err
	}
	if height <= 0 || width <= 0 {
		return nil, common.NewShapeError(op, "invalid target size %dx%d", height, width)
	}
	if psf.Size > height || psf.Size > width {
		return nil, common.NewShapeError(op, "kernel side %d exceeds target %dx%d", psf.Size, height, width)
	}

	otfs := make([]Spectrum, psf.Channels())
	for c, k := range psf.Weights {
		otf, err := FFT2(circularShift(k, psf.Size, height, width), height, width)
		if err != nil {
			return nil, err
		}
		if err := otf.CheckFinite(op, "otf"); err != nil {
			return nil, errors.Wrapf(err, "channel %d", c)
		}
		otfs[c] = otf
	}
	return otfs, nil
}

// circularShift pads a side x side kernel to height x width with its centre
// at (0, 0); offsets left of or above the centre wrap to the far edge.
func circularShift(k []float64, side, height, width int) []float64 {
	out := make([]float64, height*width)
	r := side / 2
	for ky := 0; ky < side; ky++ {
		y := (ky - r + height) % height
		for kx := 0; kx < side; kx++ {
			x := (kx - r + width) % width
			out[y*width+x] = k[ky*side+kx]
		}
	}
	return out
}
