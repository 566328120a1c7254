package kernels

import (
	"github.com/nvr-ai/go-lam/common"
	"github.com/nvr-ai/go-lam/images"
)

// Options configures a spatial convolution.
type Options struct {
	// Edge selects how samples outside the image are read.
	Edge EdgeMode `json:"edge" yaml:"edge"`
	// Device bounds the parallelism of the call.
	Device common.Device `json:"device" yaml:"device"`
}

// Convolve applies psf to every plane of img as a true 2-D convolution (the
// kernel is flipped), which is the degradation model assumed by the
// deconvolver. With EdgeWrap the result equals the circular convolution
// computed through the PSF's OTF.
//
// Each output row is written by exactly one goroutine and each sum runs in a
// fixed order, so the result does not depend on Device.Workers.
//
// Arguments:
//   - img: The source image. It is not modified.
//   - psf: The kernel; one plane or one plane per channel.
//   - opt: Edge mode and device.
//
// Returns:
//   - *images.Image: The blurred image with the same shape and batch presence.
//   - error: A *common.ShapeError for mismatched inputs.
func Convolve(img *images.Image, psf PSF, opt Options) (*images.Image, error) {
	const op = "kernels.Convolve"
	if err := img.Validate(op); err != nil {
		return nil, err
	}
	if err := psf.Validate(op); err != nil {
		return nil, err
	}
	if err := psf.CheckChannels(op, img.Shape.Channels); err != nil {
		return nil, err
	}
	if err := opt.Device.Validate(op); err != nil {
		return nil, err
	}

	s := img.Shape
	dst, err := img.WithSize(s.Height, s.Width)
	if err != nil {
		return nil, err
	}

	r := psf.Size / 2
	rows := img.Planes() * s.Height
	err = common.Parallel(opt.Device, rows, func(start, end int) error {
		for row := start; row < end; row++ {
			p, y := row/s.Height, row%s.Height
			src := img.Plane(p)
			out := dst.Plane(p)
			k := psf.Plane(p % s.Channels)
			for x := 0; x < s.Width; x++ {
				var sum float64
				for i := 0; i < psf.Size; i++ {
					sy := MapCoord(y-(i-r), s.Height, opt.Edge)
					srcRow := src[sy*s.Width : (sy+1)*s.Width]
					kRow := k[i*psf.Size : (i+1)*psf.Size]
					for j, w := range kRow {
						if w == 0 {
							continue
						}
						sum += w * float64(srcRow[MapCoord(x-(j-r), s.Width, opt.Edge)])
					}
				}
				out[y*s.Width+x] = float32(sum)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dst, nil
}
