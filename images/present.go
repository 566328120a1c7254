package images

import (
	"github.com/chewxy/math32"

	"github.com/nvr-ai/go-lam/common"
)

// ToUint8 converts batch item b into interleaved (H, W, C) 8-bit samples.
// Values are clamped to [lo, hi], normalized to [0, 1] and rounded, which is
// the presentation format used when results are handed to visualization.
func ToUint8(img *Image, b int, lo, hi float32) ([]uint8, error) {
	if err := img.Validate("images.ToUint8"); err != nil {
		return nil, err
	}
	if hi <= lo {
		return nil, common.NewUnsupportedConfigError("images.ToUint8", "empty range [%v, %v]", lo, hi)
	}
	if b < 0 || b >= img.Shape.Batch {
		return nil, common.NewShapeError("images.ToUint8", "batch index %d out of range [0, %d)", b, img.Shape.Batch)
	}

	hwc := img.ToHWC(b)
	out := make([]uint8, len(hwc))
	for i, v := range hwc {
		out[i] = quantize(v, lo, hi)
	}
	return out, nil
}

// Clamp limits every sample to [lo, hi] in place and returns img.
func Clamp(img *Image, lo, hi float32) *Image {
	for i, v := range img.Data {
		img.Data[i] = math32.Max(lo, math32.Min(hi, v))
	}
	return img
}

// CropBorder removes n pixels from each end of the height and width axes.
//
// Arguments:
//   - img: The source image.
//   - n: Border width. 0 returns img unchanged.
//
// Returns:
//   - *Image: The cropped copy.
//   - error: A *common.ShapeError if the crop would leave no pixels.
func CropBorder(img *Image, n int) (*Image, error) {
	if err := img.Validate("images.CropBorder"); err != nil {
		return nil, err
	}
	if n == 0 {
		return img, nil
	}
	s := img.Shape
	if n < 0 || 2*n >= s.Height || 2*n >= s.Width {
		return nil, common.NewShapeError("images.CropBorder", "cannot crop %d from %dx%d", n, s.Height, s.Width)
	}

	out, err := img.WithSize(s.Height-2*n, s.Width-2*n)
	if err != nil {
		return nil, err
	}
	ow := out.Shape.Width
	for p := 0; p < img.Planes(); p++ {
		src := img.Plane(p)
		dst := out.Plane(p)
		for y := 0; y < out.Shape.Height; y++ {
			copy(dst[y*ow:(y+1)*ow], src[(y+n)*s.Width+n:(y+n)*s.Width+n+ow])
		}
	}
	return out, nil
}

// FirstNonFinite returns the index of the first NaN or Inf sample, or -1.
func FirstNonFinite(data []float32) int {
	for i, v := range data {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return i
		}
	}
	return -1
}
