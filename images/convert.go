package images

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"

	"github.com/nvr-ai/go-lam/common"
)

// ColorMode selects the channel layout produced when importing pixels.
type ColorMode int

const (
	// ColorModeRGB produces three channels in R, G, B order.
	ColorModeRGB ColorMode = iota
	// ColorModeGrayscale produces a single luminance channel.
	ColorModeGrayscale
	// ColorModeUnchanged keeps the stored layout: one channel for gray
	// sources, RGBA when the source carries transparency, RGB otherwise.
	ColorModeUnchanged
)

// ParseColorMode maps "color" (or ""), "grayscale" and "unchanged" to a
// ColorMode.
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "", "color":
		return ColorModeRGB, nil
	case "grayscale":
		return ColorModeGrayscale, nil
	case "unchanged":
		return ColorModeUnchanged, nil
	default:
		return 0, common.NewUnsupportedConfigError("images.ParseColorMode", "unknown colour mode %q", s)
	}
}

// channelsFor resolves the channel count FromImage produces for src.
func channelsFor(src image.Image, mode ColorMode) int {
	switch mode {
	case ColorModeGrayscale:
		return 1
	case ColorModeUnchanged:
		switch src.(type) {
		case *image.Gray, *image.Gray16:
			return 1
		}
		if o, ok := src.(interface{ Opaque() bool }); ok && !o.Opaque() {
			return 4
		}
		return 3
	default:
		return 3
	}
}

// FromImage converts a Go image into an unbatched float image in [0, 1].
//
// Arguments:
//   - src: The source image. Non-zero bounds are honoured.
//   - mode: ColorModeRGB for 3 channels, ColorModeGrayscale for 1,
//     ColorModeUnchanged for the source's own layout.
//
// Returns:
//   - *Image: The (C, H, W) image.
//   - error: A *common.ShapeError if src is empty.
func FromImage(src image.Image, mode ColorMode) (*Image, error) {
	b := src.Bounds()
	channels := channelsFor(src, mode)
	img, err := New(Shape{Batch: 1, Channels: channels, Height: b.Dy(), Width: b.Dx()}, false)
	if err != nil {
		return nil, err
	}

	plane := b.Dx() * b.Dy()
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			switch channels {
			case 1:
				g := color.GrayModel.Convert(src.At(x, y)).(color.Gray)
				img.Data[i] = float32(g.Y) / 255.0
			case 4:
				c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
				img.Data[i] = float32(c.R) / 255.0
				img.Data[plane+i] = float32(c.G) / 255.0
				img.Data[2*plane+i] = float32(c.B) / 255.0
				img.Data[3*plane+i] = float32(c.A) / 255.0
			default:
				r, g, bl, _ := src.At(x, y).RGBA()
				img.Data[i] = float32(r>>8) / 255.0
				img.Data[plane+i] = float32(g>>8) / 255.0
				img.Data[2*plane+i] = float32(bl>>8) / 255.0
			}
			i++
		}
	}
	return img, nil
}

// ToImage renders batch item b as an 8-bit Go image. One channel produces
// *image.Gray, three produce *image.RGBA with opaque alpha and four produce
// *image.NRGBA. Samples are clamped to [0, 1] and rounded.
func ToImage(img *Image, b int) (image.Image, error) {
	if err := img.Validate("images.ToImage"); err != nil {
		return nil, err
	}
	if b < 0 || b >= img.Shape.Batch {
		return nil, common.NewShapeError("images.ToImage", "batch index %d out of range [0, %d)", b, img.Shape.Batch)
	}

	s := img.Shape
	plane := s.Height * s.Width
	base := b * s.Channels * plane
	rect := image.Rect(0, 0, s.Width, s.Height)

	switch s.Channels {
	case 1:
		dst := image.NewGray(rect)
		for i := 0; i < plane; i++ {
			dst.Pix[(i/s.Width)*dst.Stride+i%s.Width] = quantize(img.Data[base+i], 0, 1)
		}
		return dst, nil
	case 3:
		dst := image.NewRGBA(rect)
		for i := 0; i < plane; i++ {
			off := (i/s.Width)*dst.Stride + (i%s.Width)*4
			dst.Pix[off+0] = quantize(img.Data[base+i], 0, 1)
			dst.Pix[off+1] = quantize(img.Data[base+plane+i], 0, 1)
			dst.Pix[off+2] = quantize(img.Data[base+2*plane+i], 0, 1)
			dst.Pix[off+3] = 255
		}
		return dst, nil
	case 4:
		dst := image.NewNRGBA(rect)
		for i := 0; i < plane; i++ {
			off := (i/s.Width)*dst.Stride + (i%s.Width)*4
			for c := 0; c < 4; c++ {
				dst.Pix[off+c] = quantize(img.Data[base+c*plane+i], 0, 1)
			}
		}
		return dst, nil
	default:
		return nil, common.NewShapeError("images.ToImage", "cannot render %d channels", s.Channels)
	}
}

// quantize clamps v to [lo, hi], maps it to [0, 1] and rounds to 8 bits.
func quantize(v, lo, hi float32) uint8 {
	v = math32.Max(lo, math32.Min(hi, v))
	// Samples are non-negative after the clamp, so +0.5 rounds to nearest.
	return uint8((v-lo)/(hi-lo)*255.0 + 0.5)
}
