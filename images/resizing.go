package images

import (
	"image"
	"image/draw"

	"github.com/nfnt/resize"
	xdraw "golang.org/x/image/draw"

	"github.com/nvr-ai/go-lam/common"
)

// Thumbnail renders batch item b at the given size for previews.
//
// This goes through 8-bit presentation samples and a Lanczos3 filter, so it is
// not numerically comparable with the resamplers in this module and must never
// feed the analysis pipeline.
//
// Arguments:
//   - img: The image to preview.
//   - b: The batch item to render.
//   - width: The preview width in pixels.
//   - height: The preview height in pixels. 0 preserves the aspect ratio.
//
// Returns:
//   - image.Image: The resized preview.
//   - error: An error if the dimensions are invalid or img cannot be rendered.
func Thumbnail(img *Image, b int, width, height uint) (image.Image, error) {
	if width == 0 {
		return nil, common.NewShapeError("images.Thumbnail", "invalid dimensions: width=%d, height=%d", width, height)
	}
	rendered, err := ToImage(img, b)
	if err != nil {
		return nil, err
	}
	return resize.Resize(width, height, rendered, resize.Lanczos3), nil
}

// Montage scales every tile to the given height, keeping its aspect ratio,
// and lays the tiles out left to right on a black canvas. It is used to put a
// sharp image, its degraded version and the restoration side by side.
func Montage(tiles []image.Image, height int) (*image.RGBA, error) {
	if len(tiles) == 0 || height <= 0 {
		return nil, common.NewShapeError("images.Montage", "need tiles and a positive height, got %d tiles, height %d", len(tiles), height)
	}

	rects := make([]image.Rectangle, len(tiles))
	x := 0
	for i, t := range tiles {
		b := t.Bounds()
		if b.Empty() {
			return nil, common.NewShapeError("images.Montage", "tile %d is empty", i)
		}
		w := max(1, b.Dx()*height/b.Dy())
		rects[i] = image.Rect(x, 0, x+w, height)
		x += w
	}

	dst := image.NewRGBA(image.Rect(0, 0, x, height))
	draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)
	for i, t := range tiles {
		xdraw.CatmullRom.Scale(dst, rects[i], t, t.Bounds(), xdraw.Over, nil)
	}
	return dst, nil
}
