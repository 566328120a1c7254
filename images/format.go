package images

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-lam/common"
)

// ImageFormat represents supported image formats
type ImageFormat string

const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatWebP is the WebP image format.
	FormatWebP ImageFormat = "webp"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (ImageFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".png":
		return FormatPNG, nil
	case ".webp":
		return FormatWebP, nil
	default:
		return "", errors.Errorf("unsupported image extension: %q", filepath.Ext(path))
	}
}

// Decode reads an encoded image into a float image in [0, 1].
//
// Arguments:
//   - data: The encoded bytes.
//   - format: The container format of data.
//   - mode: Whether to import colour (RGB) or grayscale.
//
// Returns:
//   - *Image: The unbatched (C, H, W) image.
//   - error: An error if the bytes cannot be decoded.
func Decode(data []byte, format ImageFormat, mode ColorMode) (*Image, error) {
	if len(data) == 0 {
		return nil, common.NewShapeError("images.Decode", "empty image data")
	}

	var (
		src image.Image
		err error
	)
	r := bytes.NewReader(data)
	switch format {
	case FormatJPEG:
		src, err = jpeg.Decode(r)
	case FormatPNG:
		src, err = png.Decode(r)
	case FormatWebP:
		src, err = webp.Decode(r)
	default:
		return nil, errors.Errorf("unsupported image format: %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s image", format)
	}

	return FromImage(src, mode)
}

// EncodePNG writes batch item b of img to w as a PNG.
func EncodePNG(w io.Writer, img *Image, b int) error {
	rendered, err := ToImage(img, b)
	if err != nil {
		return err
	}
	return errors.Wrap(png.Encode(w, rendered), "failed to encode png")
}
