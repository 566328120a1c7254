// Package opencv bridges images and gocv Mats: decoding through OpenCV's
// codecs and converting 8-bit Mats to and from float images.
package opencv

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-lam/common"
	"github.com/nvr-ai/go-lam/images"
)

// readFlag maps a colour mode to the OpenCV decode flag.
func readFlag(mode images.ColorMode) (gocv.IMReadFlag, error) {
	switch mode {
	case images.ColorModeRGB:
		return gocv.IMReadColor, nil
	case images.ColorModeGrayscale:
		return gocv.IMReadGrayScale, nil
	case images.ColorModeUnchanged:
		return gocv.IMReadUnchanged, nil
	default:
		return 0, common.NewUnsupportedConfigError("opencv.Decode", "unknown colour mode %d", mode)
	}
}

// Decode decodes encoded bytes with OpenCV into a float image in [0, 1].
//
// Arguments:
//   - data: The encoded bytes (any container OpenCV was built with).
//   - mode: ColorModeRGB for 3 channels, ColorModeGrayscale for 1, or
//     ColorModeUnchanged to keep the stored channels (alpha included).
//
// Returns:
//   - *images.Image: The unbatched (C, H, W) image in RGB(A) order.
//   - error: An error if the bytes cannot be decoded.
//
// @example
// img, err := opencv.Decode(jpegBytes, images.ColorModeRGB)
func Decode(data []byte, mode images.ColorMode) (*images.Image, error) {
	if len(data) == 0 {
		return nil, common.NewShapeError("opencv.Decode", "empty image data")
	}
	flag, err := readFlag(mode)
	if err != nil {
		return nil, err
	}

	mat, err := gocv.IMDecode(data, flag)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode image")
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, errors.New("failed to decode image: no codec accepted the data")
	}
	return FromMat(mat)
}

// FromMat converts an 8-bit OpenCV Mat into an unbatched float image in [0, 1].
// Three- and four-channel Mats are assumed to be BGR(A) (OpenCV's native
// order) and are reordered to RGB(A).
//
// Arguments:
//   - mat: A continuous CV_8UC1, CV_8UC3 or CV_8UC4 Mat.
//
// Returns:
//   - *images.Image: The (C, H, W) image.
//   - error: An error if the Mat is empty or has an unsupported type.
func FromMat(mat gocv.Mat) (*images.Image, error) {
	if mat.Empty() {
		return nil, common.NewShapeError("opencv.FromMat", "mat is empty")
	}
	channels := mat.Channels()
	switch mat.Type() {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
	default:
		return nil, common.NewShapeError("opencv.FromMat", "unsupported mat type %v", mat.Type())
	}
	if !mat.IsContinuous() {
		return nil, common.NewShapeError("opencv.FromMat", "mat is not continuous")
	}

	data, err := mat.DataPtrUint8()
	if err != nil {
		return nil, errors.Wrap(err, "failed to access mat data")
	}

	height, width := mat.Rows(), mat.Cols()
	img, err := images.New(images.Shape{Batch: 1, Channels: channels, Height: height, Width: width}, false)
	if err != nil {
		return nil, err
	}
	plane := height * width
	for i := 0; i < plane; i++ {
		for c := 0; c < channels; c++ {
			dstC := c
			// BGR(A) -> RGB(A); alpha stays last.
			if channels >= 3 && c < 3 {
				dstC = 2 - c
			}
			img.Data[dstC*plane+i] = float32(data[i*channels+c]) / 255.0
		}
	}
	return img, nil
}

// ToMat renders batch item b into a new 8-bit Mat (BGR or BGRA for three or
// four channels). The caller owns the returned Mat and must Close it.
func ToMat(img *images.Image, b int) (gocv.Mat, error) {
	hwc, err := images.ToUint8(img, b, 0, 1)
	if err != nil {
		return gocv.NewMat(), err
	}

	s := img.Shape
	var matType gocv.MatType
	switch s.Channels {
	case 1:
		matType = gocv.MatTypeCV8UC1
	case 3:
		matType = gocv.MatTypeCV8UC3
	case 4:
		matType = gocv.MatTypeCV8UC4
	default:
		return gocv.NewMat(), common.NewShapeError("opencv.ToMat", "cannot render %d channels", s.Channels)
	}
	if s.Channels > 1 {
		for i := 0; i < len(hwc); i += s.Channels {
			hwc[i], hwc[i+2] = hwc[i+2], hwc[i]
		}
	}

	mat, err := gocv.NewMatFromBytes(s.Height, s.Width, matType, hwc)
	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "failed to create mat")
	}
	return mat, nil
}
