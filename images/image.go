// Package images - Image definition for the resampling and deconvolution engine.
package images

import (
	"github.com/nvr-ai/go-lam/common"
)

// Shape is the logical (batch, channel, height, width) extent of an image.
type Shape struct {
	// Batch is the number of images in the batch. It is 1 for unbatched images.
	Batch int `json:"batch" yaml:"batch"`
	// Channels is the number of channels (1 for grayscale, 3 for RGB).
	Channels int `json:"channels" yaml:"channels"`
	// Height is the number of rows.
	Height int `json:"height" yaml:"height"`
	// Width is the number of columns.
	Width int `json:"width" yaml:"width"`
}

// Len returns the number of samples described by the shape.
func (s Shape) Len() int {
	return s.Batch * s.Channels * s.Height * s.Width
}

// Image is a dense float32 image stored in NCHW order with samples in [0, 1].
//
// Batched records whether the caller supplied a batch dimension. Every
// operation in this module mirrors it on its output, so a (C, H, W) input
// yields a (C, H', W') output and a (B, C, H, W) input yields (B, C, H', W').
type Image struct {
	// Shape is the logical extent of Data.
	Shape Shape `json:"shape" yaml:"shape"`
	// Batched is true when the batch dimension was explicit.
	Batched bool `json:"batched" yaml:"batched"`
	// Data holds Shape.Len() samples in NCHW order.
	Data []float32 `json:"data" yaml:"data"`
}

// New allocates a zero-filled image.
//
// Arguments:
//   - shape: The logical extent. Batch may be 0 for unbatched images.
//   - batched: Whether the batch dimension is explicit.
//
// Returns:
//   - *Image: The zero image.
//   - error: A *common.ShapeError if any extent is not positive.
func New(shape Shape, batched bool) (*Image, error) {
	if !batched && shape.Batch == 0 {
		shape.Batch = 1
	}
	if shape.Batch <= 0 || shape.Channels <= 0 || shape.Height <= 0 || shape.Width <= 0 {
		return nil, common.NewShapeError("images.New", "all extents must be positive, got %+v", shape)
	}
	if !batched && shape.Batch != 1 {
		return nil, common.NewShapeError("images.New", "unbatched image must have batch 1, got %d", shape.Batch)
	}
	return &Image{Shape: shape, Batched: batched, Data: make([]float32, shape.Len())}, nil
}

// FromCHW wraps a (C, H, W) sample slice as an unbatched image. The slice is
// used as the backing store, not copied.
func FromCHW(data []float32, channels, height, width int) (*Image, error) {
	img := &Image{Shape: Shape{Batch: 1, Channels: channels, Height: height, Width: width}, Data: data}
	if err := img.Validate("images.FromCHW"); err != nil {
		return nil, err
	}
	return img, nil
}

// FromNCHW wraps a (B, C, H, W) sample slice as a batched image. The slice is
// used as the backing store, not copied.
func FromNCHW(data []float32, batch, channels, height, width int) (*Image, error) {
	img := &Image{Shape: Shape{Batch: batch, Channels: channels, Height: height, Width: width}, Batched: true, Data: data}
	if err := img.Validate("images.FromNCHW"); err != nil {
		return nil, err
	}
	return img, nil
}

// FromHWC copies an interleaved (H, W, C) sample slice into a new unbatched image.
func FromHWC(data []float32, height, width, channels int) (*Image, error) {
	img, err := New(Shape{Batch: 1, Channels: channels, Height: height, Width: width}, false)
	if err != nil {
		return nil, err
	}
	if len(data) != img.Shape.Len() {
		return nil, common.NewShapeError("images.FromHWC", "expected %d samples, got %d", img.Shape.Len(), len(data))
	}
	plane := height * width
	for i := 0; i < plane; i++ {
		for c := 0; c < channels; c++ {
			img.Data[c*plane+i] = data[i*channels+c]
		}
	}
	return img, nil
}

// Validate checks that every extent is positive and Data has the right length.
func (im *Image) Validate(op string) error {
	if im == nil {
		return common.NewShapeError(op, "image is nil")
	}
	s := im.Shape
	if s.Batch <= 0 || s.Channels <= 0 || s.Height <= 0 || s.Width <= 0 {
		return common.NewShapeError(op, "all extents must be positive, got %+v", s)
	}
	if !im.Batched && s.Batch != 1 {
		return common.NewShapeError(op, "unbatched image must have batch 1, got %d", s.Batch)
	}
	if len(im.Data) != s.Len() {
		return common.NewShapeError(op, "expected %d samples for %+v, got %d", s.Len(), s, len(im.Data))
	}
	return nil
}

// Planes returns the number of (batch, channel) planes.
func (im *Image) Planes() int {
	return im.Shape.Batch * im.Shape.Channels
}

// Plane returns the H*W samples of plane p, where p = b*Channels + c. The
// returned slice aliases Data.
func (im *Image) Plane(p int) []float32 {
	n := im.Shape.Height * im.Shape.Width
	return im.Data[p*n : (p+1)*n : (p+1)*n]
}

// At returns the sample at (b, c, y, x).
func (im *Image) At(b, c, y, x int) float32 {
	return im.Data[im.offset(b, c, y, x)]
}

// Set stores v at (b, c, y, x).
func (im *Image) Set(b, c, y, x int, v float32) {
	im.Data[im.offset(b, c, y, x)] = v
}

func (im *Image) offset(b, c, y, x int) int {
	s := im.Shape
	return ((b*s.Channels+c)*s.Height+y)*s.Width + x
}

// Clone returns a deep copy.
func (im *Image) Clone() *Image {
	data := make([]float32, len(im.Data))
	copy(data, im.Data)
	return &Image{Shape: im.Shape, Batched: im.Batched, Data: data}
}

// WithSize allocates a zero image with the same batch, channels and batch
// presence as im but a new spatial extent.
func (im *Image) WithSize(height, width int) (*Image, error) {
	return New(Shape{Batch: im.Shape.Batch, Channels: im.Shape.Channels, Height: height, Width: width}, im.Batched)
}

// ToHWC returns batch item b as an interleaved (H, W, C) slice.
func (im *Image) ToHWC(b int) []float32 {
	s := im.Shape
	plane := s.Height * s.Width
	out := make([]float32, plane*s.Channels)
	base := b * s.Channels * plane
	for c := 0; c < s.Channels; c++ {
		src := im.Data[base+c*plane : base+(c+1)*plane]
		for i, v := range src {
			out[i*s.Channels+c] = v
		}
	}
	return out
}
