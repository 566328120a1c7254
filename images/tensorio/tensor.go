// Package tensorio moves images in and out of gorgonia dense tensors and the
// NumPy .npy format those tensors serialize to.
package tensorio

import (
	"io"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-lam/common"
	"github.com/nvr-ai/go-lam/images"
)

// ToDense copies img into a float32 tensor shaped (C, H, W) or (B, C, H, W)
// depending on whether img is batched.
func ToDense(img *images.Image) (*tensor.Dense, error) {
	if err := img.Validate("tensorio.ToDense"); err != nil {
		return nil, err
	}
	s := img.Shape
	shape := []int{s.Channels, s.Height, s.Width}
	if img.Batched {
		shape = []int{s.Batch, s.Channels, s.Height, s.Width}
	}
	backing := make([]float32, len(img.Data))
	copy(backing, img.Data)
	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(backing)), nil
}

// FromDense copies a float32 tensor shaped (C, H, W) or (B, C, H, W) into an
// image. A 3-D tensor yields an unbatched image.
//
// Arguments:
//   - t: The source tensor. Views are materialized first.
//
// Returns:
//   - *images.Image: The copied image.
//   - error: A *common.ShapeError for wrong dtype or rank.
func FromDense(t *tensor.Dense) (*images.Image, error) {
	if t == nil {
		return nil, common.NewShapeError("tensorio.FromDense", "tensor is nil")
	}
	if t.Dtype() != tensor.Float32 {
		return nil, common.NewShapeError("tensorio.FromDense", "expected float32 tensor, got %v", t.Dtype())
	}
	if t.IsView() {
		if m, ok := t.Materialize().(*tensor.Dense); ok {
			t = m
		}
	}
	data, ok := t.Data().([]float32)
	if !ok {
		return nil, common.NewShapeError("tensorio.FromDense", "tensor backing is %T", t.Data())
	}

	shape := t.Shape()
	var (
		s       images.Shape
		batched bool
	)
	switch len(shape) {
	case 3:
		s = images.Shape{Batch: 1, Channels: shape[0], Height: shape[1], Width: shape[2]}
	case 4:
		s = images.Shape{Batch: shape[0], Channels: shape[1], Height: shape[2], Width: shape[3]}
		batched = true
	default:
		return nil, common.NewShapeError("tensorio.FromDense", "expected rank 3 or 4, got shape %v", shape)
	}

	img, err := images.New(s, batched)
	if err != nil {
		return nil, err
	}
	if len(data) != len(img.Data) {
		return nil, common.NewShapeError("tensorio.FromDense", "expected %d samples, got %d", len(img.Data), len(data))
	}
	copy(img.Data, data)
	return img, nil
}

// WriteNpy writes img to w as a float32 .npy array with the same layout as
// ToDense.
func WriteNpy(w io.Writer, img *images.Image) error {
	d, err := ToDense(img)
	if err != nil {
		return err
	}
	return errors.Wrap(d.WriteNpy(w), "failed to write npy")
}

// ReadNpy reads a float32 .npy array of rank 3 or 4 into an image.
func ReadNpy(r io.Reader) (*images.Image, error) {
	var d tensor.Dense
	if err := d.ReadNpy(r); err != nil {
		return nil, errors.Wrap(err, "failed to read npy")
	}
	return FromDense(&d)
}
