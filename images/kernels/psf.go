package kernels

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/nvr-ai/go-lam/common"
)

// PSF is a square point-spread function with an odd side length. Weights holds
// one row-major Size*Size plane per channel; a single plane applies to every
// image channel. Functions in this module never mutate a PSF.
type PSF struct {
	// Size is the side length in pixels.
	Size int `json:"size" yaml:"size"`
	// Weights holds one plane per channel.
	Weights [][]float64 `json:"weights" yaml:"weights"`
}

// Validate checks the PSF geometry.
func (p PSF) Validate(op string) error {
	if p.Size <= 0 || p.Size%2 == 0 {
		return common.NewShapeError(op, "psf side must be positive and odd, got %d", p.Size)
	}
	if len(p.Weights) == 0 {
		return common.NewShapeError(op, "psf has no channels")
	}
	for c, plane := range p.Weights {
		if len(plane) != p.Size*p.Size {
			return common.NewShapeError(op, "psf channel %d has %d weights, want %d", c, len(plane), p.Size*p.Size)
		}
	}
	return nil
}

// Channels returns the number of planes.
func (p PSF) Channels() int {
	return len(p.Weights)
}

// Plane returns the weights used for image channel c, broadcasting a single
// plane over all channels.
func (p PSF) Plane(c int) []float64 {
	if len(p.Weights) == 1 {
		return p.Weights[0]
	}
	return p.Weights[c]
}

// CheckChannels verifies that the PSF can be applied to an image with the
// given channel count.
func (p PSF) CheckChannels(op string, channels int) error {
	if n := len(p.Weights); n != 1 && n != channels {
		return common.NewShapeError(op, "psf has %d channels, image has %d", n, channels)
	}
	return nil
}

// NewPSF builds a single-channel PSF from a row-major plane.
func NewPSF(size int, weights []float64) (PSF, error) {
	p := PSF{Size: size, Weights: [][]float64{weights}}
	if err := p.Validate("kernels.NewPSF"); err != nil {
		return PSF{}, err
	}
	return p, nil
}

// Delta returns the identity PSF: 1 at the centre, 0 elsewhere.
func Delta(size int) (PSF, error) {
	w := make([]float64, size*size)
	if size > 0 {
		w[(size/2)*size+size/2] = 1
	}
	return NewPSF(size, w)
}

// Zero returns an all-zero PSF, used as a "no regularization" kernel.
func Zero(size int) (PSF, error) {
	return NewPSF(size, make([]float64, size*size))
}

// IsotropicGaussian returns a normalized isotropic Gaussian blur PSF.
//
// Arguments:
//   - size: Odd side length.
//   - sigma: Standard deviation in pixels. Must be positive.
//
// Returns:
//   - PSF: The single-channel kernel, summing to 1.
//   - error: A *common.ShapeError or *common.UnsupportedConfigError.
//
// @example
// blur, err := IsotropicGaussian(21, 2.0)
func IsotropicGaussian(size int, sigma float64) (PSF, error) {
	if !(sigma > 0) {
		return PSF{}, common.NewUnsupportedConfigError("kernels.IsotropicGaussian", "sigma must be positive, got %v", sigma)
	}
	if size <= 0 || size%2 == 0 {
		return PSF{}, common.NewShapeError("kernels.IsotropicGaussian", "size must be positive and odd, got %d", size)
	}

	w := make([]float64, size*size)
	r := size / 2
	denom := 2 * sigma * sigma
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dy, dx := float64(y-r), float64(x-r)
			w[y*size+x] = math.Exp(-(dx*dx + dy*dy) / denom)
		}
	}
	// Normalize so the blur preserves brightness.
	floats.Scale(1/floats.Sum(w), w)
	return NewPSF(size, w)
}

// GradientPSF returns the 3x3 discrete Laplacian scaled by weight. It is the
// usual smoothness regularizer for constrained least squares deblurring; a
// weight of 0 disables regularization.
func GradientPSF(weight float64) PSF {
	w := []float64{
		0, -1, 0,
		-1, 4, -1,
		0, -1, 0,
	}
	floats.Scale(weight, w)
	return PSF{Size: 3, Weights: [][]float64{w}}
}
