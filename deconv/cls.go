// Package deconv - constrained least squares deblurring in the frequency
// domain.
package deconv

import (
	"math"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-lam/common"
	"github.com/nvr-ai/go-lam/fourier"
	"github.com/nvr-ai/go-lam/images"
	"github.com/nvr-ai/go-lam/images/kernels"
)

// Checkpoint names carried by *common.NonFiniteError.
const (
	StageOTF         = "otf"
	StageDenominator = "denominator"
	StageFilter      = "filter"
	StageSpectrum    = "spectrum"
	StageDeconvolved = "deconvolved"
	StageResult      = "result"
)

// Options configures a deblur call.
type Options struct {
	// Device bounds the parallelism of the call.
	Device common.Device `json:"device" yaml:"device"`
}

// Filter returns the pseudo-inverse filter conj(B) / (|B|^2 + |G|^2) for a
// blur OTF B and a regularizer OTF G of the same size.
//
// Returns a *common.NonFiniteError at stage "denominator" or "filter" when the
// computation produces NaN or Inf. A frequency where both B and G vanish
// divides zero by zero and is reported at stage "filter".
func Filter(blurOTF, gradOTF fourier.Spectrum) (fourier.Spectrum, error) {
	const op = "deconv.Filter"
	if !blurOTF.SameSize(gradOTF) {
		return fourier.Spectrum{}, common.NewShapeError(op, "blur otf is %dx%d, gradient otf is %dx%d",
			blurOTF.Height(), blurOTF.Width(), gradOTF.Height(), gradOTF.Width())
	}

	h, w := blurOTF.Height(), blurOTF.Width()
	denom := fourier.Build(h, w, func(i int) (float64, float64) {
		br, bi := blurOTF.Real(i), blurOTF.Imag(i)
		gr, gi := gradOTF.Real(i), gradOTF.Imag(i)
		return br*br + bi*bi + gr*gr + gi*gi, 0
	})
	if err := denom.CheckFinite(op, StageDenominator); err != nil {
		return fourier.Spectrum{}, err
	}

	filter := fourier.Build(h, w, func(i int) (float64, float64) {
		d := denom.Real(i)
		return blurOTF.Real(i) / d, -blurOTF.Imag(i) / d
	})
	if err := filter.CheckFinite(op, StageFilter); err != nil {
		return fourier.Spectrum{}, err
	}
	return filter, nil
}

// Deblur restores img by constrained least squares deconvolution.
//
// For every batch item and channel the plane's 2-D spectrum S is multiplied
// by Filter(OTF(blur), OTF(grad)) and transformed back; the output sample is
// the magnitude of the complex inverse transform. Both kernels are converted
// at the image's own height and width, so their side must not exceed either.
// Each kernel has one plane shared by all channels or one plane per channel.
//
// Arguments:
//   - img: The degraded image. It is not modified.
//   - blur: The blur PSF to invert.
//   - grad: The regularizer PSF. kernels.Zero disables regularization.
//   - opt: Device affinity.
//
// Returns:
//   - *images.Image: The restored image, with the batch presence of img.
//   - error: A *common.ShapeError for incompatible kernels, or a
//     *common.NonFiniteError naming the first failing checkpoint. No partial
//     result is returned.
//
// @example
// sharp, err := deconv.Deblur(lr, blur, kernels.GradientPSF(0.01), deconv.Options{})
func Deblur(img *images.Image, blur, grad kernels.PSF, opt Options) (*images.Image, error) {
	const op = "deconv.Deblur"
	if err := img.Validate(op); err != nil {
		return nil, err
	}
	channels := img.Shape.Channels
	for _, k := range []struct {
		name string
		psf  kernels.PSF
	}{{"blur", blur}, {"gradient", grad}} {
		if err := k.psf.Validate(op); err != nil {
			return nil, errors.Wrapf(err, "%s kernel", k.name)
		}
		if err := k.psf.CheckChannels(op, channels); err != nil {
			return nil, errors.Wrapf(err, "%s kernel", k.name)
		}
	}

	h, w := img.Shape.Height, img.Shape.Width
	blurOTFs, err := fourier.PSFToOTF(blur, h, w)
	if err != nil {
		return nil, errors.Wrap(err, "blur kernel")
	}
	gradOTFs, err := fourier.PSFToOTF(grad, h, w)
	if err != nil {
		return nil, errors.Wrap(err, "gradient kernel")
	}

	filters := make([]fourier.Spectrum, channels)
	for c := 0; c < channels; c++ {
		if c > 0 && len(blurOTFs) == 1 && len(gradOTFs) == 1 {
			filters[c] = filters[0]
			continue
		}
		f, err := Filter(pick(blurOTFs, c), pick(gradOTFs, c))
		if err != nil {
			return nil, errors.Wrapf(err, "channel %d", c)
		}
		filters[c] = f
	}

	out, err := images.New(img.Shape, img.Batched)
	if err != nil {
		return nil, err
	}

	// Each plane records its own error so the reported failure is the
	// lowest failing plane regardless of scheduling.
	planes := img.Planes()
	errs := make([]error, planes)
	err = common.Parallel(opt.Device, planes, func(start, end int) error {
		for p := start; p < end; p++ {
			errs[p] = deblurPlane(img.Plane(p), out.Plane(p), filters[p%channels], h, w)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for p, err := range errs {
		if err != nil {
			return nil, errors.Wrapf(err, "batch %d channel %d", p/channels, p%channels)
		}
	}
	return out, nil
}

func pick(otfs []fourier.Spectrum, c int) fourier.Spectrum {
	if len(otfs) == 1 {
		return otfs[0]
	}
	return otfs[c]
}

func deblurPlane(src, dst []float32, filter fourier.Spectrum, h, w int) error {
	const op = "deconv.Deblur"
	plane := make([]float64, len(src))
	for i, v := range src {
		plane[i] = float64(v)
	}

	spectrum, err := fourier.FFT2(plane, h, w)
	if err != nil {
		return err
	}
	if err := spectrum.CheckFinite(op, StageSpectrum); err != nil {
		return err
	}

	product, err := filter.Multiply(spectrum)
	if err != nil {
		return err
	}
	if err := product.CheckFinite(op, StageDeconvolved); err != nil {
		return err
	}

	restored := fourier.IFFT2(product)
	if err := restored.CheckFinite(op, StageResult); err != nil {
		return err
	}
	for i, m := range restored.Magnitude() {
		if m > math.MaxFloat32 {
			return common.NewNonFiniteError(op, StageResult, i)
		}
		dst[i] = float32(m)
	}
	return nil
}
