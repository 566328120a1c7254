package degrade

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-lam/deconv"
	"github.com/nvr-ai/go-lam/images"
	"github.com/nvr-ai/go-lam/images/kernels"
	"github.com/nvr-ai/go-lam/interpolate"
	"github.com/nvr-ai/go-lam/profiler"
	"github.com/nvr-ai/go-lam/resample"
)

// Result holds every image produced by one pipeline run. All images share the
// batch presence of the input.
type Result struct {
	// Blurred is the input convolved with the blur PSF, or the input itself
	// when blurring is disabled.
	Blurred *images.Image
	// LowRes is Blurred brought to the configured size.
	LowRes *images.Image
	// Deblurred is Blurred restored by constrained least squares; nil unless
	// deblurring is enabled.
	Deblurred *images.Image
}

// Pipeline synthesizes degraded inputs from sharp images. Its configuration is
// fixed at construction and it is safe for concurrent use.
type Pipeline struct {
	cfg    Config
	blur   kernels.PSF
	grad   kernels.PSF
	edge   kernels.EdgeMode
	logger *logrus.Logger
	prof   *profiler.Profiler
}

// NewPipeline validates cfg and builds its kernels.
//
// Arguments:
//   - cfg: The pipeline configuration.
//   - logger: Receives per-stage debug logs. nil discards them.
//
// Returns:
//   - *Pipeline: The ready pipeline.
//   - error: A *common.UnsupportedConfigError for a bad configuration.
//
// @example
// p, err := degrade.NewPipeline(degrade.DefaultConfig(), logger)
func NewPipeline(cfg Config, logger *logrus.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	p := &Pipeline{
		cfg:    cfg,
		logger: logger,
		prof:   profiler.New(0),
		grad:   kernels.GradientPSF(cfg.Deblur.Gradient),
	}
	edge, err := kernels.ParseEdgeMode(cfg.Blur.Edge)
	if err != nil {
		return nil, err
	}
	p.edge = edge
	if cfg.Blur.Size > 0 {
		if p.blur, err = kernels.IsotropicGaussian(cfg.Blur.Size, cfg.Blur.Sigma); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Config returns the validated configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Stats returns timing statistics for every stage run so far.
func (p *Pipeline) Stats() []profiler.OperationStats {
	return p.prof.Stats()
}

// BlurKernel returns the degradation PSF and whether blurring is enabled.
func (p *Pipeline) BlurKernel() (kernels.PSF, bool) {
	return p.blur, p.cfg.Blur.Size > 0
}

// Run degrades img: blur, then resize, then (optionally) deblur the blurred
// image with the same PSF. img is not modified.
func (p *Pipeline) Run(img *images.Image) (*Result, error) {
	if err := img.Validate("degrade.Run"); err != nil {
		return nil, err
	}
	res := &Result{Blurred: img}

	if p.cfg.Blur.Size > 0 {
		out, err := p.stage("blur", func() (*images.Image, error) {
			return kernels.Convolve(img, p.blur, kernels.Options{Edge: p.edge, Device: p.cfg.Device})
		})
		if err != nil {
			return nil, err
		}
		res.Blurred = out
	}

	lr, err := p.stage(string(p.cfg.Method), func() (*images.Image, error) {
		return p.resize(res.Blurred)
	})
	if err != nil {
		return nil, err
	}
	res.LowRes = lr

	if p.cfg.Deblur.Enabled {
		out, err := p.stage("deblur", func() (*images.Image, error) {
			return deconv.Deblur(res.Blurred, p.blur, p.grad, deconv.Options{Device: p.cfg.Device})
		})
		if err != nil {
			return nil, err
		}
		res.Deblurred = out
	}
	return res, nil
}

// OutputSize returns the (height, width) LowRes will have for an input of
// the given extent.
func (p *Pipeline) OutputSize(height, width int) (int, int) {
	if !p.cfg.TargetSize.IsZero() {
		return p.cfg.TargetSize.Height, p.cfg.TargetSize.Width
	}
	return resample.OutputSize(height, p.cfg.Scale), resample.OutputSize(width, p.cfg.Scale)
}

func (p *Pipeline) resize(img *images.Image) (*images.Image, error) {
	if p.cfg.Method == MethodImresize {
		opt := resample.Options{Antialias: p.cfg.Antialias, Device: p.cfg.Device}
		if p.cfg.TargetSize.IsZero() {
			return resample.Resize(img, p.cfg.Scale, opt)
		}
		return resample.ResizeTo(img, p.cfg.TargetSize.Height, p.cfg.TargetSize.Width, opt)
	}
	h, w := p.OutputSize(img.Shape.Height, img.Shape.Width)
	return interpolate.Apply(interpolate.Method(p.cfg.Method), img, interpolate.Size{X: w, Y: h}, p.cfg.Device)
}

func (p *Pipeline) stage(name string, fn func() (*images.Image, error)) (*images.Image, error) {
	done := p.prof.StartOperation(name)
	out, err := fn()
	elapsed := done()
	if err != nil {
		return nil, errors.Wrapf(err, "%s stage", name)
	}
	p.logger.WithFields(logrus.Fields{
		"stage":    name,
		"shape":    out.Shape,
		"batched":  out.Batched,
		"duration": elapsed,
	}).Debug("degrade stage complete")
	return out, nil
}
