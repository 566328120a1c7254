// Package degrade - degradation synthesis: blur a sharp image with a known
// PSF, resample it to low resolution and optionally deblur it again.
package degrade

import (
	"math"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-lam/common"
	"github.com/nvr-ai/go-lam/images"
	"github.com/nvr-ai/go-lam/images/kernels"
	"github.com/nvr-ai/go-lam/interpolate"
)

// Method selects how the blurred image is brought to low resolution.
type Method string

const (
	// MethodImresize is the MATLAB-compatible separable cubic resize.
	MethodImresize Method = "imresize"
	// MethodNearest is direct nearest-neighbour interpolation.
	MethodNearest = Method(interpolate.MethodNearest)
	// MethodBilinear is direct bilinear interpolation.
	MethodBilinear = Method(interpolate.MethodBilinear)
	// MethodBicubic is direct bicubic interpolation.
	MethodBicubic = Method(interpolate.MethodBicubic)
)

// TargetSize fixes the output extent. The zero value means "derive from
// Scale".
type TargetSize struct {
	Width  int `json:"width"  yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// IsZero reports whether no explicit size was configured.
func (s TargetSize) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

// BlurConfig describes the isotropic Gaussian degradation kernel.
type BlurConfig struct {
	// Size is the odd kernel side. 0 disables blurring.
	Size int `json:"size" yaml:"size"`
	// Sigma is the standard deviation in pixels.
	Sigma float64 `json:"sigma" yaml:"sigma"`
	// Edge is the border mode used when blurring: clamp, mirror or wrap.
	Edge string `json:"edge" yaml:"edge"`
}

// DeblurConfig controls the constrained least squares restoration.
type DeblurConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Gradient weights the Laplacian regularizer. 0 gives a plain inverse
	// filter.
	Gradient float64 `json:"gradient" yaml:"gradient"`
}

// Config is the degradation pipeline configuration.
type Config struct {
	Method     Method        `json:"method"      yaml:"method"`
	Scale      float64       `json:"scale"       yaml:"scale"`
	Antialias  bool          `json:"antialias"   yaml:"antialias"`
	TargetSize TargetSize    `json:"target_size" yaml:"target_size"`
	Color      string        `json:"color"       yaml:"color"`
	Blur       BlurConfig    `json:"blur"        yaml:"blur"`
	Deblur     DeblurConfig  `json:"deblur"      yaml:"deblur"`
	Device     common.Device `json:"device"      yaml:"device"`
}

// DefaultConfig returns the x4 bicubic degradation used for LAM inputs.
func DefaultConfig() Config {
	return Config{
		Method:    MethodImresize,
		Scale:     0.25,
		Antialias: true,
		Color:     "color",
		Blur: BlurConfig{
			Size:  7,
			Sigma: 1.2,
			Edge:  kernels.EdgeMirror.String(),
		},
		Deblur: DeblurConfig{
			Gradient: 0.01,
		},
		Device: common.CPU(0),
	}
}

// ColorMode returns the decode mode named by Color ("color", "grayscale" or
// "unchanged"). Unknown names fall back to colour; Validate rejects them.
func (c Config) ColorMode() images.ColorMode {
	mode, err := images.ParseColorMode(c.Color)
	if err != nil {
		return images.ColorModeRGB
	}
	return mode
}

// Validate checks the configuration.
//
// Returns:
//   - error: A *common.UnsupportedConfigError describing the first problem.
func (c Config) Validate() error {
	const op = "degrade.Config"
	switch c.Method {
	case MethodImresize, MethodNearest, MethodBilinear, MethodBicubic:
	default:
		return common.NewUnsupportedConfigError(op, "unknown method %q", c.Method)
	}
	if _, err := images.ParseColorMode(c.Color); err != nil {
		return common.NewUnsupportedConfigError(op, "unknown color %q", c.Color)
	}

	if c.TargetSize.IsZero() {
		if !(c.Scale > 0) || math.IsInf(c.Scale, 0) {
			return common.NewUnsupportedConfigError(op, "scale must be positive and finite, got %v", c.Scale)
		}
	} else if c.TargetSize.Width <= 0 || c.TargetSize.Height <= 0 {
		return common.NewUnsupportedConfigError(op, "target_size must set both width and height, got %dx%d",
			c.TargetSize.Width, c.TargetSize.Height)
	}

	if c.Blur.Size != 0 {
		if c.Blur.Size < 0 || c.Blur.Size%2 == 0 {
			return common.NewUnsupportedConfigError(op, "blur.size must be odd, got %d", c.Blur.Size)
		}
		if !(c.Blur.Sigma > 0) {
			return common.NewUnsupportedConfigError(op, "blur.sigma must be positive, got %v", c.Blur.Sigma)
		}
	}
	if _, err := kernels.ParseEdgeMode(c.Blur.Edge); err != nil {
		return err
	}

	if c.Deblur.Enabled && c.Blur.Size == 0 {
		return common.NewUnsupportedConfigError(op, "deblur requires a blur kernel")
	}
	if c.Deblur.Gradient < 0 || math.IsNaN(c.Deblur.Gradient) || math.IsInf(c.Deblur.Gradient, 0) {
		return common.NewUnsupportedConfigError(op, "deblur.gradient must be finite and >= 0, got %v", c.Deblur.Gradient)
	}

	return c.Device.Validate(op)
}

// LoadConfig reads a YAML configuration file. Keys missing from the file
// keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config %s", path)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML bytes over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
