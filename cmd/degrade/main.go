// Command degrade synthesizes low-resolution (and optionally deblurred)
// images from a sharp image or a directory of sharp images.
//
//	degrade -config degrade.yaml -input ./hr -output ./lr [-compare] [-preview 256] [-npy] [-debug]
package main

import (
	"flag"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-lam/degrade"
	"github.com/nvr-ai/go-lam/images"
	"github.com/nvr-ai/go-lam/images/tensorio"
	"github.com/nvr-ai/go-lam/util"
)

// options holds the parsed command line.
type options struct {
	configPath string
	inputPath  string
	outputDir  string
	compare    bool
	preview    uint
	npy        bool
}

func main() {
	var (
		opts      options
		debugMode bool
	)
	flag.StringVar(&opts.configPath, "config", "", "Path to a YAML pipeline config (defaults are used when empty)")
	flag.StringVar(&opts.inputPath, "input", "", "Image file or directory of images (.jpg, .jpeg, .png, .webp)")
	flag.StringVar(&opts.outputDir, "output", "degraded", "Output directory")
	flag.BoolVar(&opts.compare, "compare", false, "Also write a side-by-side comparison of every stage")
	flag.UintVar(&opts.preview, "preview", 0, "Also write a preview of the low resolution image at this width (0 disables)")
	flag.BoolVar(&opts.npy, "npy", false, "Also write the low resolution image as a float32 .npy array")
	flag.BoolVar(&debugMode, "debug", false, "Enable debug mode with verbose logging")
	flag.Parse()

	logger := initLogger(debugMode)
	if opts.inputPath == "" {
		logger.Fatal("-input is required")
	}

	if err := run(opts, logger); err != nil {
		logger.WithError(err).Fatal("degrade failed")
	}
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	}
	return logger
}

func run(opts options, logger *logrus.Logger) error {
	cfg := degrade.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = degrade.LoadConfig(opts.configPath); err != nil {
			return err
		}
	}
	pipeline, err := degrade.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}

	files, err := util.LoadImageFiles(opts.inputPath)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.Errorf("no images found in %s", opts.inputPath)
	}
	outputDir := opts.outputDir
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return errors.WithStack(err)
	}

	logger.WithFields(logrus.Fields{
		"images": len(files),
		"method": cfg.Method,
		"scale":  cfg.Scale,
		"deblur": cfg.Deblur.Enabled,
	}).Info("starting degradation")

	for _, f := range files {
		start := time.Now()
		img, err := f.Decode(cfg.ColorMode())
		if err != nil {
			return err
		}
		res, err := pipeline.Run(img)
		if err != nil {
			return errors.Wrapf(err, "degrade %s", f.Path)
		}
		if err := writePNG(filepath.Join(outputDir, f.Name+"_lr.png"), res.LowRes); err != nil {
			return err
		}
		if res.Deblurred != nil {
			if err := writePNG(filepath.Join(outputDir, f.Name+"_deblur.png"), res.Deblurred); err != nil {
				return err
			}
		}
		if opts.preview > 0 {
			if err := writePreview(filepath.Join(outputDir, f.Name+"_preview.png"), res.LowRes, opts.preview); err != nil {
				return err
			}
		}
		if opts.npy {
			if err := writeNpy(filepath.Join(outputDir, f.Name+"_lr.npy"), res.LowRes); err != nil {
				return err
			}
		}
		if opts.compare {
			if err := writeComparison(filepath.Join(outputDir, f.Name+"_compare.png"), img, res); err != nil {
				return err
			}
		}
		logger.WithFields(logrus.Fields{
			"file":     f.Path,
			"in":       [2]int{img.Shape.Height, img.Shape.Width},
			"out":      [2]int{res.LowRes.Shape.Height, res.LowRes.Shape.Width},
			"checksum": images.Checksum(res.LowRes),
			"duration": time.Since(start),
		}).Info("image degraded")
	}

	logger.WithField("stages", pipeline.Stats()).Info("degradation complete")
	return nil
}

func writePNG(path string, img *images.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := images.EncodePNG(out, img, 0); err != nil {
		out.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.WithStack(out.Close())
}

// writePreview writes a Lanczos thumbnail of img at the given width.
func writePreview(path string, img *images.Image, width uint) error {
	thumb, err := images.Thumbnail(img, 0, width, 0)
	if err != nil {
		return err
	}
	return encodePNGFile(path, thumb)
}

func writeNpy(path string, img *images.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := tensorio.WriteNpy(out, img); err != nil {
		out.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.WithStack(out.Close())
}

// writeComparison renders input, low resolution and (when present) deblurred
// images side by side at the input height.
func writeComparison(path string, src *images.Image, res *degrade.Result) error {
	stages := []*images.Image{src, res.LowRes}
	if res.Deblurred != nil {
		stages = append(stages, res.Deblurred)
	}
	tiles := make([]image.Image, len(stages))
	for i, s := range stages {
		t, err := images.ToImage(s, 0)
		if err != nil {
			return err
		}
		tiles[i] = t
	}
	montage, err := images.Montage(tiles, src.Shape.Height)
	if err != nil {
		return err
	}
	return encodePNGFile(path, montage)
}

func encodePNGFile(path string, img image.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.WithStack(out.Close())
}
