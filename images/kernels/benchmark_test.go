package kernels

import (
	"fmt"
	"testing"

	"github.com/nvr-ai/go-lam/common"
	"github.com/nvr-ai/go-lam/images"
)

// Benchmark Configuration Constants.
const (
	// Typical super-resolution benchmark crops.
	ResolutionSmall  = 128
	ResolutionMedium = 256
	ResolutionLarge  = 512
)

// PatternType defines the type of pattern to generate.
type PatternType int

const (
	// PatternNoise: Deterministic pseudo-random samples, no spatial coherence.
	PatternNoise PatternType = iota
	// PatternGradient: Smooth diagonal ramp.
	PatternGradient
	// PatternChessboard: 8x8 squares, the hardest case for edge handling.
	PatternChessboard
)

func (p PatternType) String() string {
	switch p {
	case PatternNoise:
		return "noise"
	case PatternGradient:
		return "gradient"
	default:
		return "chessboard"
	}
}

// generateTestImage creates an RGB float image with the given pattern.
func generateTestImage(b *testing.B, width, height int, pattern PatternType) *images.Image {
	b.Helper()
	img, err := images.New(images.Shape{Channels: 3, Height: height, Width: width}, false)
	if err != nil {
		b.Fatal(err)
	}
	for c := 0; c < 3; c++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				var v float32
				switch pattern {
				case PatternNoise:
					// Pseudo-random but deterministic for reproducibility.
					seed := uint32(x+y*width) + uint32(c)*2654435761
					v = float32((seed*1103515245+12345)>>24) / 255
				case PatternGradient:
					v = float32(x+y) / float32(width+height)
				default:
					if ((x/8)+(y/8))%2 == 0 {
						v = 1
					}
				}
				img.Set(0, c, y, x, v)
			}
		}
	}
	return img
}

func BenchmarkConvolve(b *testing.B) {
	for _, size := range []int{ResolutionSmall, ResolutionMedium, ResolutionLarge} {
		for _, side := range []int{3, 7, 15} {
			psf, err := IsotropicGaussian(side, float64(side)/4)
			if err != nil {
				b.Fatal(err)
			}
			img := generateTestImage(b, size, size, PatternNoise)
			b.Run(fmt.Sprintf("%dpx_k%d", size, side), func(b *testing.B) {
				b.ReportAllocs()
				b.SetBytes(int64(len(img.Data) * 4))
				for i := 0; i < b.N; i++ {
					if _, err := Convolve(img, psf, Options{Edge: EdgeMirror}); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkConvolveEdgeModes(b *testing.B) {
	psf, err := IsotropicGaussian(9, 2)
	if err != nil {
		b.Fatal(err)
	}
	for _, pattern := range []PatternType{PatternNoise, PatternGradient, PatternChessboard} {
		img := generateTestImage(b, ResolutionMedium, ResolutionMedium, pattern)
		for _, edge := range []EdgeMode{EdgeClamp, EdgeMirror, EdgeWrap} {
			b.Run(pattern.String()+"_"+edge.String(), func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					if _, err := Convolve(img, psf, Options{Edge: edge}); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkConvolveWorkers(b *testing.B) {
	psf, err := IsotropicGaussian(7, 1.5)
	if err != nil {
		b.Fatal(err)
	}
	img := generateTestImage(b, ResolutionLarge, ResolutionLarge, PatternGradient)
	for _, workers := range []int{1, 2, 4, 0} {
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			opt := Options{Edge: EdgeMirror, Device: common.CPU(workers)}
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := Convolve(img, psf, opt); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkPadSymmetric(b *testing.B) {
	row := make([]float32, ResolutionLarge)
	dst := make([]float32, 0, ResolutionLarge+32)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		dst = PadSymmetricInto(dst[:0], row, 16, 16)
	}
	_ = dst
}
