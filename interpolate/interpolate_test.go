package interpolate

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-lam/common"
	"github.com/nvr-ai/go-lam/images"
)

func grid4x4(t *testing.T) *images.Image {
	t.Helper()
	img, err := images.FromCHW([]float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}, 1, 4, 4)
	require.NoError(t, err)
	return img
}

func constant(t *testing.T, shape images.Shape, v float32) *images.Image {
	t.Helper()
	img, err := images.New(shape, false)
	require.NoError(t, err)
	for i := range img.Data {
		img.Data[i] = v
	}
	return img
}

func TestEnlargeFactor(t *testing.T) {
	assert.Equal(t, 2, EnlargeFactor(4, 4, 2, 2), "shrink uses in/out area")
	assert.Equal(t, 2, EnlargeFactor(4, 4, 8, 8))
	assert.Equal(t, 3, EnlargeFactor(2, 2, 5, 5), "sqrt(6.25)=2.5 rounds up")
	assert.Equal(t, 1, EnlargeFactor(10, 10, 14, 14))
	assert.Equal(t, 1, EnlargeFactor(4, 4, 4, 4))
}

func TestNearestShrinkMapping(t *testing.T) {
	// k = round(sqrt(16/4)) = 2 and rows/cols are floor(i/2), so the whole
	// 2x2 output reads input pixel (0, 0).
	out, err := Nearest(grid4x4(t), image.Pt(2, 2), common.CPU(1))
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1, 1, 1}, out.Data)
}

func TestNearestEnlarge(t *testing.T) {
	out, err := Nearest(grid4x4(t), image.Pt(8, 8), common.CPU(0))
	require.NoError(t, err)
	assert.Equal(t, 8, out.Shape.Height)
	assert.Equal(t, float32(1), out.At(0, 0, 1, 1))
	assert.Equal(t, float32(6), out.At(0, 0, 2, 3))
	assert.Equal(t, float32(16), out.At(0, 0, 7, 7))
}

func TestNearestClampsOverrun(t *testing.T) {
	img := constant(t, images.Shape{Channels: 1, Height: 10, Width: 10}, 0.5)
	img.Set(0, 0, 9, 9, 1)
	out, err := Nearest(img, image.Pt(14, 14), common.CPU(1))
	require.NoError(t, err)
	assert.Equal(t, float32(1), out.At(0, 0, 13, 13))
}

func TestBilinearConstantAndRange(t *testing.T) {
	img := constant(t, images.Shape{Channels: 3, Height: 5, Width: 4}, 0.3)
	out, err := Bilinear(img, image.Pt(9, 11), common.CPU(2))
	require.NoError(t, err)
	assert.Equal(t, 11, out.Shape.Height)
	assert.Equal(t, 9, out.Shape.Width)
	assert.Equal(t, 3, out.Shape.Channels)
	for _, v := range out.Data {
		assert.InDelta(t, 0.3, v, 1e-6)
	}
}

func TestBilinearHalfPixelCentres(t *testing.T) {
	// Doubling a 1x2 ramp: x = (j+0.5)/2 - 0.5 -> -0.25, 0.25, 0.75, 1.25
	// with base clamped to 0, so the outer samples extrapolate linearly.
	img, err := images.FromCHW([]float32{0, 1}, 1, 1, 2)
	require.NoError(t, err)
	out, err := Bilinear(img, image.Pt(4, 1), common.CPU(1))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{-0.25, 0.25, 0.75, 1.25}, out.Data, 1e-6)
}

func TestBilinearSinglePixel(t *testing.T) {
	img, err := images.FromCHW([]float32{0.7}, 1, 1, 1)
	require.NoError(t, err)
	out, err := Bilinear(img, image.Pt(3, 3), common.CPU(1))
	require.NoError(t, err)
	for _, v := range out.Data {
		assert.InDelta(t, 0.7, v, 1e-6)
	}
}

func TestBicubicInteriorConstant(t *testing.T) {
	img := constant(t, images.Shape{Channels: 1, Height: 8, Width: 8}, 0.4)
	out, err := Bicubic(img, image.Pt(16, 16), common.CPU(1))
	require.NoError(t, err)
	// Away from the border all 16 neighbours exist and the weights sum to 1.
	for y := 4; y < 12; y++ {
		for x := 4; x < 12; x++ {
			assert.InDelta(t, 0.4, out.At(0, 0, y, x), 1e-5)
		}
	}
}

func TestBicubicClipsToUnitRange(t *testing.T) {
	// A hard edge overshoots with the cubic kernel; output is clipped.
	img, err := images.New(images.Shape{Channels: 1, Height: 4, Width: 8}, false)
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		for x := 4; x < 8; x++ {
			img.Set(0, 0, y, x, 1)
		}
	}
	out, err := Bicubic(img, image.Pt(32, 16), common.CPU(0))
	require.NoError(t, err)
	for _, v := range out.Data {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
}

func TestBicubicIdentity(t *testing.T) {
	img := grid4x4(t)
	for i := range img.Data {
		img.Data[i] /= 16
	}
	out, err := Bicubic(img, image.Pt(4, 4), common.CPU(1))
	require.NoError(t, err)
	assert.InDeltaSlice(t, img.Data, out.Data, 1e-6)
}

func TestApply(t *testing.T) {
	img := grid4x4(t)
	for _, m := range []Method{MethodNearest, MethodBilinear, MethodBicubic} {
		out, err := Apply(m, img, image.Pt(6, 5), common.CPU(1))
		require.NoError(t, err, string(m))
		assert.Equal(t, 5, out.Shape.Height)
		assert.Equal(t, 6, out.Shape.Width)
		assert.False(t, out.Batched)
	}

	_, err := Apply(Method("lanczos"), img, image.Pt(6, 5), common.CPU(1))
	assert.True(t, common.IsUnsupported(err))

	_, err = Apply(MethodNearest, img, image.Pt(0, 5), common.CPU(1))
	assert.True(t, common.IsShape(err))
}

func TestDeterministicAcrossWorkers(t *testing.T) {
	img, err := images.New(images.Shape{Batch: 2, Channels: 3, Height: 13, Width: 17}, true)
	require.NoError(t, err)
	for i := range img.Data {
		img.Data[i] = float32(i%29) / 29
	}
	for _, m := range []Method{MethodNearest, MethodBilinear, MethodBicubic} {
		a, err := Apply(m, img, image.Pt(40, 31), common.CPU(1))
		require.NoError(t, err)
		b, err := Apply(m, img, image.Pt(40, 31), common.CPU(7))
		require.NoError(t, err)
		assert.Equal(t, a.Data, b.Data, string(m))
		assert.True(t, b.Batched)
	}
}
