package images

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-lam/common"
)

func ramp(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i) / float32(n)
	}
	return out
}

func TestNewValidates(t *testing.T) {
	img, err := New(Shape{Channels: 3, Height: 4, Width: 5}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, img.Shape.Batch)
	assert.Len(t, img.Data, 60)

	_, err = New(Shape{Batch: 1, Channels: 1, Height: 0, Width: 5}, false)
	assert.True(t, common.IsShape(err))

	_, err = New(Shape{Batch: 2, Channels: 1, Height: 1, Width: 1}, false)
	assert.True(t, common.IsShape(err), "unbatched images must have batch 1")
}

func TestHWCRoundTrip(t *testing.T) {
	hwc := ramp(2 * 3 * 3)
	img, err := FromHWC(hwc, 2, 3, 3)
	require.NoError(t, err)

	// Pixel (y=1, x=2) channel 1 lives at ((1*3)+2)*3+1 in HWC order.
	assert.Equal(t, hwc[(1*3+2)*3+1], img.At(0, 1, 1, 2))
	assert.Equal(t, hwc, img.ToHWC(0))

	_, err = FromHWC(hwc[:5], 2, 3, 3)
	assert.True(t, common.IsShape(err))
}

func TestPlaneAliasesData(t *testing.T) {
	img, err := FromNCHW(ramp(2*3*2*2), 2, 3, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 6, img.Planes())

	p := img.Plane(4)
	p[0] = 42
	assert.Equal(t, float32(42), img.At(1, 1, 0, 0))
}

func TestCloneIsDeep(t *testing.T) {
	img, err := FromCHW(ramp(4), 1, 2, 2)
	require.NoError(t, err)
	c := img.Clone()
	c.Data[0] = 9
	assert.NotEqual(t, img.Data[0], c.Data[0])
	assert.Equal(t, img.Shape, c.Shape)
}

func TestChecksum(t *testing.T) {
	img, err := FromCHW(ramp(6), 1, 2, 3)
	require.NoError(t, err)
	sum := Checksum(img)
	assert.Len(t, sum, 32)
	assert.Equal(t, sum, Checksum(img.Clone()))

	// Same samples, different geometry.
	reshaped, err := FromCHW(ramp(6), 1, 3, 2)
	require.NoError(t, err)
	assert.NotEqual(t, sum, Checksum(reshaped))

	batched, err := FromNCHW(ramp(6), 1, 1, 2, 3)
	require.NoError(t, err)
	assert.NotEqual(t, sum, Checksum(batched))

	changed := img.Clone()
	changed.Data[5] = math.Nextafter32(changed.Data[5], 2)
	assert.NotEqual(t, sum, Checksum(changed))

	assert.Equal(t, "empty", Checksum(nil))
}

func TestChecksumLayout(t *testing.T) {
	img, err := FromNCHW([]float32{0.5, -1}, 1, 1, 1, 2)
	require.NoError(t, err)

	// Little-endian uint32 header (batch, channels, height, width, batched)
	// followed by the float32 bits of every sample.
	var want []byte
	for _, v := range []uint32{1, 1, 1, 2, 1, math.Float32bits(0.5), math.Float32bits(-1)} {
		want = binary.LittleEndian.AppendUint32(want, v)
	}
	assert.Equal(t, fmt.Sprintf("%x", md5.Sum(want)), Checksum(img))
}

func TestCropBorder(t *testing.T) {
	img, err := FromCHW(ramp(25), 1, 5, 5)
	require.NoError(t, err)

	out, err := CropBorder(img, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Shape.Height)
	assert.Equal(t, 3, out.Shape.Width)
	assert.Equal(t, img.At(0, 0, 1, 1), out.At(0, 0, 0, 0))
	assert.Equal(t, img.At(0, 0, 3, 3), out.At(0, 0, 2, 2))

	same, err := CropBorder(img, 0)
	require.NoError(t, err)
	assert.Same(t, img, same)

	_, err = CropBorder(img, 3)
	assert.True(t, common.IsShape(err))
}

func TestToUint8(t *testing.T) {
	img, err := FromCHW([]float32{-0.5, 0, 0.5, 2}, 1, 2, 2)
	require.NoError(t, err)

	out, err := ToUint8(img, 0, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 128, 255}, out)

	_, err = ToUint8(img, 0, 1, 1)
	assert.True(t, common.IsUnsupported(err))
}

func TestClamp(t *testing.T) {
	img, err := FromCHW([]float32{-0.5, 0.25, 1.5, 1}, 1, 2, 2)
	require.NoError(t, err)
	assert.Same(t, img, Clamp(img, 0, 1))
	assert.Equal(t, []float32{0, 0.25, 1, 1}, img.Data)
}

func TestFirstNonFinite(t *testing.T) {
	assert.Equal(t, -1, FirstNonFinite([]float32{0, 1}))
	assert.Equal(t, 1, FirstNonFinite([]float32{0, float32(math.NaN())}))
	assert.Equal(t, 0, FirstNonFinite([]float32{float32(math.Inf(-1))}))
}

func TestFromImageHonoursBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 20, 13, 22))
	src.SetRGBA(10, 20, color.RGBA{R: 255, G: 51, B: 0, A: 255})

	img, err := FromImage(src, ColorModeRGB)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Shape.Height)
	assert.Equal(t, 3, img.Shape.Width)
	assert.InDelta(t, 1.0, img.At(0, 0, 0, 0), 1e-6)
	assert.InDelta(t, 0.2, img.At(0, 1, 0, 0), 1e-6)
}

func TestParseColorMode(t *testing.T) {
	for name, want := range map[string]ColorMode{
		"":          ColorModeRGB,
		"color":     ColorModeRGB,
		"grayscale": ColorModeGrayscale,
		"unchanged": ColorModeUnchanged,
	} {
		got, err := ParseColorMode(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseColorMode("bgr")
	assert.True(t, common.IsUnsupported(err))
}

func TestFromImageUnchanged(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 1))
	gray.SetGray(1, 0, color.Gray{Y: 255})
	img, err := FromImage(gray, ColorModeUnchanged)
	require.NoError(t, err)
	assert.Equal(t, 1, img.Shape.Channels)
	assert.Equal(t, []float32{0, 1}, img.Data)

	opaque := image.NewRGBA(image.Rect(0, 0, 1, 1))
	opaque.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	img, err = FromImage(opaque, ColorModeUnchanged)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Shape.Channels)

	translucent := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	translucent.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 51, A: 102})
	img, err = FromImage(translucent, ColorModeUnchanged)
	require.NoError(t, err)
	require.Equal(t, 4, img.Shape.Channels)
	assert.InDeltaSlice(t, []float32{1, 0, 0.2, 0.4}, img.Data, 1e-6)

	// Four channels render back to the same non-premultiplied pixel.
	rendered, err := ToImage(img, 0)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 51, A: 102}, rendered.(*image.NRGBA).NRGBAAt(0, 0))
}
