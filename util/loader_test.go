package util

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-lam/images"
)

func writePNG(t *testing.T, path string, v uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 4, 3))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestLoadDirectoryImages(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "frame-10.png"), 10)
	writePNG(t, filepath.Join(dir, "frame-2.png"), 2)
	writePNG(t, filepath.Join(dir, "baboon.png"), 50)
	writePNG(t, filepath.Join(dir, "abc.png"), 60)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.png"), 0o755))

	files, err := LoadDirectoryImageFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 4)

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
		assert.Equal(t, images.FormatPNG, f.Format)
		assert.NotEmpty(t, f.Data)
	}
	assert.Equal(t, []string{"frame-2", "frame-10", "abc", "baboon"}, names)
	assert.Equal(t, 2, files[0].Frame)
	assert.Equal(t, -1, files[3].Frame)
}

func TestLoadImageFilesSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "butterfly.png")
	writePNG(t, path, 255)

	files, err := LoadImageFiles(path)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "butterfly", files[0].Name)

	img, err := files[0].Decode(images.ColorModeGrayscale)
	require.NoError(t, err)
	assert.Equal(t, 1, img.Shape.Channels)
	assert.Equal(t, 3, img.Shape.Height)
	assert.Equal(t, 4, img.Shape.Width)
	for _, v := range img.Data {
		assert.InDelta(t, 1.0, v, 1e-6)
	}
}

func TestImageFileDecodeModes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gray.png")
	writePNG(t, path, 255)
	files, err := LoadImageFiles(path)
	require.NoError(t, err)

	for mode, channels := range map[images.ColorMode]int{
		images.ColorModeRGB:       3,
		images.ColorModeGrayscale: 1,
		images.ColorModeUnchanged: 1,
	} {
		img, err := files[0].Decode(mode)
		require.NoError(t, err)
		assert.Equal(t, channels, img.Shape.Channels, "mode %d", mode)
	}
}

func TestImageFileDecodeWebP(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 5, 2))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	var buf bytes.Buffer
	require.NoError(t, webp.Encode(&buf, src, &webp.Options{Lossless: true}))
	path := filepath.Join(t.TempDir(), "bird.webp")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	files, err := LoadImageFiles(path)
	require.NoError(t, err)
	require.Equal(t, images.FormatWebP, files[0].Format)

	img, err := files[0].Decode(images.ColorModeRGB)
	require.NoError(t, err)
	assert.Equal(t, images.Shape{Batch: 1, Channels: 3, Height: 2, Width: 5}, img.Shape)
	for _, v := range img.Data {
		assert.InDelta(t, 1.0, v, 1e-6)
	}
}

func TestLoadImageFilesErrors(t *testing.T) {
	_, err := LoadImageFiles(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	txt := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o644))
	_, err = LoadImageFiles(txt)
	assert.Error(t, err)

	bad := ImageFile{Path: "broken.png", Format: images.FormatPNG, Data: []byte("not a png")}
	_, err = bad.Decode(images.ColorModeRGB)
	assert.Error(t, err)
}
