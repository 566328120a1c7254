package util

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-lam/images"
	"github.com/nvr-ai/go-lam/images/opencv"
)

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Name is the file name without directory or extension.
	Name string
	// Format is the codec implied by the extension.
	Format images.ImageFormat
	// Data is the raw bytes of the image file.
	Data []byte
	// Frame is the frame number parsed from a "frame-N" name, or -1.
	Frame int
}

// Decode decodes the file into a float image. JPEG and PNG go through
// OpenCV's codecs; WebP is decoded in Go so the loader does not depend on
// OpenCV having been built with libwebp.
func (f ImageFile) Decode(mode images.ColorMode) (*images.Image, error) {
	var (
		img *images.Image
		err error
	)
	if f.Format == images.FormatWebP {
		img, err = images.Decode(f.Data, f.Format, mode)
	} else {
		img, err = opencv.Decode(f.Data, mode)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", f.Path)
	}
	return img, nil
}

// LoadImageFiles loads path, which is either a single image file or a
// directory of image files.
//
// Arguments:
// - path: File or directory path.
//
// Returns:
// - []ImageFile: The loaded files.
// - error: Error if loading fails.
func LoadImageFiles(path string) ([]ImageFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if info.IsDir() {
		return LoadDirectoryImageFiles(path)
	}
	f, err := loadImageFile(path)
	if err != nil {
		return nil, err
	}
	return []ImageFile{f}, nil
}

// LoadDirectoryImageFiles reads all image files from a directory.
//
// Files named "frame-N.<ext>" are ordered by N and come first; every other
// file follows in name order. Files with an unknown extension are skipped.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: Slice of ImageFile, each containing the raw bytes of an image file.
// - error: Error if loading fails.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var loaded []ImageFile
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		if _, err := images.FormatFromPath(file.Name()); err != nil {
			continue
		}
		f, err := loadImageFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return nil, err
		}
		loaded = append(loaded, f)
	}

	sort.SliceStable(loaded, func(i, j int) bool {
		a, b := loaded[i], loaded[j]
		if (a.Frame >= 0) != (b.Frame >= 0) {
			return a.Frame >= 0
		}
		if a.Frame != b.Frame {
			return a.Frame < b.Frame
		}
		return a.Name < b.Name
	})

	return loaded, nil
}

func loadImageFile(path string) (ImageFile, error) {
	format, err := images.FormatFromPath(path)
	if err != nil {
		return ImageFile{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ImageFile{}, errors.WithStack(err)
	}
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	frame := -1
	if n, ok := strings.CutPrefix(name, "frame-"); ok {
		if v, err := strconv.Atoi(n); err == nil {
			frame = v
		}
	}
	return ImageFile{Path: path, Name: name, Format: format, Data: data, Frame: frame}, nil
}
