package images

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"math"
)

// Checksum generates a deterministic checksum for an image to verify
// idempotency. Shape, batch presence and the exact bit pattern of every sample
// contribute, so two images share a checksum only if they are identical.
//
// Arguments:
// - img: The image to compute checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string, or "empty" for a nil or empty image.
//
// Example:
//
// ```go
//
//	checksum := images.Checksum(lr)
//	logger.WithField("checksum", checksum).Info("degraded")
//
// ```
func Checksum(img *Image) string {
	if img == nil || len(img.Data) == 0 {
		return "empty"
	}

	s := img.Shape
	header := []int{s.Batch, s.Channels, s.Height, s.Width, 0}
	if img.Batched {
		header[4] = 1
	}

	buf := make([]byte, 4*(len(header)+len(img.Data)))
	for i, v := range header {
		binary.LittleEndian.PutUint32(buf[4*i:], uint32(v))
	}
	samples := buf[4*len(header):]
	for i, v := range img.Data {
		binary.LittleEndian.PutUint32(samples[4*i:], math.Float32bits(v))
	}

	hash := md5.New()
	hash.Write(buf)
	return fmt.Sprintf("%x", hash.Sum(nil))
}
