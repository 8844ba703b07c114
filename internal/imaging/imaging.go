// Package imaging implements the local image operations used by the photo
// pipeline: decode/encode, color correction, the aesthetic filter, the
// upscale fallback, and thumbnailing.
package imaging

import (
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
)

const (
	// StageQuality is the JPEG quality for intermediate and final stage outputs.
	StageQuality = 95
	// ThumbnailQuality is the JPEG quality for thumbnails.
	ThumbnailQuality = 85
)

// Decode reads and decodes a JPEG or PNG image from path. The format is
// sniffed from the content, not the extension: external services sometimes
// return PNG bytes for a .jpg request.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}

// EncodeJPEG writes img to path as JPEG at the given quality.
func EncodeJPEG(img image.Image, path string, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("encode jpeg %s: %w", path, err)
	}
	return nil
}
