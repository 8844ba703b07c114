package imaging

import (
	"image"

	"golang.org/x/image/draw"
)

// Upscale2x doubles the image in each dimension using CatmullRom resampling.
// This is the deterministic local fallback for AI super-resolution.
func Upscale2x(img image.Image) image.Image {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx()*2, bounds.Dy()*2))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// Thumbnail bounds the image to maxDim in each dimension, preserving aspect
// ratio. Images already within bounds are returned unchanged.
func Thumbnail(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := FitDimensions(w, h, maxDim)
	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// FitDimensions scales (w, h) down so the larger dimension equals maxDim,
// preserving aspect ratio. Dimensions never drop below 1.
func FitDimensions(w, h, maxDim int) (int, int) {
	if w >= h {
		newH := h * maxDim / w
		if newH < 1 {
			newH = 1
		}
		return maxDim, newH
	}
	newW := w * maxDim / h
	if newW < 1 {
		newW = 1
	}
	return newW, maxDim
}
