package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

// Color correction parameters. Factors are expressed as relative change
// (0.3 = +30%) applied in the listed order.
const (
	contrastBoost   = 0.3
	saturationBoost = 0.2
	brightnessBoost = 0.1

	// Mild unsharp mask standing in for a 1.5x sharpness boost.
	correctSharpenRadius = 1.0
	correctSharpenAmount = 0.5
)

// Aesthetic filter parameters: a soft blur followed by an unsharp mask
// (radius 2, amount 150%) gives the glowy-but-crisp social media look.
const (
	filterBlurRadius    = 0.5
	filterUnsharpRadius = 2.0
	filterUnsharpAmount = 1.5
)

// ColorCorrect applies the fixed correction chain: contrast, saturation,
// brightness, then sharpening.
func ColorCorrect(img image.Image) image.Image {
	out := adjust.Contrast(img, contrastBoost)
	out = adjust.Saturation(out, saturationBoost)
	out = adjust.Brightness(out, brightnessBoost)
	return effect.UnsharpMask(out, correctSharpenRadius, correctSharpenAmount)
}

// AestheticFilter applies the fixed soft-blur + unsharp-mask filter.
func AestheticFilter(img image.Image) image.Image {
	out := blur.Gaussian(img, filterBlurRadius)
	return effect.UnsharpMask(out, filterUnsharpRadius, filterUnsharpAmount)
}
