package ffmpeg

import "fmt"

// Named filter graphs for the video enhancement stages. All values are fixed
// by the product's "cinematic" look; none are content-derived.
const (
	// GraphDeshake stabilizes shaky footage.
	GraphDeshake = "deshake"

	// GraphVintageGrade applies the cinematic color grade: a vintage curve
	// plus fixed contrast/brightness/saturation equalization.
	GraphVintageGrade = "curves=vintage,eq=contrast=1.2:brightness=0.05:saturation=1.3"

	// GraphTransitions fades in over the first 30 frames and out for one
	// second starting at the 8s mark. Fixed, not duration-aware.
	GraphTransitions = "fade=in:0:30,fade=out:st=8:d=1"

	// GraphReframe crops to a 9:16 mobile portrait frame: scale up so both
	// dimensions cover 1080x1920, then center-crop.
	GraphReframe = "scale=1080:1920:force_original_aspect_ratio=increase,crop=1080:1920"

	// GraphScaleFallback is the local stand-in for AI upscaling.
	GraphScaleFallback = "scale=1080:1920:flags=lanczos"

	// GraphThumbnailScale sizes the extracted thumbnail frame.
	GraphThumbnailScale = "scale=1080:1920"
)

// FilterArgs builds the argument list for applying a filter graph to a video.
// The audio track is passed through unchanged (stream copy); every
// enhancement stage, including the upscale fallback, preserves audio.
func FilterArgs(in, out, graph string) []string {
	return []string{
		"-i", in,
		"-vf", graph,
		"-c:v", "libx264", "-preset", "medium",
		"-c:a", "copy",
		"-y", out,
	}
}

// FrameArgs builds the argument list for extracting a single scaled frame at
// the given timestamp in seconds.
func FrameArgs(in, out string, atSeconds int) []string {
	args := []string{"-i", in}
	if atSeconds > 0 {
		args = append(args, "-ss", fmt.Sprintf("%d", atSeconds))
	}
	return append(args,
		"-vframes", "1",
		"-vf", GraphThumbnailScale,
		"-f", "image2",
		"-y", out,
	)
}
