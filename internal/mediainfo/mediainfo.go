// Package mediainfo extracts capture metadata from source media to enrich
// caption prompts. Extraction is best-effort: a photo without EXIF or a
// video ffprobe cannot read simply yields no context.
//
// Images use the pure-Go imagemeta library; videos use ffprobe.
package mediainfo

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"

	"github.com/socialreel/enhance-worker/internal/ffmpeg"
)

// Info holds the capture metadata relevant to caption generation.
type Info struct {
	MediaType string // "photo" or "video"

	Width    int
	Height   int
	Duration time.Duration // videos only

	CameraMake  string
	CameraModel string

	TakenAt time.Time
	HasDate bool
}

// ForPhoto extracts EXIF metadata from an image file. Returns nil when no
// usable metadata is present.
func ForPhoto(path string) *Info {
	f, err := os.Open(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("Cannot open photo for metadata")
		return nil
	}
	defer f.Close()

	exif, err := imagemeta.Decode(f)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("No EXIF metadata in photo")
		return nil
	}

	info := &Info{
		MediaType:   "photo",
		CameraMake:  strings.TrimSpace(exif.Make),
		CameraModel: strings.TrimSpace(exif.Model),
	}

	// DateTimeOriginal is preferred; CreateDate and ModifyDate are fallbacks.
	switch {
	case !exif.DateTimeOriginal().IsZero():
		info.TakenAt, info.HasDate = exif.DateTimeOriginal(), true
	case !exif.CreateDate().IsZero():
		info.TakenAt, info.HasDate = exif.CreateDate(), true
	case !exif.ModifyDate().IsZero():
		info.TakenAt, info.HasDate = exif.ModifyDate(), true
	}

	if !info.HasDate && info.CameraMake == "" && info.CameraModel == "" {
		return nil
	}
	return info
}

// ForVideo extracts stream properties via ffprobe. Returns nil on failure.
func ForVideo(ctx context.Context, path string) *Info {
	probed, err := ffmpeg.Probe(ctx, path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("Cannot probe video for metadata")
		return nil
	}
	return &Info{
		MediaType: "video",
		Width:     probed.Width,
		Height:    probed.Height,
		Duration:  probed.Duration,
	}
}

// PromptContext formats the metadata as a text block for inclusion in the
// describe prompt. Empty when the receiver is nil.
func (i *Info) PromptContext() string {
	if i == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Capture details:\n")

	if i.Width > 0 && i.Height > 0 {
		sb.WriteString(fmt.Sprintf("- Resolution: %dx%d\n", i.Width, i.Height))
	}
	if i.Duration > 0 {
		sb.WriteString(fmt.Sprintf("- Duration: %.0f seconds\n", i.Duration.Seconds()))
	}
	if i.HasDate {
		sb.WriteString(fmt.Sprintf("- Taken: %s\n", i.TakenAt.Format("Monday, January 2, 2006 3:04 PM")))
	}
	if i.CameraMake != "" || i.CameraModel != "" {
		sb.WriteString(fmt.Sprintf("- Camera: %s %s\n", i.CameraMake, i.CameraModel))
	}

	return sb.String()
}
