// Package pipeline orchestrates one enhancement job end to end: download the
// source media, dispatch to the photo or video pipeline, generate captions,
// and assemble the final result.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/socialreel/enhance-worker/internal/caption"
	"github.com/socialreel/enhance-worker/internal/mediainfo"
)

// MediaType classifies a job's source media.
const (
	MediaTypePhoto = "photo"
	MediaTypeVideo = "video"
)

// videoExtensions are the source extensions routed to the video pipeline.
// Everything else is treated as a photo.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
}

// Enhancer is the per-media-type pipeline contract.
type Enhancer interface {
	Enhance(ctx context.Context, inputPath, userID string) (*EnhancementResult, error)
}

// Captioner produces the caption set for uploaded media. It never fails;
// degraded generation yields fixed content.
type Captioner interface {
	Generate(ctx context.Context, mediaURL string, info *mediainfo.Info) *caption.Set
}

// Processor runs enhancement jobs.
type Processor struct {
	photo      Enhancer
	video      Enhancer
	captioner  Captioner
	httpClient *http.Client
	tempDir    string
}

// NewProcessor wires the orchestrator. httpClient may be nil, in which case
// a default client with a download timeout is used.
func NewProcessor(photo, video Enhancer, captioner Captioner, tempDir string, httpClient *http.Client) *Processor {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Processor{
		photo:      photo,
		video:      video,
		captioner:  captioner,
		httpClient: httpClient,
		tempDir:    tempDir,
	}
}

// Process runs one job to completion and returns the final result. On any
// failure a single wrapped error is returned; no partial result is produced.
// The downloaded source file is removed on every exit path.
func (p *Processor) Process(ctx context.Context, job Job) (*Result, error) {
	start := time.Now()
	log.Info().
		Str("job_id", job.JobID).
		Str("user_id", job.UserID).
		Str("media_url", job.MediaURL).
		Msg("Processing job")

	srcPath, mediaType, err := p.download(ctx, job.MediaURL)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", job.JobID, err)
	}
	defer func() {
		if err := os.Remove(srcPath); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", srcPath).Msg("Failed to remove downloaded source")
		}
	}()

	info := p.captureInfo(ctx, srcPath, mediaType)

	enhancer := p.photo
	if mediaType == MediaTypeVideo {
		enhancer = p.video
	}
	enhanced, err := enhancer.Enhance(ctx, srcPath, job.UserID)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", job.JobID, err)
	}

	captions := p.captioner.Generate(ctx, enhanced.MediaURL, info)

	log.Info().
		Str("job_id", job.JobID).
		Str("media_type", mediaType).
		Dur("duration", time.Since(start)).
		Msg("Job complete")

	return &Result{
		JobID:        job.JobID,
		MediaType:    mediaType,
		MediaURL:     enhanced.MediaURL,
		ThumbnailURL: enhanced.ThumbnailURL,
		MusicURL:     enhanced.MusicURL,
		AIStyle:      enhanced.AIStyle,
		Caption:      captions.Primary(),
		Captions:     captions.Captions,
	}, nil
}

// download fetches the job's source media into the temp dir and classifies
// it by URL extension.
func (p *Processor) download(ctx context.Context, mediaURL string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("build download request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("download media: unexpected status %d", resp.StatusCode)
	}

	ext := urlExtension(mediaURL)
	srcPath := filepath.Join(p.tempDir, uuid.NewString()+ext)

	f, err := os.Create(srcPath)
	if err != nil {
		return "", "", fmt.Errorf("create source file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(srcPath)
		return "", "", fmt.Errorf("write source file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(srcPath)
		return "", "", fmt.Errorf("close source file: %w", err)
	}

	return srcPath, mediaTypeFor(ext), nil
}

// captureInfo extracts local metadata for the caption prompt. Failures are
// not errors; captions simply run without capture context.
func (p *Processor) captureInfo(ctx context.Context, srcPath, mediaType string) *mediainfo.Info {
	if mediaType == MediaTypeVideo {
		return mediainfo.ForVideo(ctx, srcPath)
	}
	return mediainfo.ForPhoto(srcPath)
}

// urlExtension returns the lowercased file extension of the URL path,
// ignoring any query string.
func urlExtension(mediaURL string) string {
	return strings.ToLower(path.Ext(strings.SplitN(mediaURL, "?", 2)[0]))
}

// mediaTypeFor classifies an extension as photo or video.
func mediaTypeFor(ext string) string {
	if videoExtensions[ext] {
		return MediaTypeVideo
	}
	return MediaTypePhoto
}
