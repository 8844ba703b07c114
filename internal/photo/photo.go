// Package photo implements the photo enhancement pipeline.
//
// A photo passes through four stages: AI super-resolution (with a local
// resize fallback), fixed-parameter color correction, an aesthetic filter,
// and thumbnail generation. The filtered image and the thumbnail are then
// uploaded to blob storage.
package photo

import (
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/socialreel/enhance-worker/internal/config"
	"github.com/socialreel/enhance-worker/internal/imaging"
	"github.com/socialreel/enhance-worker/internal/pipeline"
	"github.com/socialreel/enhance-worker/internal/stage"
	"github.com/socialreel/enhance-worker/internal/storage"
	"github.com/socialreel/enhance-worker/internal/superres"
	"github.com/socialreel/enhance-worker/internal/workspace"
)

// thumbnailMaxDim bounds photo thumbnails to a 400x400 box.
const thumbnailMaxDim = 400

// aiStyle labels results produced by this pipeline.
const aiStyle = "enhanced"

// Enhancer runs the photo enhancement pipeline.
type Enhancer struct {
	upscaler superres.Upscaler
	store    storage.Store
	storage  config.StorageConfig
	tempRoot string
}

// NewEnhancer wires the photo pipeline's capabilities.
func NewEnhancer(upscaler superres.Upscaler, store storage.Store, storageCfg config.StorageConfig, tempRoot string) *Enhancer {
	return &Enhancer{
		upscaler: upscaler,
		store:    store,
		storage:  storageCfg,
		tempRoot: tempRoot,
	}
}

// Enhance runs every stage against the photo at inputPath and uploads the
// final image and its thumbnail. Intermediate files are always cleaned up.
func (e *Enhancer) Enhance(ctx context.Context, inputPath, userID string) (*pipeline.EnhancementResult, error) {
	start := time.Now()
	ws := workspace.New(e.tempRoot)
	defer ws.Destroy()

	runner := stage.NewRunner()

	enhanced := ws.Allocate("enhanced.jpg")
	corrected := ws.Allocate("corrected.jpg")
	filtered := ws.Allocate("filtered.jpg")
	thumbnail := ws.Allocate("thumbnail.jpg")

	steps := []struct {
		st      stage.Stage
		in, out string
	}{
		{stage.Stage{Name: "aiEnhance", Primary: e.aiEnhance, Fallback: localUpscale}, inputPath, enhanced},
		{stage.Stage{Name: "colorCorrect", Primary: colorCorrect}, enhanced, corrected},
		{stage.Stage{Name: "aestheticFilter", Primary: aestheticFilter}, corrected, filtered},
		{stage.Stage{Name: "thumbnail", Primary: makeThumbnail}, filtered, thumbnail},
	}
	for _, s := range steps {
		if err := runner.Run(ctx, s.st, s.in, s.out); err != nil {
			return nil, fmt.Errorf("photo pipeline: %w", err)
		}
	}

	mediaURL, err := e.upload(ctx, e.storage.MediaBucket, filtered, userID)
	if err != nil {
		return nil, fmt.Errorf("upload enhanced photo: %w", err)
	}
	thumbURL, err := e.upload(ctx, e.storage.ThumbnailBucket, thumbnail, userID)
	if err != nil {
		return nil, fmt.Errorf("upload photo thumbnail: %w", err)
	}

	log.Info().
		Str("run_id", ws.RunID()).
		Str("user_id", userID).
		Dur("duration", time.Since(start)).
		Bool("used_fallback", runner.UsedFallback("aiEnhance")).
		Msg("Photo enhancement complete")

	return &pipeline.EnhancementResult{
		MediaURL:     mediaURL,
		ThumbnailURL: thumbURL,
		MusicURL:     nil,
		AIStyle:      aiStyle,
	}, nil
}

// aiEnhance sends the photo to the super-resolution service at 2x with face
// enhancement.
func (e *Enhancer) aiEnhance(ctx context.Context, in, out string) error {
	return e.upscaler.Upscale(ctx, in, out, 2, true)
}

// localUpscale is the aiEnhance fallback: a 2x resize with a high-quality
// resampling kernel.
func localUpscale(_ context.Context, in, out string) error {
	return transform(in, out, imaging.StageQuality, imaging.Upscale2x)
}

func colorCorrect(_ context.Context, in, out string) error {
	return transform(in, out, imaging.StageQuality, imaging.ColorCorrect)
}

func aestheticFilter(_ context.Context, in, out string) error {
	return transform(in, out, imaging.StageQuality, imaging.AestheticFilter)
}

func makeThumbnail(_ context.Context, in, out string) error {
	return transform(in, out, imaging.ThumbnailQuality, func(img image.Image) image.Image {
		return imaging.Thumbnail(img, thumbnailMaxDim)
	})
}

// transform decodes in, applies fn, and writes the JPEG result to out.
func transform(in, out string, quality int, fn func(image.Image) image.Image) error {
	img, err := imaging.Decode(in)
	if err != nil {
		return stage.Errorf(stage.KindMalformed, "decode %s: %w", in, err)
	}
	if err := imaging.EncodeJPEG(fn(img), out, quality); err != nil {
		return stage.Errorf(stage.KindIO, "encode %s: %w", out, err)
	}
	return nil
}

// upload stores the file under a fresh random key namespaced by user.
func (e *Enhancer) upload(ctx context.Context, bucket, path, userID string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	key := fmt.Sprintf("%s/%s.jpg", userID, uuid.NewString())
	return e.store.Upload(ctx, bucket, key, "image/jpeg", f)
}
