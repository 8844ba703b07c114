// Package video implements the video enhancement pipeline.
//
// A video passes through six stages: stabilization, a cinematic color grade,
// AI super-resolution (with a local ffmpeg scale fallback), fade transitions,
// a 9:16 mobile reframe, and thumbnail extraction. A background music track
// is attached by uniform random choice from a fixed library.
package video

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/socialreel/enhance-worker/internal/config"
	"github.com/socialreel/enhance-worker/internal/ffmpeg"
	"github.com/socialreel/enhance-worker/internal/pipeline"
	"github.com/socialreel/enhance-worker/internal/stage"
	"github.com/socialreel/enhance-worker/internal/storage"
	"github.com/socialreel/enhance-worker/internal/superres"
	"github.com/socialreel/enhance-worker/internal/workspace"
)

// aiStyle labels results produced by this pipeline.
const aiStyle = "cinematic"

// thumbnailAtSeconds is where the thumbnail frame is taken from.
const thumbnailAtSeconds = 1

// musicLibrary is the fixed set of background tracks. Selection is uniform
// random, not content-aware.
var musicLibrary = []string{
	"https://example.com/music/upbeat1.mp3",
	"https://example.com/music/chill1.mp3",
	"https://example.com/music/energetic1.mp3",
}

// Enhancer runs the video enhancement pipeline.
type Enhancer struct {
	ffmpeg   ffmpeg.Runner
	upscaler superres.Upscaler
	store    storage.Store
	storage  config.StorageConfig
	tempRoot string

	mu  sync.Mutex // guards rng across concurrent runs
	rng *rand.Rand
}

// NewEnhancer wires the video pipeline's capabilities.
func NewEnhancer(runner ffmpeg.Runner, upscaler superres.Upscaler, store storage.Store, storageCfg config.StorageConfig, tempRoot string) *Enhancer {
	return &Enhancer{
		ffmpeg:   runner,
		upscaler: upscaler,
		store:    store,
		storage:  storageCfg,
		tempRoot: tempRoot,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Enhance runs every stage against the video at inputPath and uploads the
// final cut and its thumbnail. Intermediate files are always cleaned up.
func (e *Enhancer) Enhance(ctx context.Context, inputPath, userID string) (*pipeline.EnhancementResult, error) {
	start := time.Now()
	ws := workspace.New(e.tempRoot)
	defer ws.Destroy()

	runner := stage.NewRunner()

	stabilized := ws.Allocate("stabilized.mp4")
	graded := ws.Allocate("graded.mp4")
	upscaled := ws.Allocate("upscaled.mp4")
	final := ws.Allocate("final.mp4")
	mobile := ws.Allocate("mobile.mp4")
	thumbnail := ws.Allocate("thumbnail.jpg")

	steps := []struct {
		st      stage.Stage
		in, out string
	}{
		{stage.Stage{Name: "stabilize", Primary: e.filterStage(ffmpeg.GraphDeshake)}, inputPath, stabilized},
		{stage.Stage{Name: "colorGrade", Primary: e.filterStage(ffmpeg.GraphVintageGrade)}, stabilized, graded},
		{stage.Stage{Name: "aiUpscale", Primary: e.aiUpscale, Fallback: e.filterStage(ffmpeg.GraphScaleFallback)}, graded, upscaled},
		{stage.Stage{Name: "transitions", Primary: e.filterStage(ffmpeg.GraphTransitions)}, upscaled, final},
		{stage.Stage{Name: "reframe", Primary: e.filterStage(ffmpeg.GraphReframe)}, final, mobile},
		{stage.Stage{Name: "thumbnail", Primary: e.extractThumbnail}, mobile, thumbnail},
	}
	for _, s := range steps {
		if err := runner.Run(ctx, s.st, s.in, s.out); err != nil {
			return nil, fmt.Errorf("video pipeline: %w", err)
		}
	}

	mediaURL, err := e.upload(ctx, e.storage.MediaBucket, mobile, userID, ".mp4", "video/mp4")
	if err != nil {
		return nil, fmt.Errorf("upload enhanced video: %w", err)
	}
	thumbURL, err := e.upload(ctx, e.storage.ThumbnailBucket, thumbnail, userID, ".jpg", "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("upload video thumbnail: %w", err)
	}

	music := e.pickMusic()

	log.Info().
		Str("run_id", ws.RunID()).
		Str("user_id", userID).
		Dur("duration", time.Since(start)).
		Bool("used_fallback", runner.UsedFallback("aiUpscale")).
		Str("music_url", music).
		Msg("Video enhancement complete")

	return &pipeline.EnhancementResult{
		MediaURL:     mediaURL,
		ThumbnailURL: thumbURL,
		MusicURL:     &music,
		AIStyle:      aiStyle,
	}, nil
}

// pickMusic selects a background track uniformly at random.
func (e *Enhancer) pickMusic() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return musicLibrary[e.rng.Intn(len(musicLibrary))]
}

// filterStage wraps one ffmpeg filter graph as a stage function.
func (e *Enhancer) filterStage(graph string) stage.Func {
	return func(ctx context.Context, in, out string) error {
		return e.ffmpeg.Run(ctx, ffmpeg.FilterArgs(in, out, graph))
	}
}

// aiUpscale sends the whole video file to the super-resolution service.
func (e *Enhancer) aiUpscale(ctx context.Context, in, out string) error {
	return e.upscaler.Upscale(ctx, in, out, 2, true)
}

// extractThumbnail grabs the frame at the 1s mark, retrying at 0s for clips
// shorter than a second.
func (e *Enhancer) extractThumbnail(ctx context.Context, in, out string) error {
	err := e.ffmpeg.Run(ctx, ffmpeg.FrameArgs(in, out, thumbnailAtSeconds))
	if err == nil {
		return nil
	}

	log.Warn().Err(err).Str("input", in).Msg("Thumbnail extraction at 1s failed, retrying at 0s")
	return e.ffmpeg.Run(ctx, ffmpeg.FrameArgs(in, out, 0))
}

// upload stores the file under a fresh random key namespaced by user.
func (e *Enhancer) upload(ctx context.Context, bucket, path, userID, ext, contentType string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	key := fmt.Sprintf("%s/%s%s", userID, uuid.NewString(), ext)
	return e.store.Upload(ctx, bucket, key, contentType, f)
}
