// Command worker runs the media enhancement HTTP worker.
//
// It accepts enhancement jobs on POST /process, runs the photo or video
// pipeline against the referenced media, and returns the final result with
// uploaded URLs and AI-generated captions.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/socialreel/enhance-worker/internal/caption"
	"github.com/socialreel/enhance-worker/internal/config"
	"github.com/socialreel/enhance-worker/internal/ffmpeg"
	"github.com/socialreel/enhance-worker/internal/logging"
	"github.com/socialreel/enhance-worker/internal/photo"
	"github.com/socialreel/enhance-worker/internal/pipeline"
	"github.com/socialreel/enhance-worker/internal/storage"
	"github.com/socialreel/enhance-worker/internal/superres"
	"github.com/socialreel/enhance-worker/internal/video"
)

func main() {
	start := time.Now()

	// A missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()

	store, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize blob storage")
	}

	upscaler := superres.NewClient(cfg.Upscale)

	captionModel := buildCaptionModel(ctx, cfg.Gemini)
	captioner := caption.NewGenerator(captionModel)

	if err := ffmpeg.CheckAvailable(); err != nil {
		log.Warn().Err(err).Msg("ffmpeg not available; video jobs will fail")
	}

	photoEnhancer := photo.NewEnhancer(upscaler, store, cfg.Storage, cfg.Worker.TempDir)
	videoEnhancer := video.NewEnhancer(ffmpeg.ExecRunner{}, upscaler, store, cfg.Storage, cfg.Worker.TempDir)
	processor := pipeline.NewProcessor(photoEnhancer, videoEnhancer, captioner, cfg.Worker.TempDir, nil)

	logging.NewStartupLogger("enhance-worker").
		InitDuration(time.Since(start)).
		Bucket("media", cfg.Storage.MediaBucket).
		Bucket("thumbnail", cfg.Storage.ThumbnailBucket).
		Feature("ffmpeg", ffmpeg.IsAvailable()).
		Feature("ai_upscale", upscaler.IsConfigured()).
		Feature("ai_captions", captionModel != nil).
		Config("port", cfg.Worker.Port).
		Config("temp_dir", cfg.Worker.TempDir).
		Config("gemini_model", cfg.Gemini.Model).
		Log()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/process", handleProcess(processor))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	addr := ":" + cfg.Worker.Port
	log.Info().Str("addr", addr).Msg("Worker listening")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

// buildCaptionModel returns nil when no API key is configured; the caption
// engine then serves its fixed fallback set.
func buildCaptionModel(ctx context.Context, cfg config.GeminiConfig) caption.Model {
	if cfg.APIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set; captions will use the fallback set")
		return nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create Gemini client; captions will use the fallback set")
		return nil
	}
	return caption.NewGeminiModel(client, cfg.Model)
}

func handleProcess(processor *pipeline.Processor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var job pipeline.Job
		if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
			return
		}

		result, err := processor.Process(r.Context(), job)
		if err != nil {
			log.Error().Err(err).Str("job_id", job.JobID).Msg("Job failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
