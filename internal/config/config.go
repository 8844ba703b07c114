// Package config holds the worker configuration.
//
// Configuration is an explicit struct injected into each component at
// construction time; nothing reads the environment after Load returns.
//
// Environment variables:
//
// Gemini (captions):
//   - GEMINI_API_KEY: API key for the Gemini API (required for captions)
//   - GEMINI_MODEL: model name (default: gemini-2.5-flash)
//
// Super-resolution service:
//   - UPSCALE_API_URL: prediction endpoint (default: https://api.replicate.com/v1/predictions)
//   - UPSCALE_API_TOKEN: API token (empty disables the primary upscale path)
//   - UPSCALE_MODEL_VERSION: model version identifier
//
// Storage (S3-compatible):
//   - STORAGE_ENDPOINT: endpoint URL (empty uses the default AWS resolver)
//   - STORAGE_REGION: region (default: us-east-1)
//   - STORAGE_ACCESS_KEY / STORAGE_SECRET_KEY: static credentials (optional)
//   - STORAGE_MEDIA_BUCKET: bucket for processed media (default: processed-media)
//   - STORAGE_THUMBNAIL_BUCKET: bucket for thumbnails (default: thumbnails)
//   - STORAGE_PUBLIC_BASE_URL: public URL prefix for uploaded objects (required)
//
// Worker:
//   - WORKER_PORT: HTTP listen port (default: 8080)
//   - WORKER_TEMP_DIR: temp root for pipeline workspaces (default: os.TempDir())
package config

import (
	"fmt"
	"os"
)

// Config is the root configuration for the worker.
type Config struct {
	Gemini  GeminiConfig
	Upscale UpscaleConfig
	Storage StorageConfig
	Worker  WorkerConfig
}

// GeminiConfig configures the caption generation capability.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// UpscaleConfig configures the super-resolution capability.
type UpscaleConfig struct {
	APIURL       string
	APIToken     string
	ModelVersion string
}

// StorageConfig configures the blob storage capability.
type StorageConfig struct {
	Endpoint        string
	Region          string
	AccessKey       string
	SecretKey       string
	MediaBucket     string
	ThumbnailBucket string
	PublicBaseURL   string
}

// WorkerConfig configures the worker process itself.
type WorkerConfig struct {
	Port    string
	TempDir string
}

// Load reads the configuration from the environment.
// It returns an error for settings the worker cannot run without; optional
// capabilities (Gemini, upscale service) degrade to their fallbacks instead.
func Load() (*Config, error) {
	cfg := &Config{
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Upscale: UpscaleConfig{
			APIURL:       envOr("UPSCALE_API_URL", "https://api.replicate.com/v1/predictions"),
			APIToken:     os.Getenv("UPSCALE_API_TOKEN"),
			ModelVersion: os.Getenv("UPSCALE_MODEL_VERSION"),
		},
		Storage: StorageConfig{
			Endpoint:        os.Getenv("STORAGE_ENDPOINT"),
			Region:          envOr("STORAGE_REGION", "us-east-1"),
			AccessKey:       os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey:       os.Getenv("STORAGE_SECRET_KEY"),
			MediaBucket:     envOr("STORAGE_MEDIA_BUCKET", "processed-media"),
			ThumbnailBucket: envOr("STORAGE_THUMBNAIL_BUCKET", "thumbnails"),
			PublicBaseURL:   os.Getenv("STORAGE_PUBLIC_BASE_URL"),
		},
		Worker: WorkerConfig{
			Port:    envOr("WORKER_PORT", "8080"),
			TempDir: envOr("WORKER_TEMP_DIR", os.TempDir()),
		},
	}

	if cfg.Storage.PublicBaseURL == "" {
		return nil, fmt.Errorf("STORAGE_PUBLIC_BASE_URL is required")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
