package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/socialreel/enhance-worker/internal/config"
)

// S3Store stores objects in an S3-compatible service. A custom endpoint with
// path-style addressing supports non-AWS providers (MinIO, Supabase storage).
type S3Store struct {
	client        *s3.Client
	publicBaseURL string
}

var _ Store = (*S3Store)(nil)

// NewS3Store builds an S3 client from the storage configuration.
// Static credentials and a custom endpoint are optional; without them the
// default AWS resolver chain is used.
func NewS3Store(ctx context.Context, cfg config.StorageConfig) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = &cfg.Endpoint
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:        client,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload puts the object and returns its public URL, formed from the
// configured public base URL as <base>/<bucket>/<key>.
func (s *S3Store) Upload(ctx context.Context, bucket, key, contentType string, body io.Reader) (string, error) {
	log.Debug().Str("bucket", bucket).Str("key", key).Msg("Uploading object")

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: &contentType,
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s/%s: %w", bucket, key, err)
	}

	url := fmt.Sprintf("%s/%s/%s", s.publicBaseURL, bucket, key)
	log.Info().Str("bucket", bucket).Str("key", key).Str("url", url).Msg("Object uploaded")
	return url, nil
}
