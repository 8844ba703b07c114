// Package storage provides the blob storage capability: store bytes under a
// key in a named bucket and get back a public URL.
package storage

import (
	"context"
	"io"
)

// Store is the blob storage capability used by the enhancement pipelines.
type Store interface {
	// Upload stores the contents of body under key in bucket and returns
	// the object's public URL.
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader) (string, error)
}
