// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup:
// MinioStorage works with any S3-compatible provider, S3Storage talks to AWS S3
// (or R2) through the AWS SDK, and MemoryStorage backs local development and tests.
package storage

import (
	"context"
	"io"
	"mime"
	"sync"
	"time"
)

// Storage is the interface for writing, removing and sharing blob objects.
type Storage interface {
	// Upload streams data to the store under the given key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Delete removes an object identified by key.
	Delete(ctx context.Context, key string) error
	// DeleteMany removes all keys in one batched call. Any per-key failure fails the call.
	DeleteMany(ctx context.Context, keys []string) error
	// PresignPut returns a URL the client can PUT the object bytes to until ttl elapses.
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	// PresignGet returns a download URL that asks the browser to save the object as filename.
	PresignGet(ctx context.Context, key, filename string, ttl time.Duration) (string, error)
	// EnsureCORS applies the browser upload CORS rules to the bucket. Safe to call repeatedly.
	EnsureCORS(ctx context.Context) error
}

// ContentDisposition builds an attachment header value for filename.
func ContentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}

// corsGuard runs a CORS setup call until it succeeds once, then never again.
// Concurrent callers wait for the in-flight attempt instead of issuing their own.
type corsGuard struct {
	mu   sync.Mutex
	done bool
}

func (g *corsGuard) run(ctx context.Context, apply func(context.Context) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.done {
		return nil
	}
	if err := apply(ctx); err != nil {
		return err
	}
	g.done = true
	return nil
}

// corsMethods are the verbs browsers need for direct uploads and downloads.
var corsMethods = []string{"GET", "PUT", "HEAD"}

const corsMaxAgeSeconds = 3000
