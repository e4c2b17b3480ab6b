// Package download resolves a bucket's files to short-lived read URLs.
package download

import (
	"context"
	"fmt"
	"time"

	"github.com/rameshdebur/filebucket/internal/apperror"
	"github.com/rameshdebur/filebucket/internal/bucket"
	"github.com/rameshdebur/filebucket/internal/metrics"
	"github.com/rameshdebur/filebucket/internal/storage"
)

// DefaultURLTTL is how long a pre-signed download URL stays valid.
const DefaultURLTTL = time.Hour

// BucketResolver confirms a bucket is ACTIVE and unexpired.
type BucketResolver interface {
	GetActive(ctx context.Context, id string) (*bucket.Bucket, error)
}

// FileLister lists the file rows of a bucket.
type FileLister interface {
	ListFiles(ctx context.Context, bucketID string) ([]bucket.File, error)
}

// Downloadable is a file with a URL that saves it under its original name.
type Downloadable struct {
	ID          string `json:"id"          example:"8b0d1c4e-2f5a-4a53-9d55-0d6f1b8f0c11"`
	Filename    string `json:"filename"    example:"report.pdf"`
	Size        int64  `json:"size"        example:"482133"`
	MimeType    string `json:"mimeType"    example:"application/pdf"`
	DownloadURL string `json:"downloadUrl" example:"https://storage.example.com/filebucket/..."`
}

// Service mints download URLs.
type Service struct {
	buckets BucketResolver
	files   FileLister
	blobs   storage.Storage
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewService creates a new download Service. ttl <= 0 selects DefaultURLTTL.
func NewService(buckets BucketResolver, files FileLister, blobs storage.Storage, ttl time.Duration, m *metrics.Metrics) *Service {
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}
	return &Service{buckets: buckets, files: files, blobs: blobs, ttl: ttl, metrics: m}
}

// ListDownloadable re-checks the bucket on every call, so a closed or
// expired bucket stops issuing links immediately.
func (s *Service) ListDownloadable(ctx context.Context, bucketID string) ([]Downloadable, error) {
	if _, err := s.buckets.GetActive(ctx, bucketID); err != nil {
		return nil, err
	}

	files, err := s.files.ListFiles(ctx, bucketID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w: %w", apperror.ErrBackend, err)
	}

	out := make([]Downloadable, 0, len(files))
	for _, f := range files {
		u, err := s.blobs.PresignGet(ctx, f.BlobKey, f.Filename, s.ttl)
		if err != nil {
			return nil, fmt.Errorf("presign %s: %w: %w", f.ID, apperror.ErrBackend, err)
		}
		out = append(out, Downloadable{
			ID:          f.ID,
			Filename:    f.Filename,
			Size:        f.Size,
			MimeType:    f.MimeType,
			DownloadURL: u,
		})
	}

	s.metrics.DownloadLinksIssued(len(out))
	return out, nil
}
