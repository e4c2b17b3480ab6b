// Package upload registers files into active buckets, either by streaming
// them through the server or by handing out pre-signed PUT URLs.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rameshdebur/filebucket/internal/apperror"
	"github.com/rameshdebur/filebucket/internal/bucket"
	"github.com/rameshdebur/filebucket/internal/metrics"
	"github.com/rameshdebur/filebucket/internal/storage"
)

const (
	// DefaultContentType is stored when the client sends none.
	DefaultContentType = "application/octet-stream"

	// DefaultMaxPresignedBytes caps a declared pre-signed upload.
	DefaultMaxPresignedBytes = 100 << 20

	// DefaultUploadURLTTL is how long a pre-signed PUT URL stays valid.
	DefaultUploadURLTTL = 15 * time.Minute
)

// BucketResolver confirms a bucket is ACTIVE and unexpired.
type BucketResolver interface {
	GetActive(ctx context.Context, id string) (*bucket.Bucket, error)
}

// FileRecorder persists file rows.
type FileRecorder interface {
	CreateFile(ctx context.Context, f *bucket.File) error
}

// Options tunes a Service.
type Options struct {
	MaxPresignedBytes int64
	UploadURLTTL      time.Duration
	Now               func() time.Time
	Metrics           *metrics.Metrics
}

// Service coordinates blob writes with their file rows.
type Service struct {
	buckets BucketResolver
	files   FileRecorder
	blobs   storage.Storage
	opts    Options
}

// NewService creates a new upload Service.
func NewService(buckets BucketResolver, files FileRecorder, blobs storage.Storage, opts Options) *Service {
	if opts.MaxPresignedBytes <= 0 {
		opts.MaxPresignedBytes = DefaultMaxPresignedBytes
	}
	if opts.UploadURLTTL <= 0 {
		opts.UploadURLTTL = DefaultUploadURLTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{buckets: buckets, files: files, blobs: blobs, opts: opts}
}

// Incoming is one file streamed through the proxied flow.
type Incoming struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Uploaded describes a stored file.
type Uploaded struct {
	FileID   string `json:"fileId"   example:"8b0d1c4e-2f5a-4a53-9d55-0d6f1b8f0c11"`
	Filename string `json:"filename" example:"report.pdf"`
	Size     int64  `json:"size"     example:"482133"`
}

// Declared is a file the client intends to PUT directly to storage.
type Declared struct {
	Filename string `json:"filename" example:"holiday.mp4"`
	MimeType string `json:"mimeType" example:"video/mp4"`
	Size     int64  `json:"size"     example:"73400320"`
}

// Grant is a pre-signed upload issued for a Declared file.
type Grant struct {
	FileID    string `json:"fileId"    example:"8b0d1c4e-2f5a-4a53-9d55-0d6f1b8f0c11"`
	Filename  string `json:"filename"  example:"holiday.mp4"`
	UploadURL string `json:"uploadUrl" example:"https://storage.example.com/filebucket/..."`
	BlobKey   string `json:"blobKey"   example:"e7eedc79-0707-4fe4-8734-526b7ef13a7b/8b0d1c4e-2f5a-4a53-9d55-0d6f1b8f0c11-holiday.mp4"`
}

// UploadProxied writes each file to storage and then records it. If the
// row insert fails the blob just written is removed best-effort.
func (s *Service) UploadProxied(ctx context.Context, bucketID string, files []Incoming) ([]Uploaded, error) {
	if _, err := s.buckets.GetActive(ctx, bucketID); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, apperror.Validation("no files provided")
	}

	out := make([]Uploaded, 0, len(files))
	for _, in := range files {
		u, err := s.storeOne(ctx, bucketID, in)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func (s *Service) storeOne(ctx context.Context, bucketID string, in Incoming) (Uploaded, error) {
	f := s.newFile(bucketID, in.Filename, in.ContentType, in.Size)

	body, err := in.Open()
	if err != nil {
		return Uploaded{}, fmt.Errorf("open %q: %w", in.Filename, err)
	}
	defer body.Close()

	if err := s.blobs.Upload(ctx, f.BlobKey, body, f.Size, f.MimeType); err != nil {
		return Uploaded{}, fmt.Errorf("upload %q: %w: %w", in.Filename, apperror.ErrBackend, err)
	}

	if err := s.files.CreateFile(ctx, f); err != nil {
		if derr := s.blobs.Delete(ctx, f.BlobKey); derr != nil {
			log.Error().Err(derr).Str("blob_key", f.BlobKey).Msg("cleanup of unrecorded blob failed")
		}
		if errors.Is(err, apperror.ErrNotFound) {
			return Uploaded{}, apperror.ErrNotFound
		}
		return Uploaded{}, fmt.Errorf("record %q: %w: %w", in.Filename, apperror.ErrBackend, err)
	}

	s.opts.Metrics.FileRegistered("proxied", f.Size)
	return Uploaded{FileID: f.ID, Filename: f.Filename, Size: f.Size}, nil
}

// RequestUploadURLs validates every declared file, then presigns a PUT URL
// for each and records its row with the declared size and type. Rows may
// therefore exist for blobs the client never writes.
func (s *Service) RequestUploadURLs(ctx context.Context, bucketID string, declared []Declared) ([]Grant, error) {
	if _, err := s.buckets.GetActive(ctx, bucketID); err != nil {
		return nil, err
	}
	if err := s.validate(declared); err != nil {
		return nil, err
	}

	if err := s.blobs.EnsureCORS(ctx); err != nil {
		log.Warn().Err(err).Msg("bucket CORS configuration failed, browser uploads may be rejected")
	}

	grants := make([]Grant, 0, len(declared))
	for _, d := range declared {
		f := s.newFile(bucketID, d.Filename, d.MimeType, d.Size)

		url, err := s.blobs.PresignPut(ctx, f.BlobKey, f.MimeType, s.opts.UploadURLTTL)
		if err != nil {
			return nil, fmt.Errorf("presign %q: %w: %w", d.Filename, apperror.ErrBackend, err)
		}
		if err := s.files.CreateFile(ctx, f); err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, apperror.ErrNotFound
			}
			return nil, fmt.Errorf("record %q: %w: %w", d.Filename, apperror.ErrBackend, err)
		}

		s.opts.Metrics.FileRegistered("presigned", 0)
		grants = append(grants, Grant{FileID: f.ID, Filename: f.Filename, UploadURL: url, BlobKey: f.BlobKey})
	}
	return grants, nil
}

func (s *Service) validate(declared []Declared) error {
	if len(declared) == 0 {
		return apperror.Validation("no files provided")
	}
	for i, d := range declared {
		if strings.TrimSpace(d.Filename) == "" {
			return apperror.Validation(fmt.Sprintf("files[%d]: filename is required", i))
		}
		if d.Size < 0 {
			return apperror.Validation(fmt.Sprintf("files[%d]: size must not be negative", i))
		}
		if d.Size > s.opts.MaxPresignedBytes {
			return apperror.SizeLimit(fmt.Sprintf("%s exceeds the %d byte limit", d.Filename, s.opts.MaxPresignedBytes))
		}
	}
	return nil
}

func (s *Service) newFile(bucketID, filename, contentType string, size int64) *bucket.File {
	if contentType == "" {
		contentType = DefaultContentType
	}
	id := uuid.NewString()
	return &bucket.File{
		ID:        id,
		BucketID:  bucketID,
		BlobKey:   BlobKey(bucketID, id, filename),
		Filename:  filename,
		Size:      size,
		MimeType:  contentType,
		CreatedAt: s.opts.Now(),
	}
}

var keyReplacer = strings.NewReplacer("/", "_", `\`, "_", "\x00", "")

// BlobKey builds the object key "<bucketID>/<fileID>-<filename>" with path
// separators in the filename replaced.
func BlobKey(bucketID, fileID, filename string) string {
	name := keyReplacer.Replace(filename)
	if name == "" {
		name = "file"
	}
	return bucketID + "/" + fileID + "-" + name
}
