package bucket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/rameshdebur/filebucket/internal/apperror"
	"github.com/rameshdebur/filebucket/internal/metrics"
	"github.com/rameshdebur/filebucket/internal/storage"
)

const (
	// MaxFolderNameLength caps the stored folder name, in runes.
	MaxFolderNameLength = 200

	// AdminListLimit caps the admin bucket listing.
	AdminListLimit = 50

	// destroyConcurrency bounds parallel per-object deletes in Destroy.
	destroyConcurrency = 8
)

// Options tunes a Service. Zero values pick production defaults.
type Options struct {
	Now     func() time.Time
	Metrics *metrics.Metrics
}

// Service owns the bucket lifecycle. Metadata decides what exists; blobs
// are reconciled toward that decision, always deleted before their rows.
type Service struct {
	store   Store
	blobs   storage.Storage
	alloc   *Allocator
	now     func() time.Time
	metrics *metrics.Metrics
}

// NewService creates a new bucket Service.
func NewService(store Store, blobs storage.Storage, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:   store,
		blobs:   blobs,
		alloc:   NewAllocator(store, now),
		now:     now,
		metrics: opts.Metrics,
	}
}

// PurgeResult summarises one PurgeExpired sweep.
type PurgeResult struct {
	BucketsRemoved int `json:"bucketsRemoved"`
	FilesRemoved   int `json:"filesRemoved"`
	BucketsSkipped int `json:"bucketsSkipped"`
}

// Create allocates a PIN, derives the expiry from folderName and stores a new ACTIVE bucket.
func (s *Service) Create(ctx context.Context, folderName string) (*Bucket, error) {
	if strings.TrimSpace(folderName) == "" {
		return nil, apperror.Validation("folder name is required")
	}

	now := s.now()
	name, expiresAt, retention := DeriveExpiry(folderName, now)
	if name == "" {
		return nil, apperror.Validation("folder name is required")
	}
	if utf8.RuneCountInString(name) > MaxFolderNameLength {
		return nil, apperror.Validation(fmt.Sprintf("folder name must be at most %d characters", MaxFolderNameLength))
	}

	pin, attempts, err := s.alloc.Allocate(ctx)
	if err != nil {
		if errors.Is(err, apperror.ErrAllocationExhausted) {
			s.metrics.PINAllocationExhausted()
			log.Warn().Int("attempts", attempts).Msg("pin space saturated")
		}
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	b := &Bucket{
		ID:         uuid.NewString(),
		FolderName: name,
		PIN:        pin,
		Status:     StatusActive,
		CreatedAt:  now,
		ExpiresAt:  expiresAt,
	}
	if err := s.store.CreateBucket(ctx, b); err != nil {
		return nil, backend("create bucket", err)
	}

	s.metrics.BucketCreated(attempts)
	log.Info().
		Str("bucket_id", b.ID).
		Str("retention", retention.Name).
		Time("expires_at", b.ExpiresAt).
		Int("pin_attempts", attempts).
		Msg("bucket created")
	return b, nil
}

// Verify resolves pin to its ACTIVE bucket. An expired bucket is still found
// so the caller can tell "expired" apart from "wrong PIN".
func (s *Service) Verify(ctx context.Context, pin string) (*Bucket, error) {
	if !ValidPIN(pin) {
		return nil, apperror.Validation(fmt.Sprintf("PIN must be exactly %d digits", PINLength))
	}

	b, err := s.store.GetActiveBucketByPIN(ctx, pin)
	if errors.Is(err, apperror.ErrNotFound) {
		s.metrics.Verification("not_found")
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, backend("verify pin", err)
	}

	if b.ExpiredAt(s.now()) {
		s.metrics.Verification("expired")
		return nil, apperror.ErrExpired
	}

	s.metrics.Verification("ok")
	return b, nil
}

// GetActive returns the bucket if it is ACTIVE and unexpired.
func (s *Service) GetActive(ctx context.Context, id string) (*Bucket, error) {
	if !validID(id) {
		return nil, apperror.ErrNotFound
	}

	b, err := s.store.GetBucket(ctx, id)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, backend("get bucket", err)
	}
	if b.Status != StatusActive {
		return nil, apperror.ErrNotFound
	}
	if b.ExpiredAt(s.now()) {
		return nil, apperror.ErrExpired
	}
	return b, nil
}

// Destroy is the user-initiated close. Every blob delete is attempted and
// failures are only logged; the file rows are then removed and the bucket
// closed in one transaction. A second Destroy reports ErrNotFound.
func (s *Service) Destroy(ctx context.Context, id string) error {
	b, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	if b.Status != StatusActive {
		return apperror.ErrNotFound
	}

	files, err := s.store.ListFiles(ctx, id)
	if err != nil {
		return backend("list files", err)
	}

	failed := s.deleteEach(ctx, id, files)
	s.metrics.BlobDeleteFailed("destroy", failed)

	if err := s.store.CloseBucket(ctx, id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.ErrNotFound
		}
		return backend("close bucket", err)
	}

	s.metrics.BucketRemoved("destroy")
	log.Info().
		Str("bucket_id", id).
		Int("files", len(files)).
		Int("blob_failures", failed).
		Msg("bucket destroyed")
	return nil
}

// AdminDelete removes every blob in one batch and then the bucket row.
// A blob failure aborts and leaves the row untouched.
func (s *Service) AdminDelete(ctx context.Context, id string) error {
	if _, err := s.lookup(ctx, id); err != nil {
		return err
	}

	files, err := s.store.ListFiles(ctx, id)
	if err != nil {
		return backend("list files", err)
	}

	if err := s.blobs.DeleteMany(ctx, blobKeys(files)); err != nil {
		s.metrics.BlobDeleteFailed("admin_delete", len(files))
		return backend("delete blobs", err)
	}

	if err := s.store.DeleteBucket(ctx, id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.ErrNotFound
		}
		return backend("delete bucket", err)
	}

	s.metrics.BucketRemoved("admin")
	log.Info().Str("bucket_id", id).Int("files", len(files)).Msg("bucket deleted by admin")
	return nil
}

// PurgeExpired deletes every bucket past its expiry whose blobs could be
// removed. Buckets whose blob batch fails are left for the next sweep.
// Safe to run repeatedly and concurrently.
func (s *Service) PurgeExpired(ctx context.Context) (PurgeResult, error) {
	var res PurgeResult

	expired, err := s.store.ListExpired(ctx, s.now())
	if err != nil {
		return res, backend("list expired buckets", err)
	}

	for _, b := range expired {
		logger := log.With().Str("bucket_id", b.ID).Logger()

		files, err := s.store.ListFiles(ctx, b.ID)
		if err != nil {
			logger.Error().Err(err).Msg("purge: list files failed, skipping")
			res.BucketsSkipped++
			continue
		}

		if err := s.blobs.DeleteMany(ctx, blobKeys(files)); err != nil {
			logger.Error().Err(err).Int("files", len(files)).Msg("purge: blob delete failed, skipping")
			s.metrics.BlobDeleteFailed("purge", len(files))
			res.BucketsSkipped++
			continue
		}

		if err := s.store.DeleteBucket(ctx, b.ID); err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				// removed by a concurrent sweep
				continue
			}
			logger.Error().Err(err).Msg("purge: delete bucket failed, skipping")
			res.BucketsSkipped++
			continue
		}

		res.BucketsRemoved++
		res.FilesRemoved += len(files)
		s.metrics.BucketRemoved("purge")
	}

	s.metrics.PurgeCompleted(res.FilesRemoved, res.BucketsSkipped)
	log.Info().
		Int("expired", len(expired)).
		Int("removed", res.BucketsRemoved).
		Int("files", res.FilesRemoved).
		Int("skipped", res.BucketsSkipped).
		Msg("purge sweep finished")
	return res, nil
}

// ResetPIN assigns a fresh PIN to the bucket using the same collision
// probe as Create. Identity and expiry are unchanged.
func (s *Service) ResetPIN(ctx context.Context, id string) (string, error) {
	if _, err := s.lookup(ctx, id); err != nil {
		return "", err
	}

	pin, _, err := s.alloc.Allocate(ctx)
	if err != nil {
		if errors.Is(err, apperror.ErrAllocationExhausted) {
			s.metrics.PINAllocationExhausted()
		}
		return "", fmt.Errorf("reset pin: %w", err)
	}

	if err := s.store.UpdatePIN(ctx, id, pin); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.ErrNotFound
		}
		return "", backend("update pin", err)
	}

	log.Info().Str("bucket_id", id).Msg("bucket pin reset")
	return pin, nil
}

// ListActive returns up to AdminListLimit ACTIVE buckets, newest first.
func (s *Service) ListActive(ctx context.Context, search string) ([]Summary, error) {
	out, err := s.store.ListActive(ctx, search, AdminListLimit)
	if err != nil {
		return nil, backend("list active buckets", err)
	}
	return out, nil
}

// lookup fetches a bucket in any status.
func (s *Service) lookup(ctx context.Context, id string) (*Bucket, error) {
	if !validID(id) {
		return nil, apperror.ErrNotFound
	}
	b, err := s.store.GetBucket(ctx, id)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, backend("get bucket", err)
	}
	return b, nil
}

// deleteEach removes each file's blob individually and returns the failure count.
func (s *Service) deleteEach(ctx context.Context, bucketID string, files []File) int {
	var failed atomic.Int32
	var g errgroup.Group
	g.SetLimit(destroyConcurrency)

	for _, f := range files {
		f := f
		g.Go(func() error {
			if err := s.blobs.Delete(ctx, f.BlobKey); err != nil {
				failed.Add(1)
				log.Error().Err(err).
					Str("bucket_id", bucketID).
					Str("blob_key", f.BlobKey).
					Msg("destroy: blob delete failed")
			}
			return nil
		})
	}
	_ = g.Wait()
	return int(failed.Load())
}

func blobKeys(files []File) []string {
	keys := make([]string, 0, len(files))
	for _, f := range files {
		keys = append(keys, f.BlobKey)
	}
	return keys
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// backend tags err as an ErrBackend while keeping the cause in the chain.
func backend(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, apperror.ErrBackend, err)
}
