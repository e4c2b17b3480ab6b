package bucket

import (
	"context"
	"time"
)

// Status is the lifecycle state of a Bucket.
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusClosed Status = "CLOSED"
)

// Bucket is a named, PIN-protected, time-limited drop folder.
type Bucket struct {
	ID         string    `json:"bucketId"`
	FolderName string    `json:"folderName"`
	PIN        string    `json:"pin"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// ExpiredAt reports whether the bucket is past its expiry at now.
func (b *Bucket) ExpiredAt(now time.Time) bool {
	return now.After(b.ExpiresAt)
}

// File is one uploaded object registered under a Bucket.
type File struct {
	ID        string    `json:"id"`
	BucketID  string    `json:"bucketId"`
	BlobKey   string    `json:"-"`
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	MimeType  string    `json:"mimeType"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary is the admin listing view of an active bucket.
type Summary struct {
	ID         string    `json:"id"`
	FolderName string    `json:"folderName"`
	PIN        string    `json:"pin"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	FileCount  int       `json:"fileCount"`
}

// Store is the durable metadata capability the lifecycle depends on.
// Implementations return apperror.ErrNotFound for missing rows.
type Store interface {
	// CreateBucket inserts b as given.
	CreateBucket(ctx context.Context, b *Bucket) error
	// GetBucket returns a bucket in any status.
	GetBucket(ctx context.Context, id string) (*Bucket, error)
	// GetActiveBucketByPIN returns the ACTIVE bucket holding pin with the latest expiry.
	GetActiveBucketByPIN(ctx context.Context, pin string) (*Bucket, error)
	// PINInUse reports whether an ACTIVE bucket unexpired at now holds pin.
	PINInUse(ctx context.Context, pin string, now time.Time) (bool, error)
	// UpdatePIN replaces the PIN of bucket id.
	UpdatePIN(ctx context.Context, id, pin string) error
	// CloseBucket atomically deletes the bucket's files and marks it CLOSED.
	// It returns ErrNotFound when the bucket is missing or already closed.
	CloseBucket(ctx context.Context, id string) error
	// DeleteBucket removes the bucket row; files cascade.
	DeleteBucket(ctx context.Context, id string) error
	// ListExpired returns every bucket, in any status, whose expiry is before now.
	ListExpired(ctx context.Context, now time.Time) ([]Bucket, error)
	// ListActive returns ACTIVE buckets newest first, filtered by a
	// case-insensitive folder-name substring when search is non-empty.
	ListActive(ctx context.Context, search string, limit int) ([]Summary, error)

	// CreateFile inserts a file record.
	CreateFile(ctx context.Context, f *File) error
	// ListFiles returns the files of a bucket, oldest first.
	ListFiles(ctx context.Context, bucketID string) ([]File, error)
}
