// Package bucket manages drop buckets: PIN allocation, expiry policy,
// lifecycle transitions and their persistence.
package bucket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rameshdebur/filebucket/internal/apperror"
	"github.com/rameshdebur/filebucket/internal/db"
)

// Repository implements Store on PostgreSQL.
type Repository struct {
	db db.Querier
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(q db.Querier) *Repository {
	return &Repository{db: q}
}

const bucketColumns = `id, folder_name, pin, status, created_at, expires_at`

// CreateBucket inserts a new bucket row.
func (r *Repository) CreateBucket(ctx context.Context, b *Bucket) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO buckets (id, folder_name, pin, status, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		b.ID, b.FolderName, b.PIN, string(b.Status), b.CreatedAt, b.ExpiresAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("create bucket: duplicate id %s: %w", b.ID, err)
		}
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

// GetBucket fetches a bucket by id regardless of status.
func (r *Repository) GetBucket(ctx context.Context, id string) (*Bucket, error) {
	b, err := scanBucket(r.db.QueryRow(ctx,
		`SELECT `+bucketColumns+` FROM buckets WHERE id = $1`,
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) || db.IsInvalidInput(err) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bucket by id: %w", err)
	}
	return b, nil
}

// GetActiveBucketByPIN fetches the ACTIVE bucket holding pin. When an expired
// bucket still shares the PIN with a newer one, the later expiry wins.
func (r *Repository) GetActiveBucketByPIN(ctx context.Context, pin string) (*Bucket, error) {
	b, err := scanBucket(r.db.QueryRow(ctx,
		`SELECT `+bucketColumns+`
		 FROM buckets
		 WHERE pin = $1 AND status = 'ACTIVE'
		 ORDER BY expires_at DESC
		 LIMIT 1`,
		pin,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bucket by pin: %w", err)
	}
	return b, nil
}

// PINInUse reports whether an ACTIVE bucket unexpired at now holds pin.
func (r *Repository) PINInUse(ctx context.Context, pin string, now time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(
		   SELECT 1 FROM buckets
		   WHERE pin = $1 AND status = 'ACTIVE' AND expires_at > $2
		 )`,
		pin, now,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("probe pin: %w", err)
	}
	return exists, nil
}

// UpdatePIN replaces the PIN of bucket id.
func (r *Repository) UpdatePIN(ctx context.Context, id, pin string) error {
	tag, err := r.db.Exec(ctx, `UPDATE buckets SET pin = $2 WHERE id = $1`, id, pin)
	if err != nil {
		if db.IsInvalidInput(err) {
			return apperror.ErrNotFound
		}
		return fmt.Errorf("update pin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

// CloseBucket deletes all file rows and flips the bucket to CLOSED in one transaction.
func (r *Repository) CloseBucket(ctx context.Context, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM files WHERE bucket_id = $1`, id); err != nil {
		if db.IsInvalidInput(err) {
			return apperror.ErrNotFound
		}
		return fmt.Errorf("delete files: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE buckets SET status = 'CLOSED' WHERE id = $1 AND status = 'ACTIVE'`,
		id,
	)
	if err != nil {
		return fmt.Errorf("close bucket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit close bucket: %w", err)
	}
	return nil
}

// DeleteBucket removes the bucket row; file rows cascade.
func (r *Repository) DeleteBucket(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM buckets WHERE id = $1`, id)
	if err != nil {
		if db.IsInvalidInput(err) {
			return apperror.ErrNotFound
		}
		return fmt.Errorf("delete bucket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

// ListExpired returns every bucket whose expiry is before now, in any status.
func (r *Repository) ListExpired(ctx context.Context, now time.Time) ([]Bucket, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+bucketColumns+` FROM buckets WHERE expires_at < $1 ORDER BY expires_at`,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("list expired buckets: %w", err)
	}
	defer rows.Close()

	var out []Bucket
	for rows.Next() {
		b, err := scanBucket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expired bucket: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// ListActive returns ACTIVE buckets with file counts, newest first.
func (r *Repository) ListActive(ctx context.Context, search string, limit int) ([]Summary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT b.id, b.folder_name, b.pin, b.created_at, b.expires_at, COUNT(f.id)
		 FROM buckets b
		 LEFT JOIN files f ON f.bucket_id = b.id
		 WHERE b.status = 'ACTIVE'
		   AND ($1 = '' OR b.folder_name ILIKE '%' || $1 || '%' ESCAPE '\')
		 GROUP BY b.id
		 ORDER BY b.created_at DESC
		 LIMIT $2`,
		escapeLike(search), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list active buckets: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.FolderName, &s.PIN, &s.CreatedAt, &s.ExpiresAt, &s.FileCount); err != nil {
			return nil, fmt.Errorf("scan bucket summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CreateFile inserts a file record. The insert only lands while the bucket
// is ACTIVE; otherwise ErrNotFound.
func (r *Repository) CreateFile(ctx context.Context, f *File) error {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO files (id, bucket_id, blob_key, filename, size, mime_type, created_at)
		 SELECT $1, $2, $3, $4, $5, $6, $7
		 WHERE EXISTS (SELECT 1 FROM buckets WHERE id = $2 AND status = 'ACTIVE')`,
		f.ID, f.BucketID, f.BlobKey, f.Filename, f.Size, f.MimeType, f.CreatedAt,
	)
	if err != nil {
		if db.IsForeignKeyViolation(err) || db.IsInvalidInput(err) {
			return apperror.ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("create file: duplicate id %s: %w", f.ID, err)
		}
		return fmt.Errorf("create file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

// ListFiles returns the files of a bucket, oldest first.
func (r *Repository) ListFiles(ctx context.Context, bucketID string) ([]File, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, bucket_id, blob_key, filename, size, mime_type, created_at
		 FROM files WHERE bucket_id = $1
		 ORDER BY created_at, id`,
		bucketID,
	)
	if err != nil {
		if db.IsInvalidInput(err) {
			return nil, apperror.ErrNotFound
		}
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	out := []File{}
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.BucketID, &f.BlobKey, &f.Filename, &f.Size, &f.MimeType, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func scanBucket(row pgx.Row) (*Bucket, error) {
	b := &Bucket{}
	var status string
	if err := row.Scan(&b.ID, &b.FolderName, &b.PIN, &status, &b.CreatedAt, &b.ExpiresAt); err != nil {
		return nil, err
	}
	b.Status = Status(status)
	return b, nil
}

// escapeLike escapes LIKE wildcards so search is matched literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(strings.TrimSpace(s))
}
