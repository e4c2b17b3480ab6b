package bucket

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rameshdebur/filebucket/internal/apperror"
)

// MemoryStore implements Store in process memory. It backs DATABASE_URL=memory
// for local development and the service tests. Each method is atomic.
type MemoryStore struct {
	mu      sync.RWMutex
	buckets map[string]Bucket
	files   map[string][]File // by bucket id
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		buckets: make(map[string]Bucket),
		files:   make(map[string][]File),
	}
}

// CreateBucket stores a copy of b.
func (m *MemoryStore) CreateBucket(_ context.Context, b *Bucket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buckets[b.ID] = *b
	return nil
}

// GetBucket returns a bucket in any status.
func (m *MemoryStore) GetBucket(_ context.Context, id string) (*Bucket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.buckets[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return &b, nil
}

// GetActiveBucketByPIN returns the ACTIVE bucket holding pin with the latest expiry.
func (m *MemoryStore) GetActiveBucketByPIN(_ context.Context, pin string) (*Bucket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found *Bucket
	for _, b := range m.buckets {
		if b.PIN != pin || b.Status != StatusActive {
			continue
		}
		if found == nil || b.ExpiresAt.After(found.ExpiresAt) {
			b := b
			found = &b
		}
	}
	if found == nil {
		return nil, apperror.ErrNotFound
	}
	return found, nil
}

// PINInUse reports whether an ACTIVE bucket unexpired at now holds pin.
func (m *MemoryStore) PINInUse(_ context.Context, pin string, now time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.buckets {
		if b.PIN == pin && b.Status == StatusActive && b.ExpiresAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

// UpdatePIN replaces the PIN of bucket id.
func (m *MemoryStore) UpdatePIN(_ context.Context, id, pin string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[id]
	if !ok {
		return apperror.ErrNotFound
	}
	b.PIN = pin
	m.buckets[id] = b
	return nil
}

// CloseBucket drops the bucket's files and marks it CLOSED.
func (m *MemoryStore) CloseBucket(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[id]
	if !ok || b.Status != StatusActive {
		return apperror.ErrNotFound
	}
	b.Status = StatusClosed
	m.buckets[id] = b
	delete(m.files, id)
	return nil
}

// DeleteBucket removes the bucket and its files.
func (m *MemoryStore) DeleteBucket(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[id]; !ok {
		return apperror.ErrNotFound
	}
	delete(m.buckets, id)
	delete(m.files, id)
	return nil
}

// ListExpired returns buckets in any status expiring before now, soonest first.
func (m *MemoryStore) ListExpired(_ context.Context, now time.Time) ([]Bucket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Bucket
	for _, b := range m.buckets {
		if b.ExpiresAt.Before(now) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	return out, nil
}

// ListActive returns ACTIVE buckets with file counts, newest first.
func (m *MemoryStore) ListActive(_ context.Context, search string, limit int) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(search))
	out := []Summary{}
	for _, b := range m.buckets {
		if b.Status != StatusActive {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(b.FolderName), needle) {
			continue
		}
		out = append(out, Summary{
			ID:         b.ID,
			FolderName: b.FolderName,
			PIN:        b.PIN,
			CreatedAt:  b.CreatedAt,
			ExpiresAt:  b.ExpiresAt,
			FileCount:  len(m.files[b.ID]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CreateFile appends a file record while its bucket is ACTIVE.
func (m *MemoryStore) CreateFile(_ context.Context, f *File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.buckets[f.BucketID]; !ok || b.Status != StatusActive {
		return apperror.ErrNotFound
	}
	m.files[f.BucketID] = append(m.files[f.BucketID], *f)
	return nil
}

// ListFiles returns a copy of the bucket's files in insertion order.
func (m *MemoryStore) ListFiles(_ context.Context, bucketID string) ([]File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]File, len(m.files[bucketID]))
	copy(out, m.files[bucketID])
	return out, nil
}
