package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryStorage keeps objects in process memory. Presigned URLs use the
// memory:// scheme and are not reachable over HTTP.
type MemoryStorage struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string]memoryObject
	corsSet int
}

// NewMemoryStorage returns an empty MemoryStorage for the named bucket.
func NewMemoryStorage(bucket string) *MemoryStorage {
	return &MemoryStorage{bucket: bucket, objects: make(map[string]memoryObject)}
}

// Upload copies reader into memory under key.
func (s *MemoryStorage) Upload(ctx context.Context, key string, reader io.Reader, _ int64, contentType string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return fmt.Errorf("read object %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memoryObject{data: buf.Bytes(), contentType: contentType}
	return nil
}

// Delete removes key. Missing keys are not an error, matching S3.
func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// DeleteMany removes every key.
func (s *MemoryStorage) DeleteMany(ctx context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.objects, k)
	}
	return nil
}

// PresignPut returns a memory:// URL describing the upload grant.
func (s *MemoryStorage) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	q := url.Values{}
	q.Set("op", "put")
	q.Set("content-type", contentType)
	q.Set("expires", strconv.Itoa(int(ttl.Seconds())))
	return s.url(key, q), nil
}

// PresignGet returns a memory:// URL describing the download grant.
func (s *MemoryStorage) PresignGet(ctx context.Context, key, filename string, ttl time.Duration) (string, error) {
	q := url.Values{}
	q.Set("op", "get")
	q.Set("response-content-disposition", ContentDisposition(filename))
	q.Set("expires", strconv.Itoa(int(ttl.Seconds())))
	return s.url(key, q), nil
}

// EnsureCORS records the call; there is nothing to configure in memory.
func (s *MemoryStorage) EnsureCORS(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corsSet++
	return nil
}

// Get returns a copy of the object bytes and whether key exists.
func (s *MemoryStorage) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, false
	}
	return bytes.Clone(obj.data), true
}

// Keys lists stored keys in lexical order.
func (s *MemoryStorage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *MemoryStorage) url(key string, q url.Values) string {
	u := url.URL{Scheme: "memory", Host: s.bucket, Path: "/" + key, RawQuery: q.Encode()}
	return u.String()
}

// CORSCalls reports how many times EnsureCORS has been invoked.
func (s *MemoryStorage) CORSCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corsSet
}
