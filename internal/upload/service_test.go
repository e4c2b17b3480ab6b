package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rameshdebur/filebucket/internal/apperror"
	"github.com/rameshdebur/filebucket/internal/bucket"
	"github.com/rameshdebur/filebucket/internal/storage"
)

type fixture struct {
	svc     *Service
	buckets *bucket.Service
	store   *bucket.MemoryStore
	blobs   *storage.MemoryStorage
	now     time.Time
}

func newFixture(t *testing.T, files FileRecorder) *fixture {
	t.Helper()
	f := &fixture{
		store: bucket.NewMemoryStore(),
		blobs: storage.NewMemoryStorage("drops"),
		now:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.buckets = bucket.NewService(f.store, f.blobs, bucket.Options{Now: clock})
	if files == nil {
		files = f.store
	}
	f.svc = NewService(f.buckets, files, f.blobs, Options{Now: clock})
	return f
}

func (f *fixture) bucket(t *testing.T) *bucket.Bucket {
	t.Helper()
	b, err := f.buckets.Create(context.Background(), "Demo")
	require.NoError(t, err)
	return b
}

func incoming(name, contentType, body string) Incoming {
	return Incoming{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func TestBlobKey(t *testing.T) {
	assert.Equal(t, "b/f-report.pdf", BlobKey("b", "f", "report.pdf"))
	assert.Equal(t, "b/f-.._.._etc_passwd", BlobKey("b", "f", "../../etc/passwd"))
	assert.Equal(t, "b/f-dir_name.txt", BlobKey("b", "f", `dir\name.txt`))
	assert.Equal(t, "b/f-file", BlobKey("b", "f", ""))
}

func TestUploadProxied(t *testing.T) {
	f := newFixture(t, nil)
	b := f.bucket(t)
	ctx := context.Background()

	out, err := f.svc.UploadProxied(ctx, b.ID, []Incoming{
		incoming("a.txt", "text/plain", "hello"),
		incoming("b.bin", "", "\x00\x01"),
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, int64(5), out[0].Size)

	files, err := f.store.ListFiles(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, DefaultContentType, files[1].MimeType)

	data, ok := f.blobs.Get(files[0].BlobKey)
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), data)
	assert.True(t, strings.HasPrefix(files[0].BlobKey, b.ID+"/"+out[0].FileID+"-"))
}

func TestUploadProxied_RejectsBeforeMutation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.UploadProxied(ctx, "00000000-0000-0000-0000-000000000000", []Incoming{incoming("a", "", "x")})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	b := f.bucket(t)
	_, err = f.svc.UploadProxied(ctx, b.ID, nil)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	f.now = f.now.Add(73 * time.Hour)
	_, err = f.svc.UploadProxied(ctx, b.ID, []Incoming{incoming("a", "", "x")})
	assert.ErrorIs(t, err, apperror.ErrExpired)

	assert.Empty(t, f.blobs.Keys())
}

type failingRecorder struct{}

func (failingRecorder) CreateFile(context.Context, *bucket.File) error {
	return errors.New("insert failed")
}

func TestUploadProxied_RowFailureRemovesBlob(t *testing.T) {
	f := newFixture(t, failingRecorder{})
	b := f.bucket(t)

	_, err := f.svc.UploadProxied(context.Background(), b.ID, []Incoming{incoming("a.txt", "", "data")})
	assert.ErrorIs(t, err, apperror.ErrBackend)
	assert.Empty(t, f.blobs.Keys())
}

// closingRecorder destroys the bucket just before the row insert, as a
// concurrent Destroy committing mid-upload would.
type closingRecorder struct {
	f *fixture
}

func (c closingRecorder) CreateFile(ctx context.Context, file *bucket.File) error {
	if err := c.f.buckets.Destroy(ctx, file.BucketID); err != nil {
		return err
	}
	return c.f.store.CreateFile(ctx, file)
}

func TestUploadProxied_BucketClosedMidUpload(t *testing.T) {
	f := newFixture(t, nil)
	f.svc.files = closingRecorder{f: f}
	b := f.bucket(t)
	ctx := context.Background()

	_, err := f.svc.UploadProxied(ctx, b.ID, []Incoming{incoming("a.txt", "", "data")})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Empty(t, f.blobs.Keys(), "blob written before the close is removed")

	files, err := f.store.ListFiles(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, files, "no file row under a closed bucket")
}

func TestRequestUploadURLs(t *testing.T) {
	f := newFixture(t, nil)
	b := f.bucket(t)
	ctx := context.Background()

	grants, err := f.svc.RequestUploadURLs(ctx, b.ID, []Declared{
		{Filename: "clip.mp4", MimeType: "video/mp4", Size: 70 << 20},
		{Filename: "empty.txt", Size: 0},
	})
	require.NoError(t, err)
	require.Len(t, grants, 2)

	u, err := url.Parse(grants[0].UploadURL)
	require.NoError(t, err)
	assert.Equal(t, "put", u.Query().Get("op"))
	assert.Equal(t, "900", u.Query().Get("expires"))
	assert.Equal(t, "video/mp4", u.Query().Get("content-type"))
	assert.Equal(t, "/"+grants[0].BlobKey, u.Path)

	files, err := f.store.ListFiles(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, int64(70<<20), files[0].Size, "declared size is recorded")
	assert.Equal(t, DefaultContentType, files[1].MimeType)

	assert.Empty(t, f.blobs.Keys(), "nothing is written server-side")
	assert.Equal(t, 1, f.blobs.CORSCalls())
}

func TestRequestUploadURLs_ValidatesAllFirst(t *testing.T) {
	f := newFixture(t, nil)
	b := f.bucket(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		declared []Declared
		want     error
	}{
		{"empty list", nil, apperror.ErrValidation},
		{"blank filename", []Declared{{Filename: "ok", Size: 1}, {Filename: "  ", Size: 1}}, apperror.ErrValidation},
		{"negative size", []Declared{{Filename: "a", Size: -1}}, apperror.ErrValidation},
		{"too large", []Declared{{Filename: "ok", Size: 1}, {Filename: "big", Size: DefaultMaxPresignedBytes + 1}}, apperror.ErrSizeLimitExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RequestUploadURLs(ctx, b.ID, tt.declared)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	files, err := f.store.ListFiles(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, files, "a rejected batch registers nothing")

	_, err = f.svc.RequestUploadURLs(ctx, b.ID, []Declared{{Filename: "max", Size: DefaultMaxPresignedBytes}})
	assert.NoError(t, err)
}

func TestRequestUploadURLs_ClosedBucket(t *testing.T) {
	f := newFixture(t, nil)
	b := f.bucket(t)
	require.NoError(t, f.buckets.Destroy(context.Background(), b.ID))

	_, err := f.svc.RequestUploadURLs(context.Background(), b.ID, []Declared{{Filename: "a", Size: 1}})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

type corsFailing struct {
	*storage.MemoryStorage
}

func (corsFailing) EnsureCORS(context.Context) error { return errors.New("access denied") }

func TestRequestUploadURLs_CORSFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, nil)
	f.svc.blobs = corsFailing{f.blobs}
	b := f.bucket(t)

	grants, err := f.svc.RequestUploadURLs(context.Background(), b.ID, []Declared{{Filename: "a", Size: 1}})
	require.NoError(t, err)
	assert.Len(t, grants, 1)
}

func TestUploadProxied_LargeBody(t *testing.T) {
	f := newFixture(t, nil)
	b := f.bucket(t)
	body := bytes.Repeat([]byte("z"), 1<<20)

	out, err := f.svc.UploadProxied(context.Background(), b.ID, []Incoming{incoming("big.bin", "", string(body))})
	require.NoError(t, err)
	assert.Equal(t, int64(1<<20), out[0].Size)
}
