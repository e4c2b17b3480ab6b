package bucket

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rameshdebur/filebucket/internal/apperror"
)

var bucketCols = []string{"id", "folder_name", "pin", "status", "created_at", "expires_at"}

func newMockRepo(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return NewRepository(mock), mock
}

func TestRepository_CreateBucket(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := &Bucket{ID: "b1", FolderName: "Demo", PIN: "1234", Status: StatusActive, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}

	mock.ExpectExec(`INSERT INTO buckets`).
		WithArgs("b1", "Demo", "1234", "ACTIVE", now, now.Add(time.Hour)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.CreateBucket(context.Background(), b))
}

func TestRepository_GetBucket(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM buckets WHERE id = \$1`).
		WithArgs("b1").
		WillReturnRows(pgxmock.NewRows(bucketCols).AddRow("b1", "Demo", "1234", "CLOSED", now, now.Add(time.Hour)))

	b, err := repo.GetBucket(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, b.Status)
	assert.Equal(t, "Demo", b.FolderName)
}

func TestRepository_GetBucket_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM buckets WHERE id`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(bucketCols))
	mock.ExpectQuery(`FROM buckets WHERE id`).
		WithArgs("not-a-uuid").
		WillReturnError(&pgconn.PgError{Code: "22P02"})

	_, err := repo.GetBucket(context.Background(), "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = repo.GetBucket(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestRepository_GetActiveBucketByPIN(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE pin = \$1 AND status = 'ACTIVE'\s+ORDER BY expires_at DESC`).
		WithArgs("4821").
		WillReturnRows(pgxmock.NewRows(bucketCols).AddRow("b2", "Demo", "4821", "ACTIVE", now, now.Add(time.Hour)))

	b, err := repo.GetActiveBucketByPIN(context.Background(), "4821")
	require.NoError(t, err)
	assert.Equal(t, "b2", b.ID)
}

func TestRepository_PINInUse(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("4821", now).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("4822", now).
		WillReturnError(errors.New("conn closed"))

	inUse, err := repo.PINInUse(context.Background(), "4821", now)
	require.NoError(t, err)
	assert.True(t, inUse)

	_, err = repo.PINInUse(context.Background(), "4822", now)
	assert.Error(t, err)
}

func TestRepository_UpdatePIN(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE buckets SET pin`).
		WithArgs("b1", "9999").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE buckets SET pin`).
		WithArgs("b2", "9999").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.UpdatePIN(context.Background(), "b1", "9999"))
	assert.ErrorIs(t, repo.UpdatePIN(context.Background(), "b2", "9999"), apperror.ErrNotFound)
}

func TestRepository_CloseBucket(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM files WHERE bucket_id = \$1`).
		WithArgs("b1").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec(`UPDATE buckets SET status = 'CLOSED'`).
		WithArgs("b1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CloseBucket(context.Background(), "b1"))
}

func TestRepository_CloseBucket_AlreadyClosedRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM files`).
		WithArgs("b1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`UPDATE buckets SET status = 'CLOSED'`).
		WithArgs("b1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.CloseBucket(context.Background(), "b1"), apperror.ErrNotFound)
}

func TestRepository_DeleteBucket(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM buckets WHERE id = \$1`).
		WithArgs("b1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM buckets WHERE id = \$1`).
		WithArgs("b1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.DeleteBucket(context.Background(), "b1"))
	assert.ErrorIs(t, repo.DeleteBucket(context.Background(), "b1"), apperror.ErrNotFound)
}

func TestRepository_ListExpired(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE expires_at < \$1 ORDER BY expires_at`).
		WithArgs(now).
		WillReturnRows(pgxmock.NewRows(bucketCols).
			AddRow("b1", "a", "1111", "ACTIVE", now.Add(-72*time.Hour), now.Add(-time.Hour)).
			AddRow("b2", "b", "2222", "CLOSED", now.Add(-72*time.Hour), now.Add(-time.Minute)))

	out, err := repo.ListExpired(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, StatusClosed, out[1].Status)
}

func TestRepository_ListActive(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`ILIKE`).
		WithArgs(`100\%\_off`, 50).
		WillReturnRows(pgxmock.NewRows([]string{"id", "folder_name", "pin", "created_at", "expires_at", "count"}).
			AddRow("b1", "100%_off", "1234", now, now.Add(time.Hour), 4))

	out, err := repo.ListActive(context.Background(), " 100%_off ", 50)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 4, out[0].FileCount)
}

func TestRepository_Files(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := &File{ID: "f1", BucketID: "b1", BlobKey: "b1/f1-a.txt", Filename: "a.txt", Size: 3, MimeType: "text/plain", CreatedAt: now}

	mock.ExpectExec(`INSERT INTO files`).
		WithArgs("f1", "b1", "b1/f1-a.txt", "a.txt", int64(3), "text/plain", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`FROM files WHERE bucket_id = \$1`).
		WithArgs("b1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "bucket_id", "blob_key", "filename", "size", "mime_type", "created_at"}).
			AddRow("f1", "b1", "b1/f1-a.txt", "a.txt", int64(3), "text/plain", now))

	require.NoError(t, repo.CreateFile(context.Background(), f))

	files, err := repo.ListFiles(context.Background(), "b1")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, *f, files[0])
}

func TestRepository_CreateFile_InactiveBucket(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := &File{ID: "f1", BucketID: "b1", BlobKey: "b1/f1-a.txt", Filename: "a.txt", Size: 3, MimeType: "text/plain", CreatedAt: now}

	mock.ExpectExec(`(?s)INSERT INTO files .+\s+WHERE EXISTS \(SELECT 1 FROM buckets WHERE id = \$2 AND status = 'ACTIVE'\)`).
		WithArgs("f1", "b1", "b1/f1-a.txt", "a.txt", int64(3), "text/plain", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectExec(`INSERT INTO files`).
		WithArgs("f1", "b1", "b1/f1-a.txt", "a.txt", int64(3), "text/plain", now).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := repo.CreateFile(context.Background(), f)
	assert.ErrorIs(t, err, apperror.ErrNotFound, "closed bucket")
	err = repo.CreateFile(context.Background(), f)
	assert.ErrorIs(t, err, apperror.ErrNotFound, "bucket deleted concurrently")
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, escapeLike(` a%b_c\d `))
	assert.Equal(t, "", escapeLike("  "))
}
