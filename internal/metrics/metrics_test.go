package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.BucketCreated(1)
		m.PINAllocationExhausted()
		m.Verification("ok")
		m.BucketRemoved("purge")
		m.BlobDeleteFailed("destroy", 2)
		m.PurgeCompleted(1, 1)
		m.FileRegistered("proxied", 10)
		m.DownloadLinksIssued(3)
		m.RecordRequest("GET", "/health", "200", 0.01)
	})
}

func TestMetrics_Record(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.BucketCreated(3)
	m.BucketCreated(1)
	m.Verification("expired")
	m.Verification("expired")
	m.BlobDeleteFailed("destroy", 2)
	m.BlobDeleteFailed("destroy", 0)
	m.PurgeCompleted(4, 1)
	m.FileRegistered("proxied", 128)
	m.FileRegistered("presigned", 0)
	m.DownloadLinksIssued(5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BucketsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.VerifyResults.WithLabelValues("expired")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BlobDeleteErrors.WithLabelValues("destroy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PurgeRuns))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.PurgeFiles))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PurgeSkipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesRegistered.WithLabelValues("presigned")))
	assert.Equal(t, 128.0, testutil.ToFloat64(m.BytesUploaded))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.DownloadLinks))
}
