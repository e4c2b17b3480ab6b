// Package metrics holds the Prometheus instruments for the drop service.
// Every recording method is safe to call on a nil *Metrics so components can
// run without instrumentation in tests.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Bucket lifecycle
	BucketsCreated   prometheus.Counter     // filebucket_buckets_created_total
	BucketsRemoved   *prometheus.CounterVec // filebucket_buckets_removed_total{mode}
	PINAttempts      prometheus.Histogram   // filebucket_pin_allocation_attempts
	PINExhausted     prometheus.Counter     // filebucket_pin_allocation_exhausted_total
	VerifyResults    *prometheus.CounterVec // filebucket_pin_verifications_total{result}
	BlobDeleteErrors *prometheus.CounterVec // filebucket_blob_delete_failures_total{operation}

	// Purge sweep
	PurgeRuns    prometheus.Counter // filebucket_purge_runs_total
	PurgeSkipped prometheus.Counter // filebucket_purge_buckets_skipped_total
	PurgeFiles   prometheus.Counter // filebucket_purge_files_removed_total

	// Transfers
	FilesRegistered *prometheus.CounterVec // filebucket_files_registered_total{flow}
	BytesUploaded   prometheus.Counter     // filebucket_proxied_bytes_uploaded_total
	DownloadLinks   prometheus.Counter     // filebucket_download_links_issued_total

	// HTTP
	RequestsTotal   *prometheus.CounterVec   // filebucket_http_requests_total{method,route,status}
	RequestDuration *prometheus.HistogramVec // filebucket_http_request_duration_seconds{method,route}
}

// New registers all metrics with registry. A nil registry uses the default registerer.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	f := promauto.With(registry)

	return &Metrics{
		BucketsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "filebucket_buckets_created_total",
			Help: "Total buckets created",
		}),
		BucketsRemoved: f.NewCounterVec(prometheus.CounterOpts{
			Name: "filebucket_buckets_removed_total",
			Help: "Buckets closed or deleted, by mode (destroy, admin, purge)",
		}, []string{"mode"}),
		PINAttempts: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "filebucket_pin_allocation_attempts",
			Help:    "Random draws needed to find a free PIN",
			Buckets: []float64{1, 2, 3, 5, 10, 20},
		}),
		PINExhausted: f.NewCounter(prometheus.CounterOpts{
			Name: "filebucket_pin_allocation_exhausted_total",
			Help: "PIN allocations that ran out of attempts",
		}),
		VerifyResults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "filebucket_pin_verifications_total",
			Help: "PIN verification outcomes",
		}, []string{"result"}),
		BlobDeleteErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "filebucket_blob_delete_failures_total",
			Help: "Blob deletions that failed, by operation",
		}, []string{"operation"}),

		PurgeRuns: f.NewCounter(prometheus.CounterOpts{
			Name: "filebucket_purge_runs_total",
			Help: "Purge sweeps executed",
		}),
		PurgeSkipped: f.NewCounter(prometheus.CounterOpts{
			Name: "filebucket_purge_buckets_skipped_total",
			Help: "Expired buckets left for the next sweep after a blob failure",
		}),
		PurgeFiles: f.NewCounter(prometheus.CounterOpts{
			Name: "filebucket_purge_files_removed_total",
			Help: "Blob objects removed by purge sweeps",
		}),

		FilesRegistered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "filebucket_files_registered_total",
			Help: "File records created, by upload flow",
		}, []string{"flow"}),
		BytesUploaded: f.NewCounter(prometheus.CounterOpts{
			Name: "filebucket_proxied_bytes_uploaded_total",
			Help: "Bytes written to storage through the proxied upload flow",
		}),
		DownloadLinks: f.NewCounter(prometheus.CounterOpts{
			Name: "filebucket_download_links_issued_total",
			Help: "Presigned download URLs minted",
		}),

		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "filebucket_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "filebucket_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// BucketCreated records a successful Create and the PIN draws it took.
func (m *Metrics) BucketCreated(attempts int) {
	if m == nil {
		return
	}
	m.BucketsCreated.Inc()
	m.PINAttempts.Observe(float64(attempts))
}

// PINAllocationExhausted records an allocation that gave up.
func (m *Metrics) PINAllocationExhausted() {
	if m == nil {
		return
	}
	m.PINExhausted.Inc()
}

// Verification records a verify outcome such as "ok", "not_found", "expired" or "rate_limited".
func (m *Metrics) Verification(result string) {
	if m == nil {
		return
	}
	m.VerifyResults.WithLabelValues(result).Inc()
}

// BucketRemoved records a bucket leaving the active set.
func (m *Metrics) BucketRemoved(mode string) {
	if m == nil {
		return
	}
	m.BucketsRemoved.WithLabelValues(mode).Inc()
}

// BlobDeleteFailed records n failed blob deletions during operation.
func (m *Metrics) BlobDeleteFailed(operation string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.BlobDeleteErrors.WithLabelValues(operation).Add(float64(n))
}

// PurgeCompleted records one sweep's totals.
func (m *Metrics) PurgeCompleted(files, skipped int) {
	if m == nil {
		return
	}
	m.PurgeRuns.Inc()
	m.PurgeFiles.Add(float64(files))
	m.PurgeSkipped.Add(float64(skipped))
}

// FileRegistered records a new File row for flow ("proxied" or "presigned").
func (m *Metrics) FileRegistered(flow string, uploadedBytes int64) {
	if m == nil {
		return
	}
	m.FilesRegistered.WithLabelValues(flow).Inc()
	if uploadedBytes > 0 {
		m.BytesUploaded.Add(float64(uploadedBytes))
	}
}

// DownloadLinksIssued records n minted download URLs.
func (m *Metrics) DownloadLinksIssued(n int) {
	if m == nil {
		return
	}
	m.DownloadLinks.Add(float64(n))
}

// RecordRequest records one HTTP request.
func (m *Metrics) RecordRequest(method, route, status string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}
