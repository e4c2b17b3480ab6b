package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/rameshdebur/filebucket/internal/admin"
	"github.com/rameshdebur/filebucket/internal/bucket"
	"github.com/rameshdebur/filebucket/internal/config"
	"github.com/rameshdebur/filebucket/internal/db"
	"github.com/rameshdebur/filebucket/internal/download"
	"github.com/rameshdebur/filebucket/internal/metrics"
	appMiddleware "github.com/rameshdebur/filebucket/internal/middleware"
	"github.com/rameshdebur/filebucket/internal/ratelimit"
	"github.com/rameshdebur/filebucket/internal/storage"
	"github.com/rameshdebur/filebucket/internal/upload"

	_ "github.com/rameshdebur/filebucket/docs/swagger"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg     *config.Config
	metrics *metrics.Metrics
	store   bucket.Store
	blobs   storage.Storage
	limiter ratelimit.Limiter

	buckets   *bucket.Service
	uploads   *upload.Service
	downloads *download.Service
	admin     *admin.Service

	closers []func()
}

// newApp wires repository → service for the configured backends.
func newApp(ctx context.Context, cfg *config.Config, registry prometheus.Registerer) (*app, error) {
	a := &app{cfg: cfg, metrics: metrics.New(registry)}

	if err := a.openStore(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.openBlobs(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.openLimiter(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.buckets = bucket.NewService(a.store, a.blobs, bucket.Options{Metrics: a.metrics})
	a.uploads = upload.NewService(a.buckets, a.store, a.blobs, upload.Options{
		MaxPresignedBytes: cfg.MaxPresignedUploadBytes,
		UploadURLTTL:      cfg.UploadURLTTL,
		Metrics:           a.metrics,
	})
	a.downloads = download.NewService(a.buckets, a.store, a.blobs, cfg.DownloadURLTTL, a.metrics)
	a.admin = admin.NewService(a.buckets, cfg)
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	if a.cfg.UsesMemoryStore() {
		log.Warn().Msg("using in-memory metadata store; data is lost on restart")
		a.store = bucket.NewMemoryStore()
		return nil
	}

	pool, err := db.Connect(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	a.store = bucket.NewRepository(pool)
	return nil
}

func (a *app) openBlobs(ctx context.Context) error {
	cfg := a.cfg
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		log.Warn().Msg("using in-memory object storage; presigned URLs are not reachable")
		a.blobs = storage.NewMemoryStorage(cfg.StorageBucket)
	case config.StorageDriverS3:
		s, err := storage.NewS3Storage(ctx, storage.S3Options{
			Endpoint:    s3Endpoint(cfg),
			AccessKey:   cfg.StorageAccessKey,
			SecretKey:   cfg.StorageSecretKey,
			Bucket:      cfg.StorageBucket,
			Region:      cfg.StorageRegion,
			CORSOrigins: cfg.CORSAllowedOrigins,
		})
		if err != nil {
			return fmt.Errorf("object storage init failed: %w", err)
		}
		a.blobs = s
	default:
		s, err := storage.NewMinioStorage(ctx, storage.MinioOptions{
			Endpoint:    cfg.StorageEndpoint,
			AccessKey:   cfg.StorageAccessKey,
			SecretKey:   cfg.StorageSecretKey,
			Bucket:      cfg.StorageBucket,
			Region:      cfg.StorageRegion,
			UseSSL:      cfg.StorageUseSSL,
			CORSOrigins: cfg.CORSAllowedOrigins,
		})
		if err != nil {
			return fmt.Errorf("object storage init failed: %w", err)
		}
		a.blobs = s
	}
	return nil
}

func (a *app) openLimiter(ctx context.Context) error {
	if a.cfg.RedisURL == "" {
		a.limiter = ratelimit.NewMemoryLimiter(a.cfg.VerifyRateLimit, a.cfg.VerifyRateWindow)
		return nil
	}

	l, err := ratelimit.OpenRedisLimiter(ctx, a.cfg.RedisURL, a.cfg.VerifyRateLimit, a.cfg.VerifyRateWindow)
	if err != nil {
		return fmt.Errorf("rate limiter init failed: %w", err)
	}
	a.closers = append(a.closers, func() { _ = l.Close() })
	a.limiter = l
	return nil
}

// s3Endpoint turns a bare host:port into a URL for the AWS SDK. An empty
// endpoint keeps the SDK's regional default.
func s3Endpoint(cfg *config.Config) string {
	ep := cfg.StorageEndpoint
	if ep == "" || strings.Contains(ep, "://") {
		return ep
	}
	if cfg.StorageUseSSL {
		return "https://" + ep
	}
	return "http://" + ep
}

// Close releases pools and clients in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) routes(gatherer prometheus.Gatherer) http.Handler {
	bucketHandler := bucket.NewHandler(a.buckets, a.limiter)
	uploadHandler := upload.NewHandler(a.uploads, a.cfg.MaxProxyUploadBytes)
	downloadHandler := download.NewHandler(a.downloads)
	adminHandler := admin.NewHandler(a.admin)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(a.metrics))
	r.Use(chiMiddleware.Recoverer)
	r.Use(appMiddleware.SecureHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", appMiddleware.AdminPINHeader},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Swagger UI at /swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api", func(r chi.Router) {
		r.Route("/buckets", func(r chi.Router) {
			r.Post("/", bucketHandler.Create)
			r.Post("/verify", bucketHandler.Verify)
			r.Route("/{bucketID}", func(r chi.Router) {
				r.Get("/files", downloadHandler.ListFiles)
				r.Post("/upload", uploadHandler.Upload)
				r.Post("/upload-urls", uploadHandler.UploadURLs)
				r.Delete("/", bucketHandler.Destroy)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/session", adminHandler.OpenSession)
			r.Group(func(r chi.Router) {
				r.Use(appMiddleware.RequireAdmin(a.cfg.AdminMasterPIN, a.cfg.JWTSecret))
				r.Get("/buckets", adminHandler.ListBuckets)
				r.Post("/buckets/{bucketID}/reset-pin", adminHandler.ResetPIN)
				r.Delete("/buckets/{bucketID}", adminHandler.DeleteBucket)
			})
		})

		r.Route("/cron", func(r chi.Router) {
			r.Use(appMiddleware.RequireCronSecret(a.cfg.CronSecret))
			r.Get("/purge-expired", bucketHandler.PurgeExpired)
			r.Post("/purge-expired", bucketHandler.PurgeExpired)
		})
	})

	return r
}
