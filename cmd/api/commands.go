package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rameshdebur/filebucket/internal/config"
	"github.com/rameshdebur/filebucket/internal/db"
)

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "filebucket",
		Short:         "Ephemeral PIN-protected file drop service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg = config.Load()
			setupLogging(cfg)
			return cfg.Validate()
		},
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.UsesMemoryStore() {
				log.Info().Msg("memory metadata store configured, nothing to migrate")
				return nil
			}
			return db.Migrate(cfg.DatabaseURL)
		},
	}

	purge := &cobra.Command{
		Use:   "purge",
		Short: "Run one expired-bucket purge sweep and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPurge(cmd.Context(), cfg)
		},
	}

	root.AddCommand(serve, migrateCmd, purge)
	root.RunE = serve.RunE
	return root
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if !cfg.UsesMemoryStore() {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("database migration failed: %w", err)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a, err := newApp(ctx, cfg, registry)
	if err != nil {
		return err
	}
	defer a.Close()

	// Browsers need CORS on the bucket before the first direct upload; the
	// upload-urls flow retries if this fails.
	if err := a.blobs.EnsureCORS(ctx); err != nil {
		log.Warn().Err(err).Msg("storage CORS bootstrap failed, will retry on first upload")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.routes(registry),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("server listening")
		log.Info().Msgf("swagger UI at http://localhost:%s/swagger/", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Info().Msg("shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func runPurge(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cfg, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.buckets.PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("purge: %w", err)
	}
	log.Info().
		Int("buckets_removed", res.BucketsRemoved).
		Int("files_removed", res.FilesRemoved).
		Int("buckets_skipped", res.BucketsSkipped).
		Msg("purge complete")
	return nil
}
