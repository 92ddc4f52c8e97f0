package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alfredjeanlab/forge/internal/config"
	"github.com/alfredjeanlab/forge/internal/events"
	"github.com/alfredjeanlab/forge/internal/queue"
	"github.com/alfredjeanlab/forge/internal/scan"
	"github.com/alfredjeanlab/forge/internal/server"
	"github.com/alfredjeanlab/forge/internal/store/postgres"
	forgesync "github.com/alfredjeanlab/forge/internal/sync"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the Forge server and scan worker",
	GroupID: "system",
	// Override PersistentPreRunE so we don't create a client.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		// Load configuration.
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		// Connect to Postgres.
		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}

		// Create event publisher.
		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				store.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (FORGE_NATS_URL not set)")
		}

		// Create server components.
		forgeServer := server.NewForgeServer(store, publisher)
		forgeServer.AllowedScanRoots = cfg.ScanRoots

		// Start HTTP server.
		httpHandler := forgeServer.NewHTTPHandler(cfg.AuthToken)
		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: httpHandler,
		}

		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		// Start scan queue workers.
		registry := scan.DefaultRegistry()
		workers := make([]*queue.Worker, 0, cfg.ScanWorkers)
		for i := 0; i < cfg.ScanWorkers; i++ {
			w := queue.New(store, registry, publisher, cfg.PollInterval, logger)
			w.Start()
			workers = append(workers, w)
		}
		logger.Info("scan workers started", "count", cfg.ScanWorkers, "poll_interval", cfg.PollInterval)

		// Start sync scheduler if any destinations are configured.
		var scheduler *forgesync.Scheduler
		if cfg.SyncInterval > 0 {
			var dests []forgesync.Destination

			if cfg.SyncS3Bucket != "" {
				s3Dest, err := forgesync.NewS3Destination(context.Background(), forgesync.S3Options{
					Bucket:   cfg.SyncS3Bucket,
					Key:      cfg.SyncS3Key,
					Region:   cfg.SyncS3Region,
					Endpoint: cfg.SyncS3Endpoint,
				})
				if err != nil {
					logger.Error("failed to create S3 sync destination", "err", err)
				} else {
					dests = append(dests, s3Dest)
					logger.Info("sync S3 destination enabled", "bucket", cfg.SyncS3Bucket, "key", cfg.SyncS3Key)
				}
			}

			if cfg.SyncGitRepo != "" {
				gitDest := forgesync.NewGitDestination(cfg.SyncGitRepo, cfg.SyncGitFile, cfg.SyncGitBranch)
				dests = append(dests, gitDest)
				logger.Info("sync git destination enabled", "repo", cfg.SyncGitRepo, "file", cfg.SyncGitFile)
			}

			if len(dests) > 0 {
				scheduler = forgesync.NewScheduler(store, dests, cfg.SyncInterval, logger)
				scheduler.Start()
				logger.Info("sync scheduler started", "interval", cfg.SyncInterval)
			}
		}

		// Log startup info.
		logger.Info("forge server started", "http_addr", cfg.HTTPAddr)

		// Wait for SIGINT or SIGTERM.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		// Graceful shutdown.
		for _, w := range workers {
			w.Stop()
		}
		logger.Info("scan workers stopped")

		if scheduler != nil {
			scheduler.Stop()
			logger.Info("sync scheduler stopped")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := store.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}
