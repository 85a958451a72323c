package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/groblegark/beadviz/internal/config"
	"github.com/groblegark/beadviz/internal/events"
	"github.com/groblegark/beadviz/internal/gitops"
	"github.com/groblegark/beadviz/internal/history"
	"github.com/groblegark/beadviz/internal/server"
	"github.com/groblegark/beadviz/internal/snapshot"
	"github.com/groblegark/beadviz/internal/syncer"
	"github.com/groblegark/beadviz/internal/tracker"
	"github.com/groblegark/beadviz/internal/watch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the beadviz HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		slog.SetDefault(logger)

		// Load configuration.
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		gateway := tracker.NewCLI(cfg.TrackerBin, cfg.Dir)

		// Create event publisher.
		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (BEADVIZ_NATS_URL not set)")
		}

		// Optional sync attempt history in Postgres.
		var histStore *history.Store
		if cfg.HistoryDatabaseURL != "" {
			histStore, err = history.New(cfg.HistoryDatabaseURL)
			if err != nil {
				publisher.Close()
				return err
			}
			logger.Info("sync history enabled")
		}

		// Per-directory sync controllers, one per canonical path.
		ctrlOpts := syncer.Options{
			Debounce:    cfg.Debounce,
			SyncTimeout: cfg.SyncTimeout,
			NoPush:      cfg.NoPush,
			Logger:      logger,
			Publisher:   publisher,
		}
		if histStore != nil {
			ctrlOpts.History = histStore
		}
		registry := syncer.NewRegistry(func(dir string) *syncer.Controller {
			return syncer.New(dir, tracker.NewCLI(cfg.TrackerBin, dir), gitops.New(dir), ctrlOpts)
		})
		ctrl := registry.For(cfg.Dir)

		// Create the server.
		var hist server.HistoryLister
		if histStore != nil {
			hist = histStore
		}
		vizServer := server.NewVizServer(gateway, ctrl, publisher, hist)

		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: vizServer.NewHTTPHandler(cfg.AuthToken),
		}

		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		// Start the snapshot scheduler if any destinations are configured.
		var scheduler *snapshot.Scheduler
		if cfg.SnapshotInterval > 0 {
			var dests []snapshot.Destination

			if cfg.SnapshotS3Bucket != "" {
				s3Dest, err := snapshot.NewS3Destination(context.Background(), snapshot.S3Options{
					Bucket:   cfg.SnapshotS3Bucket,
					Key:      cfg.SnapshotS3Key,
					Region:   cfg.SnapshotS3Region,
					Endpoint: cfg.SnapshotS3Endpoint,
				})
				if err != nil {
					logger.Error("failed to create S3 snapshot destination", "err", err)
				} else {
					dests = append(dests, s3Dest)
					logger.Info("snapshot S3 destination enabled", "bucket", cfg.SnapshotS3Bucket, "key", cfg.SnapshotS3Key)
				}
			}

			if cfg.SnapshotFile != "" {
				fileDest, err := snapshot.NewFileDestination(cfg.SnapshotFile)
				if err != nil {
					logger.Error("failed to create file snapshot destination", "err", err)
				} else {
					dests = append(dests, fileDest)
					logger.Info("snapshot file destination enabled", "path", cfg.SnapshotFile)
				}
			}

			if len(dests) > 0 {
				scheduler = snapshot.NewScheduler(gateway, dests, cfg.SnapshotInterval, logger)
				scheduler.Start()
				logger.Info("snapshot scheduler started", "interval", cfg.SnapshotInterval)
			}
		}

		// Watch the tracker's storage for out-of-band edits.
		var watcher *watch.Watcher
		if cfg.WatchStorage {
			storageDir := filepath.Join(cfg.Dir, ".beads")
			w, err := watch.New(storageDir, 0, logger, func() {
				vizServer.NotifyGraphUpdated(cfg.Dir)
			})
			if err != nil {
				logger.Error("failed to create storage watcher", "err", err)
			} else if err := w.Start(); err != nil {
				logger.Warn("storage watch disabled", "dir", storageDir, "err", err)
			} else {
				watcher = w
				logger.Info("storage watcher started", "dir", storageDir)
			}
		}

		logger.Info("beadviz server started", "http_addr", cfg.HTTPAddr, "dir", cfg.Dir)

		// Wait for SIGINT or SIGTERM.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		// Graceful shutdown.
		if watcher != nil {
			if err := watcher.Stop(); err != nil {
				logger.Error("error stopping watcher", "err", err)
			}
			logger.Info("storage watcher stopped")
		}

		if scheduler != nil {
			scheduler.Stop()
			logger.Info("snapshot scheduler stopped")
		}

		registry.Reset()
		vizServer.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if histStore != nil {
			if err := histStore.Close(); err != nil {
				logger.Error("error closing history store", "err", err)
			}
		}

		logger.Info("shutdown complete")
		return nil
	},
}
