package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/dungeonmaster/internal/config"
	"github.com/alfredjeanlab/dungeonmaster/internal/events"
	"github.com/alfredjeanlab/dungeonmaster/internal/reference"
	"github.com/alfredjeanlab/dungeonmaster/internal/server"
	"github.com/alfredjeanlab/dungeonmaster/internal/store"
	"github.com/alfredjeanlab/dungeonmaster/internal/store/memstore"
	"github.com/alfredjeanlab/dungeonmaster/internal/store/postgres"
	"github.com/alfredjeanlab/dungeonmaster/internal/store/s3store"
	dmsync "github.com/alfredjeanlab/dungeonmaster/internal/sync"
)

// openStore connects to the backend named by cfg.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendS3:
		s, err := s3store.New(ctx, s3store.Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendPostgres:
		s, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendMemory:
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the API server",
	GroupID: "system",
	// Override PersistentPreRunE so we don't build an API client.
	PersistentPreRunE: localCommand,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := cfg.NewLogger(os.Stderr)
		slog.SetDefault(logger)

		ctx := cmd.Context()
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		logger.Info("datastore opened", "backend", cfg.Backend)

		// Create event publisher.
		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				st.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = events.NoopPublisher{}
			logger.Info("events disabled (DM_NATS_URL not set)")
		}

		ref := reference.New(st, reference.Options{
			BaseURL: cfg.ReferenceURL,
			Timeout: cfg.ReferenceTimeout,
			Logger:  logger,
		})
		srv := server.New(st,
			server.WithPublisher(publisher),
			server.WithReference(ref),
			server.WithLogger(logger),
		)

		httpServer := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           srv.NewHTTPHandler(cfg.AuthToken),
			ReadHeaderTimeout: 10 * time.Second,
		}
		serveErr := make(chan error, 1)
		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr, "auth", cfg.AuthToken != "")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
		}()

		// Start the backup scheduler if enabled.
		var scheduler *dmsync.Scheduler
		if cfg.SyncInterval > 0 {
			dest, err := dmsync.NewS3Destination(ctx,
				cfg.SyncS3Bucket,
				cfg.SyncS3Key,
				cfg.SyncS3Region,
				cfg.SyncS3Endpoint,
			)
			if err != nil {
				logger.Error("failed to create S3 sync destination", "err", err)
			} else {
				scheduler = dmsync.NewScheduler(st, []dmsync.Destination{dest}, cfg.SyncInterval, logger)
				scheduler.Start()
				logger.Info("sync scheduler started", "interval", cfg.SyncInterval, "destination", dest.Name())
			}
		}

		// Wait for SIGINT or SIGTERM, or for the listener to fail.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		sig, runErr := awaitStop(ctx, sigCh, serveErr)
		if runErr != nil {
			logger.Error("HTTP server error", "err", runErr)
			runErr = fmt.Errorf("http server: %w", runErr)
		} else {
			logger.Info("received signal, shutting down", "signal", sig)
		}

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
		if err := st.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return runErr
	},
}

// awaitStop blocks until a signal arrives, the server reports an error, or ctx
// is done. A cancelled context is a clean stop.
func awaitStop(ctx context.Context, sigCh <-chan os.Signal, serveErr <-chan error) (os.Signal, error) {
	select {
	case sig := <-sigCh:
		return sig, nil
	case err := <-serveErr:
		return nil, err
	case <-ctx.Done():
		return nil, nil
	}
}
