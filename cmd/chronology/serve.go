package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chronology/internal/api"
	"chronology/internal/config"
	"chronology/internal/dataset"
	"chronology/internal/logging"
	"chronology/internal/seed"
	"chronology/internal/service"
	"chronology/internal/store"
	"chronology/internal/telemetry"
)

var serveFlags struct {
	host       string
	port       int
	storage    string
	db         string
	datasetDir string
	noSeed     bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Chronology API server",
	Long: `Serves the REST API under /api/v1 until interrupted.

A fresh store is seeded with three sample projects unless --no-seed is
given. Tracing is exported over OTLP/HTTP when OTEL_EXPORTER_OTLP_ENDPOINT
is set.

Examples:
  chronology serve
  chronology serve --port 9000 --storage memory`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.host, "host", "", "listen host (default 0.0.0.0)")
	f.IntVarP(&serveFlags.port, "port", "p", 0, "listen port (default 8000)")
	f.StringVar(&serveFlags.storage, "storage", "", "storage backend: sqlite or memory")
	f.StringVar(&serveFlags.db, "db", "", "SQLite database path")
	f.StringVar(&serveFlags.datasetDir, "dataset-dir", "", "directory of CSV datasets")
	f.BoolVar(&serveFlags.noSeed, "no-seed", false, "do not insert sample projects into an empty store")
	rootCmd.AddCommand(serveCmd)
}

// applyServeFlags overrides cfg with flags the user set.
func applyServeFlags(cfg *config.Config) {
	if serveFlags.host != "" {
		cfg.Host = serveFlags.host
	}
	if serveFlags.port != 0 {
		cfg.Port = serveFlags.port
	}
	if serveFlags.storage != "" {
		cfg.Storage = serveFlags.storage
	}
	if serveFlags.db != "" {
		cfg.DatabasePath = serveFlags.db
	}
	if serveFlags.datasetDir != "" {
		cfg.DatasetDir = serveFlags.datasetDir
	}
	if serveFlags.noSeed {
		cfg.Seed = false
	}
}

// openStore opens the configured storage backend.
func openStore(cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	logger = logging.OrNop(logger)
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Debug("Using in-memory store")
		return store.NewMemory(), nil
	case config.StorageSQLite:
		st, err := store.NewSQLite(cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		logger.Info("Opened SQLite store", zap.String("path", st.Path()))
		return st, nil
	}
	return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
}

// newHandler wires the service and dataset store behind the API router.
func newHandler(ctx context.Context, cfg *config.Config, st store.Store, logger *zap.Logger) (http.Handler, error) {
	if cfg.Seed {
		if _, err := seed.Apply(ctx, st, logger); err != nil {
			return nil, err
		}
	}
	datasets, err := dataset.NewStore(cfg.DatasetDir, logger)
	if err != nil {
		return nil, err
	}
	logging.OrNop(logger).Info("Serving datasets", zap.String("dir", datasets.Dir()))
	svc := service.New(st, logger)
	return api.NewHandler(svc, datasets, logger, api.Options{
		CORSOrigins:     cfg.CORSOrigins,
		DatasetRowLimit: cfg.DatasetRowLimit,
		MaxDatasetRows:  cfg.MaxDatasetRows,
	}), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	applyServeFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Setup(ctx, logger)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	if tp != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			_ = tp.Shutdown(shutdownCtx)
		}()
	}

	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	handler, err := newHandler(ctx, cfg, st, logger)
	if err != nil {
		return err
	}

	srv := api.NewServer(cfg, handler, logger)
	if err := srv.Start(); err != nil {
		return err
	}
	logger.Info("Chronology API ready",
		zap.String("version", config.AppVersion),
		zap.String("storage", cfg.Storage),
		zap.String("url", srv.URL()))

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
