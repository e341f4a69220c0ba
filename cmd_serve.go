package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yumyai/panva/internal/util"
	"github.com/yumyai/panva/logger"
	"github.com/yumyai/panva/pkg/config"
	"github.com/yumyai/panva/pkg/db"
	"github.com/yumyai/panva/pkg/handler"
	"github.com/yumyai/panva/pkg/middle"
	"github.com/yumyai/panva/pkg/model"
)

func databasePath(dataDir string) string {
	return filepath.Join(dataDir, "db", "panva.db")
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the homology group API and overview page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, _ := cmd.Flags().GetString("data")
			configPath, _ := cmd.Flags().GetString("config")
			addr, _ := cmd.Flags().GetString("addr")
			level, _ := cmd.Flags().GetString("log-level")
			return serve(cmd.Context(), dataDir, configPath, addr, logger.ParseLevel(level))
		},
	}
	cmd.Flags().String("config", util.Getenv("PANVA_CONFIG", ""), "dataset configuration (YAML)")
	cmd.Flags().String("addr", util.Getenv("PANVA_ADDR", "0.0.0.0:8080"), "listen address")
	return cmd
}

func serve(ctx context.Context, dataDir, configPath, addr string, level zapcore.Level) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger.Info("Start:", zap.String("Version", VERSION))

	if configPath == "" && util.FileExists(filepath.Join(dataDir, "panva.yaml")) {
		configPath = filepath.Join(dataDir, "panva.yaml")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	dbPath := databasePath(dataDir)
	if !util.FileExists(dbPath) {
		return fmt.Errorf("database %s not found, run `panva import` first", dbPath)
	}
	repo, err := db.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer repo.Close()
	logger.Info("Open database on", zap.String("DB_LOC", dbPath))

	store := model.NewStore(repo, cfg.StoreOptions())
	if err := store.LoadHomologies(ctx); err != nil {
		return fmt.Errorf("load homologies: %w", err)
	}
	app := handler.NewAppContext(store, repo, cfg)

	if cfg.DefaultHomologyID != "" {
		app.LoadJobs.Start(handler.JobHomologyGroup, cfg.DefaultHomologyID, func(ctx context.Context) (model.LoadStatus, error) {
			return store.LoadHomologyGroup(ctx, cfg.DefaultHomologyID)
		})
	}

	metrics := middle.NewMetrics(prometheus.DefaultRegisterer)
	mux := NewRouter(app, metrics)

	// Apply middleware
	httpLogger := middle.CreateMiddlewareLogger(level)
	defer httpLogger.Sync()
	srv := &http.Server{
		Addr:              addr,
		Handler:           middle.Chain(mux, middle.RequestIDMiddleware(httpLogger), middle.LoggingMiddleware(httpLogger)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
