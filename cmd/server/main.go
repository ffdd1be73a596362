// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/goodbooks/internal/api"
	"github.com/tomtom215/goodbooks/internal/config"
	"github.com/tomtom215/goodbooks/internal/database"
	"github.com/tomtom215/goodbooks/internal/logging"
	"github.com/tomtom215/goodbooks/internal/metrics"
	"github.com/tomtom215/goodbooks/internal/search"
	"github.com/tomtom215/goodbooks/internal/supervisor"
	"github.com/tomtom215/goodbooks/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Goodbooks server failed")
	}
}

//nolint:gocyclo // sequential startup steps
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Str("model_storage", cfg.Recommend.Storage.Backend).
		Msg("Starting Goodbooks")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	if err := db.LoadCSV(ctx, cfg.Data.BooksPath, cfg.Data.RatingsPath); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	rc, err := initRecommend(ctx, cfg, db, logging.WithComponent("recommend"))
	if err != nil {
		return err
	}
	defer rc.Close()

	index := search.NewIndex()
	if err := index.Build(rc.Items); err != nil {
		return fmt.Errorf("build search index: %w", err)
	}
	defer func() {
		if err := index.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing search index")
		}
	}()

	tree, err := supervisor.NewSupervisorTree(
		logging.NewSlogLogger(logging.WithComponent("supervisor")),
		supervisor.TreeConfig{ShutdownTimeout: cfg.Server.ShutdownTimeout},
	)
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	if cfg.Database.Path != ":memory:" {
		tree.AddDataService(services.NewCheckpointService(db, 0, logging.WithComponent("database")))
	}
	tree.AddRecommendService(rc.Service)

	handler := api.NewHandler(api.HandlerConfig{
		Version:        version,
		DefaultLimit:   cfg.Recommend.DefaultK,
		RequestTimeout: cfg.Server.Timeout,
		CacheSize:      cfg.Recommend.CacheSize,
		CacheTTL:       cfg.Recommend.CacheTTL,
	}, rc.Engine, db, index, rc.Service)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(cfg.Security)))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("HTTP server starting")

	errCh := tree.ServeBackground(ctx)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received")
		err = <-errCh
	case err = <-errCh:
		logging.Warn().Err(err).Msg("Supervisor tree stopped unexpectedly")
	}

	if report, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}

	logging.Info().Msg("Goodbooks stopped")
	return nil
}
