// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/goodbooks/internal/config"
	"github.com/tomtom215/goodbooks/internal/database"
	"github.com/tomtom215/goodbooks/internal/recommend"
	"github.com/tomtom215/goodbooks/internal/recommend/algorithms"
	"github.com/tomtom215/goodbooks/internal/recommend/reranking"
	"github.com/tomtom215/goodbooks/internal/recommend/storage"
	"github.com/tomtom215/goodbooks/internal/supervisor/services"
)

// RecommendComponents holds all recommendation-related components.
type RecommendComponents struct {
	Engine  *recommend.Engine
	Service *services.RecommendService

	// Items is the catalog the content index was built from.
	Items []recommend.Item

	closers []func() error
	logger  zerolog.Logger
}

// Close releases the model store.
func (rc *RecommendComponents) Close() {
	for _, c := range rc.closers {
		if err := c(); err != nil {
			rc.logger.Warn().Err(err).Msg("error closing model store")
		}
	}
}

// initRecommend builds the engine, publishes the content index and restores
// the latest persisted factor model when one exists.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(ctx context.Context, cfg *config.Config, db *database.DB, logger zerolog.Logger) (*RecommendComponents, error) {
	engine, err := recommend.NewEngine(cfg.Recommend.EngineConfig(), algorithms.NewBackend(), logger)
	if err != nil {
		return nil, fmt.Errorf("create recommendation engine: %w", err)
	}
	engine.SetDataProvider(db)

	if cfg.Recommend.DiversityEnabled {
		engine.RegisterReranker(reranking.NewMMR(cfg.Recommend.DiversityLambda))
		logger.Debug().Float64("lambda", cfg.Recommend.DiversityLambda).Msg("registered MMR reranker")
	}

	rc := &RecommendComponents{Engine: engine, logger: logger}

	store, closer, err := openModelStore(cfg.Recommend.Storage)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		rc.closers = append(rc.closers, closer)
	}
	if store != nil {
		engine.SetModelStore(store)
	}

	items, err := db.Items(ctx)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("load catalog items: %w", err)
	}
	if err := engine.BuildContentIndex(ctx, items); err != nil {
		rc.Close()
		return nil, fmt.Errorf("build content index: %w", err)
	}
	rc.Items = items

	restored := store != nil && restoreModel(ctx, engine, db, cfg.Recommend.MinUserRatings, logger)

	serviceCfg := services.RecommendServiceConfig{
		TrainOnStartup: cfg.Recommend.TrainOnStartup || !restored,
		TrainInterval:  cfg.Recommend.TrainInterval,
		TrainTimeout:   cfg.Recommend.TrainTimeout,
	}
	rc.Service = services.NewRecommendService(engine, serviceCfg, logger)

	logger.Info().
		Int("items", len(items)).
		Bool("model_restored", restored).
		Bool("train_on_startup", serviceCfg.TrainOnStartup).
		Dur("train_interval", serviceCfg.TrainInterval).
		Msg("recommendation engine initialized")

	return rc, nil
}

// restoreModel publishes the latest persisted model. It reports whether a
// model is now being served.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func restoreModel(ctx context.Context, engine *recommend.Engine, db *database.DB, minUserRatings int, logger zerolog.Logger) bool {
	interactions, err := db.Interactions(ctx, minUserRatings)
	if err != nil {
		logger.Warn().Err(err).Msg("could not load interactions for model restore")
		return false
	}
	if err := engine.RestoreFromStore(ctx, interactions); err != nil {
		if errors.Is(err, storage.ErrModelNotFound) {
			logger.Info().Msg("no persisted factor model, training from scratch")
		} else {
			logger.Warn().Err(err).Msg("failed to restore factor model, training from scratch")
		}
		return false
	}
	return true
}

// openModelStore opens the configured persistence backend. Both return
// values are nil for the "none" backend.
func openModelStore(sc config.StorageConfig) (recommend.ModelStore, func() error, error) {
	switch sc.Backend {
	case "file":
		fs, err := storage.NewFileStore(sc.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open file model store: %w", err)
		}
		return storage.NewModelStore(fs), nil, nil
	case "badger":
		bs, err := storage.OpenBadgerStore(sc.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open badger model store: %w", err)
		}
		return storage.NewModelStore(bs), bs.Close, nil
	case "none", "":
		return nil, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown model storage backend %q", sc.Backend)
	}
}
