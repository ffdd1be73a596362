// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package api

import (
	"context"
	"time"

	"github.com/tomtom215/goodbooks/internal/cache"
	"github.com/tomtom215/goodbooks/internal/database"
	"github.com/tomtom215/goodbooks/internal/models"
	"github.com/tomtom215/goodbooks/internal/recommend"
	"github.com/tomtom215/goodbooks/internal/search"
)

// Recommender is the query side of *recommend.Engine.
type Recommender interface {
	ContentRecommend(ctx context.Context, titleOrID string, topN int) ([]recommend.BookRecommendation, error)
	CollaborativeRecommend(ctx context.Context, userID, topN int) ([]recommend.ScoredItem, error)
	ContentIndex() recommend.ContentIndex
	GetStatus() recommend.TrainingStatus
	GetMetrics() recommend.Metrics
}

// Catalog is the read side of *database.DB.
type Catalog interface {
	Ping(ctx context.Context) error
	Stats(ctx context.Context) (database.Stats, error)
	TopRated(ctx context.Context, n int) ([]database.BookCount, error)
	RatingDistribution(ctx context.Context) ([]database.RatingBucket, error)
}

// Searcher is satisfied by *search.Index.
type Searcher interface {
	Search(ctx context.Context, q string, limit int) ([]search.Hit, error)
}

// Trainer starts an asynchronous training run.
// Satisfied by *services.RecommendService.
type Trainer interface {
	Trigger() error
}

// HandlerConfig holds the request defaults the handlers apply.
type HandlerConfig struct {
	// Version is reported by the health endpoint.
	Version string

	// DefaultLimit is used when a request omits limit.
	DefaultLimit int

	// RequestTimeout bounds engine and catalog calls.
	RequestTimeout time.Duration

	// CacheSize is the number of recommendation responses kept per kind.
	// Zero uses cache.DefaultCapacity; negative disables caching.
	CacheSize int

	// CacheTTL bounds the age of a cached response.
	CacheTTL time.Duration
}

// Handler serves the Goodbooks HTTP endpoints.
type Handler struct {
	engine    Recommender
	catalog   Catalog
	searcher  Searcher
	trainer   Trainer
	config    HandlerConfig
	startTime time.Time

	// nil when caching is disabled
	contentCache *cache.LRU[models.ContentRecommendations]
	userCache    *cache.LRU[models.UserRecommendations]
}

// NewHandler creates a handler. searcher and trainer may be nil, in which
// case their endpoints answer 503.
func NewHandler(cfg HandlerConfig, engine Recommender, catalog Catalog, searcher Searcher, trainer Trainer) *Handler {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	h := &Handler{
		engine:    engine,
		catalog:   catalog,
		searcher:  searcher,
		trainer:   trainer,
		config:    cfg,
		startTime: time.Now(),
	}
	if cfg.CacheSize >= 0 {
		h.contentCache = cache.NewLRU[models.ContentRecommendations](cfg.CacheSize, cfg.CacheTTL)
		h.userCache = cache.NewLRU[models.UserRecommendations](cfg.CacheSize, cfg.CacheTTL)
	}
	return h
}

// requestContext applies the configured request timeout.
func (h *Handler) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, h.config.RequestTimeout)
}
