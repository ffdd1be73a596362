// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package api

import (
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/goodbooks/internal/database"
	"github.com/tomtom215/goodbooks/internal/metrics"
	"github.com/tomtom215/goodbooks/internal/models"
	"github.com/tomtom215/goodbooks/internal/search"
)

// searchRequest is the validated form of a catalog search.
type searchRequest struct {
	Query string `query:"q" validate:"required,notblank,max=200"`
	Limit int    `query:"limit" validate:"min=1,max=100"`
}

// limitRequest validates a bare limit parameter.
type limitRequest struct {
	Limit int `query:"limit" validate:"min=1,max=100"`
}

// SearchBooks handles GET /api/v1/books/search?q=&limit=
// Matching is fuzzy over title and authors. Use the content endpoint with
// an exact title or id for recommendations.
func (h *Handler) SearchBooks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, apiErr := intParam(r, "limit", search.DefaultLimit)
	if apiErr != nil {
		respondErrorDetails(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}
	req := searchRequest{Query: r.URL.Query().Get("q"), Limit: limit}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}
	if h.searcher == nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeServiceUnavailable, "Search is not available", nil)
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	hits, err := h.searcher.Search(ctx, req.Query, req.Limit)
	if err != nil {
		metrics.RecordSearch(resultLabel(err))
		respondServiceError(w, r, err)
		return
	}
	if len(hits) == 0 {
		metrics.RecordSearch("empty")
	} else {
		metrics.RecordSearch("success")
	}

	respondSuccess(w, http.StatusOK, models.SearchResults{
		Query:   req.Query,
		Results: hits,
		Count:   len(hits),
	}, start)
}

// TopBooks handles GET /api/v1/books/top?limit=
// It returns the books with the most ratings.
func (h *Handler) TopBooks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, apiErr := intParam(r, "limit", h.config.DefaultLimit)
	if apiErr != nil {
		respondErrorDetails(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}
	req := limitRequest{Limit: limit}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	books, err := h.catalog.TopRated(ctx, req.Limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"books": books,
		"count": len(books),
	}, start)
}

// catalogStats is the payload of the stats endpoint.
type catalogStats struct {
	Catalog      database.Stats          `json:"catalog"`
	Distribution []database.RatingBucket `json:"rating_distribution"`
}

// Stats handles GET /api/v1/stats
// The counts and the rating histogram are queried concurrently.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	var out catalogStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := h.catalog.Stats(gctx)
		out.Catalog = s
		return err
	})
	g.Go(func() error {
		d, err := h.catalog.RatingDistribution(gctx)
		out.Distribution = d
		return err
	})
	if err := g.Wait(); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, out, start)
}
