// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/tomtom215/goodbooks/internal/metrics"
	"github.com/tomtom215/goodbooks/internal/models"
	"github.com/tomtom215/goodbooks/internal/recommend"
)

// contentRequest is the validated form of a content recommendation query.
type contentRequest struct {
	Query string `query:"q" validate:"required,notblank,max=500"`
	Limit int    `query:"limit" validate:"min=1,max=100"`
}

// userRequest is the validated form of a collaborative recommendation query.
type userRequest struct {
	UserID int `query:"id" validate:"min=1"`
	Limit  int `query:"limit" validate:"min=1,max=100"`
}

// ContentRecommendations handles GET /api/v1/recommendations/content?q=&limit=
// It returns the books most similar to the one named by q, a title or a numeric id.
func (h *Handler) ContentRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, apiErr := intParam(r, "limit", h.config.DefaultLimit)
	if apiErr != nil {
		respondErrorDetails(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}
	req := contentRequest{Query: r.URL.Query().Get("q"), Limit: limit}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	key := fmt.Sprintf("%d|%s", req.Limit, req.Query)
	if h.contentCache != nil {
		cached, ok := h.contentCache.Get(key)
		metrics.RecordCacheLookup("content", ok)
		if ok {
			metrics.RecordRecommendation("content", "success", time.Since(start))
			respondData(w, http.StatusOK, cached, start, true)
			return
		}
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	recs, err := h.engine.ContentRecommend(ctx, req.Query, req.Limit)
	metrics.RecordRecommendation("content", resultLabel(err), time.Since(start))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	resp := models.ContentRecommendations{
		Query:   req.Query,
		Results: recs,
		Count:   len(recs),
	}
	if idx := h.engine.ContentIndex(); idx != nil {
		if id, err := idx.Resolve(req.Query); err == nil {
			item, _ := idx.Item(id)
			resp.ItemID, resp.Title = id, item.Title
		}
	}
	if h.contentCache != nil {
		h.contentCache.Add(key, resp)
	}

	respondSuccess(w, http.StatusOK, resp, start)
}

// UserRecommendations handles GET /api/v1/recommendations/users/{userID}?limit=
// It returns the highest predicted ratings among books the user has not rated.
func (h *Handler) UserRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	raw := chi.URLParam(r, "userID")
	userID, err := strconv.Atoi(raw)
	if err != nil {
		respondErrorDetails(w, r, http.StatusBadRequest, invalidParam("id", raw, "must be an integer"), nil)
		return
	}
	limit, apiErr := intParam(r, "limit", h.config.DefaultLimit)
	if apiErr != nil {
		respondErrorDetails(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}
	req := userRequest{UserID: userID, Limit: limit}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	// The served version is part of the key so a retrain bypasses old entries.
	version := h.engine.GetStatus().ModelVersion
	key := fmt.Sprintf("%d|%d|%d", version, req.UserID, req.Limit)
	if h.userCache != nil {
		cached, ok := h.userCache.Get(key)
		metrics.RecordCacheLookup("collaborative", ok)
		if ok {
			metrics.RecordRecommendation("collaborative", "success", time.Since(start))
			respondData(w, http.StatusOK, cached, start, true)
			return
		}
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	scored, err := h.engine.CollaborativeRecommend(ctx, req.UserID, req.Limit)
	metrics.RecordRecommendation("collaborative", resultLabel(err), time.Since(start))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	// A model swap during the call leaves the result's version unknown.
	served := h.engine.GetStatus().ModelVersion
	cacheable := served == version

	idx := h.engine.ContentIndex()
	results := lo.Map(scored, func(s recommend.ScoredItem, _ int) models.UserRecommendation {
		rec := models.UserRecommendation{ItemID: s.ItemID, PredictedRating: s.Score}
		if idx != nil {
			if item, ok := idx.Item(s.ItemID); ok {
				rec.Title, rec.Authors = item.Title, item.Authors
			}
		}
		return rec
	})

	resp := models.UserRecommendations{
		UserID:       req.UserID,
		ModelVersion: served,
		Results:      results,
		Count:        len(results),
	}
	if h.userCache != nil && cacheable {
		h.userCache.Add(key, resp)
	}

	respondSuccess(w, http.StatusOK, resp, start)
}
