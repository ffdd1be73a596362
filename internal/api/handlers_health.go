// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/goodbooks/internal/models"
)

// Health handles GET /api/v1/health
// The status is "degraded" while the catalog is unreachable or the content
// index is not built. A missing factor model alone does not degrade it.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.catalog != nil && h.catalog.Ping(r.Context()) == nil
	training := h.engine.GetStatus()

	status := "healthy"
	if !dbConnected || !training.ContentReady {
		status = "degraded"
	}

	var lastTrained *time.Time
	if !training.LastTrainedAt.IsZero() {
		t := training.LastTrainedAt
		lastTrained = &t
	}

	respondSuccess(w, http.StatusOK, models.HealthStatus{
		Status:             status,
		Version:            h.config.Version,
		DatabaseConnected:  dbConnected,
		ContentReady:       training.ContentReady,
		CollaborativeReady: training.CollaborativeReady,
		LastTrainedAt:      lastTrained,
		Uptime:             time.Since(h.startTime).Seconds(),
	}, time.Now())
}

// HealthLive handles GET /api/v1/health/live
// It answers 200 whenever the process can serve HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Now())
}

// HealthReady handles GET /api/v1/health/ready
// It answers 503 until the catalog responds and the content index is built.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.catalog != nil && h.catalog.Ping(r.Context()) == nil
	contentReady := h.engine.GetStatus().ContentReady
	ready := dbConnected && contentReady

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondSuccess(w, statusCode, map[string]interface{}{
		"status":             status,
		"database_connected": dbConnected,
		"content_ready":      contentReady,
	}, time.Now())
}
