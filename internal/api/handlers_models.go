// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/goodbooks/internal/models"
	"github.com/tomtom215/goodbooks/internal/recommend"
)

// ModelStatus handles GET /api/v1/models/status
func (h *Handler) ModelStatus(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, models.ModelStatus{
		Training: h.engine.GetStatus(),
		Metrics:  h.engine.GetMetrics(),
	}, time.Now())
}

// TrainModel handles POST /api/v1/models/train
// Training runs in the background; poll the status endpoint for the result.
func (h *Handler) TrainModel(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.trainer == nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeServiceUnavailable, "Training is not available", nil)
		return
	}

	err := h.trainer.Trigger()
	switch {
	case err == nil:
	case errors.Is(err, recommend.ErrTrainingInProgress):
		respondServiceError(w, r, err)
		return
	default:
		respondError(w, r, http.StatusServiceUnavailable, CodeServiceUnavailable, "Training is not available", err)
		return
	}

	respondSuccess(w, http.StatusAccepted, models.TrainAccepted{
		Accepted:     true,
		ModelVersion: h.engine.GetStatus().ModelVersion,
	}, start)
}
