// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/goodbooks/internal/database"
	"github.com/tomtom215/goodbooks/internal/recommend"
	"github.com/tomtom215/goodbooks/internal/search"
	"github.com/tomtom215/goodbooks/internal/validation"
)

// API error codes beyond validation.CodeValidation.
const (
	CodeItemNotFound       = "ITEM_NOT_FOUND"
	CodeUnknownUser        = "UNKNOWN_USER"
	CodeModelNotTrained    = "MODEL_NOT_TRAINED"
	CodeTrainingInProgress = "TRAINING_IN_PROGRESS"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	CodeTimeout            = "TIMEOUT"
	CodeInternal           = "INTERNAL_ERROR"
)

// errorMapping translates a sentinel error into an HTTP answer. label is
// the result label recorded on query metrics.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
	label   string
}

var errorMappings = []errorMapping{
	{recommend.ErrItemNotFound, http.StatusNotFound, CodeItemNotFound, "No book matches the given title or id", "not_found"},
	{recommend.ErrUnknownUser, http.StatusNotFound, CodeUnknownUser, "User has no ratings in the trained model", "unknown_user"},
	{recommend.ErrNotTrained, http.StatusServiceUnavailable, CodeModelNotTrained, "Model is not trained yet", "not_ready"},
	{recommend.ErrTrainingInProgress, http.StatusConflict, CodeTrainingInProgress, "A training run is already in progress", "busy"},
	{search.ErrNotBuilt, http.StatusServiceUnavailable, CodeModelNotTrained, "Search index is not built yet", "not_ready"},
	{database.ErrNotLoaded, http.StatusServiceUnavailable, CodeServiceUnavailable, "Catalog is not loaded yet", "not_ready"},
	{search.ErrEmptyQuery, http.StatusBadRequest, validation.CodeValidation, "Search query is empty", "invalid"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, CodeTimeout, "Request timed out", "timeout"},
}

// lookupError returns the mapping for err, falling back to a 500.
func lookupError(err error) errorMapping {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m
		}
	}
	return errorMapping{
		status:  http.StatusInternalServerError,
		code:    CodeInternal,
		message: "Internal server error",
		label:   "error",
	}
}

// resultLabel is the metrics result label for err.
func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	return lookupError(err).label
}

// respondServiceError maps err onto the error envelope.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	m := lookupError(err)
	respondError(w, r, m.status, m.code, m.message, err)
}
