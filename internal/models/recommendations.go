// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package models

import (
	"time"

	"github.com/tomtom215/goodbooks/internal/recommend"
)

// ContentRecommendations answers a "books like this one" query.
type ContentRecommendations struct {
	Query   string                         `json:"query"`
	ItemID  int                            `json:"item_id"`
	Title   string                         `json:"title"`
	Results []recommend.BookRecommendation `json:"results"`
	Count   int                            `json:"count"`
}

// UserRecommendation is a collaborative prediction resolved to catalog
// metadata. Title and Authors are empty for books missing from the catalog.
type UserRecommendation struct {
	ItemID          int     `json:"item_id"`
	Title           string  `json:"title"`
	Authors         string  `json:"authors"`
	PredictedRating float64 `json:"predicted_rating"`
}

// UserRecommendations answers a per-user top-N query.
type UserRecommendations struct {
	UserID       int                  `json:"user_id"`
	ModelVersion int                  `json:"model_version"`
	Results      []UserRecommendation `json:"results"`
	Count        int                  `json:"count"`
}

// SearchResults answers a catalog search.
type SearchResults struct {
	Query   string      `json:"query"`
	Results interface{} `json:"results"`
	Count   int         `json:"count"`
}

// ModelStatus combines training state with request counters.
type ModelStatus struct {
	Training recommend.TrainingStatus `json:"training"`
	Metrics  recommend.Metrics        `json:"metrics"`
}

// TrainAccepted acknowledges an on-demand training request.
type TrainAccepted struct {
	Accepted     bool `json:"accepted"`
	ModelVersion int  `json:"current_model_version"`
}

// HealthStatus reports dependency readiness.
type HealthStatus struct {
	Status             string     `json:"status"`
	Version            string     `json:"version"`
	DatabaseConnected  bool       `json:"database_connected"`
	ContentReady       bool       `json:"content_ready"`
	CollaborativeReady bool       `json:"collaborative_ready"`
	LastTrainedAt      *time.Time `json:"last_trained_at,omitempty"`
	Uptime             float64    `json:"uptime_seconds"`
}
