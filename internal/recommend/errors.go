// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package recommend

import "errors"

// Sentinel errors reported by the engine and its algorithms.
// Callers match them with errors.Is; every return site wraps them with context.
var (
	// ErrItemNotFound is returned when an item id or title has no match in the catalog.
	ErrItemNotFound = errors.New("item not found")

	// ErrUnknownUser is returned when a user never appeared in the training data.
	ErrUnknownUser = errors.New("unknown user")

	// ErrNotTrained is returned when a model is queried before it has been fitted.
	ErrNotTrained = errors.New("model not trained")

	// ErrEmptyCorpus is returned when no vocabulary terms survive stopword filtering.
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrInsufficientData is returned when a split or fit would operate on an empty partition.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrTrainingInProgress is returned when a training run is requested while another is active.
	ErrTrainingInProgress = errors.New("training already in progress")
)
