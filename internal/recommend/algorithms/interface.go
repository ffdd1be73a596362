// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package algorithms

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/goodbooks/internal/recommend"
)

// BaseAlgorithm provides the lifecycle bookkeeping shared by models.
type BaseAlgorithm struct {
	name          string
	state         recommend.ModelState
	version       int
	lastTrainedAt time.Time
	mu            sync.RWMutex
}

// NewBaseAlgorithm creates a new base algorithm with the given name.
func NewBaseAlgorithm(name string) BaseAlgorithm {
	return BaseAlgorithm{
		name:  name,
		state: recommend.ModelUninitialized,
	}
}

// Name returns the algorithm identifier.
func (b *BaseAlgorithm) Name() string {
	return b.name
}

// State returns the lifecycle state.
func (b *BaseAlgorithm) State() recommend.ModelState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// IsTrained returns whether the model has been trained.
func (b *BaseAlgorithm) IsTrained() bool {
	return b.State() == recommend.ModelTrained
}

// Version returns the model version.
func (b *BaseAlgorithm) Version() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// LastTrainedAt returns when the model was last trained.
func (b *BaseAlgorithm) LastTrainedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastTrainedAt
}

// markTraining moves the model into the Training state.
// Must be called while holding the training lock (acquireTrainLock).
func (b *BaseAlgorithm) markTraining() {
	b.state = recommend.ModelTraining
}

// markTrained updates the trained state.
// Must be called while holding the training lock (acquireTrainLock).
func (b *BaseAlgorithm) markTrained() {
	b.state = recommend.ModelTrained
	b.version++
	b.lastTrainedAt = time.Now()
}

// markFailed returns the model to the Uninitialized state.
// Must be called while holding the training lock (acquireTrainLock).
func (b *BaseAlgorithm) markFailed() {
	b.state = recommend.ModelUninitialized
}

// acquireTrainLock acquires the exclusive training lock.
func (b *BaseAlgorithm) acquireTrainLock() {
	b.mu.Lock()
}

// releaseTrainLock releases the exclusive training lock.
func (b *BaseAlgorithm) releaseTrainLock() {
	b.mu.Unlock()
}

// acquirePredictLock acquires the shared prediction lock.
func (b *BaseAlgorithm) acquirePredictLock() {
	b.mu.RLock()
}

// releasePredictLock releases the shared prediction lock.
func (b *BaseAlgorithm) releasePredictLock() {
	b.mu.RUnlock()
}

// sortScored orders items by score descending, breaking ties by item id ascending.
func sortScored(items []recommend.ScoredItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ItemID < items[j].ItemID
	})
}

// truncate returns at most n items. A non-positive n yields an empty slice.
func truncate(items []recommend.ScoredItem, n int) []recommend.ScoredItem {
	if n <= 0 {
		return []recommend.ScoredItem{}
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}

// normalizeScores normalizes scores to [0, 1] range using min-max normalization.
func normalizeScores(scores map[int]float64) map[int]float64 {
	if len(scores) == 0 {
		return scores
	}

	var minScore, maxScore float64
	first := true
	for _, score := range scores {
		if first {
			minScore, maxScore = score, score
			first = false
			continue
		}
		if score < minScore {
			minScore = score
		}
		if score > maxScore {
			maxScore = score
		}
	}

	rang := maxScore - minScore
	if rang == 0 {
		// All scores are equal - return 0.5 for all
		for id := range scores {
			scores[id] = 0.5
		}
		return scores
	}

	for id, score := range scores {
		scores[id] = (score - minScore) / rang
	}

	return scores
}

// Ensure all models implement the engine interfaces.
var (
	_ recommend.ContentIndex     = (*SimilarityIndex)(nil)
	_ recommend.FactorModel      = (*LatentFactorModel)(nil)
	_ recommend.UserRanker       = (*Ranker)(nil)
	_ recommend.PopularityRanker = (*Popularity)(nil)
	_ recommend.Backend          = Backend{}
)

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
