// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package algorithms

import (
	"fmt"
	"sort"

	"github.com/tomtom215/goodbooks/internal/recommend"
)

// Ranker produces per-user top-N lists by scoring every unrated catalog item
// through a factor model.
type Ranker struct {
	model   recommend.FactorModel
	rated   *InteractionMatrix
	catalog []int
}

// NewRanker creates a ranker. rated holds every known rating (train and test)
// so nothing a user has already rated is recommended. When catalog is empty
// the rated items form the candidate set.
func NewRanker(model recommend.FactorModel, rated *InteractionMatrix, catalog []int) *Ranker {
	if len(catalog) == 0 && rated != nil {
		catalog = rated.Items()
	} else {
		catalog = append([]int(nil), catalog...)
		sort.Ints(catalog)
	}
	if rated == nil {
		rated = NewInteractionMatrix(nil)
	}
	return &Ranker{
		model:   model,
		rated:   rated,
		catalog: catalog,
	}
}

// TopNForUser returns the n unrated items with the highest predicted rating,
// ties broken by item id ascending. ErrUnknownUser is returned for users the
// model never saw during training.
func (r *Ranker) TopNForUser(userID, n int) ([]recommend.ScoredItem, error) {
	if !r.model.KnowsUser(userID) {
		return nil, fmt.Errorf("user %d: %w", userID, recommend.ErrUnknownUser)
	}

	seen := r.rated.UserItems(userID)
	scored := make([]recommend.ScoredItem, 0, len(r.catalog))
	for _, itemID := range r.catalog {
		if _, ok := seen[itemID]; ok {
			continue
		}
		score, err := r.model.Predict(userID, itemID)
		if err != nil {
			return nil, fmt.Errorf("predict user %d item %d: %w", userID, itemID, err)
		}
		scored = append(scored, recommend.ScoredItem{ItemID: itemID, Score: score})
	}

	sortScored(scored)
	return truncate(scored, n), nil
}

// CandidateCount returns the number of catalog items considered for ranking.
func (r *Ranker) CandidateCount() int {
	return len(r.catalog)
}

// RatedItems returns the set of items the user has already rated.
func (r *Ranker) RatedItems(userID int) map[int]struct{} {
	seen := r.rated.UserItems(userID)
	out := make(map[int]struct{}, len(seen))
	for id := range seen {
		out[id] = struct{}{}
	}
	return out
}
