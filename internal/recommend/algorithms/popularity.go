// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package algorithms

import (
	"context"
	"sort"

	"github.com/tomtom215/goodbooks/internal/recommend"
)

// Popularity ranks items by the number of ratings they received.
// It is the cold-start baseline for users unknown to the factor model.
//
// Ordering is rating count descending, then mean rating descending, then
// item id ascending. Scores are min-max normalized counts.
type Popularity struct {
	BaseAlgorithm

	// Trained model
	itemScores map[int]float64
	sortedIDs  []int
}

// NewPopularity creates a new popularity baseline.
func NewPopularity() *Popularity {
	return &Popularity{
		BaseAlgorithm: NewBaseAlgorithm("popularity"),
		itemScores:    make(map[int]float64),
	}
}

// Train computes popularity scores from interactions.
//
//nolint:gocritic // rangeValCopy: Interaction is small
func (p *Popularity) Train(ctx context.Context, interactions []recommend.Interaction) error {
	p.acquireTrainLock()
	defer p.releaseTrainLock()

	counts := make(map[int]int)
	sums := make(map[int]float64)
	for _, inter := range interactions {
		if ContextCancelled(ctx) {
			p.markFailed()
			return ctx.Err()
		}
		counts[inter.ItemID]++
		sums[inter.ItemID] += inter.Rating
	}

	ids := make([]int, 0, len(counts))
	raw := make(map[int]float64, len(counts))
	for id, c := range counts {
		ids = append(ids, id)
		raw[id] = float64(c)
	}

	sort.Slice(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}
		meanA := sums[a] / float64(counts[a])
		meanB := sums[b] / float64(counts[b])
		if meanA != meanB {
			return meanA > meanB
		}
		return a < b
	})

	p.sortedIDs = ids
	p.itemScores = normalizeScores(raw)
	p.markTrained()
	return nil
}

// TopK returns the k most popular items not in exclude.
func (p *Popularity) TopK(k int, exclude map[int]struct{}) []recommend.ScoredItem {
	p.acquirePredictLock()
	defer p.releasePredictLock()

	if k <= 0 || len(p.sortedIDs) == 0 {
		return []recommend.ScoredItem{}
	}

	out := make([]recommend.ScoredItem, 0, k)
	for _, id := range p.sortedIDs {
		if _, skip := exclude[id]; skip {
			continue
		}
		out = append(out, recommend.ScoredItem{ItemID: id, Score: p.itemScores[id]})
		if len(out) == k {
			break
		}
	}
	return out
}
