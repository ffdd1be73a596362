// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package reranking

import (
	"context"
	"math"

	"github.com/tomtom215/goodbooks/internal/recommend"
)

// maxRerankSize limits slice allocations; k is also bounded by len(items).
const maxRerankSize = 10000

// MMR implements Maximal Marginal Relevance reranking.
// It balances relevance and diversity by iteratively selecting items
// that are both relevant and dissimilar to already selected items.
//
// The MMR formula is:
//
//	MMR = argmax[lambda * score(i) - (1-lambda) * max(sim(i, s)) for s in selected]
//
// Where:
//   - lambda: balance parameter (1.0 = pure relevance, 0.0 = pure diversity)
//   - score(i): original relevance score for item i
//   - sim(i, s): content similarity between item i and selected item s
//
// Reference:
// Carbonell, J., & Goldstein, J. (1998). "The Use of MMR, Diversity-Based
// Reranking for Reordering Documents and Producing Summaries." SIGIR 1998.
type MMR struct {
	// Lambda balances relevance vs. diversity (0.0 to 1.0)
	lambda float64
}

// NewMMR creates a new MMR reranker. lambda is clamped to [0, 1].
func NewMMR(lambda float64) *MMR {
	if lambda < 0 {
		lambda = 0
	}
	if lambda > 1 {
		lambda = 1
	}
	return &MMR{lambda: lambda}
}

// Name returns the reranker identifier.
func (m *MMR) Name() string {
	return "mmr"
}

// Lambda returns the relevance weight.
func (m *MMR) Lambda() float64 {
	return m.lambda
}

// Rerank applies MMR to items, which must be sorted by relevance, and returns
// at most k of them. Equal MMR scores keep the earlier (more relevant) item.
// A nil sim disables the diversity term.
//
//nolint:gocritic // rangeValCopy: ScoredItem is small
func (m *MMR) Rerank(ctx context.Context, items []recommend.ScoredItem, k int, sim recommend.SimilarityFunc) []recommend.ScoredItem {
	if len(items) == 0 || k <= 0 {
		return []recommend.ScoredItem{}
	}

	if k > maxRerankSize {
		k = maxRerankSize
	}
	if k > len(items) {
		k = len(items)
	}

	// Pure relevance keeps the incoming order.
	if m.lambda >= 1.0 || sim == nil {
		return append([]recommend.ScoredItem(nil), items[:k]...)
	}

	selected := make([]recommend.ScoredItem, 0, k)
	taken := make([]bool, len(items))

	// maxSim[i] is the highest similarity of items[i] to any selected item.
	maxSim := make([]float64, len(items))

	for len(selected) < k {
		if ctx.Err() != nil {
			break
		}

		bestIdx := -1
		bestMMR := math.Inf(-1)

		for i, item := range items {
			if taken[i] {
				continue
			}
			score := m.lambda*item.Score - (1-m.lambda)*maxSim[i]
			if score > bestMMR {
				bestMMR = score
				bestIdx = i
			}
		}

		if bestIdx < 0 {
			break
		}

		chosen := items[bestIdx]
		selected = append(selected, chosen)
		taken[bestIdx] = true

		for i, item := range items {
			if taken[i] {
				continue
			}
			if s := sim(item.ItemID, chosen.ItemID); s > maxSim[i] {
				maxSim[i] = s
			}
		}
	}

	return selected
}

// Ensure MMR implements the interface.
var _ recommend.Reranker = (*MMR)(nil)
