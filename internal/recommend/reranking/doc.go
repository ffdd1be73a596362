// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

// Package reranking implements post-processing algorithms for recommendation diversity.
//
// Rerankers operate on already-scored recommendations and reorder them to
// balance relevance against other objectives:
//
//	Content Index -> Candidates (k * multiplier) -> Rerankers -> Final k
//
// # Available Rerankers
//
// Maximal Marginal Relevance (MMR):
//   - Balances relevance with diversity
//   - Penalizes books similar to already-selected books
//   - Lambda parameter controls the relevance/diversity tradeoff
//
// # Interface
//
// All rerankers implement the recommend.Reranker interface:
//
//	type Reranker interface {
//	    Name() string
//	    Rerank(ctx context.Context, items []ScoredItem, k int, sim SimilarityFunc) []ScoredItem
//	}
//
// The engine passes the content index similarity as sim, so MMR penalizes
// candidates by their TF-IDF cosine to the books already picked. This keeps
// one series or one author from filling the whole list.
//
// # Usage Example
//
//	mmr := reranking.NewMMR(0.7)
//	engine.RegisterReranker(mmr)
//
// # Lambda Guidelines
//
//   - 0.9-1.0: Mostly relevance, minimal diversity
//   - 0.7-0.9: Balanced (default 0.7)
//   - 0.0-0.7: Diversity-focused (may sacrifice relevance)
//
// # Performance
//
// MMR Complexity:
//   - Time: O(k * n) similarity lookups where n = candidate count
//   - Space: O(n)
//
// # Thread Safety
//
// Rerankers are stateless and safe for concurrent use.
package reranking
