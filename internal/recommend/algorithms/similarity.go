// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package algorithms

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/goodbooks/internal/recommend"
)

// SimilarityIndex holds the pairwise cosine similarity of every item's
// TF-IDF vector. It is built once and is read-only afterwards.
//
// Memory is O(items²): the matrix is stored densely as float32, which is
// about 400 MB for a ten thousand book catalog.
type SimilarityIndex struct {
	items   []recommend.Item
	byID    map[int]int
	byTitle map[string]int
	vocab   *Vocabulary
	vectors []TermVector
	matrix  []float32
}

// NewSimilarityIndex vectorizes items and precomputes the similarity matrix.
// Rows are filled by a bounded worker group; each worker owns row i and the
// mirrored column cells (j, i) for j > i, so writes never overlap.
//
//nolint:gocritic // rangeValCopy: Item is small
func NewSimilarityIndex(ctx context.Context, items []recommend.Item, stopwords StopwordSet) (*SimilarityIndex, error) {
	vocab, vectors, err := BuildVectors(items, stopwords)
	if err != nil {
		return nil, err
	}

	n := len(items)
	idx := &SimilarityIndex{
		items:   append([]recommend.Item(nil), items...),
		byID:    make(map[int]int, n),
		byTitle: make(map[string]int, n),
		vocab:   vocab,
		vectors: vectors,
		matrix:  make([]float32, n*n),
	}

	for i, item := range items {
		if _, dup := idx.byID[item.ID]; dup {
			return nil, fmt.Errorf("duplicate item id %d", item.ID)
		}
		idx.byID[item.ID] = i
		key := recommend.NormalizeTitle(item.Title)
		if _, seen := idx.byTitle[key]; !seen {
			idx.byTitle[key] = i
		}
	}

	// postings[t] lists (row, weight) for every vector containing term t.
	type posting struct {
		row    int
		weight float64
	}
	postings := make([][]posting, vocab.Len())
	for row, tv := range vectors {
		for k, term := range tv.Indices {
			postings[term] = append(postings[term], posting{row: row, weight: tv.Weights[k]})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := 0; i < n; i++ {
		g.Go(func() error {
			if ContextCancelled(gctx) {
				return gctx.Err()
			}
			acc := make(map[int]float64)
			tv := vectors[i]
			for k, term := range tv.Indices {
				w := tv.Weights[k]
				for _, p := range postings[term] {
					if p.row > i {
						acc[p.row] += w * p.weight
					}
				}
			}
			idx.matrix[i*n+i] = 1
			for j, sim := range acc {
				v := float32(sim)
				idx.matrix[i*n+j] = v
				idx.matrix[j*n+i] = v
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compute similarity matrix: %w", err)
	}

	return idx, nil
}

// Len returns the number of indexed items.
func (s *SimilarityIndex) Len() int {
	return len(s.items)
}

// ItemIDs returns every indexed item id in ascending order.
func (s *SimilarityIndex) ItemIDs() []int {
	ids := make([]int, len(s.items))
	for i, item := range s.items {
		ids[i] = item.ID
	}
	sort.Ints(ids)
	return ids
}

// Vocabulary returns the fitted vocabulary.
func (s *SimilarityIndex) Vocabulary() *Vocabulary {
	return s.vocab
}

// Vector returns the TF-IDF vector of an item.
func (s *SimilarityIndex) Vector(id int) (TermVector, bool) {
	row, ok := s.byID[id]
	if !ok {
		return TermVector{}, false
	}
	return s.vectors[row], true
}

// Item returns catalog metadata for an id.
func (s *SimilarityIndex) Item(id int) (recommend.Item, bool) {
	row, ok := s.byID[id]
	if !ok {
		return recommend.Item{}, false
	}
	return s.items[row], true
}

// Similarity returns the cosine similarity of two items, or 0 if either is unknown.
func (s *SimilarityIndex) Similarity(a, b int) float64 {
	ra, okA := s.byID[a]
	rb, okB := s.byID[b]
	if !okA || !okB {
		return 0
	}
	return float64(s.matrix[ra*len(s.items)+rb])
}

// Resolve maps a title or a numeric id string to an item id.
// An exact case-insensitive title match wins over an id, so titles such as
// "1984" resolve to the book rather than to item 1984.
func (s *SimilarityIndex) Resolve(titleOrID string) (int, error) {
	if row, ok := s.byTitle[recommend.NormalizeTitle(titleOrID)]; ok {
		return s.items[row].ID, nil
	}
	if id, err := strconv.Atoi(strings.TrimSpace(titleOrID)); err == nil {
		if _, ok := s.byID[id]; ok {
			return id, nil
		}
	}
	return 0, fmt.Errorf("resolve %q: %w", titleOrID, recommend.ErrItemNotFound)
}

// Query returns the topN items most similar to itemID, excluding itemID itself,
// sorted by score descending with ties broken by id ascending.
func (s *SimilarityIndex) Query(itemID, topN int) ([]recommend.ScoredItem, error) {
	row, ok := s.byID[itemID]
	if !ok {
		return nil, fmt.Errorf("item %d: %w", itemID, recommend.ErrItemNotFound)
	}
	if topN <= 0 {
		return []recommend.ScoredItem{}, nil
	}

	n := len(s.items)
	scored := make([]recommend.ScoredItem, 0, n-1)
	for j := 0; j < n; j++ {
		if j == row {
			continue
		}
		scored = append(scored, recommend.ScoredItem{
			ItemID: s.items[j].ID,
			Score:  float64(s.matrix[row*n+j]),
		})
	}

	sortScored(scored)
	return truncate(scored, topN), nil
}

// QueryByTitle resolves a title with a case-insensitive exact match and queries it.
func (s *SimilarityIndex) QueryByTitle(title string, topN int) ([]recommend.ScoredItem, error) {
	row, ok := s.byTitle[recommend.NormalizeTitle(title)]
	if !ok {
		return nil, fmt.Errorf("title %q: %w", title, recommend.ErrItemNotFound)
	}
	return s.Query(s.items[row].ID, topN)
}
