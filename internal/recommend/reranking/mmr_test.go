// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package reranking

import (
	"context"
	"testing"

	"github.com/tomtom215/goodbooks/internal/recommend"
)

// seriesSim treats items in the same block of ten as near duplicates.
func seriesSim(a, b int) float64 {
	if a == b {
		return 1
	}
	if a/10 == b/10 {
		return 0.9
	}
	return 0
}

func TestNewMMR(t *testing.T) {
	tests := []struct {
		name       string
		lambda     float64
		wantLambda float64
	}{
		{"normal value", 0.7, 0.7},
		{"zero value", 0.0, 0.0},
		{"one value", 1.0, 1.0},
		{"negative clamped to zero", -0.5, 0.0},
		{"above one clamped to one", 1.5, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mmr := NewMMR(tt.lambda)
			if mmr == nil {
				t.Fatal("NewMMR() returned nil")
			}
			if mmr.Lambda() != tt.wantLambda {
				t.Errorf("Lambda() = %f, want %f", mmr.Lambda(), tt.wantLambda)
			}
		})
	}
}

func TestMMR_Name(t *testing.T) {
	mmr := NewMMR(0.7)
	if mmr.Name() != "mmr" {
		t.Errorf("Name() = %q, want %q", mmr.Name(), "mmr")
	}
}

func TestMMR_Rerank(t *testing.T) {
	// Items 11-13 are one series, 21 and 31 stand alone.
	items := []recommend.ScoredItem{
		{ItemID: 11, Score: 1.0},
		{ItemID: 12, Score: 0.95},
		{ItemID: 13, Score: 0.9},
		{ItemID: 21, Score: 0.6},
		{ItemID: 31, Score: 0.5},
	}

	tests := []struct {
		name    string
		lambda  float64
		k       int
		sim     recommend.SimilarityFunc
		wantIDs []int
	}{
		{name: "pure relevance", lambda: 1.0, k: 3, sim: seriesSim, wantIDs: []int{11, 12, 13}},
		{name: "nil similarity keeps order", lambda: 0.5, k: 3, sim: nil, wantIDs: []int{11, 12, 13}},
		{name: "diversity promotes other series", lambda: 0.5, k: 3, sim: seriesSim, wantIDs: []int{11, 21, 31}},
		{name: "k larger than items", lambda: 0.7, k: 10, sim: seriesSim, wantIDs: []int{11, 21, 12, 13, 31}},
		{name: "zero k", lambda: 0.7, k: 0, sim: seriesSim, wantIDs: []int{}},
		{name: "pure diversity", lambda: 0, k: 2, sim: seriesSim, wantIDs: []int{11, 21}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mmr := NewMMR(tt.lambda)
			result := mmr.Rerank(context.Background(), items, tt.k, tt.sim)

			if len(result) != len(tt.wantIDs) {
				t.Fatalf("len(result) = %d, want %d (%+v)", len(result), len(tt.wantIDs), result)
			}
			for i, id := range tt.wantIDs {
				if result[i].ItemID != id {
					t.Errorf("result[%d].ItemID = %d, want %d", i, result[i].ItemID, id)
				}
			}
		})
	}
}

func TestMMR_Rerank_DoesNotMutateInput(t *testing.T) {
	items := []recommend.ScoredItem{
		{ItemID: 1, Score: 0.9},
		{ItemID: 2, Score: 0.8},
	}
	mmr := NewMMR(1.0)
	out := mmr.Rerank(context.Background(), items, 2, seriesSim)
	out[0].Score = 0

	if items[0].Score != 0.9 {
		t.Error("Rerank() returned a slice sharing the input backing array")
	}
}

func TestMMR_Rerank_EmptyInput(t *testing.T) {
	mmr := NewMMR(0.7)

	t.Run("nil items", func(t *testing.T) {
		result := mmr.Rerank(context.Background(), nil, 5, seriesSim)
		if len(result) != 0 {
			t.Errorf("expected empty result for nil input, got %d items", len(result))
		}
	})

	t.Run("empty slice", func(t *testing.T) {
		result := mmr.Rerank(context.Background(), []recommend.ScoredItem{}, 5, seriesSim)
		if len(result) != 0 {
			t.Errorf("expected empty result for empty slice, got %d items", len(result))
		}
	})
}

func TestMMR_Rerank_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := []recommend.ScoredItem{{ItemID: 1, Score: 1}, {ItemID: 2, Score: 0.5}}
	if got := NewMMR(0.5).Rerank(ctx, items, 2, seriesSim); len(got) != 0 {
		t.Errorf("Rerank() with cancelled context = %+v, want empty", got)
	}
}
