// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package algorithms

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/goodbooks/internal/recommend"
)

func newBackendEngine(t *testing.T, mutate func(*recommend.Config)) *recommend.Engine {
	t.Helper()
	cfg := recommend.DefaultConfig()
	cfg.Factor.Factors = 2
	cfg.Factor.Epochs = 30
	cfg.Training.MinInteractions = 1
	if mutate != nil {
		mutate(cfg)
	}
	e, err := recommend.NewEngine(cfg, NewBackend(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func TestBackend_ContentRecommend(t *testing.T) {
	e := newBackendEngine(t, nil)
	ctx := context.Background()

	if err := e.BuildContentIndex(ctx, sampleBooks()); err != nil {
		t.Fatalf("BuildContentIndex() error = %v", err)
	}

	recs, err := e.ContentRecommend(ctx, "The Hunger Games", 2)
	if err != nil {
		t.Fatalf("ContentRecommend() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("ContentRecommend() len = %d, want 2", len(recs))
	}
	for _, r := range recs {
		if r.Authors != "Suzanne Collins" {
			t.Errorf("recommendation %+v, want a Suzanne Collins book", r)
		}
		if r.ItemID == 1 {
			t.Error("query book returned in its own recommendations")
		}
	}

	if _, err := e.ContentRecommend(ctx, "Unknown Title", 2); !errors.Is(err, recommend.ErrItemNotFound) {
		t.Errorf("ContentRecommend(unknown) error = %v, want ErrItemNotFound", err)
	}
}

func TestBackend_ContentRecommend_Diversity(t *testing.T) {
	e := newBackendEngine(t, func(c *recommend.Config) {
		c.Diversity.Enabled = true
	})
	e.RegisterReranker(identityReranker{})
	ctx := context.Background()

	if err := e.BuildContentIndex(ctx, sampleBooks()); err != nil {
		t.Fatalf("BuildContentIndex() error = %v", err)
	}
	recs, err := e.ContentRecommend(ctx, "1984", 1)
	if err != nil {
		t.Fatalf("ContentRecommend() error = %v", err)
	}
	if len(recs) != 1 || recs[0].ItemID != 5 {
		t.Errorf("ContentRecommend() = %+v, want Animal Farm", recs)
	}
}

type identityReranker struct{}

func (identityReranker) Name() string { return "identity" }

func (identityReranker) Rerank(_ context.Context, items []recommend.ScoredItem, k int, sim recommend.SimilarityFunc) []recommend.ScoredItem {
	if sim(items[0].ItemID, items[0].ItemID) != 1 {
		return nil
	}
	if len(items) > k {
		return items[:k]
	}
	return items
}

func TestBackend_TrainCollaborative(t *testing.T) {
	e := newBackendEngine(t, nil)
	ctx := context.Background()
	data := additiveRatings(5, 8, func(u, i int) bool { return u == 1 && i == 8 })

	model, result, err := e.TrainCollaborative(ctx, data, recommend.TrainConfig{})
	if err != nil {
		t.Fatalf("TrainCollaborative() error = %v", err)
	}
	if model.State() != recommend.ModelTrained {
		t.Errorf("State() = %v, want trained", model.State())
	}
	if result.Count != 8 || result.K != 5 {
		t.Errorf("result Count, K = %d, %d, want 8, 5", result.Count, result.K)
	}

	recs, err := e.CollaborativeRecommend(ctx, 1, 5)
	if err != nil {
		t.Fatalf("CollaborativeRecommend() error = %v", err)
	}
	if len(recs) != 1 || recs[0].ItemID != 8 {
		t.Errorf("CollaborativeRecommend() = %+v, want only item 8", recs)
	}
	if recs[0].Score < 1 || recs[0].Score > 5 {
		t.Errorf("score = %v, want within [1, 5]", recs[0].Score)
	}

	if _, err := e.CollaborativeRecommend(ctx, 1000, 5); !errors.Is(err, recommend.ErrUnknownUser) {
		t.Errorf("CollaborativeRecommend(unknown) error = %v, want ErrUnknownUser", err)
	}
}

func TestBackend_ColdStartFallback(t *testing.T) {
	e := newBackendEngine(t, func(c *recommend.Config) {
		c.ColdStartFallback = true
	})
	ctx := context.Background()

	if _, _, err := e.TrainCollaborative(ctx, popularityData(), recommend.TrainConfig{}); err != nil {
		t.Fatalf("TrainCollaborative() error = %v", err)
	}
	recs, err := e.CollaborativeRecommend(ctx, 1000, 2)
	if err != nil {
		t.Fatalf("CollaborativeRecommend() error = %v", err)
	}
	if len(recs) != 2 || recs[0].ItemID != 2 || recs[1].ItemID != 1 {
		t.Errorf("fallback = %+v, want items [2 1]", recs)
	}
}

func TestBackend_CrossValidate(t *testing.T) {
	e := newBackendEngine(t, func(c *recommend.Config) {
		c.Factor.Epochs = 5
	})

	res, err := e.CrossValidate(context.Background(), additiveRatings(5, 8, nil), 4)
	if err != nil {
		t.Fatalf("CrossValidate() error = %v", err)
	}
	if len(res.Folds) != 4 {
		t.Errorf("len(Folds) = %d, want 4", len(res.Folds))
	}
}

func TestBackend_EvaluateRanking_Untrained(t *testing.T) {
	b := NewBackend()
	model := NewLatentFactorModel(smallFactorConfig(5), fiveStar)

	if _, err := b.EvaluateRanking(model, additiveRatings(2, 2, nil), 5, 3.5); !errors.Is(err, recommend.ErrNotTrained) {
		t.Errorf("EvaluateRanking() error = %v, want ErrNotTrained", err)
	}
}

func TestBackend_RestoreFactorModel(t *testing.T) {
	b := NewBackend()
	model := fitModel(t, smallFactorConfig(10), additiveRatings(3, 3, nil))
	state, err := model.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	restored, err := b.RestoreFactorModel(state)
	if err != nil {
		t.Fatalf("RestoreFactorModel() error = %v", err)
	}
	if !restored.KnowsUser(2) {
		t.Error("restored model does not know user 2")
	}

	if got, err := b.RestoreFactorModel(nil); err == nil || got != nil {
		t.Errorf("RestoreFactorModel(nil) = %v, %v, want nil, error", got, err)
	}
}
