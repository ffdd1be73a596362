// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package algorithms

import (
	"context"

	"github.com/tomtom215/goodbooks/internal/recommend"
)

// Backend supplies the engine with the models in this package.
type Backend struct{}

// NewBackend returns the default model backend.
func NewBackend() Backend {
	return Backend{}
}

// BuildContentIndex vectorizes items and precomputes their similarity matrix.
func (Backend) BuildContentIndex(ctx context.Context, items []recommend.Item, cfg recommend.ContentConfig) (recommend.ContentIndex, error) {
	stopwords := NewStopwordSet(!cfg.DisableDefaultStopwords, cfg.ExtraStopwords...)
	idx, err := NewSimilarityIndex(ctx, items, stopwords)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// Split partitions interactions into disjoint train and test sets.
func (Backend) Split(interactions []recommend.Interaction, ratio float64, seed int64) (train, test []recommend.Interaction, err error) {
	return NewInteractionMatrix(interactions).Split(ratio, seed)
}

// FitFactorModel trains a fresh latent factor model.
//
//nolint:gocritic // hugeParam: config copied per run
func (Backend) FitFactorModel(ctx context.Context, train []recommend.Interaction, cfg recommend.FactorConfig,
	scale recommend.RatingScale) (recommend.FactorModel, error) {
	model := NewLatentFactorModel(cfg, scale)
	if err := model.Fit(ctx, train); err != nil {
		return nil, err
	}
	return model, nil
}

// RestoreFactorModel rebuilds a trained model from persisted state.
func (Backend) RestoreFactorModel(state *recommend.FactorModelState) (recommend.FactorModel, error) {
	model, err := RestoreFactorModel(state)
	if err != nil {
		return nil, err
	}
	return model, nil
}

// NewRanker builds a per-user ranker excluding every known rating.
func (Backend) NewRanker(model recommend.FactorModel, interactions []recommend.Interaction, catalog []int) recommend.UserRanker {
	return NewRanker(model, NewInteractionMatrix(interactions), catalog)
}

// NewPopularity trains the popularity baseline.
func (Backend) NewPopularity(ctx context.Context, interactions []recommend.Interaction) (recommend.PopularityRanker, error) {
	pop := NewPopularity()
	if err := pop.Train(ctx, interactions); err != nil {
		return nil, err
	}
	return pop, nil
}

// EvaluateRanking computes accuracy and top-K metrics on held-out ratings.
func (Backend) EvaluateRanking(model recommend.FactorModel, test []recommend.Interaction, k int,
	threshold float64) (recommend.EvaluationResult, error) {
	if model.State() != recommend.ModelTrained {
		return recommend.EvaluationResult{}, recommend.ErrNotTrained
	}
	return EvaluateRanking(model, test, k, threshold)
}

// CrossValidate runs k-fold cross-validation.
//
//nolint:gocritic // hugeParam: config copied per fold
func (Backend) CrossValidate(ctx context.Context, interactions []recommend.Interaction, cfg recommend.FactorConfig,
	scale recommend.RatingScale, folds int, seed int64) (*recommend.CrossValidationResult, error) {
	return CrossValidate(ctx, NewInteractionMatrix(interactions), cfg, scale, folds, seed)
}
