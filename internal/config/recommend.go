// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package config

import "github.com/tomtom215/goodbooks/internal/recommend"

// EngineConfig maps the application settings onto a recommendation engine
// configuration. Settings without a counterpart keep the engine defaults.
func (r *RecommendConfig) EngineConfig() *recommend.Config {
	cfg := recommend.DefaultConfig()

	cfg.Factor.Factors = r.Factors
	cfg.Factor.Epochs = r.Epochs
	cfg.Factor.LearningRate = r.LearningRate
	cfg.Factor.Regularization = r.Regularization
	cfg.Factor.Seed = r.Seed

	cfg.Split.TestRatio = r.TestRatio
	cfg.Split.Seed = r.Seed

	cfg.Evaluation.Folds = r.EvalFolds
	cfg.Evaluation.K = r.EvalK
	cfg.Evaluation.RelevanceThreshold = r.RelevanceThreshold

	cfg.Diversity.Enabled = r.DiversityEnabled
	cfg.Diversity.MMRLambda = r.DiversityLambda

	cfg.Training.MinInteractions = r.MinInteractions
	cfg.Training.MinUserRatings = r.MinUserRatings
	if r.TrainTimeout > 0 {
		cfg.Training.Timeout = r.TrainTimeout
	}
	cfg.Training.RetainVersions = r.Storage.RetainVersions

	cfg.Limits.DefaultK = r.DefaultK
	cfg.Limits.MaxK = r.MaxK
	cfg.ColdStartFallback = r.ColdStartFallback

	return cfg
}
