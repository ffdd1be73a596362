// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package recommend

import (
	"encoding/json"
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Content contains parameters for the TF-IDF content index.
	Content ContentConfig `json:"content"`

	// Factor contains parameters for the latent factor model.
	Factor FactorConfig `json:"factor"`

	// Split contains the train/test partitioning parameters.
	Split SplitConfig `json:"split"`

	// Scale is the closed rating range used for clamping predictions.
	Scale RatingScale `json:"scale"`

	// Evaluation contains parameters for offline evaluation.
	Evaluation EvaluationConfig `json:"evaluation"`

	// Diversity contains parameters for diversity reranking.
	Diversity DiversityConfig `json:"diversity"`

	// Training contains training schedule parameters.
	Training TrainingConfig `json:"training"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// ColdStartFallback serves the popularity baseline to unknown users
	// instead of returning ErrUnknownUser.
	// Default: false.
	ColdStartFallback bool `json:"cold_start_fallback"`
}

// ContentConfig contains parameters for the content index.
type ContentConfig struct {
	// ExtraStopwords are appended to the built-in English stopword list.
	ExtraStopwords []string `json:"extra_stopwords,omitempty"`

	// DisableDefaultStopwords drops the built-in English stopword list.
	// Default: false.
	DisableDefaultStopwords bool `json:"disable_default_stopwords"`
}

// FactorConfig contains parameters for the biased matrix factorization model.
type FactorConfig struct {
	// Factors is the number of latent factors.
	// Default: 100.
	Factors int `json:"factors"`

	// Epochs is the number of SGD passes over the training set.
	// Default: 20.
	Epochs int `json:"epochs"`

	// LearningRate is the SGD step size.
	// Default: 0.005.
	LearningRate float64 `json:"learning_rate"`

	// Regularization is the L2 regularization parameter.
	// Default: 0.02.
	Regularization float64 `json:"regularization"`

	// InitMean is the mean of the normal distribution used to initialize factors.
	// Default: 0.
	InitMean float64 `json:"init_mean"`

	// InitStdDev is the standard deviation used to initialize factors.
	// Default: 0.1.
	InitStdDev float64 `json:"init_std_dev"`

	// Seed drives initialization and the per-epoch shuffle.
	// Default: 42.
	Seed int64 `json:"seed"`
}

// SplitConfig contains train/test partitioning parameters.
type SplitConfig struct {
	// TestRatio is the fraction of interactions held out for evaluation.
	// Default: 0.2.
	TestRatio float64 `json:"test_ratio"`

	// Seed drives the partition shuffle.
	// Default: 42.
	Seed int64 `json:"seed"`
}

// RatingScale is a closed rating interval.
type RatingScale struct {
	// Min is the lowest valid rating.
	// Default: 1.
	Min float64 `json:"min"`

	// Max is the highest valid rating.
	// Default: 5.
	Max float64 `json:"max"`
}

// Clamp bounds v to the scale.
func (s RatingScale) Clamp(v float64) float64 {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

// Contains reports whether v lies on the scale.
func (s RatingScale) Contains(v float64) bool {
	return v >= s.Min && v <= s.Max
}

// EvaluationConfig contains parameters for offline evaluation.
type EvaluationConfig struct {
	// Folds is the number of cross-validation folds.
	// Default: 3.
	Folds int `json:"folds"`

	// K is the cutoff for Precision@K and Recall@K.
	// Default: 5.
	K int `json:"k"`

	// RelevanceThreshold is the rating at or above which an item counts as relevant.
	// Default: 3.5.
	RelevanceThreshold float64 `json:"relevance_threshold"`
}

// DiversityConfig contains parameters for diversity reranking.
type DiversityConfig struct {
	// Enabled applies MMR reranking to content recommendations.
	// Default: false.
	Enabled bool `json:"enabled"`

	// MMRLambda balances relevance vs. diversity in MMR reranking.
	// 1.0 = pure relevance, 0.0 = pure diversity.
	// Default: 0.7.
	MMRLambda float64 `json:"mmr_lambda"`

	// CandidateMultiplier widens the candidate pool handed to the reranker.
	// Default: 3.
	CandidateMultiplier int `json:"candidate_multiplier"`
}

// TrainingConfig contains training schedule parameters.
type TrainingConfig struct {
	// MinInteractions is the minimum number of interactions required to train.
	// Default: 10.
	MinInteractions int `json:"min_interactions"`

	// MinUserRatings filters out users with this many ratings or fewer.
	// Default: 10.
	MinUserRatings int `json:"min_user_ratings"`

	// Timeout is the maximum time allowed for a training run.
	// Default: 30m.
	Timeout time.Duration `json:"timeout"`

	// RetainVersions is the number of persisted model versions to keep.
	// Default: 3.
	RetainVersions int `json:"retain_versions"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultK is the default number of recommendations to return.
	// Default: 5.
	DefaultK int `json:"default_k"`

	// MaxK is the maximum allowed K value.
	// Default: 100.
	MaxK int `json:"max_k"`
}

// DefaultFactorConfig returns the factor model defaults.
func DefaultFactorConfig() FactorConfig {
	return FactorConfig{
		Factors:        100,
		Epochs:         20,
		LearningRate:   0.005,
		Regularization: 0.02,
		InitMean:       0,
		InitStdDev:     0.1,
		Seed:           42,
	}
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	return &Config{
		Factor: DefaultFactorConfig(),
		Split: SplitConfig{
			TestRatio: 0.2,
			Seed:      42,
		},
		Scale: RatingScale{
			Min: 1,
			Max: 5,
		},
		Evaluation: EvaluationConfig{
			Folds:              3,
			K:                  5,
			RelevanceThreshold: 3.5,
		},
		Diversity: DiversityConfig{
			Enabled:             false,
			MMRLambda:           0.7,
			CandidateMultiplier: 3,
		},
		Training: TrainingConfig{
			MinInteractions: 10,
			MinUserRatings:  10,
			Timeout:         30 * time.Minute,
			RetainVersions:  3,
		},
		Limits: LimitsConfig{
			DefaultK: 5,
			MaxK:     100,
		},
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if err := c.Factor.Validate(); err != nil {
		return err
	}

	if c.Split.TestRatio <= 0 || c.Split.TestRatio >= 1 {
		return fmt.Errorf("split.test_ratio must be in (0, 1), got %f", c.Split.TestRatio)
	}

	if c.Scale.Min >= c.Scale.Max {
		return fmt.Errorf("scale.min must be < scale.max, got %v >= %v", c.Scale.Min, c.Scale.Max)
	}

	if c.Evaluation.Folds < 2 {
		return fmt.Errorf("evaluation.folds must be at least 2, got %d", c.Evaluation.Folds)
	}
	if c.Evaluation.K < 1 {
		return fmt.Errorf("evaluation.k must be positive, got %d", c.Evaluation.K)
	}
	if !c.Scale.Contains(c.Evaluation.RelevanceThreshold) {
		return fmt.Errorf("evaluation.relevance_threshold must lie on the rating scale, got %f", c.Evaluation.RelevanceThreshold)
	}

	if c.Diversity.MMRLambda < 0 || c.Diversity.MMRLambda > 1 {
		return fmt.Errorf("diversity.mmr_lambda must be in [0, 1], got %f", c.Diversity.MMRLambda)
	}
	if c.Diversity.CandidateMultiplier < 1 {
		return fmt.Errorf("diversity.candidate_multiplier must be positive, got %d", c.Diversity.CandidateMultiplier)
	}

	if c.Training.MinInteractions < 0 {
		return fmt.Errorf("training.min_interactions must be non-negative, got %d", c.Training.MinInteractions)
	}
	if c.Training.MinUserRatings < 0 {
		return fmt.Errorf("training.min_user_ratings must be non-negative, got %d", c.Training.MinUserRatings)
	}
	if c.Training.Timeout <= 0 {
		return fmt.Errorf("training.timeout must be positive, got %v", c.Training.Timeout)
	}
	if c.Training.RetainVersions < 1 {
		return fmt.Errorf("training.retain_versions must be positive, got %d", c.Training.RetainVersions)
	}

	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("limits.default_k must be positive, got %d", c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits.max_k must be >= limits.default_k, got %d < %d", c.Limits.MaxK, c.Limits.DefaultK)
	}

	return nil
}

// Validate checks the factor model parameters.
func (f FactorConfig) Validate() error {
	if f.Factors < 1 {
		return fmt.Errorf("factor.factors must be positive, got %d", f.Factors)
	}
	if f.Epochs < 1 {
		return fmt.Errorf("factor.epochs must be positive, got %d", f.Epochs)
	}
	if f.LearningRate <= 0 {
		return fmt.Errorf("factor.learning_rate must be positive, got %f", f.LearningRate)
	}
	if f.Regularization < 0 {
		return fmt.Errorf("factor.regularization must be non-negative, got %f", f.Regularization)
	}
	if f.InitStdDev < 0 {
		return fmt.Errorf("factor.init_std_dev must be non-negative, got %f", f.InitStdDev)
	}
	return nil
}

// WithTrainConfig returns a copy of f with the per-run parameters of tc applied.
// Zero-valued fields in tc keep the value from f, including Regularization;
// a zero penalty has to come from f itself.
//
//nolint:gocritic // hugeParam: value semantics keep the base config untouched
func (f FactorConfig) WithTrainConfig(tc TrainConfig) FactorConfig {
	if tc.FactorDim > 0 {
		f.Factors = tc.FactorDim
	}
	if tc.Epochs > 0 {
		f.Epochs = tc.Epochs
	}
	if tc.LearningRate > 0 {
		f.LearningRate = tc.LearningRate
	}
	if tc.Regularization > 0 {
		f.Regularization = tc.Regularization
	}
	if tc.Seed != 0 {
		f.Seed = tc.Seed
	}
	return f
}

// DefaultTrainConfig derives the per-run training parameters from the engine config.
func (c *Config) DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		FactorDim:      c.Factor.Factors,
		Epochs:         c.Factor.Epochs,
		LearningRate:   c.Factor.LearningRate,
		Regularization: c.Factor.Regularization,
		TestSplitRatio: c.Split.TestRatio,
		Seed:           c.Split.Seed,
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Content.ExtraStopwords != nil {
		clone.Content.ExtraStopwords = append([]string(nil), c.Content.ExtraStopwords...)
	}
	return &clone
}

// MarshalJSON renders durations as strings.
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	type training struct {
		MinInteractions int    `json:"min_interactions"`
		MinUserRatings  int    `json:"min_user_ratings"`
		Timeout         string `json:"timeout"`
		RetainVersions  int    `json:"retain_versions"`
	}
	return json.Marshal(&struct {
		*Alias
		Training training `json:"training"`
	}{
		Alias: (*Alias)(c),
		Training: training{
			MinInteractions: c.Training.MinInteractions,
			MinUserRatings:  c.Training.MinUserRatings,
			Timeout:         c.Training.Timeout.String(),
			RetainVersions:  c.Training.RetainVersions,
		},
	})
}
