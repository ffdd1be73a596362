// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/tomtom215/goodbooks/internal/recommend"
)

// errAlreadyFitted is returned when Fit is called on a model that has left
// the Uninitialized state.
var errAlreadyFitted = errors.New("model already fitted: build a new instance to retrain")

// LatentFactorModel is a biased matrix factorization model (Funk SVD)
// trained by stochastic gradient descent on explicit ratings.
//
// The estimate for user u and item i is:
//
//	r̂(u,i) = μ + b_u + b_i + p_u · q_i
//
// For each training rating the error e = r − r̂ drives the updates:
//
//	b_u ← b_u + γ(e − λ·b_u)
//	b_i ← b_i + γ(e − λ·b_i)
//	p_u ← p_u + γ(e·q_i − λ·p_u)
//	q_i ← q_i + γ(e·p_u − λ·q_i)
//
// A model is fitted once. Retraining builds a new instance, so a failed fit
// can never disturb a model that is already being served.
type LatentFactorModel struct {
	BaseAlgorithm
	config FactorConfig
	scale  recommend.RatingScale

	globalMean float64

	// userIndex maps user ID to matrix row
	userIndex map[int]int

	// itemIndex maps item ID to matrix row
	itemIndex map[int]int

	indexToUser []int
	indexToItem []int

	userBias    []float64
	itemBias    []float64
	userFactors [][]float64
	itemFactors [][]float64
}

// FactorConfig is the factorization hyperparameter set.
type FactorConfig = recommend.FactorConfig

// NewLatentFactorModel creates an untrained model. Non-positive Factors,
// Epochs and LearningRate take the package defaults, as does a zero Seed.
// A negative Regularization takes the default; zero is kept. InitStdDev
// takes the default when negative, or when it and InitMean are both zero,
// since an all-zero initialization never moves the factors off zero.
//
//nolint:gocritic // hugeParam: config copied once at construction
func NewLatentFactorModel(cfg FactorConfig, scale recommend.RatingScale) *LatentFactorModel {
	def := recommend.DefaultFactorConfig()
	if cfg.Factors <= 0 {
		cfg.Factors = def.Factors
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = def.Epochs
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = def.LearningRate
	}
	if cfg.Regularization < 0 {
		cfg.Regularization = def.Regularization
	}
	if cfg.InitStdDev < 0 || (cfg.InitStdDev == 0 && cfg.InitMean == 0) {
		cfg.InitStdDev = def.InitStdDev
	}
	if cfg.Seed == 0 {
		cfg.Seed = def.Seed
	}
	if scale.Min >= scale.Max {
		scale = recommend.RatingScale{Min: 1, Max: 5}
	}

	return &LatentFactorModel{
		BaseAlgorithm: NewBaseAlgorithm("svd"),
		config:        cfg,
		scale:         scale,
	}
}

// Config returns the hyperparameters in effect.
func (m *LatentFactorModel) Config() FactorConfig {
	return m.config
}

// Fit trains the model on the given interactions.
// Context cancellation is checked once per epoch; a cancelled or failed fit
// leaves the model Uninitialized.
//
//nolint:gocritic // rangeValCopy: Interaction is small
func (m *LatentFactorModel) Fit(ctx context.Context, train []recommend.Interaction) error {
	m.acquireTrainLock()
	defer m.releaseTrainLock()

	if m.state != recommend.ModelUninitialized {
		return errAlreadyFitted
	}
	if len(train) == 0 {
		return fmt.Errorf("fit on empty training set: %w", recommend.ErrInsufficientData)
	}

	m.markTraining()
	if err := m.fit(ctx, train); err != nil {
		m.reset()
		m.markFailed()
		return err
	}

	m.markTrained()
	return nil
}

//nolint:gocritic // rangeValCopy: Interaction is small
func (m *LatentFactorModel) fit(ctx context.Context, train []recommend.Interaction) error {
	m.userIndex = make(map[int]int)
	m.itemIndex = make(map[int]int)
	m.indexToUser = m.indexToUser[:0]
	m.indexToItem = m.indexToItem[:0]

	var sum float64
	for _, inter := range train {
		if _, ok := m.userIndex[inter.UserID]; !ok {
			m.userIndex[inter.UserID] = len(m.indexToUser)
			m.indexToUser = append(m.indexToUser, inter.UserID)
		}
		if _, ok := m.itemIndex[inter.ItemID]; !ok {
			m.itemIndex[inter.ItemID] = len(m.indexToItem)
			m.indexToItem = append(m.indexToItem, inter.ItemID)
		}
		sum += inter.Rating
	}
	m.globalMean = sum / float64(len(train))

	numUsers := len(m.indexToUser)
	numItems := len(m.indexToItem)
	k := m.config.Factors

	//nolint:gosec // G404: math/rand is acceptable for ML initialization (not security)
	rng := rand.New(rand.NewSource(m.config.Seed))

	m.userBias = make([]float64, numUsers)
	m.itemBias = make([]float64, numItems)
	m.userFactors = m.initFactors(rng, numUsers, k)
	m.itemFactors = m.initFactors(rng, numItems, k)

	// Resolve rows once so the inner loop avoids map lookups.
	type sample struct {
		u, i   int
		rating float64
	}
	samples := make([]sample, len(train))
	for idx, inter := range train {
		samples[idx] = sample{
			u:      m.userIndex[inter.UserID],
			i:      m.itemIndex[inter.ItemID],
			rating: inter.Rating,
		}
	}

	lr := m.config.LearningRate
	reg := m.config.Regularization

	for epoch := 0; epoch < m.config.Epochs; epoch++ {
		if ContextCancelled(ctx) {
			return ctx.Err()
		}

		rng.Shuffle(len(samples), func(a, b int) {
			samples[a], samples[b] = samples[b], samples[a]
		})

		for _, s := range samples {
			pu := m.userFactors[s.u]
			qi := m.itemFactors[s.i]

			est := m.globalMean + m.userBias[s.u] + m.itemBias[s.i] + floats.Dot(pu, qi)
			e := s.rating - est

			m.userBias[s.u] += lr * (e - reg*m.userBias[s.u])
			m.itemBias[s.i] += lr * (e - reg*m.itemBias[s.i])

			for f := 0; f < k; f++ {
				puf := pu[f]
				qif := qi[f]
				pu[f] += lr * (e*qif - reg*puf)
				qi[f] += lr * (e*puf - reg*qif)
			}
		}
	}

	return nil
}

// initFactors draws a rows×k matrix from N(InitMean, InitStdDev²).
func (m *LatentFactorModel) initFactors(rng *rand.Rand, rows, k int) [][]float64 {
	out := make([][]float64, rows)
	for r := range out {
		out[r] = make([]float64, k)
		for f := range out[r] {
			out[r][f] = m.config.InitMean + rng.NormFloat64()*m.config.InitStdDev
		}
	}
	return out
}

// reset drops learned parameters.
func (m *LatentFactorModel) reset() {
	m.globalMean = 0
	m.userIndex = nil
	m.itemIndex = nil
	m.indexToUser = nil
	m.indexToItem = nil
	m.userBias = nil
	m.itemBias = nil
	m.userFactors = nil
	m.itemFactors = nil
}

// Predict estimates the rating of item by user, clamped to the rating scale.
// Unknown users or items contribute no bias and no factor term, so unseen
// pairs fall back to a bias-only estimate instead of failing.
func (m *LatentFactorModel) Predict(userID, itemID int) (float64, error) {
	m.acquirePredictLock()
	defer m.releasePredictLock()

	if m.state != recommend.ModelTrained {
		return 0, recommend.ErrNotTrained
	}
	return m.predictLocked(userID, itemID), nil
}

func (m *LatentFactorModel) predictLocked(userID, itemID int) float64 {
	est := m.globalMean

	u, knownUser := m.userIndex[userID]
	i, knownItem := m.itemIndex[itemID]
	if knownUser {
		est += m.userBias[u]
	}
	if knownItem {
		est += m.itemBias[i]
	}
	if knownUser && knownItem {
		est += floats.Dot(m.userFactors[u], m.itemFactors[i])
	}

	return m.scale.Clamp(est)
}

// Evaluate computes RMSE and MAE over held-out ratings.
func (m *LatentFactorModel) Evaluate(test []recommend.Interaction) (recommend.EvaluationResult, error) {
	if !m.IsTrained() {
		return recommend.EvaluationResult{}, recommend.ErrNotTrained
	}
	preds, err := Predictions(m, test)
	if err != nil {
		return recommend.EvaluationResult{}, err
	}
	return Accuracy(preds)
}

// GlobalMean returns the mean training rating.
func (m *LatentFactorModel) GlobalMean() float64 {
	m.acquirePredictLock()
	defer m.releasePredictLock()
	return m.globalMean
}

// KnowsUser reports whether the user appeared in the training set.
func (m *LatentFactorModel) KnowsUser(userID int) bool {
	m.acquirePredictLock()
	defer m.releasePredictLock()
	_, ok := m.userIndex[userID]
	return ok
}

// KnowsItem reports whether the item appeared in the training set.
func (m *LatentFactorModel) KnowsItem(itemID int) bool {
	m.acquirePredictLock()
	defer m.releasePredictLock()
	_, ok := m.itemIndex[itemID]
	return ok
}

// UserFactors returns a copy of a user's latent vector.
func (m *LatentFactorModel) UserFactors(userID int) ([]float64, bool) {
	m.acquirePredictLock()
	defer m.releasePredictLock()
	u, ok := m.userIndex[userID]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), m.userFactors[u]...), true
}

// ItemFactors returns a copy of an item's latent vector.
func (m *LatentFactorModel) ItemFactors(itemID int) ([]float64, bool) {
	m.acquirePredictLock()
	defer m.releasePredictLock()
	i, ok := m.itemIndex[itemID]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), m.itemFactors[i]...), true
}

// Snapshot returns a deep copy of the trained parameters.
func (m *LatentFactorModel) Snapshot() (*recommend.FactorModelState, error) {
	m.acquirePredictLock()
	defer m.releasePredictLock()

	if m.state != recommend.ModelTrained {
		return nil, recommend.ErrNotTrained
	}

	return &recommend.FactorModelState{
		Version:     m.version,
		Factors:     m.config.Factors,
		GlobalMean:  m.globalMean,
		MinRating:   m.scale.Min,
		MaxRating:   m.scale.Max,
		UserIDs:     append([]int(nil), m.indexToUser...),
		ItemIDs:     append([]int(nil), m.indexToItem...),
		UserBias:    append([]float64(nil), m.userBias...),
		ItemBias:    append([]float64(nil), m.itemBias...),
		UserFactors: copyMatrix(m.userFactors),
		ItemFactors: copyMatrix(m.itemFactors),
		TrainedAt:   m.lastTrainedAt,
	}, nil
}

// RestoreFactorModel rebuilds a trained model from a snapshot.
func RestoreFactorModel(state *recommend.FactorModelState) (*LatentFactorModel, error) {
	if state == nil {
		return nil, fmt.Errorf("restore factor model: nil state")
	}
	if len(state.UserIDs) != len(state.UserBias) || len(state.UserIDs) != len(state.UserFactors) {
		return nil, fmt.Errorf("restore factor model: user dimensions mismatch")
	}
	if len(state.ItemIDs) != len(state.ItemBias) || len(state.ItemIDs) != len(state.ItemFactors) {
		return nil, fmt.Errorf("restore factor model: item dimensions mismatch")
	}
	for _, row := range state.UserFactors {
		if len(row) != state.Factors {
			return nil, fmt.Errorf("restore factor model: user factor length %d, want %d", len(row), state.Factors)
		}
	}
	for _, row := range state.ItemFactors {
		if len(row) != state.Factors {
			return nil, fmt.Errorf("restore factor model: item factor length %d, want %d", len(row), state.Factors)
		}
	}

	cfg := recommend.DefaultFactorConfig()
	cfg.Factors = state.Factors
	m := NewLatentFactorModel(cfg, recommend.RatingScale{Min: state.MinRating, Max: state.MaxRating})

	m.globalMean = state.GlobalMean
	m.indexToUser = append([]int(nil), state.UserIDs...)
	m.indexToItem = append([]int(nil), state.ItemIDs...)
	m.userIndex = make(map[int]int, len(state.UserIDs))
	for i, id := range state.UserIDs {
		m.userIndex[id] = i
	}
	m.itemIndex = make(map[int]int, len(state.ItemIDs))
	for i, id := range state.ItemIDs {
		m.itemIndex[id] = i
	}
	m.userBias = append([]float64(nil), state.UserBias...)
	m.itemBias = append([]float64(nil), state.ItemBias...)
	m.userFactors = copyMatrix(state.UserFactors)
	m.itemFactors = copyMatrix(state.ItemFactors)

	m.state = recommend.ModelTrained
	m.version = state.Version
	m.lastTrainedAt = state.TrainedAt
	if m.lastTrainedAt.IsZero() {
		m.lastTrainedAt = time.Now()
	}
	return m, nil
}

func copyMatrix(src [][]float64) [][]float64 {
	out := make([][]float64, len(src))
	for i, row := range src {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
