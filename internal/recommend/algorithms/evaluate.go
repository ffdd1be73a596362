// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package algorithms

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/goodbooks/internal/recommend"
)

// Prediction pairs an actual rating with a model estimate.
type Prediction struct {
	UserID   int
	ItemID   int
	Actual   float64
	Estimate float64
}

// Predictor is the subset of a model needed for evaluation.
type Predictor interface {
	Predict(userID, itemID int) (float64, error)
}

// Predictions estimates every interaction in test.
//
//nolint:gocritic // rangeValCopy: Interaction is small
func Predictions(model Predictor, test []recommend.Interaction) ([]Prediction, error) {
	preds := make([]Prediction, 0, len(test))
	for _, inter := range test {
		est, err := model.Predict(inter.UserID, inter.ItemID)
		if err != nil {
			return nil, err
		}
		preds = append(preds, Prediction{
			UserID:   inter.UserID,
			ItemID:   inter.ItemID,
			Actual:   inter.Rating,
			Estimate: est,
		})
	}
	return preds, nil
}

// Accuracy computes RMSE and MAE. ErrInsufficientData is returned for no predictions.
func Accuracy(preds []Prediction) (recommend.EvaluationResult, error) {
	if len(preds) == 0 {
		return recommend.EvaluationResult{}, fmt.Errorf("evaluate empty prediction set: %w", recommend.ErrInsufficientData)
	}
	return recommend.EvaluationResult{
		RMSE:  RMSE(preds),
		MAE:   MAE(preds),
		Count: len(preds),
	}, nil
}

// RMSE returns the root mean squared error, or 0 for no predictions.
func RMSE(preds []Prediction) float64 {
	if len(preds) == 0 {
		return 0
	}
	var sum float64
	for _, p := range preds {
		d := p.Actual - p.Estimate
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(preds)))
}

// MAE returns the mean absolute error, or 0 for no predictions.
func MAE(preds []Prediction) float64 {
	if len(preds) == 0 {
		return 0
	}
	var sum float64
	for _, p := range preds {
		sum += math.Abs(p.Actual - p.Estimate)
	}
	return sum / float64(len(preds))
}

// PrecisionRecallAtK computes mean per-user precision and recall of the top-k
// estimates over the test predictions.
//
// For each user, relevant items have an actual rating >= threshold, and the
// recommended items are those in the top k by estimate whose estimate is
// >= threshold. A user with an empty denominator scores 0 on that metric.
func PrecisionRecallAtK(preds []Prediction, k int, threshold float64) (precision, recall float64) {
	if k <= 0 || len(preds) == 0 {
		return 0, 0
	}

	byUser := make(map[int][]Prediction)
	for _, p := range preds {
		byUser[p.UserID] = append(byUser[p.UserID], p)
	}

	var precSum, recSum float64
	for _, list := range byUser {
		sort.Slice(list, func(i, j int) bool {
			if list[i].Estimate != list[j].Estimate {
				return list[i].Estimate > list[j].Estimate
			}
			return list[i].ItemID < list[j].ItemID
		})

		relevant := 0
		for _, p := range list {
			if p.Actual >= threshold {
				relevant++
			}
		}

		top := list
		if len(top) > k {
			top = top[:k]
		}
		recommended, hits := 0, 0
		for _, p := range top {
			if p.Estimate >= threshold {
				recommended++
				if p.Actual >= threshold {
					hits++
				}
			}
		}

		if recommended > 0 {
			precSum += float64(hits) / float64(recommended)
		}
		if relevant > 0 {
			recSum += float64(hits) / float64(relevant)
		}
	}

	users := float64(len(byUser))
	return precSum / users, recSum / users
}

// globalMeanPredictor predicts the same rating for every pair.
type globalMeanPredictor float64

func (g globalMeanPredictor) Predict(int, int) (float64, error) {
	return float64(g), nil
}

// BaselineAccuracy evaluates the constant global-mean predictor fitted on train.
//
//nolint:gocritic // rangeValCopy: Interaction is small
func BaselineAccuracy(train, test []recommend.Interaction) (recommend.EvaluationResult, error) {
	if len(train) == 0 {
		return recommend.EvaluationResult{}, fmt.Errorf("baseline on empty training set: %w", recommend.ErrInsufficientData)
	}
	var sum float64
	for _, inter := range train {
		sum += inter.Rating
	}
	preds, err := Predictions(globalMeanPredictor(sum/float64(len(train))), test)
	if err != nil {
		return recommend.EvaluationResult{}, err
	}
	return Accuracy(preds)
}

// EvaluateRanking computes accuracy plus Precision@K and Recall@K for a trained model.
func EvaluateRanking(model Predictor, test []recommend.Interaction, k int, threshold float64) (recommend.EvaluationResult, error) {
	preds, err := Predictions(model, test)
	if err != nil {
		return recommend.EvaluationResult{}, err
	}
	result, err := Accuracy(preds)
	if err != nil {
		return result, err
	}
	result.K = k
	result.PrecisionAtK, result.RecallAtK = PrecisionRecallAtK(preds, k, threshold)
	return result, nil
}

// HoldoutEvaluate splits the matrix, fits a fresh model on the train side and
// evaluates it on the test side.
//
//nolint:gocritic // hugeParam: config copied per run
func HoldoutEvaluate(ctx context.Context, m *InteractionMatrix, cfg FactorConfig, scale recommend.RatingScale,
	ratio float64, seed int64) (*LatentFactorModel, recommend.EvaluationResult, error) {
	train, test, err := m.Split(ratio, seed)
	if err != nil {
		return nil, recommend.EvaluationResult{}, err
	}

	model := NewLatentFactorModel(cfg, scale)
	if err := model.Fit(ctx, train); err != nil {
		return nil, recommend.EvaluationResult{}, fmt.Errorf("fit: %w", err)
	}

	result, err := model.Evaluate(test)
	if err != nil {
		return nil, recommend.EvaluationResult{}, fmt.Errorf("evaluate: %w", err)
	}
	return model, result, nil
}

// CrossValidate runs k-fold cross-validation. Each fold trains its own model
// on the other k−1 folds; folds run concurrently.
//
//nolint:gocritic // hugeParam: config copied per fold
func CrossValidate(ctx context.Context, m *InteractionMatrix, cfg FactorConfig, scale recommend.RatingScale,
	folds int, seed int64) (*recommend.CrossValidationResult, error) {
	parts, err := m.Folds(folds, seed)
	if err != nil {
		return nil, err
	}

	results := make([]recommend.EvaluationResult, folds)
	g, gctx := errgroup.WithContext(ctx)

	for f := range parts {
		g.Go(func() error {
			train := make([]recommend.Interaction, 0, m.Len()-len(parts[f]))
			for other, part := range parts {
				if other != f {
					train = append(train, part...)
				}
			}

			model := NewLatentFactorModel(cfg, scale)
			if err := model.Fit(gctx, train); err != nil {
				return fmt.Errorf("fold %d fit: %w", f+1, err)
			}
			res, err := model.Evaluate(parts[f])
			if err != nil {
				return fmt.Errorf("fold %d evaluate: %w", f+1, err)
			}
			results[f] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	rmse := make([]float64, folds)
	mae := make([]float64, folds)
	for i, r := range results {
		rmse[i] = r.RMSE
		mae[i] = r.MAE
	}

	return &recommend.CrossValidationResult{
		Folds:    results,
		MeanRMSE: stat.Mean(rmse, nil),
		StdRMSE:  populationStdDev(rmse),
		MeanMAE:  stat.Mean(mae, nil),
		StdMAE:   populationStdDev(mae),
	}, nil
}

// populationStdDev returns the population standard deviation.
func populationStdDev(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	_, variance := stat.PopMeanVariance(x, nil)
	return math.Sqrt(variance)
}
