// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

// Package algorithms implements the models served by the recommendation engine.
//
// # Components
//
// Content-Based Filtering:
//   - Tokenize, BuildVectors: sklearn-compatible TF-IDF with smoothed idf and L2 rows
//   - SimilarityIndex: dense pairwise cosine matrix with title and id lookup
//
// Collaborative Filtering:
//   - InteractionMatrix: deduplicated ratings with seeded train/test split and folds
//   - LatentFactorModel: biased matrix factorization (Funk SVD) trained by SGD
//   - Ranker: per-user top-N over unrated catalog items
//
// Baselines:
//   - Popularity: rating count ranking used for unknown users
//   - BaselineAccuracy: global mean predictor for comparison
//
// Evaluation:
//   - Accuracy, RMSE, MAE over held-out predictions
//   - PrecisionRecallAtK: per-user top-K relevance averaged over users
//   - HoldoutEvaluate, CrossValidate
//
// # Usage Example
//
//	idx, err := algorithms.NewSimilarityIndex(ctx, items, algorithms.EnglishStopwords())
//	if err != nil {
//	    return err
//	}
//	similar, err := idx.QueryByTitle("The Hunger Games", 5)
//
//	m := algorithms.NewInteractionMatrix(ratings)
//	train, test, err := m.Split(0.2, 42)
//	model := algorithms.NewLatentFactorModel(recommend.DefaultFactorConfig(), scale)
//	if err := model.Fit(ctx, train); err != nil {
//	    return err
//	}
//	result, err := model.Evaluate(test)
//
// # Determinism
//
// Every random choice (split shuffle, factor initialization, epoch order)
// is drawn from a math/rand source seeded by configuration, so the same
// inputs and seed produce identical models.
//
// # Thread Safety
//
// Models are built or fitted once and are read-only afterwards. Fitting
// acquires an exclusive lock while prediction uses a shared lock, so a
// trained model may be queried concurrently. Retraining always builds a
// new instance.
//
// # Performance Considerations
//
// Training Complexity:
//   - SimilarityIndex: O(n² + postings) time, O(n²) float32 memory
//   - LatentFactorModel: O(epochs * ratings * factors)
//
// Prediction Complexity:
//   - SimilarityIndex.Query: O(n log n) per item
//   - Ranker.TopNForUser: O(items * factors) per user
//
// # See Also
//
//   - internal/recommend: Engine and interface definitions
//   - internal/recommend/storage: Model persistence
//   - internal/recommend/reranking: Diversity reranking
package algorithms
