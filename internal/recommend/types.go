// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package recommend

import (
	"context"
	"strings"
	"time"
)

// Item represents a book in the catalog.
type Item struct {
	// ID is the unique book identifier (book_id in the source tables).
	ID int `json:"id"`

	// Title is the display title.
	Title string `json:"title"`

	// Authors is the free-text author field, comma separated when there are several.
	Authors string `json:"authors"`
}

// CombinedText returns the text that feeds the content vectorizer.
//
//nolint:gocritic // hugeParam: Item is small enough to pass by value
func (i Item) CombinedText() string {
	return i.Title + " " + i.Authors
}

// NormalizeTitle returns the lookup key used for title queries.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// Interaction is a single explicit rating given by a user to an item.
type Interaction struct {
	UserID int     `json:"user_id"`
	ItemID int     `json:"item_id"`
	Rating float64 `json:"rating"`
}

// ScoredItem is an item paired with a ranking score.
type ScoredItem struct {
	ItemID int     `json:"item_id"`
	Score  float64 `json:"score"`
}

// BookRecommendation is a content recommendation resolved to catalog metadata.
type BookRecommendation struct {
	ItemID  int     `json:"item_id"`
	Title   string  `json:"title"`
	Authors string  `json:"authors"`
	Score   float64 `json:"score"`
}

// ModelState is the lifecycle state of a latent factor model.
type ModelState int

const (
	// ModelUninitialized is the state before Fit is called.
	ModelUninitialized ModelState = iota
	// ModelTraining is the state while Fit is running.
	ModelTraining
	// ModelTrained is the state after Fit completes successfully.
	ModelTrained
)

// String returns the state name.
func (s ModelState) String() string {
	switch s {
	case ModelUninitialized:
		return "uninitialized"
	case ModelTraining:
		return "training"
	case ModelTrained:
		return "trained"
	default:
		return "unknown"
	}
}

// EvaluationResult contains accuracy metrics over a set of held-out ratings.
type EvaluationResult struct {
	// RMSE is the root mean squared error.
	RMSE float64 `json:"rmse"`

	// MAE is the mean absolute error.
	MAE float64 `json:"mae"`

	// Count is the number of ratings evaluated.
	Count int `json:"count"`

	// K is the cutoff used for PrecisionAtK and RecallAtK. Zero when not computed.
	K int `json:"k,omitempty"`

	// PrecisionAtK is the mean per-user precision of the top-K estimates.
	PrecisionAtK float64 `json:"precision_at_k,omitempty"`

	// RecallAtK is the mean per-user recall of the top-K estimates.
	RecallAtK float64 `json:"recall_at_k,omitempty"`
}

// CrossValidationResult aggregates k-fold evaluation.
type CrossValidationResult struct {
	Folds    []EvaluationResult `json:"folds"`
	MeanRMSE float64            `json:"mean_rmse"`
	StdRMSE  float64            `json:"std_rmse"`
	MeanMAE  float64            `json:"mean_mae"`
	StdMAE   float64            `json:"std_mae"`
}

// TrainConfig holds the parameters of a single collaborative training run.
type TrainConfig struct {
	// FactorDim is the latent factor dimension.
	FactorDim int `json:"factor_dim"`

	// Epochs is the number of SGD passes over the training partition.
	Epochs int `json:"epochs"`

	// LearningRate is the SGD step size.
	LearningRate float64 `json:"learning_rate"`

	// Regularization is the L2 penalty applied to biases and factors.
	// Zero keeps the engine's Factor.Regularization, so an unregularized
	// run is requested by setting Factor.Regularization to 0 instead.
	Regularization float64 `json:"regularization"`

	// TestSplitRatio is the fraction of interactions held out for evaluation.
	TestSplitRatio float64 `json:"test_split_ratio"`

	// Seed drives the split, the initialization and the epoch shuffle.
	Seed int64 `json:"seed"`
}

// FactorModelState is the serializable form of a trained latent factor model.
// UserFactors[i] belongs to UserIDs[i]; ItemFactors[j] belongs to ItemIDs[j].
type FactorModelState struct {
	Version     int         `json:"version"`
	Factors     int         `json:"factors"`
	GlobalMean  float64     `json:"global_mean"`
	MinRating   float64     `json:"min_rating"`
	MaxRating   float64     `json:"max_rating"`
	UserIDs     []int       `json:"user_ids"`
	ItemIDs     []int       `json:"item_ids"`
	UserBias    []float64   `json:"user_bias"`
	ItemBias    []float64   `json:"item_bias"`
	UserFactors [][]float64 `json:"user_factors"`
	ItemFactors [][]float64 `json:"item_factors"`
	TrainedAt   time.Time   `json:"trained_at"`
}

// ContentIndex answers nearest-neighbor queries over item text.
// Implementations are immutable after construction.
type ContentIndex interface {
	// Resolve maps a title or a numeric id string to an item id.
	Resolve(titleOrID string) (int, error)

	// Query returns the topN most similar items, excluding itemID itself.
	Query(itemID, topN int) ([]ScoredItem, error)

	// Item returns catalog metadata for an id.
	Item(id int) (Item, bool)

	// Similarity returns the cosine similarity of two items, or 0 if either is unknown.
	Similarity(a, b int) float64

	// Len returns the number of indexed items.
	Len() int

	// ItemIDs returns every indexed item id in ascending order.
	ItemIDs() []int
}

// FactorModel predicts ratings for (user, item) pairs.
// A trained model is read-only and safe for concurrent use.
type FactorModel interface {
	State() ModelState
	Predict(userID, itemID int) (float64, error)
	Evaluate(test []Interaction) (EvaluationResult, error)
	KnowsUser(userID int) bool
	Snapshot() (*FactorModelState, error)
}

// UserRanker produces top-N recommendations for a known user.
type UserRanker interface {
	TopNForUser(userID, n int) ([]ScoredItem, error)

	// RatedItems returns the set of items the user has already rated.
	RatedItems(userID int) map[int]struct{}
}

// PopularityRanker ranks items independent of the user.
type PopularityRanker interface {
	TopK(k int, exclude map[int]struct{}) []ScoredItem
}

// SimilarityFunc returns the similarity of two items.
type SimilarityFunc func(a, b int) float64

// Reranker post-processes a ranked list.
type Reranker interface {
	// Name returns the reranker identifier.
	Name() string

	// Rerank reorders items and returns at most k of them.
	Rerank(ctx context.Context, items []ScoredItem, k int, sim SimilarityFunc) []ScoredItem
}

// TrainingStatus represents the current state of model training.
type TrainingStatus struct {
	// IsTraining indicates whether training is currently in progress.
	IsTraining bool `json:"is_training"`

	// LastTrainedAt is when training last completed.
	LastTrainedAt time.Time `json:"last_trained_at"`

	// LastTrainingDurationMS is how long the last training took.
	LastTrainingDurationMS int64 `json:"last_training_duration_ms"`

	// LastError contains the last training error, if any.
	LastError string `json:"last_error,omitempty"`

	// InteractionCount is the number of interactions in the last training set.
	InteractionCount int `json:"interaction_count"`

	// ItemCount is the number of catalog items.
	ItemCount int `json:"item_count"`

	// UserCount is the number of unique users.
	UserCount int `json:"user_count"`

	// ModelVersion is the current model version.
	ModelVersion int `json:"model_version"`

	// LastEvaluation holds the held-out metrics of the current model.
	LastEvaluation *EvaluationResult `json:"last_evaluation,omitempty"`

	// ContentReady indicates whether the content index has been built.
	ContentReady bool `json:"content_ready"`

	// CollaborativeReady indicates whether a trained factor model is being served.
	CollaborativeReady bool `json:"collaborative_ready"`
}

// Metrics contains engine counters for observability.
type Metrics struct {
	ContentRequests       int64 `json:"content_requests"`
	CollaborativeRequests int64 `json:"collaborative_requests"`
	FallbackRequests      int64 `json:"fallback_requests"`
	ErrorCount            int64 `json:"error_count"`
	TrainingCount         int64 `json:"training_count"`
}
