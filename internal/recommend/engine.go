// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Note: This package has no external dependencies on other internal packages
// to maintain clean separation. The Backend, DataProvider and ModelStore
// interfaces are satisfied by the algorithms, database and storage packages.

// DataProvider supplies the catalog and rating tables.
// This is typically implemented by the database layer.
type DataProvider interface {
	// Items returns the book catalog ordered by id.
	Items(ctx context.Context) ([]Item, error)

	// Interactions returns ratings from users with more than minUserRatings ratings.
	Interactions(ctx context.Context, minUserRatings int) ([]Interaction, error)
}

// ModelStore persists trained factor models.
type ModelStore interface {
	// SaveFactorModel stores state under state.Version.
	SaveFactorModel(ctx context.Context, state *FactorModelState) error

	// LoadFactorModel loads a version; version 0 loads the latest.
	LoadFactorModel(ctx context.Context, version int) (*FactorModelState, error)

	// Prune keeps only the newest keep versions.
	Prune(ctx context.Context, keep int) error
}

// Backend builds the models served by the engine.
type Backend interface {
	BuildContentIndex(ctx context.Context, items []Item, cfg ContentConfig) (ContentIndex, error)
	Split(interactions []Interaction, ratio float64, seed int64) (train, test []Interaction, err error)
	FitFactorModel(ctx context.Context, train []Interaction, cfg FactorConfig, scale RatingScale) (FactorModel, error)
	RestoreFactorModel(state *FactorModelState) (FactorModel, error)
	NewRanker(model FactorModel, interactions []Interaction, catalog []int) UserRanker
	NewPopularity(ctx context.Context, interactions []Interaction) (PopularityRanker, error)
	EvaluateRanking(model FactorModel, test []Interaction, k int, threshold float64) (EvaluationResult, error)
	CrossValidate(ctx context.Context, interactions []Interaction, cfg FactorConfig, scale RatingScale,
		folds int, seed int64) (*CrossValidationResult, error)
}

// contentState is the immutable content path published by BuildContentIndex.
type contentState struct {
	index ContentIndex
}

// collabState is the immutable collaborative path published after training.
type collabState struct {
	model      FactorModel
	ranker     UserRanker
	popularity PopularityRanker
	evaluation *EvaluationResult
	version    int
}

// Engine is the query surface over the content index and the factor model.
// Published models are read-only; retraining builds new instances and swaps
// them in atomically, so a failed run leaves the served model untouched.
// It is safe for concurrent use.
type Engine struct {
	// Configuration
	config *Config
	logger zerolog.Logger

	backend      Backend
	dataProvider DataProvider
	store        ModelStore

	// Registered rerankers
	rerankers []Reranker
	algMu     sync.RWMutex

	// Served models
	content atomic.Pointer[contentState]
	collab  atomic.Pointer[collabState]

	// Training state
	trainMu     sync.Mutex
	statusMu    sync.RWMutex
	trainStatus TrainingStatus

	// Metrics
	contentRequests atomic.Int64
	collabRequests  atomic.Int64
	fallbacks       atomic.Int64
	errorCount      atomic.Int64
	trainingCount   atomic.Int64
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, backend Backend, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config:    cfg.Clone(),
		logger:    logger.With().Str("component", "recommend").Logger(),
		backend:   backend,
		rerankers: make([]Reranker, 0),
	}, nil
}

// SetDataProvider sets the data provider used by Train.
func (e *Engine) SetDataProvider(dp DataProvider) {
	e.dataProvider = dp
}

// SetModelStore enables persistence of trained models.
func (e *Engine) SetModelStore(store ModelStore) {
	e.store = store
}

// RegisterReranker adds a reranker to the content post-processing pipeline.
func (e *Engine) RegisterReranker(rr Reranker) {
	e.algMu.Lock()
	defer e.algMu.Unlock()

	e.rerankers = append(e.rerankers, rr)
	e.logger.Info().
		Str("reranker", rr.Name()).
		Msg("registered reranker")
}

// BuildContentIndex builds the content index over items and publishes it.
func (e *Engine) BuildContentIndex(ctx context.Context, items []Item) error {
	start := time.Now()

	index, err := e.backend.BuildContentIndex(ctx, items, e.config.Content)
	if err != nil {
		return fmt.Errorf("build content index: %w", err)
	}

	e.content.Store(&contentState{index: index})
	e.updateStatus(func(s *TrainingStatus) {
		s.ItemCount = index.Len()
		s.ContentReady = true
	})

	e.logger.Info().
		Int("items", index.Len()).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("content index built")
	return nil
}

// ContentRecommend returns the books most similar to the one named by
// titleOrID. The query book is never part of the result.
func (e *Engine) ContentRecommend(ctx context.Context, titleOrID string, topN int) ([]BookRecommendation, error) {
	e.contentRequests.Add(1)

	st := e.content.Load()
	if st == nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("content index: %w", ErrNotTrained)
	}

	id, err := st.index.Resolve(titleOrID)
	if err != nil {
		return nil, err
	}

	n := e.clampK(topN)
	rerankers := e.getRerankers()

	fetch := n
	if len(rerankers) > 0 {
		fetch = n * e.config.Diversity.CandidateMultiplier
	}

	scored, err := st.index.Query(id, fetch)
	if err != nil {
		return nil, err
	}

	for _, rr := range rerankers {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		scored = rr.Rerank(ctx, scored, fetch, st.index.Similarity)
	}
	if len(scored) > n {
		scored = scored[:n]
	}

	out := make([]BookRecommendation, 0, len(scored))
	for _, s := range scored {
		item, _ := st.index.Item(s.ItemID)
		out = append(out, BookRecommendation{
			ItemID:  item.ID,
			Title:   item.Title,
			Authors: item.Authors,
			Score:   s.Score,
		})
	}

	e.logger.Debug().
		Int("item_id", id).
		Int("returned", len(out)).
		Msg("content recommendation complete")

	return out, nil
}

// TrainCollaborative splits interactions, fits a new factor model on the
// train side, evaluates it on the test side and publishes it.
// Zero-valued fields in tc fall back to the engine configuration.
func (e *Engine) TrainCollaborative(ctx context.Context, interactions []Interaction, tc TrainConfig) (FactorModel, EvaluationResult, error) {
	if err := e.acquireTrainingLock(); err != nil {
		return nil, EvaluationResult{}, err
	}
	defer e.trainMu.Unlock()

	return e.runTraining(ctx, interactions, tc)
}

// CollaborativeRecommend returns the topN unrated items with the highest
// predicted rating for the user.
func (e *Engine) CollaborativeRecommend(ctx context.Context, userID, topN int) ([]ScoredItem, error) {
	e.collabRequests.Add(1)

	st := e.collab.Load()
	if st == nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("factor model: %w", ErrNotTrained)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	n := e.clampK(topN)
	recs, err := st.ranker.TopNForUser(userID, n)
	if err == nil {
		return recs, nil
	}

	if errors.Is(err, ErrUnknownUser) && e.config.ColdStartFallback && st.popularity != nil {
		e.fallbacks.Add(1)
		e.logger.Debug().Int("user_id", userID).Msg("serving popularity fallback for unknown user")
		return st.popularity.TopK(n, st.ranker.RatedItems(userID)), nil
	}

	return nil, err
}

// Train loads data from the provider, builds the content index when none is
// published yet, and retrains the factor model with the configured defaults.
func (e *Engine) Train(ctx context.Context) (EvaluationResult, error) {
	if err := e.acquireTrainingLock(); err != nil {
		return EvaluationResult{}, err
	}
	defer e.trainMu.Unlock()

	if e.dataProvider == nil {
		return EvaluationResult{}, fmt.Errorf("data provider not set")
	}

	trainCtx, cancel := context.WithTimeout(ctx, e.config.Training.Timeout)
	defer cancel()

	interactions, items, err := e.loadTrainingData(trainCtx)
	if err != nil {
		e.recordFailure(err)
		return EvaluationResult{}, err
	}

	if e.content.Load() == nil {
		if err := e.BuildContentIndex(trainCtx, items); err != nil {
			e.recordFailure(err)
			return EvaluationResult{}, err
		}
	}

	_, result, err := e.runTraining(trainCtx, interactions, e.config.DefaultTrainConfig())
	return result, err
}

// RestoreFromStore publishes the latest persisted factor model. interactions
// are the known ratings used to exclude already-rated items when ranking.
func (e *Engine) RestoreFromStore(ctx context.Context, interactions []Interaction) error {
	if e.store == nil {
		return fmt.Errorf("model store not configured")
	}

	state, err := e.store.LoadFactorModel(ctx, 0)
	if err != nil {
		return fmt.Errorf("load factor model: %w", err)
	}

	model, err := e.backend.RestoreFactorModel(state)
	if err != nil {
		return fmt.Errorf("restore factor model: %w", err)
	}

	st, err := e.buildCollabState(ctx, model, interactions, state.Version, nil)
	if err != nil {
		return err
	}
	e.collab.Store(st)

	e.updateStatus(func(s *TrainingStatus) {
		s.ModelVersion = state.Version
		s.LastTrainedAt = state.TrainedAt
		s.InteractionCount = len(interactions)
		s.UserCount = countUniqueUsers(interactions)
		s.CollaborativeReady = true
	})

	e.logger.Info().
		Int("version", state.Version).
		Int("users", len(state.UserIDs)).
		Int("items", len(state.ItemIDs)).
		Msg("restored factor model from store")
	return nil
}

// CrossValidate runs k-fold cross-validation of the configured factor model.
// A non-positive folds uses the configured fold count.
func (e *Engine) CrossValidate(ctx context.Context, interactions []Interaction, folds int) (*CrossValidationResult, error) {
	if folds <= 0 {
		folds = e.config.Evaluation.Folds
	}

	start := time.Now()
	result, err := e.backend.CrossValidate(ctx, interactions, e.config.Factor, e.config.Scale, folds, e.config.Split.Seed)
	if err != nil {
		return nil, fmt.Errorf("cross validate: %w", err)
	}

	e.logger.Info().
		Int("folds", folds).
		Float64("mean_rmse", result.MeanRMSE).
		Float64("mean_mae", result.MeanMAE).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("cross validation complete")
	return result, nil
}

// runTraining performs one training run. The caller holds trainMu.
func (e *Engine) runTraining(ctx context.Context, interactions []Interaction, tc TrainConfig) (FactorModel, EvaluationResult, error) {
	start := time.Now()
	e.updateStatus(func(s *TrainingStatus) {
		s.IsTraining = true
	})
	defer e.updateStatus(func(s *TrainingStatus) {
		s.IsTraining = false
		s.LastTrainingDurationMS = time.Since(start).Milliseconds()
	})

	e.logger.Info().Int("interactions", len(interactions)).Msg("starting model training")

	model, result, version, err := e.fitAndPublish(ctx, interactions, tc)
	if err != nil {
		e.recordFailure(err)
		return nil, EvaluationResult{}, err
	}

	e.trainingCount.Add(1)
	e.updateStatus(func(s *TrainingStatus) {
		s.LastError = ""
		s.LastTrainedAt = time.Now()
		s.ModelVersion = version
		s.InteractionCount = len(interactions)
		s.UserCount = countUniqueUsers(interactions)
		s.LastEvaluation = &result
		s.CollaborativeReady = true
	})

	e.logger.Info().
		Int("version", version).
		Float64("rmse", result.RMSE).
		Float64("mae", result.MAE).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("model training complete")

	return model, result, nil
}

func (e *Engine) fitAndPublish(ctx context.Context, interactions []Interaction, tc TrainConfig) (FactorModel, EvaluationResult, int, error) {
	if len(interactions) < e.config.Training.MinInteractions {
		return nil, EvaluationResult{}, 0, fmt.Errorf("%d interactions below minimum %d: %w",
			len(interactions), e.config.Training.MinInteractions, ErrInsufficientData)
	}

	factorCfg := e.config.Factor.WithTrainConfig(tc)
	if err := factorCfg.Validate(); err != nil {
		return nil, EvaluationResult{}, 0, fmt.Errorf("invalid train config: %w", err)
	}

	ratio := tc.TestSplitRatio
	if ratio == 0 {
		ratio = e.config.Split.TestRatio
	}
	seed := tc.Seed
	if seed == 0 {
		seed = e.config.Split.Seed
	}

	train, test, err := e.backend.Split(interactions, ratio, seed)
	if err != nil {
		return nil, EvaluationResult{}, 0, fmt.Errorf("split interactions: %w", err)
	}

	model, err := e.backend.FitFactorModel(ctx, train, factorCfg, e.config.Scale)
	if err != nil {
		return nil, EvaluationResult{}, 0, fmt.Errorf("fit factor model: %w", err)
	}

	result, err := e.backend.EvaluateRanking(model, test, e.config.Evaluation.K, e.config.Evaluation.RelevanceThreshold)
	if err != nil {
		return nil, EvaluationResult{}, 0, fmt.Errorf("evaluate factor model: %w", err)
	}

	version := 1
	if prev := e.collab.Load(); prev != nil {
		version = prev.version + 1
	}

	st, err := e.buildCollabState(ctx, model, interactions, version, &result)
	if err != nil {
		return nil, EvaluationResult{}, 0, err
	}
	e.collab.Store(st)

	e.persist(ctx, model, version)
	return model, result, version, nil
}

func (e *Engine) buildCollabState(ctx context.Context, model FactorModel, interactions []Interaction,
	version int, result *EvaluationResult) (*collabState, error) {
	var catalog []int
	if cs := e.content.Load(); cs != nil {
		catalog = cs.index.ItemIDs()
	}

	st := &collabState{
		model:      model,
		ranker:     e.backend.NewRanker(model, interactions, catalog),
		evaluation: result,
		version:    version,
	}

	if e.config.ColdStartFallback {
		pop, err := e.backend.NewPopularity(ctx, interactions)
		if err != nil {
			return nil, fmt.Errorf("train popularity baseline: %w", err)
		}
		st.popularity = pop
	}
	return st, nil
}

// persist saves the model when a store is configured. Failures are logged
// and do not fail the training run.
func (e *Engine) persist(ctx context.Context, model FactorModel, version int) {
	if e.store == nil {
		return
	}

	state, err := model.Snapshot()
	if err != nil {
		e.logger.Warn().Err(err).Msg("failed to snapshot factor model")
		return
	}
	state.Version = version

	if err := e.store.SaveFactorModel(ctx, state); err != nil {
		e.logger.Warn().Err(err).Int("version", version).Msg("failed to persist factor model")
		return
	}
	if err := e.store.Prune(ctx, e.config.Training.RetainVersions); err != nil {
		e.logger.Warn().Err(err).Msg("failed to prune old model versions")
	}
}

// acquireTrainingLock serializes training runs.
func (e *Engine) acquireTrainingLock() error {
	if !e.trainMu.TryLock() {
		return ErrTrainingInProgress
	}
	return nil
}

// loadTrainingData fetches interactions and items from the provider.
func (e *Engine) loadTrainingData(ctx context.Context) ([]Interaction, []Item, error) {
	interactions, err := e.dataProvider.Interactions(ctx, e.config.Training.MinUserRatings)
	if err != nil {
		return nil, nil, fmt.Errorf("get interactions: %w", err)
	}

	items, err := e.dataProvider.Items(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("get items: %w", err)
	}

	e.logger.Info().
		Int("interactions", len(interactions)).
		Int("items", len(items)).
		Int("users", countUniqueUsers(interactions)).
		Msg("loaded training data")

	return interactions, items, nil
}

func (e *Engine) recordFailure(err error) {
	e.errorCount.Add(1)
	e.updateStatus(func(s *TrainingStatus) {
		s.LastError = err.Error()
	})
	e.logger.Error().Err(err).Msg("model training failed")
}

func (e *Engine) updateStatus(fn func(*TrainingStatus)) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	fn(&e.trainStatus)
}

// clampK applies the default and maximum result counts.
func (e *Engine) clampK(k int) int {
	if k <= 0 {
		return e.config.Limits.DefaultK
	}
	if k > e.config.Limits.MaxK {
		return e.config.Limits.MaxK
	}
	return k
}

func (e *Engine) getRerankers() []Reranker {
	if !e.config.Diversity.Enabled {
		return nil
	}
	e.algMu.RLock()
	defer e.algMu.RUnlock()
	return append([]Reranker(nil), e.rerankers...)
}

// Model returns the currently served factor model, or nil before training.
func (e *Engine) Model() FactorModel {
	if st := e.collab.Load(); st != nil {
		return st.model
	}
	return nil
}

// ContentIndex returns the currently served content index, or nil before it is built.
func (e *Engine) ContentIndex() ContentIndex {
	if st := e.content.Load(); st != nil {
		return st.index
	}
	return nil
}

// GetStatus returns the current training status.
func (e *Engine) GetStatus() TrainingStatus {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()

	status := e.trainStatus
	if status.LastEvaluation != nil {
		eval := *status.LastEvaluation
		status.LastEvaluation = &eval
	}
	return status
}

// GetMetrics returns engine counters.
func (e *Engine) GetMetrics() Metrics {
	return Metrics{
		ContentRequests:       e.contentRequests.Load(),
		CollaborativeRequests: e.collabRequests.Load(),
		FallbackRequests:      e.fallbacks.Load(),
		ErrorCount:            e.errorCount.Load(),
		TrainingCount:         e.trainingCount.Load(),
	}
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

// countUniqueUsers counts unique users in interactions.
func countUniqueUsers(interactions []Interaction) int {
	users := make(map[int]struct{})
	for _, inter := range interactions {
		users[inter.UserID] = struct{}{}
	}
	return len(users)
}
