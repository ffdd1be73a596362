// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// mockContentIndex scores pairs by id distance.
type mockContentIndex struct {
	items []Item
}

func (m *mockContentIndex) Resolve(titleOrID string) (int, error) {
	for _, it := range m.items {
		if NormalizeTitle(it.Title) == NormalizeTitle(titleOrID) {
			return it.ID, nil
		}
	}
	if id, err := strconv.Atoi(titleOrID); err == nil {
		if _, ok := m.Item(id); ok {
			return id, nil
		}
	}
	return 0, fmt.Errorf("resolve %q: %w", titleOrID, ErrItemNotFound)
}

func (m *mockContentIndex) Query(itemID, topN int) ([]ScoredItem, error) {
	if _, ok := m.Item(itemID); !ok {
		return nil, ErrItemNotFound
	}
	out := make([]ScoredItem, 0, len(m.items))
	for _, it := range m.items {
		if it.ID == itemID {
			continue
		}
		out = append(out, ScoredItem{ItemID: it.ID, Score: m.Similarity(itemID, it.ID)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ItemID < out[j].ItemID
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

func (m *mockContentIndex) Item(id int) (Item, bool) {
	for _, it := range m.items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

func (m *mockContentIndex) Similarity(a, b int) float64 {
	d := a - b
	if d < 0 {
		d = -d
	}
	return 1 / float64(1+d)
}

func (m *mockContentIndex) Len() int { return len(m.items) }

func (m *mockContentIndex) ItemIDs() []int {
	ids := make([]int, 0, len(m.items))
	for _, it := range m.items {
		ids = append(ids, it.ID)
	}
	sort.Ints(ids)
	return ids
}

// mockModel predicts rating = 1 + itemID mod 5 for known users.
type mockModel struct {
	users map[int]struct{}
}

func (m *mockModel) State() ModelState { return ModelTrained }

func (m *mockModel) Predict(_, itemID int) (float64, error) {
	return float64(1 + itemID%5), nil
}

func (m *mockModel) Evaluate(test []Interaction) (EvaluationResult, error) {
	return EvaluationResult{RMSE: 1, MAE: 0.5, Count: len(test)}, nil
}

func (m *mockModel) KnowsUser(userID int) bool {
	_, ok := m.users[userID]
	return ok
}

func (m *mockModel) Snapshot() (*FactorModelState, error) {
	ids := make([]int, 0, len(m.users))
	for u := range m.users {
		ids = append(ids, u)
	}
	sort.Ints(ids)
	return &FactorModelState{Factors: 1, UserIDs: ids}, nil
}

type mockRanker struct {
	model   FactorModel
	rated   map[int]map[int]struct{}
	catalog []int
}

func (r *mockRanker) TopNForUser(userID, n int) ([]ScoredItem, error) {
	if !r.model.KnowsUser(userID) {
		return nil, ErrUnknownUser
	}
	out := make([]ScoredItem, 0)
	for _, id := range r.catalog {
		if _, ok := r.rated[userID][id]; ok {
			continue
		}
		s, _ := r.model.Predict(userID, id)
		out = append(out, ScoredItem{ItemID: id, Score: s})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (r *mockRanker) RatedItems(userID int) map[int]struct{} {
	return r.rated[userID]
}

type mockPopularity struct {
	order []int
}

func (p *mockPopularity) TopK(k int, exclude map[int]struct{}) []ScoredItem {
	out := make([]ScoredItem, 0, k)
	for _, id := range p.order {
		if _, ok := exclude[id]; ok {
			continue
		}
		if len(out) == k {
			break
		}
		out = append(out, ScoredItem{ItemID: id, Score: 1})
	}
	return out
}

// mockBackend implements Backend for testing.
type mockBackend struct {
	mu        sync.Mutex
	fitCalls  int
	lastCfg   FactorConfig
	fitErr    error
	fitBlock  chan struct{}
	fitStart  chan struct{}
	indexErr  error
	lastSplit float64
}

func (b *mockBackend) BuildContentIndex(_ context.Context, items []Item, _ ContentConfig) (ContentIndex, error) {
	if b.indexErr != nil {
		return nil, b.indexErr
	}
	return &mockContentIndex{items: items}, nil
}

func (b *mockBackend) Split(interactions []Interaction, ratio float64, _ int64) (train, test []Interaction, err error) {
	b.mu.Lock()
	b.lastSplit = ratio
	b.mu.Unlock()
	n := len(interactions) / 5
	return interactions[n:], interactions[:n], nil
}

func (b *mockBackend) FitFactorModel(ctx context.Context, train []Interaction, cfg FactorConfig, _ RatingScale) (FactorModel, error) {
	b.mu.Lock()
	b.fitCalls++
	b.lastCfg = cfg
	block, start := b.fitBlock, b.fitStart
	b.mu.Unlock()

	if start != nil {
		close(start)
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if b.fitErr != nil {
		return nil, b.fitErr
	}
	users := make(map[int]struct{})
	for _, in := range train {
		users[in.UserID] = struct{}{}
	}
	return &mockModel{users: users}, nil
}

func (b *mockBackend) RestoreFactorModel(state *FactorModelState) (FactorModel, error) {
	users := make(map[int]struct{})
	for _, u := range state.UserIDs {
		users[u] = struct{}{}
	}
	return &mockModel{users: users}, nil
}

func (b *mockBackend) NewRanker(model FactorModel, interactions []Interaction, catalog []int) UserRanker {
	rated := make(map[int]map[int]struct{})
	items := make(map[int]struct{})
	for _, in := range interactions {
		if rated[in.UserID] == nil {
			rated[in.UserID] = make(map[int]struct{})
		}
		rated[in.UserID][in.ItemID] = struct{}{}
		items[in.ItemID] = struct{}{}
	}
	if len(catalog) == 0 {
		for id := range items {
			catalog = append(catalog, id)
		}
		sort.Ints(catalog)
	}
	return &mockRanker{model: model, rated: rated, catalog: catalog}
}

func (b *mockBackend) NewPopularity(_ context.Context, interactions []Interaction) (PopularityRanker, error) {
	seen := make(map[int]struct{})
	order := make([]int, 0)
	for _, in := range interactions {
		if _, ok := seen[in.ItemID]; !ok {
			seen[in.ItemID] = struct{}{}
			order = append(order, in.ItemID)
		}
	}
	return &mockPopularity{order: order}, nil
}

func (b *mockBackend) EvaluateRanking(model FactorModel, test []Interaction, k int, _ float64) (EvaluationResult, error) {
	res, err := model.Evaluate(test)
	res.K = k
	return res, err
}

func (b *mockBackend) CrossValidate(_ context.Context, interactions []Interaction, _ FactorConfig, _ RatingScale,
	folds int, _ int64) (*CrossValidationResult, error) {
	if len(interactions) < folds {
		return nil, ErrInsufficientData
	}
	return &CrossValidationResult{Folds: make([]EvaluationResult, folds), MeanRMSE: 1, MeanMAE: 0.5}, nil
}

// mockDataProvider implements DataProvider for testing.
type mockDataProvider struct {
	items           []Item
	interactions    []Interaction
	lastMinRatings  int
	itemsErr        error
	interactionsErr error
}

func (m *mockDataProvider) Items(context.Context) ([]Item, error) {
	if m.itemsErr != nil {
		return nil, m.itemsErr
	}
	return m.items, nil
}

func (m *mockDataProvider) Interactions(_ context.Context, minUserRatings int) ([]Interaction, error) {
	m.lastMinRatings = minUserRatings
	if m.interactionsErr != nil {
		return nil, m.interactionsErr
	}
	return m.interactions, nil
}

// mockStore implements ModelStore for testing.
type mockStore struct {
	mu      sync.Mutex
	states  map[int]*FactorModelState
	saveErr error
	pruned  int
}

func (s *mockStore) SaveFactorModel(_ context.Context, state *FactorModelState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	if s.states == nil {
		s.states = make(map[int]*FactorModelState)
	}
	s.states[state.Version] = state
	return nil
}

func (s *mockStore) LoadFactorModel(_ context.Context, version int) (*FactorModelState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if version == 0 {
		for v := range s.states {
			if v > version {
				version = v
			}
		}
	}
	st, ok := s.states[version]
	if !ok {
		return nil, errors.New("not found")
	}
	return st, nil
}

func (s *mockStore) Prune(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruned = keep
	return nil
}

func testItems() []Item {
	return []Item{
		{ID: 1, Title: "The Hunger Games", Authors: "Suzanne Collins"},
		{ID: 2, Title: "Catching Fire", Authors: "Suzanne Collins"},
		{ID: 3, Title: "Mockingjay", Authors: "Suzanne Collins"},
		{ID: 4, Title: "1984", Authors: "George Orwell"},
		{ID: 5, Title: "Animal Farm", Authors: "George Orwell"},
		{ID: 6, Title: "Dune", Authors: "Frank Herbert"},
	}
}

// testInteractions returns 4 users rating items 1..5; user 1 skips item 5.
func testInteractions() []Interaction {
	var out []Interaction
	for u := 1; u <= 4; u++ {
		for i := 1; i <= 5; i++ {
			if u == 1 && i == 5 {
				continue
			}
			out = append(out, Interaction{UserID: u, ItemID: i, Rating: float64(1 + (u+i)%5)})
		}
	}
	return out
}

func newTestEngine(t *testing.T, cfg *Config, backend *mockBackend) *Engine {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
		cfg.Training.MinInteractions = 1
	}
	e, err := NewEngine(cfg, backend, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     *Config
		backend Backend
		wantErr bool
	}{
		{name: "default config", cfg: DefaultConfig(), backend: &mockBackend{}},
		{name: "nil config uses defaults", cfg: nil, backend: &mockBackend{}},
		{name: "nil backend", cfg: DefaultConfig(), backend: nil, wantErr: true},
		{
			name: "invalid config",
			cfg: func() *Config {
				c := DefaultConfig()
				c.Factor.Factors = 0
				return c
			}(),
			backend: &mockBackend{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, err := NewEngine(tt.cfg, tt.backend, zerolog.Nop())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewEngine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && e == nil {
				t.Error("NewEngine() returned nil engine")
			}
		})
	}
}

func TestEngine_ContentRecommend(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, &mockBackend{})
	ctx := context.Background()

	if _, err := e.ContentRecommend(ctx, "Dune", 3); !errors.Is(err, ErrNotTrained) {
		t.Fatalf("ContentRecommend() before build error = %v, want ErrNotTrained", err)
	}

	if err := e.BuildContentIndex(ctx, testItems()); err != nil {
		t.Fatalf("BuildContentIndex() error = %v", err)
	}

	tests := []struct {
		name    string
		query   string
		topN    int
		wantIDs []int
		wantErr error
	}{
		{name: "by title", query: "Catching Fire", topN: 2, wantIDs: []int{1, 3}},
		{name: "title is case insensitive", query: "catching fire", topN: 2, wantIDs: []int{1, 3}},
		{name: "by id", query: "6", topN: 1, wantIDs: []int{5}},
		{name: "numeric title wins over id", query: "1984", topN: 2, wantIDs: []int{3, 5}},
		{name: "default k", query: "Dune", topN: 0, wantIDs: []int{5, 4, 3, 2, 1}},
		{name: "unknown title", query: "No Such Book", topN: 3, wantErr: ErrItemNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			recs, err := e.ContentRecommend(ctx, tt.query, tt.topN)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ContentRecommend() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ContentRecommend() error = %v", err)
			}
			if len(recs) != len(tt.wantIDs) {
				t.Fatalf("ContentRecommend() len = %d, want %d", len(recs), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if recs[i].ItemID != id {
					t.Errorf("recs[%d].ItemID = %d, want %d", i, recs[i].ItemID, id)
				}
				if recs[i].Title == "" {
					t.Errorf("recs[%d].Title is empty", i)
				}
			}
		})
	}
}

func TestEngine_BuildContentIndex_Error(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, &mockBackend{indexErr: ErrEmptyCorpus})
	err := e.BuildContentIndex(context.Background(), nil)
	if !errors.Is(err, ErrEmptyCorpus) {
		t.Errorf("BuildContentIndex() error = %v, want ErrEmptyCorpus", err)
	}
	if e.GetStatus().ContentReady {
		t.Error("ContentReady = true after failed build")
	}
}

// reverseReranker reverses the candidate list.
type reverseReranker struct {
	gotK int
}

func (r *reverseReranker) Name() string { return "reverse" }

func (r *reverseReranker) Rerank(_ context.Context, items []ScoredItem, k int, _ SimilarityFunc) []ScoredItem {
	r.gotK = k
	out := make([]ScoredItem, len(items))
	for i := range items {
		out[len(items)-1-i] = items[i]
	}
	return out
}

func TestEngine_ContentRecommend_Rerankers(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Diversity.Enabled = true
	cfg.Diversity.CandidateMultiplier = 2
	e := newTestEngine(t, cfg, &mockBackend{})
	rr := &reverseReranker{}
	e.RegisterReranker(rr)

	ctx := context.Background()
	if err := e.BuildContentIndex(ctx, testItems()); err != nil {
		t.Fatalf("BuildContentIndex() error = %v", err)
	}

	// Candidates for item 1 by similarity: 2, 3, 4, 5; reversed: 5, 4, 3, 2.
	recs, err := e.ContentRecommend(ctx, "1", 2)
	if err != nil {
		t.Fatalf("ContentRecommend() error = %v", err)
	}
	if rr.gotK != 4 {
		t.Errorf("reranker k = %d, want 4", rr.gotK)
	}
	if len(recs) != 2 || recs[0].ItemID != 5 || recs[1].ItemID != 4 {
		t.Errorf("ContentRecommend() = %+v, want items [5 4]", recs)
	}
}

func TestEngine_TrainCollaborative(t *testing.T) {
	t.Parallel()

	backend := &mockBackend{}
	store := &mockStore{}
	e := newTestEngine(t, nil, backend)
	e.SetModelStore(store)
	ctx := context.Background()

	if _, err := e.CollaborativeRecommend(ctx, 1, 5); !errors.Is(err, ErrNotTrained) {
		t.Fatalf("CollaborativeRecommend() before training error = %v, want ErrNotTrained", err)
	}

	model, result, err := e.TrainCollaborative(ctx, testInteractions(), TrainConfig{FactorDim: 2, Epochs: 5})
	if err != nil {
		t.Fatalf("TrainCollaborative() error = %v", err)
	}
	if model == nil {
		t.Fatal("TrainCollaborative() returned nil model")
	}
	if result.K != DefaultConfig().Evaluation.K {
		t.Errorf("result.K = %d, want %d", result.K, DefaultConfig().Evaluation.K)
	}
	if backend.lastCfg.Factors != 2 || backend.lastCfg.Epochs != 5 {
		t.Errorf("fit config = %+v, want factors 2 epochs 5", backend.lastCfg)
	}
	if backend.lastCfg.LearningRate != DefaultConfig().Factor.LearningRate {
		t.Errorf("fit learning rate = %v, want default", backend.lastCfg.LearningRate)
	}
	if backend.lastSplit != DefaultConfig().Split.TestRatio {
		t.Errorf("split ratio = %v, want default", backend.lastSplit)
	}

	status := e.GetStatus()
	if !status.CollaborativeReady || status.ModelVersion != 1 || status.UserCount != 4 {
		t.Errorf("GetStatus() = %+v, want ready version 1 with 4 users", status)
	}
	if status.LastEvaluation == nil {
		t.Error("GetStatus().LastEvaluation is nil")
	}
	if _, err := store.LoadFactorModel(ctx, 1); err != nil {
		t.Errorf("model version 1 not persisted: %v", err)
	}
	if store.pruned != DefaultConfig().Training.RetainVersions {
		t.Errorf("Prune keep = %d, want %d", store.pruned, DefaultConfig().Training.RetainVersions)
	}

	if _, _, err := e.TrainCollaborative(ctx, testInteractions(), TrainConfig{}); err != nil {
		t.Fatalf("second TrainCollaborative() error = %v", err)
	}
	if got := e.GetStatus().ModelVersion; got != 2 {
		t.Errorf("ModelVersion after retrain = %d, want 2", got)
	}
	if got := e.GetMetrics().TrainingCount; got != 2 {
		t.Errorf("TrainingCount = %d, want 2", got)
	}
}

func TestEngine_TrainCollaborative_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		minimum int
		fitErr  error
		tc      TrainConfig
		wantErr error
	}{
		{name: "below minimum interactions", minimum: 1000, wantErr: ErrInsufficientData},
		{name: "fit failure", minimum: 1, fitErr: ErrInsufficientData, wantErr: ErrInsufficientData},
		{name: "invalid override", minimum: 1, tc: TrainConfig{Regularization: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			cfg.Training.MinInteractions = tt.minimum
			e := newTestEngine(t, cfg, &mockBackend{fitErr: tt.fitErr})

			_, _, err := e.TrainCollaborative(context.Background(), testInteractions(), tt.tc)
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("TrainCollaborative() error = %v, want %v", err, tt.wantErr)
			}
			if tt.name == "invalid override" && err != nil {
				t.Fatalf("TrainCollaborative() error = %v, negative override must be ignored", err)
			}
			if tt.wantErr != nil {
				if e.GetStatus().LastError == "" {
					t.Error("LastError not recorded")
				}
				if e.Model() != nil {
					t.Error("Model() != nil after failed training")
				}
			}
		})
	}
}

func TestEngine_FailedRetrainKeepsModel(t *testing.T) {
	t.Parallel()

	backend := &mockBackend{}
	e := newTestEngine(t, nil, backend)
	ctx := context.Background()

	if _, _, err := e.TrainCollaborative(ctx, testInteractions(), TrainConfig{}); err != nil {
		t.Fatalf("TrainCollaborative() error = %v", err)
	}
	first := e.Model()

	backend.mu.Lock()
	backend.fitErr = errors.New("boom")
	backend.mu.Unlock()

	if _, _, err := e.TrainCollaborative(ctx, testInteractions(), TrainConfig{}); err == nil {
		t.Fatal("TrainCollaborative() expected error")
	}
	if e.Model() != first {
		t.Error("served model replaced by failed training run")
	}
	if _, err := e.CollaborativeRecommend(ctx, 1, 3); err != nil {
		t.Errorf("CollaborativeRecommend() after failed retrain error = %v", err)
	}
}

func TestEngine_CollaborativeRecommend(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, &mockBackend{})
	ctx := context.Background()
	if _, _, err := e.TrainCollaborative(ctx, testInteractions(), TrainConfig{}); err != nil {
		t.Fatalf("TrainCollaborative() error = %v", err)
	}

	tests := []struct {
		name    string
		userID  int
		topN    int
		wantIDs []int
		wantErr error
	}{
		// Train side is everything after the first 20%, so user 1 is known.
		{name: "excludes rated items", userID: 1, topN: 5, wantIDs: []int{5}},
		{name: "fully rated user", userID: 2, topN: 5, wantIDs: []int{}},
		{name: "unknown user", userID: 99, topN: 5, wantErr: ErrUnknownUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			recs, err := e.CollaborativeRecommend(ctx, tt.userID, tt.topN)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CollaborativeRecommend() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CollaborativeRecommend() error = %v", err)
			}
			if len(recs) != len(tt.wantIDs) {
				t.Fatalf("CollaborativeRecommend() = %+v, want ids %v", recs, tt.wantIDs)
			}
			for i, id := range tt.wantIDs {
				if recs[i].ItemID != id {
					t.Errorf("recs[%d].ItemID = %d, want %d", i, recs[i].ItemID, id)
				}
			}
		})
	}
}

func TestEngine_CollaborativeRecommend_CatalogFromContentIndex(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, &mockBackend{})
	ctx := context.Background()
	if err := e.BuildContentIndex(ctx, testItems()); err != nil {
		t.Fatalf("BuildContentIndex() error = %v", err)
	}
	if _, _, err := e.TrainCollaborative(ctx, testInteractions(), TrainConfig{}); err != nil {
		t.Fatalf("TrainCollaborative() error = %v", err)
	}

	// Item 6 has no ratings but is in the catalog.
	recs, err := e.CollaborativeRecommend(ctx, 2, 5)
	if err != nil {
		t.Fatalf("CollaborativeRecommend() error = %v", err)
	}
	if len(recs) != 1 || recs[0].ItemID != 6 {
		t.Errorf("CollaborativeRecommend() = %+v, want only item 6", recs)
	}
}

func TestEngine_ColdStartFallback(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Training.MinInteractions = 1
	cfg.ColdStartFallback = true
	e := newTestEngine(t, cfg, &mockBackend{})
	ctx := context.Background()

	if _, _, err := e.TrainCollaborative(ctx, testInteractions(), TrainConfig{}); err != nil {
		t.Fatalf("TrainCollaborative() error = %v", err)
	}

	recs, err := e.CollaborativeRecommend(ctx, 99, 3)
	if err != nil {
		t.Fatalf("CollaborativeRecommend() error = %v", err)
	}
	if len(recs) != 3 {
		t.Errorf("fallback returned %d items, want 3", len(recs))
	}
	if got := e.GetMetrics().FallbackRequests; got != 1 {
		t.Errorf("FallbackRequests = %d, want 1", got)
	}
}

func TestEngine_Train_AlreadyInProgress(t *testing.T) {
	t.Parallel()

	backend := &mockBackend{
		fitBlock: make(chan struct{}),
		fitStart: make(chan struct{}),
	}
	e := newTestEngine(t, nil, backend)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, _, err := e.TrainCollaborative(ctx, testInteractions(), TrainConfig{})
		done <- err
	}()

	<-backend.fitStart
	if !e.GetStatus().IsTraining {
		t.Error("IsTraining = false during training")
	}
	if _, _, err := e.TrainCollaborative(ctx, testInteractions(), TrainConfig{}); !errors.Is(err, ErrTrainingInProgress) {
		t.Errorf("concurrent TrainCollaborative() error = %v, want ErrTrainingInProgress", err)
	}

	close(backend.fitBlock)
	if err := <-done; err != nil {
		t.Fatalf("first TrainCollaborative() error = %v", err)
	}
	if e.GetStatus().IsTraining {
		t.Error("IsTraining = true after training finished")
	}
}

func TestEngine_Train(t *testing.T) {
	t.Parallel()

	dp := &mockDataProvider{items: testItems(), interactions: testInteractions()}
	e := newTestEngine(t, nil, &mockBackend{})

	if _, err := e.Train(context.Background()); err == nil {
		t.Fatal("Train() without data provider expected error")
	}

	e.SetDataProvider(dp)
	if _, err := e.Train(context.Background()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if dp.lastMinRatings != DefaultConfig().Training.MinUserRatings {
		t.Errorf("Interactions minUserRatings = %d, want %d", dp.lastMinRatings, DefaultConfig().Training.MinUserRatings)
	}

	status := e.GetStatus()
	if !status.ContentReady || !status.CollaborativeReady {
		t.Errorf("GetStatus() = %+v, want both paths ready", status)
	}
	if status.ItemCount != len(testItems()) {
		t.Errorf("ItemCount = %d, want %d", status.ItemCount, len(testItems()))
	}
}

func TestEngine_Train_ProviderError(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, &mockBackend{})
	e.SetDataProvider(&mockDataProvider{interactionsErr: errors.New("db down")})

	if _, err := e.Train(context.Background()); err == nil {
		t.Fatal("Train() expected error")
	}
	if e.GetStatus().LastError == "" {
		t.Error("LastError not recorded")
	}
}

func TestEngine_Train_ContextCancellation(t *testing.T) {
	t.Parallel()

	backend := &mockBackend{fitBlock: make(chan struct{})}
	e := newTestEngine(t, nil, backend)
	e.SetDataProvider(&mockDataProvider{items: testItems(), interactions: testInteractions()})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := e.Train(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Train() error = %v, want context.DeadlineExceeded", err)
	}
	if e.Model() != nil {
		t.Error("Model() != nil after cancelled training")
	}
}

func TestEngine_RestoreFromStore(t *testing.T) {
	t.Parallel()

	store := &mockStore{}
	ctx := context.Background()

	trainer := newTestEngine(t, nil, &mockBackend{})
	trainer.SetModelStore(store)
	if _, _, err := trainer.TrainCollaborative(ctx, testInteractions(), TrainConfig{}); err != nil {
		t.Fatalf("TrainCollaborative() error = %v", err)
	}

	e := newTestEngine(t, nil, &mockBackend{})
	if err := e.RestoreFromStore(ctx, testInteractions()); err == nil {
		t.Fatal("RestoreFromStore() without store expected error")
	}

	e.SetModelStore(store)
	if err := e.RestoreFromStore(ctx, testInteractions()); err != nil {
		t.Fatalf("RestoreFromStore() error = %v", err)
	}
	if got := e.GetStatus().ModelVersion; got != 1 {
		t.Errorf("ModelVersion = %d, want 1", got)
	}
	if _, err := e.CollaborativeRecommend(ctx, 1, 3); err != nil {
		t.Errorf("CollaborativeRecommend() after restore error = %v", err)
	}
}

func TestEngine_PersistFailureDoesNotFailTraining(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, &mockBackend{})
	e.SetModelStore(&mockStore{saveErr: errors.New("disk full")})

	if _, _, err := e.TrainCollaborative(context.Background(), testInteractions(), TrainConfig{}); err != nil {
		t.Fatalf("TrainCollaborative() error = %v", err)
	}
	if !e.GetStatus().CollaborativeReady {
		t.Error("CollaborativeReady = false")
	}
}

func TestEngine_CrossValidate(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, &mockBackend{})

	res, err := e.CrossValidate(context.Background(), testInteractions(), 0)
	if err != nil {
		t.Fatalf("CrossValidate() error = %v", err)
	}
	if len(res.Folds) != DefaultConfig().Evaluation.Folds {
		t.Errorf("len(Folds) = %d, want %d", len(res.Folds), DefaultConfig().Evaluation.Folds)
	}

	if _, err := e.CrossValidate(context.Background(), testInteractions()[:2], 5); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("CrossValidate() error = %v, want ErrInsufficientData", err)
	}
}

func TestEngine_GetConfig(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, &mockBackend{})
	cfg := e.GetConfig()
	cfg.Limits.MaxK = 1

	if e.GetConfig().Limits.MaxK == 1 {
		t.Error("GetConfig() returned shared config")
	}
}

func TestEngine_clampK(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, &mockBackend{})
	tests := []struct {
		in   int
		want int
	}{
		{in: 0, want: 5},
		{in: -3, want: 5},
		{in: 10, want: 10},
		{in: 1000, want: 100},
	}
	for _, tt := range tests {
		if got := e.clampK(tt.in); got != tt.want {
			t.Errorf("clampK(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEngine_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, &mockBackend{})
	ctx := context.Background()
	if err := e.BuildContentIndex(ctx, testItems()); err != nil {
		t.Fatalf("BuildContentIndex() error = %v", err)
	}
	if _, _, err := e.TrainCollaborative(ctx, testInteractions(), TrainConfig{}); err != nil {
		t.Fatalf("TrainCollaborative() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%5 == 0 {
				_, _, _ = e.TrainCollaborative(ctx, testInteractions(), TrainConfig{})
				return
			}
			if _, err := e.ContentRecommend(ctx, "Dune", 3); err != nil {
				t.Errorf("ContentRecommend() error = %v", err)
			}
			if _, err := e.CollaborativeRecommend(ctx, 1, 3); err != nil {
				t.Errorf("CollaborativeRecommend() error = %v", err)
			}
			_ = e.GetStatus()
		}(i)
	}
	wg.Wait()
}

func TestCountUniqueUsers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		interactions []Interaction
		want         int
	}{
		{name: "empty", interactions: nil, want: 0},
		{name: "dataset", interactions: testInteractions(), want: 4},
		{
			name:         "repeated user",
			interactions: []Interaction{{UserID: 1, ItemID: 1}, {UserID: 1, ItemID: 2}},
			want:         1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := countUniqueUsers(tt.interactions); got != tt.want {
				t.Errorf("countUniqueUsers() = %d, want %d", got, tt.want)
			}
		})
	}
}
