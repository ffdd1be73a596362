// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/goodbooks/internal/database"
	"github.com/tomtom215/goodbooks/internal/models"
	"github.com/tomtom215/goodbooks/internal/recommend"
	"github.com/tomtom215/goodbooks/internal/search"
)

// fakeIndex resolves exact lowercased titles and numeric ids.
type fakeIndex struct {
	items map[int]recommend.Item
}

func (f *fakeIndex) Resolve(titleOrID string) (int, error) {
	for id, it := range f.items {
		if strings.EqualFold(it.Title, titleOrID) {
			return id, nil
		}
	}
	if id, err := strconv.Atoi(titleOrID); err == nil {
		if _, ok := f.items[id]; ok {
			return id, nil
		}
	}
	return 0, recommend.ErrItemNotFound
}

func (f *fakeIndex) Query(int, int) ([]recommend.ScoredItem, error) { return nil, nil }

func (f *fakeIndex) Item(id int) (recommend.Item, bool) {
	it, ok := f.items[id]
	return it, ok
}

func (f *fakeIndex) Similarity(int, int) float64 { return 0 }
func (f *fakeIndex) Len() int                    { return len(f.items) }
func (f *fakeIndex) ItemIDs() []int              { return nil }

type fakeRecommender struct {
	mu         sync.Mutex
	content    []recommend.BookRecommendation
	contentErr error
	collab     []recommend.ScoredItem
	collabErr  error
	index      recommend.ContentIndex
	status     recommend.TrainingStatus
	lastTopN   int
	calls      int
	onCollab   func(*recommend.TrainingStatus)
}

func (f *fakeRecommender) ContentRecommend(_ context.Context, _ string, topN int) ([]recommend.BookRecommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastTopN = topN
	f.calls++
	return f.content, f.contentErr
}

func (f *fakeRecommender) CollaborativeRecommend(_ context.Context, _, topN int) ([]recommend.ScoredItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastTopN = topN
	f.calls++
	if f.onCollab != nil {
		f.onCollab(&f.status)
	}
	return f.collab, f.collabErr
}

func (f *fakeRecommender) ContentIndex() recommend.ContentIndex { return f.index }
func (f *fakeRecommender) GetStatus() recommend.TrainingStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}
func (f *fakeRecommender) GetMetrics() recommend.Metrics {
	return recommend.Metrics{ContentRequests: 3, CollaborativeRequests: 2}
}

func (f *fakeRecommender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeRecommender) topN() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastTopN
}

type fakeCatalog struct {
	pingErr  error
	stats    database.Stats
	statsErr error
	top      []database.BookCount
	topErr   error
	dist     []database.RatingBucket
}

func (f *fakeCatalog) Ping(context.Context) error { return f.pingErr }
func (f *fakeCatalog) Stats(context.Context) (database.Stats, error) {
	return f.stats, f.statsErr
}
func (f *fakeCatalog) TopRated(context.Context, int) ([]database.BookCount, error) {
	return f.top, f.topErr
}
func (f *fakeCatalog) RatingDistribution(context.Context) ([]database.RatingBucket, error) {
	return f.dist, nil
}

type fakeSearcher struct {
	hits []search.Hit
	err  error
}

func (f *fakeSearcher) Search(context.Context, string, int) ([]search.Hit, error) {
	return f.hits, f.err
}

type fakeTrainer struct {
	err   error
	calls int
}

func (f *fakeTrainer) Trigger() error {
	f.calls++
	return f.err
}

// fixture bundles fakes with a router built over them.
type fixture struct {
	engine   *fakeRecommender
	catalog  *fakeCatalog
	searcher *fakeSearcher
	trainer  *fakeTrainer
}

func newFixture() *fixture {
	index := &fakeIndex{items: map[int]recommend.Item{
		1: {ID: 1, Title: "The Hunger Games", Authors: "Suzanne Collins"},
		2: {ID: 2, Title: "Catching Fire", Authors: "Suzanne Collins"},
		3: {ID: 3, Title: "1984", Authors: "George Orwell"},
	}}
	return &fixture{
		engine: &fakeRecommender{
			index:  index,
			status: recommend.TrainingStatus{ContentReady: true, CollaborativeReady: true, ModelVersion: 4},
		},
		catalog:  &fakeCatalog{},
		searcher: &fakeSearcher{},
		trainer:  &fakeTrainer{},
	}
}

func (f *fixture) handler() http.Handler {
	return f.handlerWith(HandlerConfig{Version: "test", RequestTimeout: time.Second})
}

func (f *fixture) handlerWith(hc HandlerConfig) http.Handler {
	h := NewHandler(hc, f.engine, f.catalog, f.searcher, f.trainer)
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitDisabled = true
	return NewRouter(h, NewChiMiddleware(cfg)).Setup()
}

// envelope mirrors models.APIResponse with Data left raw.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func do(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode body %q: %v", method, target, rec.Body.String(), err)
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

// checkError asserts an error envelope with the given status and code.
func checkError(t *testing.T, rec *httptest.ResponseRecorder, env envelope, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Errorf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	if env.Status != models.StatusError || env.Error == nil || env.Error.Code != code {
		t.Errorf("envelope = %+v, want error code %q", env, code)
	}
}
