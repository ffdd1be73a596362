// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		err       error
		wantErrs  float64
	}{
		{name: "successful select", operation: "select", table: "ratings_ok", wantErrs: 0},
		{name: "failed select", operation: "select", table: "ratings_fail", err: errors.New("boom"), wantErrs: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordDBQuery(tt.operation, tt.table, 5*time.Millisecond, tt.err)

			got := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table))
			if got != tt.wantErrs {
				t.Errorf("DBQueryErrors = %v, want %v", got, tt.wantErrs)
			}
			if n := testutil.CollectAndCount(DBQueryDuration); n == 0 {
				t.Error("DBQueryDuration has no series")
			}
		})
	}
}

func TestRecordDataLoad(t *testing.T) {
	RecordDataLoad(2*time.Second, 10000, 980000, 53424)

	if got := testutil.ToFloat64(CatalogBooks); got != 10000 {
		t.Errorf("CatalogBooks = %v, want 10000", got)
	}
	if got := testutil.ToFloat64(CatalogRatings); got != 980000 {
		t.Errorf("CatalogRatings = %v, want 980000", got)
	}
	if got := testutil.ToFloat64(CatalogUsers); got != 53424 {
		t.Errorf("CatalogUsers = %v, want 53424", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/test", "200"))
	RecordAPIRequest("GET", "/api/v1/test", "200", 10*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/test", "200"))

	if after-before != 1 {
		t.Errorf("APIRequestsTotal delta = %v, want 1", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+2 {
		t.Errorf("APIActiveRequests = %v, want %v", got, before+2)
	}
	TrackActiveRequest(false)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("APIActiveRequests = %v, want %v", got, before)
	}
}

func TestRecordTraining(t *testing.T) {
	successBefore := testutil.ToFloat64(TrainingRunsTotal.WithLabelValues("success"))
	failureBefore := testutil.ToFloat64(TrainingRunsTotal.WithLabelValues("failure"))
	skippedBefore := testutil.ToFloat64(TrainingRunsTotal.WithLabelValues("skipped"))

	RecordTraining(TrainingOutcome{
		Duration:     time.Minute,
		Version:      4,
		RMSE:         0.83,
		MAE:          0.65,
		PrecisionAtK: 0.7,
		RecallAtK:    0.4,
	})
	RecordTrainingFailure(time.Second)
	RecordTrainingSkipped()

	if got := testutil.ToFloat64(TrainingRunsTotal.WithLabelValues("success")) - successBefore; got != 1 {
		t.Errorf("success runs delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(TrainingRunsTotal.WithLabelValues("failure")) - failureBefore; got != 1 {
		t.Errorf("failure runs delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(TrainingRunsTotal.WithLabelValues("skipped")) - skippedBefore; got != 1 {
		t.Errorf("skipped runs delta = %v, want 1", got)
	}

	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{name: "version", value: testutil.ToFloat64(ModelVersion), want: 4},
		{name: "rmse", value: testutil.ToFloat64(ModelRMSE), want: 0.83},
		{name: "mae", value: testutil.ToFloat64(ModelMAE), want: 0.65},
		{name: "precision", value: testutil.ToFloat64(ModelPrecisionAtK), want: 0.7},
		{name: "recall", value: testutil.ToFloat64(ModelRecallAtK), want: 0.4},
	}
	for _, tt := range tests {
		if tt.value != tt.want {
			t.Errorf("%s gauge = %v, want %v", tt.name, tt.value, tt.want)
		}
	}
	if testutil.ToFloat64(TrainingLastSuccess) <= 0 {
		t.Error("TrainingLastSuccess not set")
	}
}

func TestRecordRecommendation(t *testing.T) {
	before := testutil.ToFloat64(RecommendationsTotal.WithLabelValues("content", "not_found"))
	RecordRecommendation("content", "not_found", time.Millisecond)
	if got := testutil.ToFloat64(RecommendationsTotal.WithLabelValues("content", "not_found")) - before; got != 1 {
		t.Errorf("RecommendationsTotal delta = %v, want 1", got)
	}
}

func TestRecordSearch(t *testing.T) {
	before := testutil.ToFloat64(SearchQueriesTotal.WithLabelValues("ok"))
	RecordSearch("ok")
	if got := testutil.ToFloat64(SearchQueriesTotal.WithLabelValues("ok")) - before; got != 1 {
		t.Errorf("SearchQueriesTotal delta = %v, want 1", got)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(ResponseCacheLookups.WithLabelValues("test", "hit"))
	misses := testutil.ToFloat64(ResponseCacheLookups.WithLabelValues("test", "miss"))

	RecordCacheLookup("test", true)
	RecordCacheLookup("test", false)
	RecordCacheLookup("test", false)

	if got := testutil.ToFloat64(ResponseCacheLookups.WithLabelValues("test", "hit")) - hits; got != 1 {
		t.Errorf("hit delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ResponseCacheLookups.WithLabelValues("test", "miss")) - misses; got != 2 {
		t.Errorf("miss delta = %v, want 2", got)
	}
}
