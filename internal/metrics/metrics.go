// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	DataLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "data_load_duration_seconds",
			Help:    "Duration of CSV ingest into DuckDB in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	CatalogBooks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_books",
			Help: "Number of books in the loaded catalog",
		},
	)

	CatalogRatings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_ratings",
			Help: "Number of ratings in the loaded catalog",
		},
	)

	CatalogUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_users",
			Help: "Number of distinct users in the loaded ratings",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Training Metrics
	TrainingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_training_runs_total",
			Help: "Total number of factor model training runs",
		},
		[]string{"result"}, // success, failure, skipped
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_training_duration_seconds",
			Help:    "Duration of factor model training runs in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)

	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_model_version",
			Help: "Version of the factor model currently served",
		},
	)

	ModelRMSE = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_model_rmse",
			Help: "Hold-out RMSE of the served factor model",
		},
	)

	ModelMAE = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_model_mae",
			Help: "Hold-out MAE of the served factor model",
		},
	)

	ModelPrecisionAtK = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_model_precision_at_k",
			Help: "Hold-out Precision@K of the served factor model",
		},
	)

	ModelRecallAtK = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_model_recall_at_k",
			Help: "Hold-out Recall@K of the served factor model",
		},
	)

	TrainingLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_training_last_success_timestamp",
			Help: "Unix timestamp of the last successful training run",
		},
	)

	// Query Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"kind", "result"},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_request_duration_seconds",
			Help:    "Recommendation request latency in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"kind"},
	)

	SearchQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_queries_total",
			Help: "Total number of title search queries",
		},
		[]string{"result"},
	)

	ResponseCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_response_cache_lookups_total",
			Help: "Recommendation response cache lookups",
		},
		[]string{"kind", "result"}, // hit, miss
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordDataLoad records a completed CSV ingest and the resulting table sizes
func RecordDataLoad(duration time.Duration, books, ratings, users int64) {
	DataLoadDuration.Observe(duration.Seconds())
	CatalogBooks.Set(float64(books))
	CatalogRatings.Set(float64(ratings))
	CatalogUsers.Set(float64(users))
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// TrainingOutcome summarizes a training run for RecordTraining.
type TrainingOutcome struct {
	Duration     time.Duration
	Version      int
	RMSE         float64
	MAE          float64
	PrecisionAtK float64
	RecallAtK    float64
}

// RecordTraining records a successful training run and the served model's accuracy
func RecordTraining(o TrainingOutcome) {
	TrainingRunsTotal.WithLabelValues("success").Inc()
	TrainingDuration.Observe(o.Duration.Seconds())
	ModelVersion.Set(float64(o.Version))
	ModelRMSE.Set(o.RMSE)
	ModelMAE.Set(o.MAE)
	ModelPrecisionAtK.Set(o.PrecisionAtK)
	ModelRecallAtK.Set(o.RecallAtK)
	TrainingLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordTrainingFailure records a failed training run
func RecordTrainingFailure(duration time.Duration) {
	TrainingRunsTotal.WithLabelValues("failure").Inc()
	TrainingDuration.Observe(duration.Seconds())
}

// RecordTrainingSkipped records a run that did not start because another was active
func RecordTrainingSkipped() {
	TrainingRunsTotal.WithLabelValues("skipped").Inc()
}

// RecordRecommendation records a recommendation request
func RecordRecommendation(kind, result string, duration time.Duration) {
	RecommendationsTotal.WithLabelValues(kind, result).Inc()
	RecommendationDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordSearch records a title search query
func RecordSearch(result string) {
	SearchQueriesTotal.WithLabelValues(result).Inc()
}

// RecordCacheLookup counts a response cache hit or miss for kind
func RecordCacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	ResponseCacheLookups.WithLabelValues(kind, result).Inc()
}
