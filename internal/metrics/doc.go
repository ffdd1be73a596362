// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and
are exposed at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Requests in flight (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: endpoint

Database Metrics:
  - duckdb_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - duckdb_query_errors_total: Failed queries (counter)
    Labels: operation, table
  - data_load_duration_seconds: CSV ingest time (histogram)
  - catalog_books, catalog_ratings, catalog_users: Loaded table sizes (gauges)

Training Metrics:
  - recommend_training_runs_total: Training runs (counter)
    Labels: result (success, failure, skipped)
  - recommend_training_duration_seconds: Training time (histogram)
  - recommend_model_version: Version of the served factor model (gauge)
  - recommend_model_rmse, recommend_model_mae: Hold-out accuracy (gauges)
  - recommend_model_precision_at_k, recommend_model_recall_at_k: Hold-out ranking quality (gauges)
  - recommend_training_last_success_timestamp: Unix time of the last successful run (gauge)

Query Metrics:
  - recommend_requests_total: Recommendation requests (counter)
    Labels: kind (content, collaborative), result
  - recommend_request_duration_seconds: Recommendation latency (histogram)
    Labels: kind
  - search_queries_total: Title search queries (counter)
    Labels: result

# Usage

	start := time.Now()
	recs, err := engine.ContentRecommend(ctx, q, limit)
	metrics.RecordRecommendation("content", resultLabel(err), time.Since(start))
*/
package metrics
