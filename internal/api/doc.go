// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

/*
Package api provides the Goodbooks HTTP API on the chi router.

Routes:

	GET  /api/v1/health                       dependency status
	GET  /api/v1/health/live                  liveness probe
	GET  /api/v1/health/ready                 readiness probe
	GET  /api/v1/recommendations/content      books similar to ?q=<title|id>
	GET  /api/v1/recommendations/users/{id}   top-N predictions for a user
	GET  /api/v1/books/search                 fuzzy title and author search
	GET  /api/v1/books/top                    most-rated books
	GET  /api/v1/stats                        catalog counts and rating histogram
	GET  /api/v1/models/status                training status and counters
	POST /api/v1/models/train                 start a retrain (202, or 409 if busy)
	GET  /metrics                             Prometheus exposition

Every response uses the models.APIResponse envelope encoded with
goccy/go-json. Query parameters are bound into request structs and
checked with the validation package before the engine is called.

Handlers depend on small interfaces (Recommender, Catalog, Searcher,
Trainer) so tests can drive them with fakes through httptest.
*/
package api
