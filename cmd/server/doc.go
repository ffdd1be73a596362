// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

/*
Package main is the entry point for the Goodbooks recommendation server.

The server loads the Goodbooks books and ratings CSVs into DuckDB, builds
the TF-IDF content index, restores or trains the latent factor model and
serves recommendations over HTTP.

# Application Architecture

	RootSupervisor ("goodbooks")
	├── DataSupervisor ("data-layer")
	│   └── DuckDB checkpoints (file-backed databases only)
	├── RecommendSupervisor ("recommend-layer")
	│   └── RecommendService (startup, scheduled and on-demand training)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Startup order:

 1. Configuration: Koanf v2 (defaults, config.yaml, .env, environment)
 2. Logging: zerolog
 3. Catalog: DuckDB load of books.csv and ratings.csv
 4. Engine: content index, then the persisted factor model if one exists
 5. Search: in-memory Bluge index over titles and authors
 6. HTTP API and the supervisor tree

When no persisted model can be restored the recommend service trains on
startup regardless of RECOMMEND_TRAIN_ON_STARTUP. Until that first run
finishes, collaborative requests answer 503 while content requests work.

# Signals

SIGINT and SIGTERM cancel the root context. The supervisor drains HTTP
connections within SERVER_SHUTDOWN_TIMEOUT and the database is
checkpointed and closed.

# Example

	export DATA_BOOKS_PATH=data/books.csv
	export DATA_RATINGS_PATH=data/ratings.csv
	export RECOMMEND_STORAGE_BACKEND=badger
	./goodbooks

	curl 'localhost:8080/api/v1/recommendations/content?q=The+Hunger+Games&limit=5'
	curl 'localhost:8080/api/v1/recommendations/users/314?limit=10'
*/
package main
