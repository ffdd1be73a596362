// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

/*
Package config provides centralized configuration management for Goodbooks.

# Configuration Sources

Configuration is loaded in layers, each overriding the previous one:

 1. Built-in defaults (defaultConfig)
 2. YAML config file (CONFIG_PATH, or config.yaml / config.yml in the working directory)
 3. Environment variables, after an optional .env file has been loaded

# Configuration Structure

  - DataConfig: paths to books.csv and ratings.csv
  - DatabaseConfig: DuckDB path and performance tuning
  - ServerConfig: HTTP listener settings
  - SecurityConfig: CORS origins and rate limiting
  - LoggingConfig: log level, format and caller info
  - RecommendConfig: factor model, evaluation, diversity, storage and training schedule

# Environment Variables

Data:
  - BOOKS_CSV: path to books.csv (default: data/books.csv)
  - RATINGS_CSV: path to ratings.csv (default: data/ratings.csv)

Database:
  - DUCKDB_PATH: database file, or :memory: (default: :memory:)
  - DUCKDB_MAX_MEMORY: memory limit (default: 1GB)
  - DUCKDB_THREADS: worker threads, 0 = runtime.NumCPU()

Server:
  - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT, SHUTDOWN_TIMEOUT, ENVIRONMENT

Security:
  - CORS_ORIGINS: comma-separated origins (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Recommendation:
  - RECOMMEND_FACTORS, RECOMMEND_EPOCHS, RECOMMEND_LEARNING_RATE, RECOMMEND_REGULARIZATION
  - RECOMMEND_SEED, RECOMMEND_TEST_RATIO, RECOMMEND_MIN_USER_RATINGS
  - RECOMMEND_EVAL_FOLDS, RECOMMEND_EVAL_K, RECOMMEND_RELEVANCE_THRESHOLD
  - RECOMMEND_DIVERSITY_ENABLED, RECOMMEND_DIVERSITY_LAMBDA, RECOMMEND_COLD_START_FALLBACK
  - RECOMMEND_TRAIN_ON_STARTUP, RECOMMEND_TRAIN_INTERVAL, RECOMMEND_TRAIN_TIMEOUT
  - RECOMMEND_STORAGE_BACKEND (file, badger, none), RECOMMEND_STORAGE_PATH, RECOMMEND_RETAIN_VERSIONS
  - RECOMMEND_CACHE_SIZE (negative disables the response cache), RECOMMEND_CACHE_TTL

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	db, err := database.New(&cfg.Database)
*/
package config
