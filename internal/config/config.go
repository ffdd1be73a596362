// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Data      DataConfig      `koanf:"data"`
	Database  DatabaseConfig  `koanf:"database"`
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// DataConfig locates the source tables.
type DataConfig struct {
	BooksPath   string `koanf:"books_path"`
	RatingsPath string `koanf:"ratings_path"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file, or ":memory:" for an in-process database.
	Path string `koanf:"path"`

	// MaxMemory is the DuckDB memory limit, e.g. "1GB".
	MaxMemory string `koanf:"max_memory"`

	// Threads is the number of DuckDB worker threads. 0 uses runtime.NumCPU().
	Threads int `koanf:"threads"`

	// PreserveInsertionOrder keeps scan order stable at some memory cost.
	PreserveInsertionOrder bool `koanf:"preserve_insertion_order"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging or production
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// RecommendConfig holds recommendation engine settings.
// cmd/server maps it onto recommend.Config.
type RecommendConfig struct {
	// Factor model
	Factors        int     `koanf:"factors"`
	Epochs         int     `koanf:"epochs"`
	LearningRate   float64 `koanf:"learning_rate"`
	Regularization float64 `koanf:"regularization"`
	Seed           int64   `koanf:"seed"`

	// Data preparation
	TestRatio       float64 `koanf:"test_ratio"`
	MinUserRatings  int     `koanf:"min_user_ratings"`
	MinInteractions int     `koanf:"min_interactions"`

	// Evaluation
	EvalFolds          int     `koanf:"eval_folds"`
	EvalK              int     `koanf:"eval_k"`
	RelevanceThreshold float64 `koanf:"relevance_threshold"`

	// Serving
	DefaultK          int     `koanf:"default_k"`
	MaxK              int     `koanf:"max_k"`
	DiversityEnabled  bool    `koanf:"diversity_enabled"`
	DiversityLambda   float64 `koanf:"diversity_lambda"`
	ColdStartFallback bool    `koanf:"cold_start_fallback"`

	// Response cache; a negative size disables it
	CacheSize int           `koanf:"cache_size"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`

	// Training schedule
	TrainOnStartup bool          `koanf:"train_on_startup"`
	TrainInterval  time.Duration `koanf:"train_interval"` // 0 disables periodic retraining
	TrainTimeout   time.Duration `koanf:"train_timeout"`

	Storage StorageConfig `koanf:"storage"`
}

// StorageConfig selects the model persistence backend.
type StorageConfig struct {
	// Backend is one of file, badger or none.
	Backend string `koanf:"backend"`

	// Path is the directory for the file or badger backend.
	Path string `koanf:"path"`

	// RetainVersions is the number of model versions kept after each save.
	RetainVersions int `koanf:"retain_versions"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load reads configuration from all sources.
// Sources are applied in order of precedence (lowest to highest):
//
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Environment variables (including those from a .env file)
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
