// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/goodbooks/config.yaml",
	"/etc/goodbooks/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvPathEnvVar overrides the .env file location.
const DotEnvPathEnvVar = "DOTENV_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			BooksPath:   "data/books.csv",
			RatingsPath: "data/ratings.csv",
		},
		Database: DatabaseConfig{
			Path:                   ":memory:",
			MaxMemory:              "1GB",
			Threads:                0, // 0 = use runtime.NumCPU()
			PreserveInsertionOrder: true,
		},
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Recommend: RecommendConfig{
			Factors:            100,
			Epochs:             20,
			LearningRate:       0.005,
			Regularization:     0.02,
			Seed:               42,
			TestRatio:          0.2,
			MinUserRatings:     10,
			MinInteractions:    10,
			EvalFolds:          3,
			EvalK:              5,
			RelevanceThreshold: 3.5,
			DefaultK:           5,
			MaxK:               100,
			DiversityEnabled:   false,
			DiversityLambda:    0.7,
			ColdStartFallback:  false,
			CacheSize:          1000,
			CacheTTL:           5 * time.Minute,
			TrainOnStartup:     true,
			TrainInterval:      0,
			TrainTimeout:       30 * time.Minute,
			Storage: StorageConfig{
				Backend:        "file",
				Path:           "data/models",
				RetainVersions: 3,
			},
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources.
func LoadWithKoanf() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	// Layer 1: struct defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads variables from a .env file into the process environment.
// Variables already set take precedence. A missing file is not an error.
func loadDotEnv() error {
	path := os.Getenv(DotEnvPathEnvVar)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// findConfigFile returns the first config file found, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths lists the keys that accept comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated string values into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf keys.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"books_csv":   "data.books_path",
	"ratings_csv": "data.ratings_path",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"http_port":        "server.port",
	"http_host":        "server.host",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"recommend_factors":             "recommend.factors",
	"recommend_epochs":              "recommend.epochs",
	"recommend_learning_rate":       "recommend.learning_rate",
	"recommend_regularization":      "recommend.regularization",
	"recommend_seed":                "recommend.seed",
	"recommend_test_ratio":          "recommend.test_ratio",
	"recommend_min_user_ratings":    "recommend.min_user_ratings",
	"recommend_min_interactions":    "recommend.min_interactions",
	"recommend_eval_folds":          "recommend.eval_folds",
	"recommend_eval_k":              "recommend.eval_k",
	"recommend_relevance_threshold": "recommend.relevance_threshold",
	"recommend_default_k":           "recommend.default_k",
	"recommend_max_k":               "recommend.max_k",
	"recommend_diversity_enabled":   "recommend.diversity_enabled",
	"recommend_diversity_lambda":    "recommend.diversity_lambda",
	"recommend_cold_start_fallback": "recommend.cold_start_fallback",
	"recommend_cache_size":          "recommend.cache_size",
	"recommend_cache_ttl":           "recommend.cache_ttl",
	"recommend_train_on_startup":    "recommend.train_on_startup",
	"recommend_train_interval":      "recommend.train_interval",
	"recommend_train_timeout":       "recommend.train_timeout",
	"recommend_storage_backend":     "recommend.storage.backend",
	"recommend_storage_path":        "recommend.storage.path",
	"recommend_retain_versions":     "recommend.storage.retain_versions",
}

// envTransformFunc maps an environment variable to its koanf key.
// Returning "" tells koanf to skip the variable.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
