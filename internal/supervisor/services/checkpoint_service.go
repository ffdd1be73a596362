// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// defaultCheckpointInterval is used when a non-positive interval is given.
const defaultCheckpointInterval = 15 * time.Minute

// Checkpointer is satisfied by *database.DB.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// CheckpointService periodically flushes the DuckDB WAL into the database file.
type CheckpointService struct {
	db       Checkpointer
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewCheckpointService creates a checkpoint service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCheckpointService(db Checkpointer, interval time.Duration, logger zerolog.Logger) *CheckpointService {
	if interval <= 0 {
		interval = defaultCheckpointInterval
	}
	return &CheckpointService{
		db:       db,
		interval: interval,
		logger:   logger.With().Str("service", "checkpoint").Logger(),
		name:     "duckdb-checkpoint",
	}
}

// Serve implements suture.Service. A failed checkpoint is logged and retried
// on the next tick.
func (s *CheckpointService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.db.Checkpoint(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("checkpoint failed")
				continue
			}
			s.logger.Debug().Msg("checkpoint complete")
		}
	}
}

// String returns the service name for logging.
func (s *CheckpointService) String() string {
	return s.name
}
