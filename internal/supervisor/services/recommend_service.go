// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/goodbooks/internal/metrics"
	"github.com/tomtom215/goodbooks/internal/recommend"
)

// ErrServiceNotRunning is returned by Trigger before Serve has started.
var ErrServiceNotRunning = errors.New("recommend service not running")

// defaultTrainTimeout bounds a single training cycle.
const defaultTrainTimeout = 30 * time.Minute

// RecommendEngine is the part of *recommend.Engine the service drives.
type RecommendEngine interface {
	Train(ctx context.Context) (recommend.EvaluationResult, error)
	GetStatus() recommend.TrainingStatus
}

// RecommendServiceConfig holds configuration for the recommendation service.
type RecommendServiceConfig struct {
	// TrainOnStartup triggers training when the service starts.
	TrainOnStartup bool

	// TrainInterval is how often to retrain models. 0 disables scheduled retraining.
	TrainInterval time.Duration

	// TrainTimeout bounds one training cycle. Default: 30m
	TrainTimeout time.Duration
}

// RecommendService wraps the recommendation engine for Suture supervision.
// It manages startup, scheduled and on-demand training.
type RecommendService struct {
	engine    RecommendEngine
	config    RecommendServiceConfig
	logger    zerolog.Logger
	name      string
	triggerCh chan struct{}
	serving   atomic.Bool
	running   atomic.Bool
}

// NewRecommendService creates a new recommendation service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRecommendService(engine RecommendEngine, cfg RecommendServiceConfig, logger zerolog.Logger) *RecommendService {
	if cfg.TrainTimeout <= 0 {
		cfg.TrainTimeout = defaultTrainTimeout
	}
	return &RecommendService{
		engine:    engine,
		config:    cfg,
		logger:    logger.With().Str("service", "recommend").Logger(),
		name:      "recommend-service",
		triggerCh: make(chan struct{}, 1),
	}
}

// Trigger requests a training run. It returns immediately; the run happens
// on the service goroutine.
func (s *RecommendService) Trigger() error {
	if !s.serving.Load() {
		return ErrServiceNotRunning
	}
	if s.running.Load() {
		return recommend.ErrTrainingInProgress
	}
	select {
	case s.triggerCh <- struct{}{}:
		return nil
	default:
		return recommend.ErrTrainingInProgress
	}
}

// IsTraining reports whether a run started by this service is in flight.
func (s *RecommendService) IsTraining() bool {
	return s.running.Load()
}

// Serve implements the suture.Service interface.
func (s *RecommendService) Serve(ctx context.Context) error {
	s.serving.Store(true)
	defer s.serving.Store(false)

	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("train_interval", s.config.TrainInterval).
		Msg("recommendation service starting")

	if s.config.TrainOnStartup {
		s.logger.Info().Msg("training models on startup")
		if err := s.train(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("initial training failed")
		}
	}

	// A nil channel never fires, which disables the schedule.
	var tick <-chan time.Time
	if s.config.TrainInterval > 0 {
		ticker := time.NewTicker(s.config.TrainInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("recommendation service shutting down")
			return ctx.Err()

		case <-tick:
			s.logger.Debug().Msg("scheduled training triggered")
			if err := s.train(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled training failed")
			}

		case <-s.triggerCh:
			s.logger.Info().Msg("on-demand training triggered")
			if err := s.train(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("on-demand training failed")
			}
		}
	}
}

// train performs one training cycle and records its outcome.
func (s *RecommendService) train(ctx context.Context) error {
	s.running.Store(true)
	defer s.running.Store(false)

	trainCtx, cancel := context.WithTimeout(ctx, s.config.TrainTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.engine.Train(trainCtx)
	duration := time.Since(start)

	switch {
	case errors.Is(err, recommend.ErrTrainingInProgress):
		metrics.RecordTrainingSkipped()
		return err
	case err != nil:
		metrics.RecordTrainingFailure(duration)
		return err
	}

	status := s.engine.GetStatus()
	metrics.RecordTraining(metrics.TrainingOutcome{
		Duration:     duration,
		Version:      status.ModelVersion,
		RMSE:         result.RMSE,
		MAE:          result.MAE,
		PrecisionAtK: result.PrecisionAtK,
		RecallAtK:    result.RecallAtK,
	})

	s.logger.Info().
		Dur("duration", duration).
		Int("version", status.ModelVersion).
		Float64("rmse", result.RMSE).
		Float64("mae", result.MAE).
		Msg("model training complete")
	return nil
}

// String returns the service name for logging.
func (s *RecommendService) String() string {
	return s.name
}
