// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

// Package recommend implements a book recommendation engine over the
// Goodbooks catalog and rating tables.
//
// # Architecture
//
// The engine serves two independent recommendation paths:
//
//   - Content-Based: TF-IDF over title and authors, cosine similarity between books
//   - Collaborative: biased matrix factorization over explicit 1-5 star ratings
//
// Optional post-processing:
//
//   - Diversity Reranking: MMR over content candidates (internal/recommend/reranking)
//   - Cold-Start Fallback: popularity ranking for users the model never saw
//
// # Design Principles
//
//   - Deterministic: every random choice is drawn from a seeded source
//   - Immutable Models: a trained model is never mutated; retraining builds a new one
//   - Atomic Publication: new models are swapped in only after evaluation succeeds
//   - Observable: structured logging and request counters
//   - Durable: trained factor models can be persisted and restored
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	engine, err := recommend.NewEngine(cfg, algorithms.NewBackend(), logger)
//	if err != nil {
//	    return err
//	}
//	engine.SetDataProvider(db)
//
//	if _, err := engine.Train(ctx); err != nil {
//	    return err
//	}
//
//	similar, err := engine.ContentRecommend(ctx, "The Hunger Games", 5)
//	forUser, err := engine.CollaborativeRecommend(ctx, 314, 10)
//
// # Thread Safety
//
// The engine is safe for concurrent use. Queries read the currently
// published models through atomic pointers and never block on training.
// Training runs are serialized; a second concurrent run fails fast with
// ErrTrainingInProgress.
//
// # Errors
//
// Callers distinguish failures with errors.Is against the sentinel errors
// in this package: ErrItemNotFound, ErrUnknownUser, ErrNotTrained,
// ErrEmptyCorpus, ErrInsufficientData and ErrTrainingInProgress.
package recommend
