// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

// Package logging provides centralized zerolog-based logging for Goodbooks.
//
// It provides:
//
//   - a process-wide logger configured once from config.LoggingConfig
//   - JSON output for production and console output for development
//   - request and correlation IDs carried on context.Context
//   - an slog.Handler backed by zerolog, for libraries such as sutureslog
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Msg("Server starting")
//	logging.Error().Err(err).Msg("Training failed")
//
//	// Component loggers are passed into constructors
//	engine, err := recommend.NewEngine(cfg, backend, logging.WithComponent("recommend"))
//
//	// Inside HTTP handlers
//	logging.Ctx(r.Context()).Info().Int("user_id", id).Msg("Collaborative request")
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
//
// Use structured fields instead of string formatting:
//
//	logging.Info().Int("books", n).Msg("catalog loaded")  // Correct
//	logging.Info().Msgf("loaded %d books", n)             // Avoid
package logging
