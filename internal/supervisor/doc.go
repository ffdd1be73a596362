// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

/*
Package supervisor provides process supervision for Goodbooks using suture v4.

The tree organizes long-running services into three layers for failure
isolation:

	RootSupervisor ("goodbooks")
	├── DataSupervisor ("data-layer")
	│   └── CheckpointService (file-backed DuckDB only)
	├── RecommendSupervisor ("recommend-layer")
	│   └── RecommendService (startup and scheduled training)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crashed service is restarted by its layer supervisor with suture's
failure counter and backoff. The recommendation engine itself is not a
service; the last successfully trained model keeps serving while the
recommend layer restarts.

# Usage

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddRecommendService(services.NewRecommendService(engine, recCfg))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	errCh := tree.ServeBackground(ctx)

# Service Contract

Services implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Returning nil or an error causes a restart; returning suture.ErrDoNotRestart
stops the service permanently. Services must return promptly once ctx is
canceled, otherwise they appear in UnstoppedServiceReport.

Suture events are logged through sutureslog, bridged onto the zerolog
output by logging.NewSlogLogger.
*/
package supervisor
