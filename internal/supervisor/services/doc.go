// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

/*
Package services provides suture.Service wrappers for Goodbooks components.

Each wrapper translates a component lifecycle (ListenAndServe, a ticker
loop, an on-demand trigger) into suture's context-aware Serve pattern
and implements fmt.Stringer so suture can name it in log events.

# Available Services

HTTPServerService wraps *http.Server. It converts http.ErrServerClosed into
a clean return and shuts the server down with a bounded timeout when the
context is canceled.

RecommendService owns model training. It trains on startup when
configured, retrains on a fixed interval and accepts on-demand requests
through Trigger. Only one run is in flight or pending at a time; extra
requests are rejected with recommend.ErrTrainingInProgress.

CheckpointService periodically forces a DuckDB checkpoint for file-backed
catalogs.
*/
package services
