// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

/*
Package cache provides a bounded, thread-safe LRU cache with per-entry TTL.

The API layer uses it to memoize recommendation responses. Keys for
collaborative results embed the served model version, so a retrain makes
old entries unreachable and they age out through LRU eviction or TTL.

Usage:

	c := cache.NewLRU[[]recommend.ScoredItem](1000, 5*time.Minute)
	if recs, ok := c.Get(key); ok {
	    return recs
	}
	c.Add(key, recs)

All operations are O(1). Expired entries are dropped lazily on access.
*/
package cache
