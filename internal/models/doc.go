// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

/*
Package models defines the HTTP wire types for the Goodbooks API.

Every endpoint answers with an APIResponse envelope:

	{
	  "status": "success",
	  "data": {...},
	  "metadata": {"timestamp": "2026-01-01T12:00:00Z", "query_time_ms": 4}
	}

Failed requests set status to "error" and carry an APIError with a
machine-readable code. Recommendation payloads wrap engine results from
the recommend package with the query they answer.
*/
package models
