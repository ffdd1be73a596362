// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

// Package database provides the DuckDB-backed data layer for Goodbooks.
//
// # Overview
//
// The package ingests the two source tables, books.csv and ratings.csv, into
// DuckDB and serves the queries the recommendation engine and the API need.
// DB satisfies recommend.DataProvider.
//
// # Architecture
//
//   - database.go: connection lifecycle, pool configuration and schema
//   - loader.go: CSV ingest with read_csv_auto, deduplication and filtering
//   - queries.go: catalog, interaction and exploration queries
//   - errors.go: close helpers
//
// # Data Preparation
//
// LoadCSV applies the cleaning rules of the recommender pipeline:
//
//   - books are deduplicated by book_id, keeping the first row in file order
//   - identical rating rows are collapsed with SELECT DISTINCT
//   - ratings of 0 or below are dropped
//
// Loading replaces both tables, so it is safe to call again with new files.
//
// # Active Users
//
// Interactions(ctx, minUserRatings) returns only ratings from users with
// strictly more than minUserRatings ratings:
//
//	interactions, err := db.Interactions(ctx, 10)
//
// # Usage Example
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.LoadCSV(ctx, cfg.Data.BooksPath, cfg.Data.RatingsPath); err != nil {
//	    return err
//	}
//	engine.SetDataProvider(db)
//
// # Thread Safety
//
// DB is safe for concurrent use. Queries go through the database/sql pool;
// DuckDB shares one database instance across pool connections.
package database
