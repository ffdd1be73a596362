// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package database

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tomtom215/goodbooks/internal/logging"
	"github.com/tomtom215/goodbooks/internal/metrics"
)

// loadTimeout bounds a full CSV ingest when the caller sets no deadline.
const loadTimeout = 10 * time.Minute

// LoadCSV replaces the books and ratings tables with the contents of the
// given CSV files. books.csv must carry book_id, title and authors columns;
// ratings.csv must carry user_id, book_id and rating. The whole load runs in
// one transaction, so a failure leaves the previous tables in place.
func (db *DB) LoadCSV(ctx context.Context, booksPath, ratingsPath string) error {
	for _, p := range []string{booksPath, ratingsPath} {
		if p == "" {
			return fmt.Errorf("csv path is required")
		}
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, loadTimeout)
		defer cancel()
	}

	start := time.Now()
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback() // Explicitly ignore error - rollback after failure is best-effort
		}
	}()

	stmts := []struct {
		table string
		query string
	}{
		{
			table: "books_raw",
			query: fmt.Sprintf(`CREATE OR REPLACE TABLE books_raw AS
				SELECT * FROM read_csv_auto(%s, header = true)`, sqlLiteral(booksPath)),
		},
		{
			table: "books",
			query: `CREATE OR REPLACE TABLE books AS
				SELECT DISTINCT ON (book_id)
					CAST(book_id AS BIGINT) AS book_id,
					COALESCE(CAST(title AS VARCHAR), '') AS title,
					COALESCE(CAST(authors AS VARCHAR), '') AS authors
				FROM books_raw
				WHERE book_id IS NOT NULL
				ORDER BY book_id, rowid`,
		},
		{
			table: "books_raw",
			query: `DROP TABLE books_raw`,
		},
		{
			table: "ratings",
			query: fmt.Sprintf(`CREATE OR REPLACE TABLE ratings AS
				SELECT DISTINCT
					CAST(user_id AS BIGINT) AS user_id,
					CAST(book_id AS BIGINT) AS book_id,
					CAST(rating AS DOUBLE) AS rating
				FROM read_csv_auto(%s, header = true)
				WHERE user_id IS NOT NULL
				  AND book_id IS NOT NULL
				  AND rating > 0`, sqlLiteral(ratingsPath)),
		},
	}

	for _, s := range stmts {
		stmtStart := time.Now()
		_, err := tx.ExecContext(ctx, s.query)
		metrics.RecordDBQuery("load", s.table, time.Since(stmtStart), err)
		if err != nil {
			return fmt.Errorf("load %s: %w", s.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load transaction: %w", err)
	}
	committed = true
	db.loaded.Store(true)

	stats, err := db.Stats(ctx)
	if err != nil {
		return fmt.Errorf("count loaded tables: %w", err)
	}
	elapsed := time.Since(start)
	metrics.RecordDataLoad(elapsed, stats.Books, stats.Ratings, stats.Users)

	logging.Info().
		Int64("books", stats.Books).
		Int64("ratings", stats.Ratings).
		Int64("users", stats.Users).
		Int64("duration_ms", elapsed.Milliseconds()).
		Msg("Loaded catalog from CSV")
	return nil
}

// sqlLiteral quotes s as a SQL string literal. Table functions such as
// read_csv_auto take their path at bind time, so it cannot be a parameter.
func sqlLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
