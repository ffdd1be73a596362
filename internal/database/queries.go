// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/goodbooks/internal/metrics"
	"github.com/tomtom215/goodbooks/internal/recommend"
)

// Stats summarizes the loaded tables.
type Stats struct {
	Books      int64   `json:"books"`
	Ratings    int64   `json:"ratings"`
	Users      int64   `json:"users"`
	MeanRating float64 `json:"mean_rating"`
}

// BookCount is a book with its rating count and mean rating.
type BookCount struct {
	BookID     int     `json:"book_id"`
	Title      string  `json:"title"`
	Authors    string  `json:"authors"`
	Ratings    int64   `json:"ratings"`
	MeanRating float64 `json:"mean_rating"`
}

// RatingBucket is the number of ratings with a given value.
type RatingBucket struct {
	Rating float64 `json:"rating"`
	Count  int64   `json:"count"`
}

// Items returns the book catalog ordered by id.
func (db *DB) Items(ctx context.Context) ([]recommend.Item, error) {
	if !db.Loaded() {
		return nil, ErrNotLoaded
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `SELECT book_id, title, authors FROM books ORDER BY book_id`)
	metrics.RecordDBQuery("select", "books", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var items []recommend.Item
	for rows.Next() {
		var it recommend.Item
		if err := rows.Scan(&it.ID, &it.Title, &it.Authors); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return items, nil
}

// Interactions returns ratings from users with more than minUserRatings
// ratings, ordered by user then item.
func (db *DB) Interactions(ctx context.Context, minUserRatings int) ([]recommend.Interaction, error) {
	if !db.Loaded() {
		return nil, ErrNotLoaded
	}
	if minUserRatings < 0 {
		minUserRatings = 0
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `
		SELECT r.user_id, r.book_id, r.rating
		FROM ratings r
		JOIN (
			SELECT user_id
			FROM ratings
			GROUP BY user_id
			HAVING COUNT(*) > ?
		) active ON r.user_id = active.user_id
		ORDER BY r.user_id, r.book_id, r.rating`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, minUserRatings)
	metrics.RecordDBQuery("select", "ratings", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var out []recommend.Interaction
	for rows.Next() {
		var in recommend.Interaction
		if err := rows.Scan(&in.UserID, &in.ItemID, &in.Rating); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return out, nil
}

// Stats returns table counts and the global mean rating.
func (db *DB) Stats(ctx context.Context) (Stats, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `
		SELECT
			(SELECT COUNT(*) FROM books),
			COUNT(*),
			COUNT(DISTINCT user_id),
			COALESCE(AVG(rating), 0)
		FROM ratings`

	var s Stats
	start := time.Now()
	err := db.conn.QueryRowContext(ctx, query).Scan(&s.Books, &s.Ratings, &s.Users, &s.MeanRating)
	metrics.RecordDBQuery("stats", "ratings", time.Since(start), err)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	return s, nil
}

// TopRated returns the n books with the most ratings. Ties break by book id.
// Rated ids missing from the catalog are returned with empty metadata.
func (db *DB) TopRated(ctx context.Context, n int) ([]BookCount, error) {
	if !db.Loaded() {
		return nil, ErrNotLoaded
	}
	if n <= 0 {
		return []BookCount{}, nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `
		SELECT r.book_id,
			COALESCE(b.title, ''),
			COALESCE(b.authors, ''),
			COUNT(*) AS cnt,
			AVG(r.rating)
		FROM ratings r
		LEFT JOIN books b ON b.book_id = r.book_id
		GROUP BY r.book_id, b.title, b.authors
		ORDER BY cnt DESC, r.book_id
		LIMIT ?`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, n)
	metrics.RecordDBQuery("select", "ratings", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query top rated: %w", err)
	}
	defer closeWithLog(rows, "rows")

	out := make([]BookCount, 0, n)
	for rows.Next() {
		var bc BookCount
		if err := rows.Scan(&bc.BookID, &bc.Title, &bc.Authors, &bc.Ratings, &bc.MeanRating); err != nil {
			return nil, fmt.Errorf("scan top rated: %w", err)
		}
		out = append(out, bc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top rated: %w", err)
	}
	return out, nil
}

// RatingDistribution returns the count of ratings per value, ascending by value.
func (db *DB) RatingDistribution(ctx context.Context) ([]RatingBucket, error) {
	if !db.Loaded() {
		return nil, ErrNotLoaded
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT rating, COUNT(*) FROM ratings GROUP BY rating ORDER BY rating`)
	metrics.RecordDBQuery("select", "ratings", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query rating distribution: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var out []RatingBucket
	for rows.Next() {
		var b RatingBucket
		if err := rows.Scan(&b.Rating, &b.Count); err != nil {
			return nil, fmt.Errorf("scan rating bucket: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating distribution: %w", err)
	}
	return out, nil
}
