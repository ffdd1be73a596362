// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/blugelabs/bluge"
	blugesearch "github.com/blugelabs/bluge/search"

	"github.com/tomtom215/goodbooks/internal/recommend"
)

// Field names in the index.
const (
	fieldTitle   = "title"
	fieldAuthors = "authors"
	fieldID      = "_id"
)

const (
	// DefaultLimit is used when Search is called with a non-positive limit.
	DefaultLimit = 10

	// MaxLimit caps the number of hits returned.
	MaxLimit = 100

	titleBoost = 2.0
	fuzziness  = 1
)

var (
	// ErrNotBuilt is returned by Search before Build has succeeded.
	ErrNotBuilt = errors.New("search index not built")

	// ErrEmptyQuery is returned for blank queries.
	ErrEmptyQuery = errors.New("search query is empty")
)

// Hit is a single search result.
type Hit struct {
	ItemID  int     `json:"item_id"`
	Title   string  `json:"title"`
	Authors string  `json:"authors"`
	Score   float64 `json:"score"`
}

// Index is an in-memory full-text index over book titles and authors.
// Build swaps in a new snapshot; concurrent searches keep using the previous
// one until it is replaced. It is safe for concurrent use.
type Index struct {
	mu     sync.RWMutex
	writer *bluge.Writer
	reader *bluge.Reader
	size   int
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{}
}

// Build replaces the indexed catalog with items.
func (idx *Index) Build(items []recommend.Item) error {
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return fmt.Errorf("open search writer: %w", err)
	}

	batch := bluge.NewBatch()
	for _, it := range items {
		doc := bluge.NewDocument(strconv.Itoa(it.ID)).
			AddField(bluge.NewTextField(fieldTitle, it.Title).StoreValue()).
			AddField(bluge.NewTextField(fieldAuthors, it.Authors).StoreValue())
		batch.Update(doc.ID(), doc)
	}
	if err := writer.Batch(batch); err != nil {
		_ = writer.Close()
		return fmt.Errorf("index books: %w", err)
	}

	reader, err := writer.Reader()
	if err != nil {
		_ = writer.Close()
		return fmt.Errorf("open search reader: %w", err)
	}

	idx.mu.Lock()
	oldWriter, oldReader := idx.writer, idx.reader
	idx.writer, idx.reader, idx.size = writer, reader, len(items)
	idx.mu.Unlock()

	closeSnapshot(oldWriter, oldReader)
	return nil
}

// Len returns the number of indexed books.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.size
}

// Search returns up to limit books whose title or authors match q, best first.
func (idx *Index) Search(ctx context.Context, q string, limit int) ([]Hit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.reader == nil {
		return nil, ErrNotBuilt
	}

	query := bluge.NewBooleanQuery().
		AddShould(bluge.NewMatchQuery(q).SetField(fieldTitle).SetFuzziness(fuzziness).SetBoost(titleBoost)).
		AddShould(bluge.NewMatchQuery(q).SetField(fieldAuthors).SetFuzziness(fuzziness)).
		SetMinShould(1)

	iter, err := idx.reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]Hit, 0, limit)
	match, err := iter.Next()
	for err == nil && match != nil {
		hit, herr := toHit(match)
		if herr != nil {
			return nil, herr
		}
		hits = append(hits, hit)
		match, err = iter.Next()
	}
	if err != nil {
		return nil, fmt.Errorf("iterate search results: %w", err)
	}
	return hits, nil
}

func toHit(match *blugesearch.DocumentMatch) (Hit, error) {
	hit := Hit{Score: match.Score}
	var idErr error
	err := match.VisitStoredFields(func(field string, value []byte) bool {
		switch field {
		case fieldID:
			hit.ItemID, idErr = strconv.Atoi(string(value))
		case fieldTitle:
			hit.Title = string(value)
		case fieldAuthors:
			hit.Authors = string(value)
		}
		return true
	})
	if err != nil {
		return Hit{}, fmt.Errorf("load stored fields: %w", err)
	}
	if idErr != nil {
		return Hit{}, fmt.Errorf("parse document id: %w", idErr)
	}
	return hit, nil
}

// Close releases the current snapshot.
func (idx *Index) Close() error {
	idx.mu.Lock()
	writer, reader := idx.writer, idx.reader
	idx.writer, idx.reader, idx.size = nil, nil, 0
	idx.mu.Unlock()

	return closeSnapshot(writer, reader)
}

func closeSnapshot(writer *bluge.Writer, reader *bluge.Reader) error {
	var errs []error
	if reader != nil {
		errs = append(errs, reader.Close())
	}
	if writer != nil {
		errs = append(errs, writer.Close())
	}
	return errors.Join(errs...)
}
