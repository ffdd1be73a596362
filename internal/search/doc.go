// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

// Package search provides fuzzy title and author search over the book catalog.
//
// The index is an in-memory Bluge index with one document per book. Titles
// and authors are analyzed with the standard analyzer; queries match either
// field with a small edit-distance tolerance, and title matches score higher.
//
// Search is a discovery aid for finding the exact title to pass to a content
// recommendation. It does not change how titles are resolved there.
//
// Usage:
//
//	idx := search.NewIndex()
//	defer idx.Close()
//	if err := idx.Build(items); err != nil {
//	    return err
//	}
//	hits, err := idx.Search(ctx, "hunger gmes", 10)
package search
