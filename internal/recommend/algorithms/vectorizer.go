// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package algorithms

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"gonum.org/v1/gonum/floats"

	"github.com/tomtom215/goodbooks/internal/recommend"
)

// Vocabulary is the global term dictionary built over the whole corpus.
// Terms are sorted lexicographically so indices are stable for a given corpus.
type Vocabulary struct {
	terms []string
	index map[string]int
	idf   []float64
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int {
	return len(v.terms)
}

// Term returns the term at index i.
func (v *Vocabulary) Term(i int) string {
	return v.terms[i]
}

// Index returns the index of term.
func (v *Vocabulary) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// IDF returns the smoothed inverse document frequency of the term at index i.
func (v *Vocabulary) IDF(i int) float64 {
	return v.idf[i]
}

// TermVector is a sparse L2-normalized TF-IDF vector.
// Indices are ascending; Weights[k] is the weight of term Indices[k].
type TermVector struct {
	Indices []int
	Weights []float64
}

// Len returns the number of non-zero terms.
func (tv TermVector) Len() int {
	return len(tv.Indices)
}

// Weight returns the weight of a term index, or 0 when absent.
func (tv TermVector) Weight(term int) float64 {
	k := sort.SearchInts(tv.Indices, term)
	if k < len(tv.Indices) && tv.Indices[k] == term {
		return tv.Weights[k]
	}
	return 0
}

// Norm returns the Euclidean norm of the vector.
func (tv TermVector) Norm() float64 {
	if len(tv.Weights) == 0 {
		return 0
	}
	return floats.Norm(tv.Weights, 2)
}

// Dot returns the inner product of two sparse vectors.
func (tv TermVector) Dot(other TermVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(tv.Indices) && j < len(other.Indices) {
		switch {
		case tv.Indices[i] == other.Indices[j]:
			sum += tv.Weights[i] * other.Weights[j]
			i++
			j++
		case tv.Indices[i] < other.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Tokenize lowercases text and splits it into runs of letters, digits and
// underscores, keeping tokens of at least two runes.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})

	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// BuildVectors fits a TF-IDF vocabulary over the combined text of items and
// returns one vector per item in input order.
//
// Weighting: tf is the raw term count, idf = ln((1+n)/(1+df)) + 1, and each
// vector is L2-normalized. Items whose text contains only stopwords get an
// empty vector. ErrEmptyCorpus is returned when no term survives.
//
//nolint:gocritic // rangeValCopy: Item is small
func BuildVectors(items []recommend.Item, stopwords StopwordSet) (*Vocabulary, []TermVector, error) {
	counts := make([]map[string]int, len(items))
	docFreq := make(map[string]int)

	for i, item := range items {
		tf := make(map[string]int)
		for _, tok := range Tokenize(item.CombinedText()) {
			if stopwords.Contains(tok) {
				continue
			}
			tf[tok]++
		}
		for term := range tf {
			docFreq[term]++
		}
		counts[i] = tf
	}

	if len(docFreq) == 0 {
		return nil, nil, fmt.Errorf("build vocabulary over %d items: %w", len(items), recommend.ErrEmptyCorpus)
	}

	vocab := &Vocabulary{
		terms: make([]string, 0, len(docFreq)),
		index: make(map[string]int, len(docFreq)),
	}
	for term := range docFreq {
		vocab.terms = append(vocab.terms, term)
	}
	sort.Strings(vocab.terms)

	n := float64(len(items))
	vocab.idf = make([]float64, len(vocab.terms))
	for i, term := range vocab.terms {
		vocab.index[term] = i
		vocab.idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	vectors := make([]TermVector, len(items))
	for i, tf := range counts {
		vectors[i] = weightVector(vocab, tf)
	}

	return vocab, vectors, nil
}

// weightVector converts raw counts into a normalized sparse vector.
func weightVector(vocab *Vocabulary, tf map[string]int) TermVector {
	if len(tf) == 0 {
		return TermVector{}
	}

	tv := TermVector{
		Indices: make([]int, 0, len(tf)),
		Weights: make([]float64, 0, len(tf)),
	}
	for term := range tf {
		tv.Indices = append(tv.Indices, vocab.index[term])
	}
	sort.Ints(tv.Indices)
	for _, idx := range tv.Indices {
		tv.Weights = append(tv.Weights, float64(tf[vocab.terms[idx]])*vocab.idf[idx])
	}

	if norm := floats.Norm(tv.Weights, 2); norm > 0 {
		floats.Scale(1/norm, tv.Weights)
	}
	return tv
}
