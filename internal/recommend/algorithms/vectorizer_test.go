// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package algorithms

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/tomtom215/goodbooks/internal/recommend"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "punctuation and case", text: "The Hunger Games, Vol. 1", want: []string{"the", "hunger", "games", "vol"}},
		{name: "underscore joins", text: "snake_case words", want: []string{"snake_case", "words"}},
		{name: "digits kept", text: "1984 George Orwell", want: []string{"1984", "george", "orwell"}},
		{name: "single runes dropped", text: "a b c", want: []string{}},
		{name: "unicode letters", text: "Æsir Saga", want: []string{"æsir", "saga"}},
		{name: "empty", text: "", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestNewStopwordSet(t *testing.T) {
	tests := []struct {
		name       string
		useDefault bool
		extra      []string
		term       string
		want       bool
	}{
		{name: "default contains the", useDefault: true, term: "the", want: true},
		{name: "default lacks hunger", useDefault: true, term: "hunger", want: false},
		{name: "disabled default", useDefault: false, term: "the", want: false},
		{name: "extra lowercased", useDefault: false, extra: []string{" Vol "}, term: "vol", want: true},
		{name: "blank extra ignored", useDefault: false, extra: []string{"  "}, term: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := NewStopwordSet(tt.useDefault, tt.extra...)
			if got := set.Contains(tt.term); got != tt.want {
				t.Errorf("Contains(%q) = %v, want %v", tt.term, got, tt.want)
			}
		})
	}
}

func TestBuildVectors(t *testing.T) {
	items := []recommend.Item{
		{ID: 1, Title: "apple banana"},
		{ID: 2, Title: "apple cherry"},
	}

	vocab, vectors, err := BuildVectors(items, NewStopwordSet(false))
	if err != nil {
		t.Fatalf("BuildVectors() error = %v", err)
	}

	wantTerms := []string{"apple", "banana", "cherry"}
	if vocab.Len() != len(wantTerms) {
		t.Fatalf("vocab.Len() = %d, want %d", vocab.Len(), len(wantTerms))
	}
	for i, term := range wantTerms {
		if vocab.Term(i) != term {
			t.Errorf("vocab.Term(%d) = %q, want %q", i, vocab.Term(i), term)
		}
	}

	apple, _ := vocab.Index("apple")
	banana, _ := vocab.Index("banana")
	if got := vocab.IDF(apple); math.Abs(got-1) > 1e-12 {
		t.Errorf("IDF(apple) = %v, want 1", got)
	}
	rareIDF := math.Log(3.0/2.0) + 1
	if got := vocab.IDF(banana); math.Abs(got-rareIDF) > 1e-12 {
		t.Errorf("IDF(banana) = %v, want %v", got, rareIDF)
	}

	for i, v := range vectors {
		if math.Abs(v.Norm()-1) > 1e-9 {
			t.Errorf("vectors[%d].Norm() = %v, want 1", i, v.Norm())
		}
	}

	// Only "apple" is shared, so the cosine is the product of its normalized weights.
	wantDot := 1 / (1 + rareIDF*rareIDF)
	if got := vectors[0].Dot(vectors[1]); math.Abs(got-wantDot) > 1e-9 {
		t.Errorf("Dot() = %v, want %v", got, wantDot)
	}
	if got := vectors[0].Weight(banana); got <= vectors[0].Weight(apple) {
		t.Errorf("rare term weight %v should exceed common term weight %v", got, vectors[0].Weight(apple))
	}
	if got := vectors[1].Weight(banana); got != 0 {
		t.Errorf("Weight(absent) = %v, want 0", got)
	}
}

func TestBuildVectors_TermFrequency(t *testing.T) {
	items := []recommend.Item{
		{ID: 1, Title: "dune dune", Authors: "herbert"},
		{ID: 2, Title: "other"},
	}

	vocab, vectors, err := BuildVectors(items, NewStopwordSet(false))
	if err != nil {
		t.Fatalf("BuildVectors() error = %v", err)
	}

	dune, _ := vocab.Index("dune")
	herbert, _ := vocab.Index("herbert")
	// Same idf, twice the count.
	ratio := vectors[0].Weight(dune) / vectors[0].Weight(herbert)
	if math.Abs(ratio-2) > 1e-9 {
		t.Errorf("weight ratio = %v, want 2", ratio)
	}
}

func TestBuildVectors_Stopwords(t *testing.T) {
	t.Run("only stopwords", func(t *testing.T) {
		items := []recommend.Item{{ID: 1, Title: "The"}, {ID: 2, Title: "of and"}}
		_, _, err := BuildVectors(items, EnglishStopwords())
		if !errors.Is(err, recommend.ErrEmptyCorpus) {
			t.Errorf("BuildVectors() error = %v, want ErrEmptyCorpus", err)
		}
	})

	t.Run("empty corpus", func(t *testing.T) {
		_, _, err := BuildVectors(nil, EnglishStopwords())
		if !errors.Is(err, recommend.ErrEmptyCorpus) {
			t.Errorf("BuildVectors() error = %v, want ErrEmptyCorpus", err)
		}
	})

	t.Run("stopword-only item gets empty vector", func(t *testing.T) {
		items := []recommend.Item{{ID: 1, Title: "The"}, {ID: 2, Title: "Dune"}}
		vocab, vectors, err := BuildVectors(items, EnglishStopwords())
		if err != nil {
			t.Fatalf("BuildVectors() error = %v", err)
		}
		if vectors[0].Len() != 0 || vectors[0].Norm() != 0 {
			t.Errorf("vectors[0] = %+v, want empty", vectors[0])
		}
		if _, ok := vocab.Index("the"); ok {
			t.Error("stopword present in vocabulary")
		}
	})
}
