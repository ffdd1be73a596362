// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package recommend

import (
	"testing"
)

func TestModelState_String(t *testing.T) {
	tests := []struct {
		name     string
		state    ModelState
		expected string
	}{
		{"uninitialized", ModelUninitialized, "uninitialized"},
		{"training", ModelTraining, "training"},
		{"trained", ModelTrained, "trained"},
		{"unknown value", ModelState(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.state.String()
			if result != tt.expected {
				t.Errorf("ModelState(%d).String() = %q, want %q", tt.state, result, tt.expected)
			}
		})
	}
}

func TestItem_CombinedText(t *testing.T) {
	item := Item{ID: 5, Title: "The Hobbit", Authors: "J.R.R. Tolkien"}

	if got, want := item.CombinedText(), "The Hobbit J.R.R. Tolkien"; got != want {
		t.Errorf("CombinedText() = %q, want %q", got, want)
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"mixed case", "THe Hobbit", "the hobbit"},
		{"surrounding space", "  Dune ", "dune"},
		{"already normal", "emma", "emma"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTitle(tt.title); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}
