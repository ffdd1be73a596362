// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/tomtom215/goodbooks/internal/database"
	"github.com/tomtom215/goodbooks/internal/recommend"
)

func TestSanitizeLogValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: "line\nbreak", want: `line\x0abreak`},
		{in: "tab\there", want: `tab\x09here`},
		{in: "del\x7f", want: `del\x7f`},
		{in: "Ünïcode", want: "Ünïcode"},
	}
	for _, tt := range tests {
		if got := sanitizeLogValue(tt.in); got != tt.want {
			t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateETag(t *testing.T) {
	a := generateETag([]byte(`{"a":1}`))
	if a != generateETag([]byte(`{"a":1}`)) {
		t.Error("generateETag() not deterministic")
	}
	if a == generateETag([]byte(`{"a":2}`)) {
		t.Error("generateETag() collides on different bodies")
	}
	if a[0] != '"' || a[len(a)-1] != '"' {
		t.Errorf("generateETag() = %s, want quoted", a)
	}
}

func TestLookupError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		label  string
	}{
		{err: recommend.ErrItemNotFound, status: http.StatusNotFound, label: "not_found"},
		{err: fmt.Errorf("resolve: %w", recommend.ErrUnknownUser), status: http.StatusNotFound, label: "unknown_user"},
		{err: recommend.ErrNotTrained, status: http.StatusServiceUnavailable, label: "not_ready"},
		{err: recommend.ErrTrainingInProgress, status: http.StatusConflict, label: "busy"},
		{err: database.ErrNotLoaded, status: http.StatusServiceUnavailable, label: "not_ready"},
		{err: context.DeadlineExceeded, status: http.StatusGatewayTimeout, label: "timeout"},
		{err: errors.New("other"), status: http.StatusInternalServerError, label: "error"},
	}
	for _, tt := range tests {
		t.Run(tt.label+"/"+tt.err.Error(), func(t *testing.T) {
			m := lookupError(tt.err)
			if m.status != tt.status || m.label != tt.label {
				t.Errorf("lookupError(%v) = %d %q, want %d %q", tt.err, m.status, m.label, tt.status, tt.label)
			}
		})
	}
	if resultLabel(nil) != "success" {
		t.Errorf("resultLabel(nil) = %q", resultLabel(nil))
	}
}
