// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// restoreGlobal resets the global logger and level after a test.
func restoreGlobal(t *testing.T) {
	t.Helper()
	prevLogger := Logger()
	prevLevel := GetLevel()
	t.Cleanup(func() {
		SetLogger(prevLogger)
		SetLevel(prevLevel)
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != "info" || cfg.Format != "json" || cfg.Caller || !cfg.Timestamp {
		t.Errorf("DefaultConfig() = %+v, want info/json with timestamps and no caller", cfg)
	}
}

func TestInit_JSON(t *testing.T) {
	restoreGlobal(t)
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Timestamp: true, Output: &buf})

	Info().Int("books", 3).Msg("catalog loaded")

	out := buf.String()
	for _, want := range []string{`"level":"info"`, `"books":3`, `"message":"catalog loaded"`, `"time":`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %s missing %s", out, want)
		}
	}
}

func TestInit_Console(t *testing.T) {
	restoreGlobal(t)
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "console", Output: &buf})

	Info().Msg("console test")

	out := buf.String()
	if !strings.Contains(out, "console test") || strings.Contains(out, `"level"`) {
		t.Errorf("console output = %q, want plain text", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"disabled", zerolog.Disabled},
		{"DEBUG", zerolog.DebugLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevelFunctions(t *testing.T) {
	restoreGlobal(t)
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	SetLevel(zerolog.TraceLevel)

	tests := []struct {
		name  string
		log   func()
		level string
	}{
		{"Trace", func() { Trace().Msg("m") }, "trace"},
		{"Debug", func() { Debug().Msg("m") }, "debug"},
		{"Info", func() { Info().Msg("m") }, "info"},
		{"Warn", func() { Warn().Msg("m") }, "warn"},
		{"Error", func() { Error().Msg("m") }, "error"},
		{"Err", func() { Err(errors.New("boom")).Msg("m") }, "error"},
	}
	for _, tt := range tests {
		buf.Reset()
		tt.log()
		if !strings.Contains(buf.String(), `"level":"`+tt.level+`"`) {
			t.Errorf("%s() output = %s, want level %s", tt.name, buf.String(), tt.level)
		}
	}
}

func TestGlobalLevelFilters(t *testing.T) {
	restoreGlobal(t)
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	SetLevel(zerolog.WarnLevel)

	Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %s", buf.String())
	}
	Warn().Msg("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn not logged: %s", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	restoreGlobal(t)
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))

	logger := WithComponent("recommend")
	logger.Info().Msg("trained")

	if !strings.Contains(buf.String(), `"component":"recommend"`) {
		t.Errorf("output = %s, want component field", buf.String())
	}
}

func TestNewTestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf)
	logger.Info().Str("key", "value").Msg("test message")

	out := buf.String()
	if !strings.Contains(out, "test message") || !strings.Contains(out, `"key":"value"`) {
		t.Errorf("output = %s", out)
	}
}
