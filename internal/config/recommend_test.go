// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package config

import (
	"testing"
	"time"
)

func TestRecommendConfig_EngineConfig(t *testing.T) {
	rc := defaultConfig().Recommend
	rc.Factors = 7
	rc.Seed = 99
	rc.DiversityEnabled = true
	rc.Storage.RetainVersions = 5

	got := rc.EngineConfig()
	if err := got.Validate(); err != nil {
		t.Fatalf("EngineConfig().Validate() error = %v", err)
	}

	if got.Factor.Factors != 7 {
		t.Errorf("Factor.Factors = %d, want 7", got.Factor.Factors)
	}
	if got.Factor.Seed != 99 || got.Split.Seed != 99 {
		t.Errorf("seeds = %d, %d, want 99, 99", got.Factor.Seed, got.Split.Seed)
	}
	if !got.Diversity.Enabled {
		t.Error("Diversity.Enabled = false, want true")
	}
	if got.Training.RetainVersions != 5 {
		t.Errorf("Training.RetainVersions = %d, want 5", got.Training.RetainVersions)
	}
	if got.Limits.DefaultK != rc.DefaultK || got.Limits.MaxK != rc.MaxK {
		t.Errorf("Limits = %+v, want DefaultK %d MaxK %d", got.Limits, rc.DefaultK, rc.MaxK)
	}
}

func TestRecommendConfig_EngineConfig_ZeroTimeout(t *testing.T) {
	rc := defaultConfig().Recommend
	rc.TrainTimeout = 0

	if got := rc.EngineConfig().Training.Timeout; got <= 0 {
		t.Errorf("Training.Timeout = %v, want engine default", got)
	}

	rc.TrainTimeout = time.Minute
	if got := rc.EngineConfig().Training.Timeout; got != time.Minute {
		t.Errorf("Training.Timeout = %v, want 1m", got)
	}
}
