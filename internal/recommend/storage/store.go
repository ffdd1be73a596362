// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package storage

import (
	"context"
	"fmt"

	"github.com/tomtom215/goodbooks/internal/recommend"
)

// FactorModelName is the storage name of the latent factor model.
const FactorModelName = "svd"

// Backend is a versioned model store.
type Backend interface {
	Save(ctx context.Context, name string, version int, data any, meta ModelMetadata) error
	Load(ctx context.Context, name string, version int, target any) (*ModelMetadata, error)
	LatestVersion(name string) int
	List(ctx context.Context) ([]ModelMetadata, error)
	Delete(ctx context.Context, name string, version int) error
	Prune(ctx context.Context, name string, keep int) error
}

var (
	_ Backend = (*FileStore)(nil)
	_ Backend = (*BadgerStore)(nil)

	_ recommend.ModelStore = (*ModelStore)(nil)
)

// ModelStore adapts a Backend to the engine's factor model persistence.
type ModelStore struct {
	backend Backend
}

// NewModelStore wraps backend.
func NewModelStore(backend Backend) *ModelStore {
	return &ModelStore{backend: backend}
}

// SaveFactorModel stores state under its own version.
func (m *ModelStore) SaveFactorModel(ctx context.Context, state *recommend.FactorModelState) error {
	if state == nil {
		return fmt.Errorf("nil factor model state")
	}
	version := state.Version
	if version <= 0 {
		version = m.backend.LatestVersion(FactorModelName) + 1
	}
	meta := ModelMetadata{
		TrainedAt: state.TrainedAt,
		Factors:   state.Factors,
		ItemCount: len(state.ItemIDs),
		UserCount: len(state.UserIDs),
	}
	return m.backend.Save(ctx, FactorModelName, version, state, meta)
}

// LoadFactorModel loads a stored version. Version 0 loads the latest.
func (m *ModelStore) LoadFactorModel(ctx context.Context, version int) (*recommend.FactorModelState, error) {
	var state recommend.FactorModelState
	meta, err := m.backend.Load(ctx, FactorModelName, version, &state)
	if err != nil {
		return nil, err
	}
	if state.Version == 0 {
		state.Version = meta.Version
	}
	return &state, nil
}

// Prune keeps the newest keep factor model versions.
func (m *ModelStore) Prune(ctx context.Context, keep int) error {
	return m.backend.Prune(ctx, FactorModelName, keep)
}

// List returns metadata for every stored model.
func (m *ModelStore) List(ctx context.Context) ([]ModelMetadata, error) {
	return m.backend.List(ctx)
}
