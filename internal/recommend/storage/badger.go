// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Badger key layout: model:{name}:v{version, zero padded to 10 digits}.
// Zero padding keeps lexical key order equal to numeric version order.
const badgerKeyPrefix = "model:"

// BadgerStore persists model versions in an embedded BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or creates) a BadgerDB at path.
// An empty path opens an in-memory database.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Disable BadgerDB's internal logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger model store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func badgerKey(name string, version int) []byte {
	return []byte(fmt.Sprintf("%s%s:v%010d", badgerKeyPrefix, name, version))
}

func badgerNamePrefix(name string) []byte {
	return []byte(badgerKeyPrefix + name + ":v")
}

// parseBadgerKey splits a key into model name and version.
func parseBadgerKey(key []byte) (string, int, bool) {
	rest, found := strings.CutPrefix(string(key), badgerKeyPrefix)
	if !found {
		return "", 0, false
	}
	idx := strings.LastIndex(rest, ":v")
	if idx <= 0 {
		return "", 0, false
	}
	version, err := strconv.Atoi(rest[idx+2:])
	if err != nil || version <= 0 {
		return "", 0, false
	}
	return rest[:idx], version, true
}

// Save writes a model version.
//
//nolint:gocritic // meta passed by value so the caller's copy is untouched
func (s *BadgerStore) Save(ctx context.Context, name string, version int, data any, meta ModelMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" || version <= 0 {
		return fmt.Errorf("invalid model key %q version %d", name, version)
	}

	encoded, _, err := encodeModel(name, version, data, meta)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(name, version), encoded)
	})
}

// Load decodes a model version into target. Version 0 loads the latest.
func (s *BadgerStore) Load(ctx context.Context, name string, version int, target any) (*ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if version == 0 {
		version = s.LatestVersion(name)
		if version == 0 {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
		}
	}

	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(name, version))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s v%d", ErrModelNotFound, name, version)
	}
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	return decodeModel(bytes.NewReader(raw), target)
}

// versionsOf lists the stored versions of a model, newest first.
func (s *BadgerStore) versionsOf(name string) ([]int, error) {
	var versions []int
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := badgerNamePrefix(name)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n, v, ok := parseBadgerKey(it.Item().Key())
			if ok && n == name {
				versions = append(versions, v)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	return versions, nil
}

// LatestVersion returns the newest stored version of a model, or 0.
func (s *BadgerStore) LatestVersion(name string) int {
	versions, err := s.versionsOf(name)
	if err != nil || len(versions) == 0 {
		return 0
	}
	return versions[0]
}

// List returns metadata for the latest version of every model.
func (s *BadgerStore) List(ctx context.Context) ([]ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	latest := make(map[string]ModelMetadata)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(badgerKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			name, version, ok := parseBadgerKey(item.Key())
			if !ok || latest[name].Version >= version {
				continue
			}
			err := item.Value(func(val []byte) error {
				env, err := decodeEnvelope(bytes.NewReader(val))
				if err != nil {
					return err
				}
				latest[name] = env.Metadata
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	out := make([]ModelMetadata, 0, len(latest))
	for _, meta := range latest {
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes a model version.
func (s *BadgerStore) Delete(ctx context.Context, name string, version int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		key := badgerKey(name, version)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s v%d", ErrModelNotFound, name, version)
			}
			return err
		}
		return txn.Delete(key)
	})
}

// Prune keeps the newest keep versions of a model and removes the rest.
func (s *BadgerStore) Prune(ctx context.Context, name string, keep int) error {
	if keep <= 0 {
		return nil
	}
	versions, err := s.versionsOf(name)
	if err != nil {
		return err
	}
	if len(versions) <= keep {
		return nil
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, v := range versions[keep:] {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := txn.Delete(badgerKey(name, v)); err != nil {
				return fmt.Errorf("prune %s v%d: %w", name, v, err)
			}
		}
		return nil
	})
}
