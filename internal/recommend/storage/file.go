// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

const modelFileSuffix = ".gob.gz"

// FileStore persists model versions as compressed files in a directory.
type FileStore struct {
	baseDir string
	mu      sync.RWMutex

	// versions tracks the latest version per model name.
	versions map[string]int
}

// NewFileStore creates a store rooted at baseDir, creating it if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	s := &FileStore{
		baseDir:  baseDir,
		versions: make(map[string]int),
	}
	if err := s.scanModels(); err != nil {
		return nil, fmt.Errorf("scan existing models: %w", err)
	}
	return s, nil
}

// scanModels records the latest version of every model file on disk.
func (s *FileStore) scanModels() error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, version, ok := parseModelFilename(entry.Name())
		if !ok {
			continue
		}
		if version > s.versions[name] {
			s.versions[name] = version
		}
	}
	return nil
}

// parseModelFilename extracts name and version from "{name}_v{version}.gob.gz".
func parseModelFilename(filename string) (string, int, bool) {
	base, found := strings.CutSuffix(filename, modelFileSuffix)
	if !found {
		return "", 0, false
	}
	idx := strings.LastIndex(base, "_v")
	if idx <= 0 {
		return "", 0, false
	}
	version, err := strconv.Atoi(base[idx+2:])
	if err != nil || version <= 0 {
		return "", 0, false
	}
	return base[:idx], version, true
}

func (s *FileStore) modelPath(name string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d%s", name, version, modelFileSuffix))
}

// versionsOf lists the stored versions of a model, newest first.
func (s *FileStore) versionsOf(name string) ([]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read storage directory: %w", err)
	}
	var versions []int
	for _, entry := range entries {
		n, v, ok := parseModelFilename(entry.Name())
		if ok && n == name {
			versions = append(versions, v)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	return versions, nil
}

// Save writes a model version. The file is written to a temporary path
// and renamed so readers never observe a partial file.
//
//nolint:gocritic // meta passed by value so the caller's copy is untouched
func (s *FileStore) Save(ctx context.Context, name string, version int, data any, meta ModelMetadata) error {
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

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.modelPath(name, version)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0o600); err != nil {
		return fmt.Errorf("write model file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp) //nolint:errcheck // best-effort cleanup of temp file
		return fmt.Errorf("rename model file: %w", err)
	}

	if version > s.versions[name] {
		s.versions[name] = version
	}
	return nil
}

// Load decodes a model version into target. Version 0 loads the latest.
func (s *FileStore) Load(ctx context.Context, name string, version int, target any) (*ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		version = s.versions[name]
		if version == 0 {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
		}
	}

	raw, err := os.ReadFile(s.modelPath(name, version))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s v%d", ErrModelNotFound, name, version)
	}
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return decodeModel(bytes.NewReader(raw), target)
}

// LatestVersion returns the newest stored version of a model, or 0.
func (s *FileStore) LatestVersion(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versions[name]
}

// List returns metadata for the latest version of every model.
func (s *FileStore) List(ctx context.Context) ([]ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ModelMetadata, 0, len(s.versions))
	for name, version := range s.versions {
		f, err := os.Open(s.modelPath(name, version))
		if err != nil {
			continue
		}
		env, err := decodeEnvelope(f)
		_ = f.Close() //nolint:errcheck // read-only file
		if err != nil {
			continue
		}
		out = append(out, env.Metadata)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes a model version.
func (s *FileStore) Delete(ctx context.Context, name string, version int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.modelPath(name, version)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s v%d", ErrModelNotFound, name, version)
		}
		return fmt.Errorf("delete model file: %w", err)
	}

	if s.versions[name] == version {
		remaining, err := s.versionsOf(name)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			delete(s.versions, name)
		} else {
			s.versions[name] = remaining[0]
		}
	}
	return nil
}

// Prune keeps the newest keep versions of a model and removes the rest.
func (s *FileStore) Prune(ctx context.Context, name string, keep int) error {
	if keep <= 0 {
		return nil
	}

	s.mu.Lock()
	versions, err := s.versionsOf(name)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	for _, v := range versions[min(keep, len(versions)):] {
		if err := s.Delete(ctx, name, v); err != nil {
			return fmt.Errorf("prune %s v%d: %w", name, v, err)
		}
	}
	return nil
}
