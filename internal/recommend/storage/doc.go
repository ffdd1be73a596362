// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

// Package storage provides model persistence for recommendation algorithms.
//
// This package handles the serialization, compression and storage of trained
// factor models so a restarted server can serve the last model without
// retraining.
//
// # Overview
//
// The storage system provides:
//   - Gob serialization for efficient Go type encoding
//   - Gzip compression to reduce storage footprint
//   - SHA-256 checksums for data integrity verification
//   - Version tracking for model lineage
//   - Automatic cleanup of old model versions
//
// # Backends
//
// Two Backend implementations share the same envelope format:
//
//   - FileStore: one file per version, {name}_v{version}.gob.gz
//   - BadgerStore: one BadgerDB key per version, model:{name}:v{version}
//
// ModelStore adapts either backend to the recommend.ModelStore interface
// used by the engine.
//
// # Storage Format
//
//	envelope (gob):
//	  - Metadata (ModelMetadata)
//	  - CompressedData (gzip of the gob-encoded model state)
//
// The checksum covers the uncompressed gob bytes and is verified on load.
//
// # Usage Example
//
//	backend, err := storage.NewFileStore(dataDir)
//	if err != nil {
//	    return err
//	}
//	engine.SetModelStore(storage.NewModelStore(backend))
//
// # Thread Safety
//
// All storage operations are safe for concurrent use.
package storage
