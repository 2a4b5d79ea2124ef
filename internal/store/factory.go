// Package store provides vector store implementations and a factory for creating them.
package store

import (
	"fmt"

	"github.com/hyperjump/mitsuke/internal/config"
)

// NewVectorStore creates the vector store backend named by cfg.Backend.
// Supported backends: "memory" (brute force, optional snapshot file),
// "sqlite" (sqlite-vec, default), "qdrant" (remote index).
func NewVectorStore(cfg *config.StoreConfig, dimensions int) (VectorStore, error) {
	switch cfg.Backend {
	case config.StoreBackendMemory:
		s, err := NewMemoryStore(dimensions)
		if err != nil {
			return nil, err
		}
		if err := s.Load(cfg.SnapshotPath); err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		return s, nil
	case config.StoreBackendSQLite, "":
		return NewSQLiteStore(cfg.DatabasePath, dimensions)
	case config.StoreBackendQdrant:
		return NewQdrantStore(cfg.QdrantHost, cfg.QdrantPort, cfg.Collection, dimensions)
	default:
		return nil, fmt.Errorf("unknown store backend: %s (supported: memory, sqlite, qdrant)", cfg.Backend)
	}
}
