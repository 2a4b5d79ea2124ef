// Package store: in-memory backend for tests and small corpora.
package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hyperjump/mitsuke/internal/models"
)

// MemoryStore is an in-memory vector store using brute-force cosine distance.
// Suitable for tests and small datasets. A snapshot file can be saved and
// loaded for persistence across restarts.
type MemoryStore struct {
	dimensions int
	records    []*models.VectorRecord
	mu         sync.RWMutex
}

// NewMemoryStore creates an in-memory vector store with the given dimension.
func NewMemoryStore(dimensions int) (*MemoryStore, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryStore{dimensions: dimensions}, nil
}

// Add stores records, copying vectors so callers cannot mutate stored state.
// An existing id is replaced in place (last write wins per record id).
func (m *MemoryStore) Add(ctx context.Context, records []*models.VectorRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		if len(r.Vector) != m.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(r.Vector), m.dimensions)
		}
	}
	byID := make(map[string]int, len(m.records))
	for i, r := range m.records {
		byID[r.ID] = i
	}
	for _, r := range records {
		vec := make([]float32, m.dimensions)
		copy(vec, r.Vector)
		meta := make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			meta[k] = v
		}
		stored := &models.VectorRecord{
			ID:       r.ID,
			Vector:   vec,
			Document: r.Document,
			Metadata: meta,
		}
		if i, ok := byID[r.ID]; ok {
			m.records[i] = stored
			continue
		}
		byID[r.ID] = len(m.records)
		m.records = append(m.records, stored)
	}
	return nil
}

// Query returns up to topK records by ascending cosine distance (1 - dot for
// normalized vectors). The filter is applied before ranking so topK is
// counted over matching records only. Ties keep insertion order.
func (m *MemoryStore) Query(ctx context.Context, vector []float32, topK int, filter map[string]any) ([]*Match, error) {
	if len(vector) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(vector), m.dimensions)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if topK <= 0 {
		return nil, nil
	}
	matches := make([]*Match, 0, len(m.records))
	for _, r := range m.records {
		if len(filter) > 0 && !filterMatches(r.Metadata, filter) {
			continue
		}
		var dot float64
		for i := 0; i < m.dimensions; i++ {
			dot += float64(vector[i] * r.Vector[i])
		}
		matches = append(matches, &Match{
			ID:       r.ID,
			Distance: 1 - dot,
			Metadata: r.Metadata,
			Document: r.Document,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	if topK > len(matches) {
		topK = len(matches)
	}
	return matches[:topK], nil
}

// Delete removes records by id and returns the count actually removed.
func (m *MemoryStore) Delete(ctx context.Context, ids []string) (int, error) {
	removeSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		removeSet[id] = true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.records[:0]
	removed := 0
	for _, r := range m.records {
		if removeSet[r.ID] {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return removed, nil
}

// Count returns the number of stored records.
func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

// Close is a no-op for MemoryStore.
func (m *MemoryStore) Close() error {
	return nil
}

// Save persists the store to path. Directory is created if needed.
// Format: dimensions (4), n (4), then per record: idLen (4), id bytes,
// docLen (4), document bytes, metaLen (4), metadata JSON, vector
// (dimensions*4 bytes, little endian).
func (m *MemoryStore) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, uint32(m.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(m.records))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for _, r := range m.records {
		metaJSON, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for %s: %w", r.ID, err)
		}
		for _, chunk := range [][]byte{[]byte(r.ID), []byte(r.Document), metaJSON} {
			if err := binary.Write(f, binary.LittleEndian, uint32(len(chunk))); err != nil {
				return fmt.Errorf("write length: %w", err)
			}
			if _, err := f.Write(chunk); err != nil {
				return fmt.Errorf("write record %s: %w", r.ID, err)
			}
		}
		if _, err := f.Write(float32SliceToBytes(r.Vector)); err != nil {
			return fmt.Errorf("write vector for %s: %w", r.ID, err)
		}
	}
	return nil
}

// Load reads a snapshot from path and replaces the in-memory contents.
// Dimensions must match. A missing file is not an error; the store is
// simply left empty.
func (m *MemoryStore) Load(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open snapshot file: %w", err)
	}
	defer f.Close()
	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("read dimensions: %w", err)
	}
	if int(dim) != m.dimensions {
		return fmt.Errorf("dimension mismatch: file has %d, store expects %d", dim, m.dimensions)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read count: %w", err)
	}
	readChunk := func() ([]byte, error) {
		var length uint32
		if err := binary.Read(f, binary.LittleEndian, &length); err != nil {
			return nil, err
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, err
		}
		return buf, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make([]*models.VectorRecord, 0, n)
	vecBuf := make([]byte, m.dimensions*4)
	for i := uint32(0); i < n; i++ {
		id, err := readChunk()
		if err != nil {
			return fmt.Errorf("read id: %w", err)
		}
		doc, err := readChunk()
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}
		metaJSON, err := readChunk()
		if err != nil {
			return fmt.Errorf("read metadata: %w", err)
		}
		var meta map[string]any
		if err := json.Unmarshal(metaJSON, &meta); err != nil {
			return fmt.Errorf("parse metadata for %s: %w", id, err)
		}
		if _, err := io.ReadFull(f, vecBuf); err != nil {
			return fmt.Errorf("read vector: %w", err)
		}
		m.records = append(m.records, &models.VectorRecord{
			ID:       string(id),
			Vector:   bytesToFloat32Slice(vecBuf),
			Document: string(doc),
			Metadata: meta,
		})
	}
	return nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
