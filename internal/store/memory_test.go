package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/mitsuke/internal/models"
)

func rec(id string, vec []float32, doc string, meta map[string]any) *models.VectorRecord {
	if meta == nil {
		meta = map[string]any{}
	}
	return &models.VectorRecord{ID: id, Vector: vec, Document: doc, Metadata: meta}
}

func TestMemoryStoreQueryOrder(t *testing.T) {
	s, err := NewMemoryStore(2)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	err = s.Add(ctx, []*models.VectorRecord{
		rec("far", []float32{0, 1}, "far doc", nil),
		rec("near", []float32{1, 0}, "near doc", nil),
		rec("mid", []float32{0.7071, 0.7071}, "mid doc", nil),
	})
	if err != nil {
		t.Fatal(err)
	}

	matches, err := s.Query(ctx, []float32{1, 0}, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 3 {
		t.Fatalf("matches: got %d", len(matches))
	}
	if matches[0].ID != "near" || matches[1].ID != "mid" || matches[2].ID != "far" {
		t.Errorf("order: got %s, %s, %s", matches[0].ID, matches[1].ID, matches[2].ID)
	}
	if matches[0].Distance > matches[1].Distance || matches[1].Distance > matches[2].Distance {
		t.Error("distances not ascending")
	}
	if matches[0].Document != "near doc" {
		t.Errorf("document: got %q", matches[0].Document)
	}
}

func TestMemoryStoreTopK(t *testing.T) {
	s, _ := NewMemoryStore(2)
	ctx := context.Background()
	_ = s.Add(ctx, []*models.VectorRecord{
		rec("a", []float32{1, 0}, "", nil),
		rec("b", []float32{0, 1}, "", nil),
		rec("c", []float32{0.6, 0.8}, "", nil),
	})
	matches, err := s.Query(ctx, []float32{1, 0}, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Errorf("top_k=2: got %d matches", len(matches))
	}
}

func TestMemoryStoreFilter(t *testing.T) {
	s, _ := NewMemoryStore(2)
	ctx := context.Background()
	_ = s.Add(ctx, []*models.VectorRecord{
		rec("n1", []float32{1, 0}, "", map[string]any{"category": "nature"}),
		rec("c1", []float32{0.99, 0.14}, "", map[string]any{"category": "city"}),
		rec("n2", []float32{0, 1}, "", map[string]any{"category": "nature"}),
	})
	matches, err := s.Query(ctx, []float32{1, 0}, 10, map[string]any{"category": "nature"})
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("filtered matches: got %d", len(matches))
	}
	for _, m := range matches {
		if m.Metadata["category"] != "nature" {
			t.Errorf("filter leaked: %v", m.Metadata)
		}
	}
	// Numeric filter values compare loosely across int/float64 (JSON round-trip).
	_ = s.Add(ctx, []*models.VectorRecord{
		rec("v0", []float32{1, 0}, "", map[string]any{"vector_index": 0}),
	})
	matches, err = s.Query(ctx, []float32{1, 0}, 10, map[string]any{"vector_index": float64(0)})
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].ID != "v0" {
		t.Errorf("numeric filter: got %v", matches)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s, _ := NewMemoryStore(2)
	ctx := context.Background()
	_ = s.Add(ctx, []*models.VectorRecord{
		rec("a", []float32{1, 0}, "", nil),
		rec("b", []float32{0, 1}, "", nil),
	})
	removed, err := s.Delete(ctx, []string{"a", "missing"})
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("first delete: got %d, want 1", removed)
	}
	// Deleting the same id again is not an error, just a zero count.
	removed, err = s.Delete(ctx, []string{"a"})
	if err != nil {
		t.Fatal(err)
	}
	if removed != 0 {
		t.Errorf("second delete: got %d, want 0", removed)
	}
	if n, _ := s.Count(ctx); n != 1 {
		t.Errorf("count: got %d", n)
	}
}

func TestMemoryStoreSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots", "records.idx")
	s, _ := NewMemoryStore(2)
	ctx := context.Background()
	_ = s.Add(ctx, []*models.VectorRecord{
		rec("a", []float32{1, 0}, "ocean sunset", map[string]any{"category": "nature", "has_text": true}),
	})
	if err := s.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, _ := NewMemoryStore(2)
	if err := loaded.Load(path); err != nil {
		t.Fatal(err)
	}
	matches, err := loaded.Query(ctx, []float32{1, 0}, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].ID != "a" {
		t.Fatalf("round trip: got %v", matches)
	}
	if matches[0].Document != "ocean sunset" {
		t.Errorf("document: got %q", matches[0].Document)
	}
	if matches[0].Metadata["category"] != "nature" || matches[0].Metadata["has_text"] != true {
		t.Errorf("metadata: got %v", matches[0].Metadata)
	}
}

func TestMemoryStoreLoadMissingFile(t *testing.T) {
	s, _ := NewMemoryStore(2)
	if err := s.Load(filepath.Join(t.TempDir(), "missing.idx")); err != nil {
		t.Errorf("missing snapshot should not error: %v", err)
	}
}

func TestMemoryStoreDimensionMismatch(t *testing.T) {
	s, _ := NewMemoryStore(4)
	ctx := context.Background()
	if err := s.Add(ctx, []*models.VectorRecord{rec("a", []float32{1, 0}, "", nil)}); err == nil {
		t.Error("expected dimension mismatch on add")
	}
	if _, err := s.Query(ctx, []float32{1, 0}, 1, nil); err == nil {
		t.Error("expected dimension mismatch on query")
	}
}
