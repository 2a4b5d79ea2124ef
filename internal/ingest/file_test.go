package ingest

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/mitsuke/internal/models"
)

func TestIngestFileText(t *testing.T) {
	ing, ms := newTestIngestor()
	fi := NewFileIngestor(ing)

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("quarterly report on solar panel output"), 0o644); err != nil {
		t.Fatal(err)
	}

	resp, err := fi.IngestFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.IDs) != 1 {
		t.Fatalf("ids: got %d, want 1", len(resp.IDs))
	}

	matches, err := ms.Query(context.Background(), mustEmbedText(t, ing, "quarterly report on solar panel output"), 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	m := matches[0]
	if m.Metadata["filename"] != "notes.txt" {
		t.Errorf("filename: got %v", m.Metadata["filename"])
	}
	if m.Metadata["source_path"] == "" {
		t.Error("missing source_path")
	}
	if m.Metadata[models.MetaHasText] != true {
		t.Error("has_text not set")
	}
}

func TestIngestFileImage(t *testing.T) {
	ing, ms := newTestIngestor()
	fi := NewFileIngestor(ing)

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	resp, err := fi.IngestFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.IDs) != 1 {
		t.Fatalf("ids: got %d, want 1", len(resp.IDs))
	}
	n, _ := ms.Count(context.Background())
	if n != 1 {
		t.Errorf("stored records: got %d, want 1", n)
	}
}

func TestIngestFileUpsert(t *testing.T) {
	ing, ms := newTestIngestor()
	fi := NewFileIngestor(ing)

	path := filepath.Join(t.TempDir(), "doc.md")
	if err := os.WriteFile(path, []byte("first version"), 0o644); err != nil {
		t.Fatal(err)
	}
	first, err := fi.IngestFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("second version"), 0o644); err != nil {
		t.Fatal(err)
	}
	second, err := fi.IngestFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}

	// Same path yields the same ids, so re-ingestion replaces the record.
	if first.IDs[0] != second.IDs[0] {
		t.Errorf("record id changed: %s vs %s", first.IDs[0], second.IDs[0])
	}
	n, _ := ms.Count(context.Background())
	if n != 1 {
		t.Errorf("stored records after re-ingest: got %d, want 1", n)
	}
}

func TestRemoveFile(t *testing.T) {
	ing, ms := newTestIngestor()
	fi := NewFileIngestor(ing)

	path := filepath.Join(t.TempDir(), "gone.txt")
	if err := os.WriteFile(path, []byte("temporary content"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := fi.IngestFile(context.Background(), path); err != nil {
		t.Fatal(err)
	}

	removed, err := fi.RemoveFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("removed: got %d, want 1", removed)
	}
	n, _ := ms.Count(context.Background())
	if n != 0 {
		t.Errorf("records left: %d", n)
	}

	// Removing a never-ingested file is a no-op.
	removed, err = fi.RemoveFile(context.Background(), filepath.Join(t.TempDir(), "never.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if removed != 0 {
		t.Errorf("removed: got %d, want 0", removed)
	}
}

func TestIngestFileEmptyDocument(t *testing.T) {
	ing, _ := newTestIngestor()
	fi := NewFileIngestor(ing)

	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("   \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := fi.IngestFile(context.Background(), path); err == nil {
		t.Error("expected error for empty document")
	}
}
