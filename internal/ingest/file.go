package ingest

import (
	"context"
	"encoding/base64"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/mitsuke/internal/extract"
	"github.com/hyperjump/mitsuke/internal/fileid"
	"github.com/hyperjump/mitsuke/internal/models"
)

// imageExtensions are ingested as the image modality; everything else goes
// through text extraction.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// FileIngestor ingests files from disk. Ids are derived from the absolute
// path, so re-ingesting a changed file overwrites its previous records
// instead of accumulating duplicates.
type FileIngestor struct {
	ingestor  *Ingestor
	extractor *extract.Extractor
}

// NewFileIngestor creates a file ingestor on top of ing.
func NewFileIngestor(ing *Ingestor) *FileIngestor {
	return &FileIngestor{ingestor: ing, extractor: extract.NewExtractor()}
}

// IngestFile reads the file at path and ingests it as a single-modality item.
// Image files become the image modality (base64 content); document files are
// run through text extraction first.
func (fi *FileIngestor) IngestFile(ctx context.Context, path string) (*models.IngestResponse, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	item := &models.Item{
		Metadata: map[string]any{
			"source_path": abs,
			"filename":    filepath.Base(abs),
		},
	}
	modality := models.QueryTypeText
	if imageExtensions[strings.ToLower(filepath.Ext(abs))] {
		content, err := os.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		item.Image = base64.StdEncoding.EncodeToString(content)
		modality = models.QueryTypeImage
	} else {
		text, err := fi.extractor.Extract(abs)
		if err != nil {
			return nil, fmt.Errorf("extract text: %w", err)
		}
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("no text content in %s", abs)
		}
		item.Text = text
	}

	recordID := func() string { return fileid.RecordID(abs, modality) }
	return fi.ingestor.ingest(ctx, item, fileid.EntityID(abs), recordID, nil)
}

// IngestDirectory walks root and ingests every file whose extension is in
// extensions (empty matches all). It returns the number of files ingested and
// stops at the first error.
func (fi *FileIngestor) IngestDirectory(ctx context.Context, root string, extensions []string) (int, error) {
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if !matchExtension(path, extensions) {
			return nil
		}
		if _, err := fi.IngestFile(ctx, path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		count++
		return nil
	})
	return count, err
}

func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}

// RemoveFile deletes the records previously ingested for path. Missing
// records are not an error; the returned count may be zero.
func (fi *FileIngestor) RemoveFile(ctx context.Context, path string) (int, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("resolve path: %w", err)
	}
	ids := []string{
		fileid.RecordID(abs, models.QueryTypeText),
		fileid.RecordID(abs, models.QueryTypeImage),
	}
	return fi.ingestor.store.Delete(ctx, ids)
}
