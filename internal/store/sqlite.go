// Package store: SQLite backend using the sqlite-vec extension.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/mitsuke/internal/models"
)

func init() {
	sqlite_vec.Auto()
}

// SQLiteStore persists vector records in SQLite: a vec0 virtual table holds
// the embeddings (cosine metric) and a companion table holds document text
// and metadata JSON.
type SQLiteStore struct {
	db         *sql.DB
	dimensions int
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string, dimensions int) (*SQLiteStore, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := initSchema(db, dimensions); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db, dimensions: dimensions}, nil
}

func initSchema(db *sql.DB, dimensions int) error {
	vecDDL := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS vectors USING vec0(id TEXT PRIMARY KEY, embedding float[%d] distance_metric=cosine)`,
		dimensions,
	)
	if _, err := db.Exec(vecDDL); err != nil {
		return fmt.Errorf("create vectors table: %w", err)
	}
	const recordsDDL = `
	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		document TEXT NOT NULL DEFAULT '',
		metadata TEXT NOT NULL DEFAULT '{}',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(recordsDDL); err != nil {
		return fmt.Errorf("create records table: %w", err)
	}
	return nil
}

// Add persists records in one transaction. Existing ids are replaced
// (last write wins per record id).
func (s *SQLiteStore) Add(ctx context.Context, records []*models.VectorRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.NewStoreUnavailableError("add", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range records {
		if len(r.Vector) != s.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(r.Vector), s.dimensions)
		}
		blob, err := sqlite_vec.SerializeFloat32(r.Vector)
		if err != nil {
			return fmt.Errorf("serialize vector %s: %w", r.ID, err)
		}
		metaJSON, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata %s: %w", r.ID, err)
		}
		// vec0 does not support ON CONFLICT; delete first for upsert.
		if _, err := tx.ExecContext(ctx, `DELETE FROM vectors WHERE id = ?`, r.ID); err != nil {
			return models.NewStoreUnavailableError("add", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO vectors(id, embedding) VALUES (?, ?)`, r.ID, blob); err != nil {
			return models.NewStoreUnavailableError("add", err)
		}
		const recQ = `INSERT INTO records(id, document, metadata) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET document = excluded.document, metadata = excluded.metadata`
		if _, err := tx.ExecContext(ctx, recQ, r.ID, r.Document, string(metaJSON)); err != nil {
			return models.NewStoreUnavailableError("add", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return models.NewStoreUnavailableError("add", err)
	}
	return nil
}

// Query returns up to topK nearest records by cosine distance. Without a
// filter it uses the vec0 KNN fast path; with a filter it scores matching
// rows with vec_distance_cosine so topK counts filtered records only.
func (s *SQLiteStore) Query(ctx context.Context, vector []float32, topK int, filter map[string]any) ([]*Match, error) {
	if len(vector) != s.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(vector), s.dimensions)
	}
	if topK <= 0 {
		return nil, nil
	}
	blob, err := sqlite_vec.SerializeFloat32(vector)
	if err != nil {
		return nil, fmt.Errorf("serialize query vector: %w", err)
	}

	var rows *sql.Rows
	if len(filter) == 0 {
		const q = `SELECT v.id, v.distance, r.document, r.metadata
			FROM vectors v
			JOIN records r ON r.id = v.id
			WHERE v.embedding MATCH ? AND k = ?
			ORDER BY v.distance`
		rows, err = s.db.QueryContext(ctx, q, blob, topK)
	} else {
		where, args := filterClause(filter)
		q := `SELECT v.id, vec_distance_cosine(v.embedding, ?) AS distance, r.document, r.metadata
			FROM vectors v
			JOIN records r ON r.id = v.id
			WHERE ` + where + `
			ORDER BY distance
			LIMIT ?`
		queryArgs := append([]any{blob}, args...)
		queryArgs = append(queryArgs, topK)
		rows, err = s.db.QueryContext(ctx, q, queryArgs...)
	}
	if err != nil {
		return nil, models.NewStoreUnavailableError("query", err)
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		m := &Match{}
		var metaStr string
		if err := rows.Scan(&m.ID, &m.Distance, &m.Document, &metaStr); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		if metaStr != "" {
			if err := json.Unmarshal([]byte(metaStr), &m.Metadata); err != nil {
				return nil, fmt.Errorf("parse metadata for %s: %w", m.ID, err)
			}
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewStoreUnavailableError("query", err)
	}
	return matches, nil
}

// filterClause builds an exact-match conjunction over metadata JSON keys.
// json_extract yields SQLite-native values, so numbers and booleans compare
// without string coercion (booleans are stored as 0/1 by json_extract).
func filterClause(filter map[string]any) (string, []any) {
	conds := make([]string, 0, len(filter))
	args := make([]any, 0, len(filter))
	for k, v := range filter {
		conds = append(conds, `json_extract(r.metadata, ?) = ?`)
		if b, ok := v.(bool); ok {
			// SQLite json_extract maps JSON true/false to 1/0.
			if b {
				v = 1
			} else {
				v = 0
			}
		}
		args = append(args, "$."+k, v)
	}
	return strings.Join(conds, " AND "), args
}

// Delete removes records by id and returns the count actually removed.
func (s *SQLiteStore) Delete(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, models.NewStoreUnavailableError("delete", err)
	}
	defer func() { _ = tx.Rollback() }()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM vectors WHERE id IN (`+placeholders+`)`, args...); err != nil {
		return 0, models.NewStoreUnavailableError("delete", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM records WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, models.NewStoreUnavailableError("delete", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, models.NewStoreUnavailableError("delete", err)
	}
	return int(removed), nil
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, models.NewStoreUnavailableError("count", err)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
