package directory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

func init() {
	// Auto-register sqlite-vec extension
	sqlite_vec.Auto()
}

// Document is one service record, field name to value.
type Document map[string]string

// Store persists service records and their embeddings in sqlite.
type Store struct {
	db  *sql.DB
	dim int
}

// Open opens (or creates) the directory database at dbPath. dim is the
// embedding dimension and must match the embedder in use.
func Open(dbPath string, dim int) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if dim <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db, dim: dim}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Info().Str("path", dbPath).Int("dimension", dim).Msg("Directory store opened")
	return s, nil
}

func (s *Store) initSchema() error {
	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS services (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			content_hash TEXT NOT NULL UNIQUE,
			fields TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_services_hash ON services(content_hash);

		CREATE VIRTUAL TABLE IF NOT EXISTS service_embeddings USING vec0(
			service_id INTEGER PRIMARY KEY,
			embedding float[%d] distance_metric=cosine
		);
	`, s.dim)

	_, err := s.db.Exec(schema)
	return err
}

// Upsert stores one record with its embedding. Records are deduplicated by
// content hash; re-ingesting unchanged data is a no-op.
func (s *Store) Upsert(ctx context.Context, doc Document, contentHash string, embedding []float32) error {
	if len(embedding) != s.dim {
		return fmt.Errorf("embedding dimension %d does not match store dimension %d", len(embedding), s.dim)
	}

	fields, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	embeddingJSON, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO services (content_hash, fields) VALUES (?, ?)
		ON CONFLICT(content_hash) DO UPDATE SET fields = excluded.fields
		RETURNING id
	`, contentHash, string(fields)).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM service_embeddings WHERE service_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear embedding: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO service_embeddings (service_id, embedding) VALUES (?, ?)
	`, id, string(embeddingJSON)); err != nil {
		return fmt.Errorf("failed to insert embedding: %w", err)
	}

	return tx.Commit()
}

// TopK returns the k records closest to the query embedding by cosine
// distance, nearest first.
func (s *Store) TopK(ctx context.Context, embedding []float32, k int) ([]Document, error) {
	embeddingJSON, err := json.Marshal(embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			service_id,
			vec_distance_cosine(embedding, ?) as distance
		FROM service_embeddings
		ORDER BY distance ASC
		LIMIT ?
	`, string(embeddingJSON), k)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		var distance float64
		if err := rows.Scan(&id, &distance); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		var fields string
		if err := s.db.QueryRowContext(ctx, `SELECT fields FROM services WHERE id = ?`, id).Scan(&fields); err != nil {
			return nil, fmt.Errorf("failed to load record %d: %w", id, err)
		}
		var doc Document
		if err := json.Unmarshal([]byte(fields), &doc); err != nil {
			return nil, fmt.Errorf("failed to decode record %d: %w", id, err)
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// Count returns the number of indexed records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM services`).Scan(&count)
	return count, err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
