package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/streamos/internal/repository"
)

// Document keys. They match the key names used by exported backups.
const (
	KeyStats       = "streamos_stats"
	KeyAgenda      = "streamos_agenda"
	KeyTasks       = "streamos_tasks"
	KeyChecklist   = "streamos_stream_checklist"
	KeyBadges      = "streamos_badges"
	KeyLanguage    = "streamos_lang"
	keyResetPrefix = "streamos_reset_"
)

// DocumentStore is a JSON key/value store on the documents table.
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Get returns the raw JSON stored under key
func (s *DocumentStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM documents WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", key, err)
	}
	return json.RawMessage(value), nil
}

// Put stores raw JSON under key, replacing any previous value
func (s *DocumentStore) Put(ctx context.Context, key string, value json.RawMessage) error {
	return putDocument(ctx, s.db, key, value)
}

// Delete removes key. Missing keys report repository.ErrNotFound.
func (s *DocumentStore) Delete(ctx context.Context, key string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", key, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// All returns every stored document keyed by name
func (s *DocumentStore) All(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM documents ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := make(map[string]json.RawMessage)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs[key] = json.RawMessage(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}
	return docs, nil
}

// getJSON decodes the document under key into v. Undecodable values report
// repository.ErrCorrupt.
func (s *DocumentStore) getJSON(ctx context.Context, key string, v any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %s: %v", repository.ErrCorrupt, key, err)
	}
	return nil
}

func (s *DocumentStore) putJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", key, err)
	}
	return s.Put(ctx, key, raw)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putDocument(ctx context.Context, db execer, key string, value json.RawMessage) error {
	query := `
		INSERT INTO documents (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(ctx, query, key, string(value), time.Now()); err != nil {
		return fmt.Errorf("failed to put document %s: %w", key, err)
	}
	return nil
}
