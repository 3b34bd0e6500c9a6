package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/streamos/internal/domain/project"
	"github.com/rpggio/streamos/internal/repository"
)

// KeyProjects carries the studio projects inside a backup.
const KeyProjects = "streamos_projects"

// BackupRepository exports and restores the whole store as one JSON object
type BackupRepository struct {
	db *DB
}

// NewBackupRepository creates a new BackupRepository
func NewBackupRepository(db *DB) *BackupRepository {
	return &BackupRepository{db: db}
}

// Export returns every document plus the studio projects, keyed by name
func (r *BackupRepository) Export(ctx context.Context) (map[string]json.RawMessage, error) {
	snapshot, err := NewDocumentStore(r.db).All(ctx)
	if err != nil {
		return nil, err
	}

	projects, err := NewProjectRepository(r.db).List(ctx, project.ListOptions{})
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(projects)
	if err != nil {
		return nil, fmt.Errorf("failed to encode projects: %w", err)
	}
	snapshot[KeyProjects] = raw

	return snapshot, nil
}

// Import restores a snapshot in one transaction. Keys present in the snapshot
// overwrite stored values; null entries are skipped. Values may be JSON or a
// JSON string holding JSON, as produced by older exports.
func (r *BackupRepository) Import(ctx context.Context, snapshot map[string]json.RawMessage) (int, error) {
	restored := 0
	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		for key, raw := range snapshot {
			if !strings.HasPrefix(key, "streamos_") {
				return fmt.Errorf("%w: unexpected key %q", repository.ErrInvalidInput, key)
			}
			value := unwrapLegacy(raw)
			if value == nil {
				continue
			}

			if key == KeyProjects {
				if err := replaceProjects(ctx, tx, value); err != nil {
					return err
				}
			} else if err := putDocument(ctx, tx, key, value); err != nil {
				return err
			}
			restored++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return restored, nil
}

// Wipe deletes all persisted state
func (r *BackupRepository) Wipe(ctx context.Context) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"chat_messages", "chat_sessions", "projects", "activity_log", "documents"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to wipe %s: %w", table, err)
			}
		}
		return nil
	})
}

// unwrapLegacy returns the JSON document held by raw, or nil for null.
func unwrapLegacy(raw json.RawMessage) json.RawMessage {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	var inner string
	if err := json.Unmarshal(raw, &inner); err != nil {
		return raw
	}
	if inner == "" {
		return nil
	}
	if json.Valid([]byte(inner)) {
		return json.RawMessage(inner)
	}
	// a bare string value such as a language code
	return raw
}

// projectRecord accepts both the current project JSON and older exports that
// used camelCase timestamps in epoch milliseconds.
type projectRecord struct {
	project.Project
	LegacyCreatedAt *int64 `json:"createdAt"`
}

func replaceProjects(ctx context.Context, tx *sql.Tx, raw json.RawMessage) error {
	var records []projectRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return fmt.Errorf("%w: %s: %v", repository.ErrInvalidInput, KeyProjects, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM projects"); err != nil {
		return fmt.Errorf("failed to clear projects: %w", err)
	}
	for _, rec := range records {
		proj := rec.Project
		if rec.LegacyCreatedAt != nil && proj.CreatedAt.IsZero() {
			proj.CreatedAt = time.UnixMilli(*rec.LegacyCreatedAt)
		}
		if proj.CreatedAt.IsZero() {
			proj.CreatedAt = time.Now()
		}
		if proj.UpdatedAt.IsZero() {
			proj.UpdatedAt = proj.CreatedAt
		}
		if proj.Platform == "" {
			proj.Platform = project.PlatformTwitch
		}
		if proj.Status == "" {
			proj.Status = project.StatusIdea
		}
		if err := insertProject(ctx, tx, &proj); err != nil {
			return fmt.Errorf("%w: project %q: %v", repository.ErrInvalidInput, proj.ID, err)
		}
	}
	return nil
}
