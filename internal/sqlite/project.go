package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rpggio/streamos/internal/domain/project"
	"github.com/rpggio/streamos/internal/repository"
)

// ProjectRepository implements project.Repository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, title, category, platform, status, script, created_at, updated_at`

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	return insertProject(ctx, r.db, proj)
}

func insertProject(ctx context.Context, db execer, proj *project.Project) error {
	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	script, err := encodeScript(proj.Script)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, query,
		proj.ID,
		proj.Title,
		proj.Category,
		proj.Platform,
		proj.Status,
		script,
		proj.CreatedAt,
		proj.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	if isCheckViolation(err) {
		return fmt.Errorf("%w: project %s: platform %q, status %q", repository.ErrInvalidInput, proj.ID, proj.Platform, proj.Status)
	}
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// Get retrieves a project by ID
func (r *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`

	proj, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return proj, nil
}

// Update replaces a project's mutable fields
func (r *ProjectRepository) Update(ctx context.Context, proj *project.Project) error {
	query := `
		UPDATE projects
		SET title = ?, category = ?, platform = ?, status = ?, script = ?, updated_at = ?
		WHERE id = ?
	`

	script, err := encodeScript(proj.Script)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, query,
		proj.Title,
		proj.Category,
		proj.Platform,
		proj.Status,
		script,
		proj.UpdatedAt,
		proj.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a project
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// List returns projects in creation order
func (r *ProjectRepository) List(ctx context.Context, opts project.ListOptions) ([]project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	var args []any
	var conditions []string

	if opts.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *opts.Status)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at ASC, rowid ASC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []project.Project{}
	for rows.Next() {
		proj, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *proj)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return projects, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*project.Project, error) {
	var proj project.Project
	var script sql.NullString
	err := row.Scan(
		&proj.ID,
		&proj.Title,
		&proj.Category,
		&proj.Platform,
		&proj.Status,
		&script,
		&proj.CreatedAt,
		&proj.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if script.Valid && script.String != "" {
		proj.Script = &project.Script{}
		if err := json.Unmarshal([]byte(script.String), proj.Script); err != nil {
			return nil, fmt.Errorf("%w: project %s script: %v", repository.ErrCorrupt, proj.ID, err)
		}
	}
	return &proj, nil
}

// encodeScript stores an absent script as NULL.
func encodeScript(script *project.Script) (sql.NullString, error) {
	if script == nil {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(script)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode project script: %w", err)
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}
