package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/streamos/internal/domain/chat"
	"github.com/rpggio/streamos/internal/repository"
)

// ChatRepository implements chat.Repository for SQLite
type ChatRepository struct {
	db *DB
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// CreateSession creates a new chat session
func (r *ChatRepository) CreateSession(ctx context.Context, sess *chat.Session) error {
	query := `
		INSERT INTO chat_sessions (id, status, language, created_at, last_activity, closed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		sess.ID,
		sess.Status,
		sess.Language,
		sess.CreatedAt,
		sess.LastActivity,
		sess.ClosedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}
	return nil
}

// GetSession retrieves a chat session by ID
func (r *ChatRepository) GetSession(ctx context.Context, id string) (*chat.Session, error) {
	query := `
		SELECT id, status, language, created_at, last_activity, closed_at
		FROM chat_sessions
		WHERE id = ?
	`

	sess, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat session: %w", err)
	}
	return sess, nil
}

// UpdateSession updates a chat session's status and timestamps
func (r *ChatRepository) UpdateSession(ctx context.Context, sess *chat.Session) error {
	query := `
		UPDATE chat_sessions
		SET status = ?, language = ?, last_activity = ?, closed_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		sess.Status,
		sess.Language,
		sess.LastActivity,
		sess.ClosedAt,
		sess.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update chat session: %w", err)
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

// ListSessions returns sessions, most recently active first
func (r *ChatRepository) ListSessions(ctx context.Context, status *chat.SessionStatus) ([]chat.Session, error) {
	query := `
		SELECT id, status, language, created_at, last_activity, closed_at
		FROM chat_sessions
	`
	var args []any
	if status != nil {
		query += " WHERE status = ?"
		args = append(args, *status)
	}
	query += " ORDER BY last_activity DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat sessions: %w", err)
	}
	defer rows.Close()

	sessions := []chat.Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat session: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat session rows: %w", err)
	}
	return sessions, nil
}

// AppendMessage adds a message to a session
func (r *ChatRepository) AppendMessage(ctx context.Context, msg *chat.Message) error {
	query := `
		INSERT INTO chat_messages (id, session_id, role, text, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, msg.ID, msg.SessionID, msg.Role, msg.Text, msg.CreatedAt)
	if isForeignKeyViolation(err) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to append chat message: %w", err)
	}
	return nil
}

// ListMessages returns the newest limit messages of a session, oldest first
func (r *ChatRepository) ListMessages(ctx context.Context, sessionID string, limit int) ([]chat.Message, error) {
	query := `
		SELECT id, session_id, role, text, created_at FROM (
			SELECT seq, id, session_id, role, text, created_at
			FROM chat_messages
			WHERE session_id = ?
			ORDER BY seq DESC
			LIMIT ?
		) ORDER BY seq ASC
	`

	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	messages := []chat.Message{}
	for rows.Next() {
		var msg chat.Message
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Text, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat message rows: %w", err)
	}
	return messages, nil
}

func scanSession(row rowScanner) (*chat.Session, error) {
	var sess chat.Session
	var closedAt sql.NullTime
	if err := row.Scan(
		&sess.ID,
		&sess.Status,
		&sess.Language,
		&sess.CreatedAt,
		&sess.LastActivity,
		&closedAt,
	); err != nil {
		return nil, err
	}
	if closedAt.Valid {
		sess.ClosedAt = &closedAt.Time
	}
	return &sess, nil
}
