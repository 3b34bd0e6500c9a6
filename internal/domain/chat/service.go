package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/streamos/internal/repository"
)

const (
	maxMessageLength = 8000
	// DefaultHistory is how many prior messages are replayed to the model.
	DefaultHistory = 40
)

// Service handles chat session operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new chat service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Start opens a new session.
func (s *Service) Start(ctx context.Context, lang Language) (*Session, error) {
	now := time.Now()
	sess := &Session{
		ID:           uuid.NewString(),
		Status:       StatusActive,
		Language:     ParseLanguage(string(lang)),
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	s.logger.Debug("chat session started", "session_id", sess.ID, "language", sess.Language)
	return sess, nil
}

// Get fetches a session by ID.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	sess, err := s.repo.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return sess, nil
}

// List returns sessions, optionally filtered by status.
func (s *Service) List(ctx context.Context, status *SessionStatus) ([]Session, error) {
	return s.repo.ListSessions(ctx, status)
}

// History returns up to limit prior messages, oldest first.
func (s *Service) History(ctx context.Context, id string, limit int) ([]Message, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistory
	}
	msgs, err := s.repo.ListMessages(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return msgs, nil
}

// Append records a message and bumps the session's activity time.
func (s *Service) Append(ctx context.Context, id string, role Role, text string) (*Message, error) {
	if role != RoleUser && role != RoleModel {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(text) == "" || len(text) > maxMessageLength {
		return nil, ErrInvalidInput
	}

	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status == StatusClosed {
		return nil, ErrSessionClosed
	}

	now := time.Now()
	msg := &Message{
		ID:        uuid.NewString(),
		SessionID: id,
		Role:      role,
		Text:      text,
		CreatedAt: now,
	}
	if err := s.repo.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("appending message: %w", err)
	}

	sess.LastActivity = now
	if err := s.repo.UpdateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("updating session: %w", err)
	}
	return msg, nil
}

// Close ends a session. Closing twice is a no-op.
func (s *Service) Close(ctx context.Context, id string) (*Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status == StatusClosed {
		return sess, nil
	}
	now := time.Now()
	sess.Status = StatusClosed
	sess.ClosedAt = &now
	if err := s.repo.UpdateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("closing session: %w", err)
	}
	return sess, nil
}
