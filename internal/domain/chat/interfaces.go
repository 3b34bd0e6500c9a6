package chat

import "context"

// Repository persists sessions and their messages.
type Repository interface {
	CreateSession(ctx context.Context, sess *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	UpdateSession(ctx context.Context, sess *Session) error
	ListSessions(ctx context.Context, status *SessionStatus) ([]Session, error)
	AppendMessage(ctx context.Context, msg *Message) error
	// ListMessages returns the newest limit messages in chronological order.
	ListMessages(ctx context.Context, sessionID string, limit int) ([]Message, error)
}
