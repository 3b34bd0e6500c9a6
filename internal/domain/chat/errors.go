package chat

import "errors"

var (
	// ErrSessionNotFound indicates the session doesn't exist.
	ErrSessionNotFound = errors.New("chat session not found")
	// ErrSessionClosed indicates the session no longer accepts messages.
	ErrSessionClosed = errors.New("chat session closed")
	// ErrInvalidInput indicates invalid input for chat operations.
	ErrInvalidInput = errors.New("invalid chat input")
)
