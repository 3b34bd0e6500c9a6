package chat

import "time"

// SessionStatus represents the lifecycle status of a chat session
type SessionStatus string

const (
	StatusActive SessionStatus = "active"
	StatusClosed SessionStatus = "closed"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Language selects the reply language of the assistant.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageSpanish Language = "es"
)

// ParseLanguage normalizes a language code. Unknown codes fall back to English.
func ParseLanguage(s string) Language {
	if Language(s) == LanguageSpanish {
		return LanguageSpanish
	}
	return LanguageEnglish
}

// Session is one assistant conversation.
type Session struct {
	ID           string        `json:"id"`
	Status       SessionStatus `json:"status"`
	Language     Language      `json:"language"`
	CreatedAt    time.Time     `json:"created_at"`
	LastActivity time.Time     `json:"last_activity"`
	ClosedAt     *time.Time    `json:"closed_at,omitempty"`
}

// Message is one turn in a session.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
