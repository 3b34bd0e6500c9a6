package mcp

import (
	"encoding/json"

	"github.com/rpggio/streamos/internal/domain/activity"
	"github.com/rpggio/streamos/internal/domain/chat"
	"github.com/rpggio/streamos/internal/domain/item"
	"github.com/rpggio/streamos/internal/domain/project"
)

type ApplyXPParams struct {
	Delta  int    `json:"delta"`
	Source string `json:"source,omitempty"`
}

type ListItemsParams struct {
	List string `json:"list"`
}

type CreateItemParams struct {
	List string     `json:"list"`
	Item item.Draft `json:"item"`
}

type ItemRefParams struct {
	List string `json:"list"`
	ID   string `json:"id"`
}

type FocusCompleteParams struct {
	ID string `json:"id"`
}

type MoveItemParams struct {
	List      string         `json:"list"`
	ID        string         `json:"id"`
	Direction item.Direction `json:"direction"`
}

type ReplaceItemsParams struct {
	List  string       `json:"list"`
	Items []item.Draft `json:"items"`
}

type ListItemsResponse struct {
	List  item.List   `json:"list"`
	Items []item.Item `json:"items"`
}

type CreateProjectParams struct {
	Title    string           `json:"title"`
	Category string           `json:"category,omitempty"`
	Platform project.Platform `json:"platform,omitempty"`
}

type ProjectRefParams struct {
	ID string `json:"id"`
}

type ListProjectsParams struct {
	Status *project.Status `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

type UpdateProjectParams struct {
	ID       string            `json:"id"`
	Title    *string           `json:"title,omitempty"`
	Category *string           `json:"category,omitempty"`
	Platform *project.Platform `json:"platform,omitempty"`
	Script   *project.Script   `json:"script,omitempty"`
}

// GenerateScriptParams asks for a script draft. Language defaults to the
// stored UI language.
type GenerateScriptParams struct {
	ID       string `json:"id"`
	Language string `json:"language,omitempty"`
}

type ListActivityParams struct {
	Type   *activity.ActivityType `json:"type,omitempty"`
	Source string                 `json:"source,omitempty"`
	Limit  int                    `json:"limit,omitempty"`
	Offset int                    `json:"offset,omitempty"`
}

type CoachSendParams struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
	Language  string `json:"language,omitempty"`
}

type ListChatSessionsParams struct {
	Status *chat.SessionStatus `json:"status,omitempty"`
}

type ChatHistoryParams struct {
	SessionID string `json:"session_id"`
	Limit     int    `json:"limit,omitempty"`
}

type ChatSessionParams struct {
	SessionID string `json:"session_id"`
}

// ApplyCommandsParams carries a command envelope, a bare array or a single
// command object.
type ApplyCommandsParams struct {
	Payload json.RawMessage `json:"payload"`
}

type ImportParams struct {
	Snapshot map[string]json.RawMessage `json:"snapshot"`
}

type ImportResponse struct {
	Restored int `json:"restored"`
}

type LanguageParams struct {
	Language string `json:"language"`
}

type LanguageResponse struct {
	Language chat.Language `json:"language"`
}
