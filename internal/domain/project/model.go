package project

import (
	"time"

	"github.com/rpggio/streamos/internal/domain/ledger"
)

// Status is a stage in the content pipeline.
type Status string

const (
	StatusIdea      Status = "idea"
	StatusRecording Status = "recording"
	StatusEditing   Status = "editing"
	StatusReady     Status = "ready"
)

// Pipeline lists the stages in order.
var Pipeline = []Status{StatusIdea, StatusRecording, StatusEditing, StatusReady}

// Platform is the publishing destination of a project.
type Platform string

const (
	PlatformTwitch  Platform = "twitch"
	PlatformTikTok  Platform = "tiktok"
	PlatformYouTube Platform = "youtube"
	PlatformKick    Platform = "kick"
)

// Project is a content card moving through the studio pipeline.
type Project struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Platform  Platform  `json:"platform"`
	Status    Status    `json:"status"`
	Script    *Script   `json:"script,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Script is the writing workspace of a project: the brief the creator fills in
// and the draft the coach model wrote from it.
type Script struct {
	Vibe             string `json:"vibe"`
	Context          string `json:"context"`
	Goal             string `json:"goal"`
	GeneratedContent string `json:"generatedContent"`
}

// Outcome is a project change together with its ledger effect, if any.
type Outcome struct {
	Project *Project       `json:"project"`
	XP      *ledger.Result `json:"xp,omitempty"`
}

// ListOptions filters project listings.
type ListOptions struct {
	Status *Status
	Limit  int
	Offset int
}
