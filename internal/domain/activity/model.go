package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeXPApplied       ActivityType = "xp_applied"
	TypeLevelUp         ActivityType = "level_up"
	TypeStreakUpdated   ActivityType = "streak_updated"
	TypeListReset       ActivityType = "list_reset"
	TypeItemDeleted     ActivityType = "item_deleted"
	TypeCardAdvanced    ActivityType = "card_advanced"
	TypeCommandApplied  ActivityType = "command_applied"
	TypeCommandRejected ActivityType = "command_rejected"
	TypeLedgerReset     ActivityType = "ledger_reset"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	ActivityType ActivityType `json:"type"`
	Source       string       `json:"source,omitempty"`
	Delta        int          `json:"delta"`
	Level        int          `json:"level"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
