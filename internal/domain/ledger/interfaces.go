package ledger

import (
	"context"

	"github.com/rpggio/streamos/internal/domain/activity"
)

// Repository persists the single ledger document.
type Repository interface {
	// Load returns repository.ErrNotFound when absent and
	// repository.ErrCorrupt when the stored value cannot be decoded.
	Load(ctx context.Context) (*Stats, error)
	Save(ctx context.Context, stats *Stats) error
	Delete(ctx context.Context) error
}

// ActivityRepository logs ledger activities.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
}

// Observer is notified synchronously after every committed ledger change.
type Observer interface {
	StatsChanged(ctx context.Context, stats Stats)
}
