package item

import (
	"context"

	"github.com/rpggio/streamos/internal/calendar"
	"github.com/rpggio/streamos/internal/domain/activity"
	"github.com/rpggio/streamos/internal/domain/ledger"
)

// Repository persists whole item lists.
type Repository interface {
	// List returns repository.ErrNotFound when the list was never saved and
	// repository.ErrCorrupt when it cannot be decoded.
	List(ctx context.Context, list List) ([]Item, error)
	Save(ctx context.Context, list List, items []Item) error
}

// MarkerRepository tracks the last day each list was reset.
type MarkerRepository interface {
	GetResetDate(ctx context.Context, list List) (calendar.Day, error)
	SetResetDate(ctx context.Context, list List, day calendar.Day) error
}

// Ledger grants and revokes XP.
type Ledger interface {
	ApplyXP(ctx context.Context, delta int, source string) (*ledger.Result, error)
}

// ActivityRepository logs item activities.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
}
