package badge

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rpggio/streamos/internal/domain/ledger"
)

// CacheRepository stores the last evaluated badge set for display. It is
// never read back as the source of truth.
type CacheRepository interface {
	SaveBadges(ctx context.Context, badges []Badge) error
}

// Tracker re-evaluates badges after every ledger change and refreshes the
// display cache.
type Tracker struct {
	mu     sync.RWMutex
	cache  CacheRepository
	latest []Badge
	logger *slog.Logger
}

// NewTracker creates a tracker. cache may be nil.
func NewTracker(cache CacheRepository, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{cache: cache, logger: logger}
}

// StatsChanged implements ledger.Observer.
func (t *Tracker) StatsChanged(ctx context.Context, stats ledger.Stats) {
	badges := Evaluate(stats)

	t.mu.Lock()
	prev := t.latest
	t.latest = badges
	t.mu.Unlock()

	for _, b := range newlyUnlocked(prev, badges) {
		t.logger.Info("badge unlocked", "badge", b.ID)
	}

	if t.cache == nil {
		return
	}
	if err := t.cache.SaveBadges(ctx, badges); err != nil {
		t.logger.Warn("badge cache not saved", "error", err)
	}
}

// Latest returns the badges from the most recent ledger change.
func (t *Tracker) Latest() []Badge {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Badge, len(t.latest))
	copy(out, t.latest)
	return out
}

func newlyUnlocked(prev, next []Badge) []Badge {
	if prev == nil {
		return nil
	}
	was := make(map[string]bool, len(prev))
	for _, b := range prev {
		was[b.ID] = b.Unlocked
	}
	var out []Badge
	for _, b := range next {
		if b.Unlocked && !was[b.ID] {
			out = append(out, b)
		}
	}
	return out
}
