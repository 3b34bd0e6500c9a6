package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rpggio/streamos/internal/calendar"
	"github.com/rpggio/streamos/internal/domain/activity"
	"github.com/rpggio/streamos/internal/repository"
)

// Service owns the progression ledger. All mutations are serialized.
type Service struct {
	mu         sync.Mutex
	repo       Repository
	activities ActivityRepository
	clock      calendar.Clock
	observers  []Observer
	logger     *slog.Logger
}

// NewService creates a new ledger service.
func NewService(repo Repository, activities ActivityRepository, clock calendar.Clock, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		activities: activities,
		clock:      clock,
		logger:     logger,
	}
}

// Subscribe registers an observer for committed changes.
func (s *Service) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// ReconcileOnLoad applies the daily streak rule for today. It must run once
// per load before any other read.
func (s *Service) ReconcileOnLoad(ctx context.Context, today calendar.Day) (*Stats, error) {
	if !today.Valid() {
		return nil, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx, today)
	if err != nil {
		return nil, err
	}

	next, changed := Reconcile(*current, today)
	if !changed {
		s.notify(ctx, next)
		return &next, nil
	}

	if err := s.repo.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("saving stats: %w", err)
	}

	if next.Streak != current.Streak {
		s.logActivity(ctx, &activity.ActivityEntry{
			ActivityType: activity.TypeStreakUpdated,
			Source:       "daily_reset",
			Level:        next.Level,
			Summary:      fmt.Sprintf("streak %d -> %d", current.Streak, next.Streak),
		})
	}
	s.logger.Info("ledger reconciled", "today", today, "last_login", current.LastLoginDate, "streak", next.Streak)
	s.notify(ctx, next)
	return &next, nil
}

// Get returns the current stats, seeding defaults when storage is empty or
// unreadable.
func (s *Service) Get(ctx context.Context) (*Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, s.clock.Today())
}

// ApplyXP applies a signed XP delta. Any integer is valid.
func (s *Service) ApplyXP(ctx context.Context, delta int, source string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx, s.clock.Today())
	if err != nil {
		return nil, err
	}

	next, gained := Apply(*current, delta)
	if err := s.repo.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("saving stats: %w", err)
	}

	result := &Result{
		Before:       *current,
		Stats:        next,
		Delta:        delta,
		LevelsGained: gained,
		LeveledUp:    gained > 0,
	}

	if delta != 0 {
		s.logActivity(ctx, &activity.ActivityEntry{
			ActivityType: activity.TypeXPApplied,
			Source:       source,
			Delta:        delta,
			Level:        next.Level,
			Summary:      fmt.Sprintf("applied %+d xp", delta),
		})
	}
	if result.LeveledUp {
		s.logActivity(ctx, &activity.ActivityEntry{
			ActivityType: activity.TypeLevelUp,
			Source:       source,
			Delta:        delta,
			Level:        next.Level,
			Summary:      fmt.Sprintf("reached level %d", next.Level),
		})
		s.logger.Info("level up", "level", next.Level, "levels_gained", gained, "source", source)
	}

	s.notify(ctx, next)
	return result, nil
}

// Restore writes back a state read earlier with Get. It undoes the XP side
// of a command batch that failed after its first step.
func (s *Service) Restore(ctx context.Context, stats Stats) error {
	if err := stats.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Save(ctx, &stats); err != nil {
		return fmt.Errorf("saving stats: %w", err)
	}
	s.logger.Warn("ledger restored", "level", stats.Level, "current_xp", stats.CurrentXP)
	s.notify(ctx, stats)
	return nil
}

// Reset deletes the ledger. The next read reseeds defaults.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("deleting stats: %w", err)
	}
	s.logActivity(ctx, &activity.ActivityEntry{
		ActivityType: activity.TypeLedgerReset,
		Source:       "settings",
		Summary:      "ledger reset",
	})
	s.logger.Info("ledger reset")
	return nil
}

// load must be called with mu held.
func (s *Service) load(ctx context.Context, today calendar.Day) (*Stats, error) {
	stats, err := s.repo.Load(ctx)
	switch {
	case err == nil:
		if verr := stats.Validate(); verr != nil {
			s.logger.Warn("stored stats invalid, reseeding", "error", verr)
			return s.seed(ctx, today)
		}
		if stats.CurrentXP >= stats.NextLevelXP {
			normalized, _ := Apply(*stats, 0)
			if err := s.repo.Save(ctx, &normalized); err != nil {
				return nil, fmt.Errorf("saving stats: %w", err)
			}
			return &normalized, nil
		}
		return stats, nil
	case errors.Is(err, repository.ErrNotFound):
		return s.seed(ctx, today)
	case errors.Is(err, repository.ErrCorrupt):
		s.logger.Warn("stored stats unreadable, reseeding", "error", err)
		return s.seed(ctx, today)
	default:
		return nil, fmt.Errorf("loading stats: %w", err)
	}
}

func (s *Service) seed(ctx context.Context, today calendar.Day) (*Stats, error) {
	stats := DefaultStats(today)
	if err := s.repo.Save(ctx, &stats); err != nil {
		return nil, fmt.Errorf("seeding stats: %w", err)
	}
	return &stats, nil
}

func (s *Service) notify(ctx context.Context, stats Stats) {
	for _, o := range s.observers {
		o.StatsChanged(ctx, stats)
	}
}

func (s *Service) logActivity(ctx context.Context, entry *activity.ActivityEntry) {
	if s.activities == nil {
		return
	}
	_ = s.activities.Log(ctx, entry)
}
