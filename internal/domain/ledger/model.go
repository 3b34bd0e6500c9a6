package ledger

import (
	"fmt"

	"github.com/rpggio/streamos/internal/calendar"
)

// Starting values for a brand new ledger.
const (
	DefaultLevel       = 1
	DefaultNextLevelXP = 500
	DefaultStreak      = 1
)

// Stats is the progression ledger state.
type Stats struct {
	Level         int          `json:"level"`
	CurrentXP     int          `json:"currentXP"`
	NextLevelXP   int          `json:"nextLevelXP"`
	Streak        int          `json:"streak"`
	LastLoginDate calendar.Day `json:"lastLoginDate"`
}

// DefaultStats returns the ledger seeded on a first-ever run.
func DefaultStats(today calendar.Day) Stats {
	return Stats{
		Level:         DefaultLevel,
		CurrentXP:     0,
		NextLevelXP:   DefaultNextLevelXP,
		Streak:        DefaultStreak,
		LastLoginDate: today,
	}
}

// Validate checks the structural invariants that cannot be repaired.
// currentXP at or above the threshold is repairable and is not reported.
func (s Stats) Validate() error {
	switch {
	case s.Level < 1:
		return fmt.Errorf("%w: level %d", ErrInvalidStats, s.Level)
	case s.NextLevelXP <= 0:
		return fmt.Errorf("%w: nextLevelXP %d", ErrInvalidStats, s.NextLevelXP)
	case s.CurrentXP < 0:
		return fmt.Errorf("%w: currentXP %d", ErrInvalidStats, s.CurrentXP)
	case s.Streak < 1:
		return fmt.Errorf("%w: streak %d", ErrInvalidStats, s.Streak)
	}
	return nil
}

// Result describes the outcome of one XP application.
type Result struct {
	Before       Stats `json:"before"`
	Stats        Stats `json:"stats"`
	Delta        int   `json:"delta"`
	LevelsGained int   `json:"levelsGained"`
	LeveledUp    bool  `json:"leveledUp"`
}

// Merge folds two sequential results into one. Either may be nil.
func Merge(first, second *Result) *Result {
	switch {
	case first == nil:
		return second
	case second == nil:
		return first
	}
	return &Result{
		Before:       first.Before,
		Stats:        second.Stats,
		Delta:        first.Delta + second.Delta,
		LevelsGained: first.LevelsGained + second.LevelsGained,
		LeveledUp:    first.LeveledUp || second.LeveledUp,
	}
}
