package ledger

import (
	"math"

	"github.com/rpggio/streamos/internal/calendar"
)

// Apply adds a signed XP delta to s and cascades level-ups. It returns the new
// stats and how many levels were gained. Level and NextLevelXP never decrease;
// a revocation larger than CurrentXP clamps at zero.
func Apply(s Stats, delta int) (Stats, int) {
	if s.NextLevelXP <= 0 {
		s.NextLevelXP = DefaultNextLevelXP
	}
	xp := addSaturating(s.CurrentXP, delta)
	gained := 0
	for xp >= s.NextLevelXP {
		xp -= s.NextLevelXP
		s.Level++
		s.NextLevelXP = nextThreshold(s.NextLevelXP)
		gained++
	}
	if xp < 0 {
		xp = 0
	}
	s.CurrentXP = xp
	return s, gained
}

// Reconcile updates the login streak for today. It reports whether anything
// changed.
func Reconcile(s Stats, today calendar.Day) (Stats, bool) {
	last, err := calendar.ParseDay(string(s.LastLoginDate))
	switch {
	case err == nil && last == today:
		if s.LastLoginDate != today {
			// legacy format, same day
			s.LastLoginDate = today
			return s, true
		}
		return s, false
	case err == nil && last == today.Prev():
		if s.Streak < math.MaxInt {
			s.Streak++
		}
	default:
		s.Streak = DefaultStreak
	}
	s.LastLoginDate = today
	return s, true
}

// nextThreshold grows a threshold by 1.5x, floored.
func nextThreshold(n int) int {
	half := n / 2
	if n > math.MaxInt-half {
		return math.MaxInt
	}
	return n + half
}

func addSaturating(a, b int) int {
	if b > 0 && a > math.MaxInt-b {
		return math.MaxInt
	}
	if b < 0 && a < math.MinInt-b {
		return math.MinInt
	}
	return a + b
}
