package ledger

import (
	"math"
	"math/rand"
	"testing"

	"github.com/rpggio/streamos/internal/calendar"
	"github.com/stretchr/testify/require"
)

const today = calendar.Day("2024-05-10")

func TestApply_SingleLevelUp(t *testing.T) {
	next, gained := Apply(DefaultStats(today), 500)
	require.Equal(t, 2, next.Level)
	require.Equal(t, 0, next.CurrentXP)
	require.Equal(t, 750, next.NextLevelXP)
	require.Equal(t, 1, gained)
}

func TestApply_MultiLevelJump(t *testing.T) {
	next, gained := Apply(DefaultStats(today), 1300)
	require.Equal(t, 3, next.Level)
	require.Equal(t, 50, next.CurrentXP)
	require.Equal(t, 1125, next.NextLevelXP)
	require.Equal(t, 2, gained)
}

func TestApply_RevocationClampsWithoutDeleveling(t *testing.T) {
	s := Stats{Level: 4, CurrentXP: 20, NextLevelXP: 1687, Streak: 2, LastLoginDate: today}
	next, gained := Apply(s, -50)
	require.Equal(t, 0, next.CurrentXP)
	require.Equal(t, 4, next.Level)
	require.Equal(t, 1687, next.NextLevelXP)
	require.Zero(t, gained)
}

func TestApply_ThresholdFloors(t *testing.T) {
	s := Stats{Level: 3, CurrentXP: 0, NextLevelXP: 1125, Streak: 1, LastLoginDate: today}
	next, _ := Apply(s, 1125)
	require.Equal(t, 1687, next.NextLevelXP)
}

func TestApply_ExtremeDeltas(t *testing.T) {
	next, gained := Apply(DefaultStats(today), math.MaxInt)
	require.Greater(t, gained, 1)
	require.GreaterOrEqual(t, next.CurrentXP, 0)
	require.Less(t, next.CurrentXP, next.NextLevelXP)

	next, gained = Apply(DefaultStats(today), math.MinInt)
	require.Equal(t, 0, next.CurrentXP)
	require.Equal(t, 1, next.Level)
	require.Zero(t, gained)
}

func TestApply_NonNegativeSequenceKeepsInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := DefaultStats(today)
	for i := 0; i < 500; i++ {
		prev := s
		s, _ = Apply(s, rng.Intn(4000))
		require.GreaterOrEqual(t, s.Level, prev.Level)
		require.GreaterOrEqual(t, s.NextLevelXP, prev.NextLevelXP)
		require.GreaterOrEqual(t, s.CurrentXP, 0)
		require.Less(t, s.CurrentXP, s.NextLevelXP)
	}
}

func TestApply_ToggleRoundTrip(t *testing.T) {
	start := Stats{Level: 2, CurrentXP: 100, NextLevelXP: 750, Streak: 3, LastLoginDate: today}
	granted, _ := Apply(start, 25)
	revoked, _ := Apply(granted, -25)
	require.Equal(t, start, revoked)
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name       string
		last       calendar.Day
		streak     int
		wantStreak int
		wantChange bool
	}{
		{name: "same day", last: today, streak: 4, wantStreak: 4, wantChange: false},
		{name: "yesterday", last: today.Prev(), streak: 4, wantStreak: 5, wantChange: true},
		{name: "two days ago", last: today.AddDays(-2), streak: 4, wantStreak: 1, wantChange: true},
		{name: "unset", last: "", streak: 4, wantStreak: 1, wantChange: true},
		{name: "malformed", last: "not a date", streak: 9, wantStreak: 1, wantChange: true},
		{name: "future", last: today.AddDays(3), streak: 2, wantStreak: 1, wantChange: true},
		{name: "legacy yesterday", last: "Thu May 09 2024", streak: 1, wantStreak: 2, wantChange: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Stats{Level: 2, CurrentXP: 10, NextLevelXP: 750, Streak: tt.streak, LastLoginDate: tt.last}
			out, changed := Reconcile(in, today)
			require.Equal(t, tt.wantChange, changed)
			require.Equal(t, tt.wantStreak, out.Streak)
			require.Equal(t, today, out.LastLoginDate)
			require.Equal(t, in.Level, out.Level)
			require.Equal(t, in.CurrentXP, out.CurrentXP)
		})
	}
}

func TestStats_Validate(t *testing.T) {
	require.NoError(t, DefaultStats(today).Validate())
	require.ErrorIs(t, Stats{Level: 0, NextLevelXP: 500, Streak: 1}.Validate(), ErrInvalidStats)
	require.ErrorIs(t, Stats{Level: 1, NextLevelXP: 0, Streak: 1}.Validate(), ErrInvalidStats)
	require.ErrorIs(t, Stats{Level: 1, NextLevelXP: 500, CurrentXP: -1, Streak: 1}.Validate(), ErrInvalidStats)
	require.ErrorIs(t, Stats{Level: 1, NextLevelXP: 500, Streak: 0}.Validate(), ErrInvalidStats)
}

func TestMerge(t *testing.T) {
	first := &Result{Before: Stats{Level: 1}, Stats: Stats{Level: 2}, Delta: 25, LevelsGained: 1, LeveledUp: true}
	second := &Result{Before: Stats{Level: 2}, Stats: Stats{Level: 2, CurrentXP: 5}, Delta: 30}

	merged := Merge(first, second)
	require.Equal(t, Stats{Level: 1}, merged.Before)
	require.Equal(t, Stats{Level: 2, CurrentXP: 5}, merged.Stats)
	require.Equal(t, 55, merged.Delta)
	require.Equal(t, 1, merged.LevelsGained)
	require.True(t, merged.LeveledUp)

	require.Same(t, second, Merge(nil, second))
	require.Same(t, first, Merge(first, nil))
}
