package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rpggio/streamos/internal/calendar"
	"github.com/rpggio/streamos/internal/domain/activity"
	"github.com/rpggio/streamos/internal/domain/ledger"
	"github.com/rpggio/streamos/internal/repository"
	"github.com/rpggio/streamos/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const today = calendar.Day("2024-05-10")

type recordingObserver struct {
	seen []ledger.Stats
}

func (o *recordingObserver) StatsChanged(_ context.Context, stats ledger.Stats) {
	o.seen = append(o.seen, stats)
}

func TestLedgerService_GetSeedsDefaultsWhenAbsent(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.LedgerRepository{}
	defaults := ledger.DefaultStats(today)

	repo.On("Load", ctx).Return(nil, repository.ErrNotFound)
	repo.On("Save", ctx, &defaults).Return(nil)

	svc := ledger.NewService(repo, nil, calendar.Fixed(today), nil)
	stats, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, defaults, *stats)
	repo.AssertExpectations(t)
}

func TestLedgerService_GetReseedsCorruptState(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.LedgerRepository{}
	defaults := ledger.DefaultStats(today)

	repo.On("Load", ctx).Return(nil, repository.ErrCorrupt)
	repo.On("Save", ctx, &defaults).Return(nil)

	svc := ledger.NewService(repo, nil, calendar.Fixed(today), nil)
	stats, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Level)
	require.Equal(t, 500, stats.NextLevelXP)
	repo.AssertExpectations(t)
}

func TestLedgerService_GetReseedsInvalidState(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.LedgerRepository{}
	defaults := ledger.DefaultStats(today)

	repo.On("Load", ctx).Return(&ledger.Stats{Level: 0, NextLevelXP: -3, Streak: 1}, nil)
	repo.On("Save", ctx, &defaults).Return(nil)

	svc := ledger.NewService(repo, nil, calendar.Fixed(today), nil)
	stats, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, defaults, *stats)
}

func TestLedgerService_GetPropagatesStorageFailure(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.LedgerRepository{}
	repo.On("Load", ctx).Return(nil, errors.New("database is locked"))

	svc := ledger.NewService(repo, nil, calendar.Fixed(today), nil)
	_, err := svc.Get(ctx)
	require.Error(t, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLedgerService_ApplyXPLevelsUpAndNotifies(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.LedgerRepository{}
	acts := &mocks.ActivityRepository{}
	start := ledger.DefaultStats(today)

	repo.On("Load", ctx).Return(&start, nil)
	repo.On("Save", ctx, mock.MatchedBy(func(s *ledger.Stats) bool {
		return s.Level == 3 && s.CurrentXP == 50 && s.NextLevelXP == 1125
	})).Return(nil)
	acts.On("Log", ctx, mock.MatchedBy(func(e *activity.ActivityEntry) bool {
		return e.ActivityType == activity.TypeXPApplied && e.Delta == 1300
	})).Return(nil).Once()
	acts.On("Log", ctx, mock.MatchedBy(func(e *activity.ActivityEntry) bool {
		return e.ActivityType == activity.TypeLevelUp && e.Level == 3
	})).Return(nil).Once()

	obs := &recordingObserver{}
	svc := ledger.NewService(repo, acts, calendar.Fixed(today), nil)
	svc.Subscribe(obs)

	res, err := svc.ApplyXP(ctx, 1300, "test")
	require.NoError(t, err)
	require.True(t, res.LeveledUp)
	require.Equal(t, 2, res.LevelsGained)
	require.Equal(t, start, res.Before)
	require.Len(t, obs.seen, 1)
	require.Equal(t, 3, obs.seen[0].Level)
	repo.AssertExpectations(t)
	acts.AssertExpectations(t)
}

func TestLedgerService_ApplyXPSaveFailureLeavesNoNotification(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.LedgerRepository{}
	start := ledger.DefaultStats(today)
	repo.On("Load", ctx).Return(&start, nil)
	repo.On("Save", ctx, mock.Anything).Return(errors.New("readonly"))

	obs := &recordingObserver{}
	svc := ledger.NewService(repo, nil, calendar.Fixed(today), nil)
	svc.Subscribe(obs)

	_, err := svc.ApplyXP(ctx, 10, "test")
	require.Error(t, err)
	require.Empty(t, obs.seen)
}

func TestLedgerService_ReconcileOnLoad(t *testing.T) {
	tests := []struct {
		name       string
		last       calendar.Day
		wantStreak int
		wantSave   bool
	}{
		{name: "yesterday increments", last: today.Prev(), wantStreak: 6, wantSave: true},
		{name: "gap resets", last: today.AddDays(-2), wantStreak: 1, wantSave: true},
		{name: "today holds", last: today, wantStreak: 5, wantSave: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := &mocks.LedgerRepository{}
			acts := &mocks.ActivityRepository{}
			stored := ledger.Stats{Level: 2, CurrentXP: 40, NextLevelXP: 750, Streak: 5, LastLoginDate: tt.last}

			repo.On("Load", ctx).Return(&stored, nil)
			if tt.wantSave {
				repo.On("Save", ctx, mock.MatchedBy(func(s *ledger.Stats) bool {
					return s.Streak == tt.wantStreak && s.LastLoginDate == today
				})).Return(nil)
				acts.On("Log", ctx, mock.Anything).Return(nil)
			}

			svc := ledger.NewService(repo, acts, calendar.Fixed(today), nil)
			stats, err := svc.ReconcileOnLoad(ctx, today)
			require.NoError(t, err)
			require.Equal(t, tt.wantStreak, stats.Streak)
			require.Equal(t, today, stats.LastLoginDate)
			require.Equal(t, 40, stats.CurrentXP)
			if !tt.wantSave {
				repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestLedgerService_ReconcileRejectsInvalidDay(t *testing.T) {
	svc := ledger.NewService(&mocks.LedgerRepository{}, nil, calendar.Fixed(today), nil)
	_, err := svc.ReconcileOnLoad(context.Background(), "yesterday")
	require.ErrorIs(t, err, ledger.ErrInvalidInput)
}

func TestLedgerService_LoadNormalizesOverflowingXP(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.LedgerRepository{}
	stored := ledger.Stats{Level: 1, CurrentXP: 600, NextLevelXP: 500, Streak: 1, LastLoginDate: today}

	repo.On("Load", ctx).Return(&stored, nil)
	repo.On("Save", ctx, mock.MatchedBy(func(s *ledger.Stats) bool {
		return s.Level == 2 && s.CurrentXP == 100 && s.NextLevelXP == 750
	})).Return(nil)

	svc := ledger.NewService(repo, nil, calendar.Fixed(today), nil)
	stats, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Level)
	repo.AssertExpectations(t)
}

func TestLedgerService_Reset(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.LedgerRepository{}
	acts := &mocks.ActivityRepository{}
	repo.On("Delete", ctx).Return(repository.ErrNotFound)
	acts.On("Log", ctx, mock.MatchedBy(func(e *activity.ActivityEntry) bool {
		return e.ActivityType == activity.TypeLedgerReset
	})).Return(nil)

	svc := ledger.NewService(repo, acts, calendar.Fixed(today), nil)
	require.NoError(t, svc.Reset(ctx))
	acts.AssertExpectations(t)
}

func TestLedgerService_RestoreWritesStateBack(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.LedgerRepository{}
	earlier := ledger.Stats{Level: 2, CurrentXP: 40, NextLevelXP: 750, Streak: 3, LastLoginDate: today}
	repo.On("Save", ctx, &earlier).Return(nil)

	obs := &recordingObserver{}
	svc := ledger.NewService(repo, nil, calendar.Fixed(today), nil)
	svc.Subscribe(obs)

	require.NoError(t, svc.Restore(ctx, earlier))
	require.Equal(t, []ledger.Stats{earlier}, obs.seen)
	repo.AssertExpectations(t)

	err := svc.Restore(ctx, ledger.Stats{Level: 0, NextLevelXP: 500, Streak: 1})
	require.ErrorIs(t, err, ledger.ErrInvalidInput)
	repo.AssertNumberOfCalls(t, "Save", 1)
}
