package command

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rpggio/streamos/internal/domain/activity"
	"github.com/rpggio/streamos/internal/domain/item"
	"github.com/rpggio/streamos/internal/domain/ledger"
	"github.com/rpggio/streamos/internal/repository"
	"github.com/rpggio/streamos/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type memItems struct {
	lists  map[item.List][]item.Item
	saves  int
	failAt int // Save call that fails, 0 for none
}

func (m *memItems) List(_ context.Context, list item.List) ([]item.Item, error) {
	items, ok := m.lists[list]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return append([]item.Item(nil), items...), nil
}

func (m *memItems) Save(_ context.Context, list item.List, items []item.Item) error {
	m.saves++
	if m.saves == m.failAt {
		return errors.New("disk full")
	}
	m.lists[list] = append([]item.Item(nil), items...)
	return nil
}

type stubLedger struct {
	stats    ledger.Stats
	calls    []int
	restored bool
	onGet    func()
}

func (l *stubLedger) Get(_ context.Context) (*ledger.Stats, error) {
	if l.onGet != nil {
		l.onGet()
	}
	stats := l.stats
	return &stats, nil
}

func (l *stubLedger) Restore(_ context.Context, stats ledger.Stats) error {
	l.stats = stats
	l.restored = true
	return nil
}

func (l *stubLedger) ApplyXP(_ context.Context, delta int, _ string) (*ledger.Result, error) {
	before := l.stats
	next, gained := ledger.Apply(l.stats, delta)
	l.stats = next
	l.calls = append(l.calls, delta)
	return &ledger.Result{Before: before, Stats: next, Delta: delta, LevelsGained: gained, LeveledUp: gained > 0}, nil
}

type recordedActivity struct {
	entries []activity.ActivityEntry
}

func (r *recordedActivity) Log(_ context.Context, entry *activity.ActivityEntry) error {
	r.entries = append(r.entries, *entry)
	return nil
}

type fixture struct {
	applier    *Applier
	items      *memItems
	ledger     *stubLedger
	activities *recordedActivity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		items:      &memItems{lists: map[item.List][]item.Item{}},
		ledger:     &stubLedger{stats: ledger.DefaultStats("2024-05-10")},
		activities: &recordedActivity{},
	}
	svc := item.NewService(f.items, &mocks.MarkerRepository{}, f.ledger, nil, nil)
	f.applier = NewApplier(svc, f.ledger, f.activities, nil)
	return f
}

func TestApplier_AppliesBatchInOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	raw := `{"commands":[
		{"type":"grant_xp","amount":40},
		{"type":"add_task","title":"Upload VOD"},
		{"type":"complete_task","query":"water"}
	]}`
	report, err := f.applier.ApplyRaw(ctx, []byte(raw), "assistant")
	require.NoError(t, err)
	require.Equal(t, 3, report.Applied)
	require.Equal(t, "Upload VOD", report.Added[0].Title)
	require.Equal(t, item.XPTask, report.Added[0].XPReward)
	require.Equal(t, "t4", report.Completed[0].ID)
	require.Equal(t, 40+item.XPTask, report.XP.Delta)
	require.Equal(t, []int{40, item.XPTask}, f.ledger.calls)

	require.Len(t, f.activities.entries, 1)
	entry := f.activities.entries[0]
	require.Equal(t, activity.TypeCommandApplied, entry.ActivityType)
	require.Equal(t, "grant_xp, add_task, complete_task", entry.Summary)
	require.Equal(t, 55, entry.Delta)
}

func TestApplier_InvalidBatchMutatesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	raw := `{"commands":[
		{"type":"grant_xp","amount":40},
		{"type":"replace_agenda","items":[{"title":"Stream","startTime":"25:00"}]}
	]}`
	_, err := f.applier.ApplyRaw(ctx, []byte(raw), "assistant")
	require.ErrorIs(t, err, ErrSchema)
	require.Empty(t, f.ledger.calls)
	require.Zero(t, f.items.saves)

	require.Len(t, f.activities.entries, 1)
	require.Equal(t, activity.TypeCommandRejected, f.activities.entries[0].ActivityType)
}

func TestApplier_UnmatchedTaskRejectsBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cmds := []Command{GrantXP{Amount: 100}, CompleteTask{Query: "xyzzy"}}
	_, err := f.applier.Apply(ctx, cmds, "assistant")
	require.ErrorIs(t, err, ErrNoMatch)
	require.Empty(t, f.ledger.calls)

	tasks := f.items.lists[item.ListTasks]
	for _, task := range tasks {
		require.False(t, task.Completed)
	}
}

func TestApplier_CompleteAfterReplaceConflicts(t *testing.T) {
	f := newFixture(t)

	cmds := []Command{
		ReplaceTasks{Items: []item.Draft{{Title: "Dishes"}}},
		CompleteTask{Query: "dishes"},
	}
	_, err := f.applier.Apply(context.Background(), cmds, "assistant")
	require.ErrorIs(t, err, ErrConflict)
	require.Zero(t, f.items.saves)
}

func TestApplier_ReplaceIsOverwrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cmds := []Command{ReplaceTasks{Items: []item.Draft{{Title: "Stretch", Category: item.CategoryHealth}, {Title: "Inbox zero"}}}}
	first, err := f.applier.Apply(ctx, cmds, "assistant")
	require.NoError(t, err)

	second, err := f.applier.Apply(ctx, cmds, "assistant")
	require.NoError(t, err)
	require.Len(t, second.Tasks, 2)
	require.Equal(t, first.Tasks[0].Title, second.Tasks[0].Title)
	require.NotEqual(t, first.Tasks[0].ID, second.Tasks[0].ID)
	require.Equal(t, second.Tasks, f.items.lists[item.ListTasks])
}

func TestApplier_SameTaskNotClaimedTwice(t *testing.T) {
	f := newFixture(t)

	cmds := []Command{CompleteTask{Query: "Drink Water"}, CompleteTask{Query: "Drink Water"}}
	_, err := f.applier.Apply(context.Background(), cmds, "assistant")
	require.ErrorIs(t, err, ErrNoMatch)
	require.Empty(t, f.ledger.calls)
}

func TestApplier_StorageFailureDuringResolve(t *testing.T) {
	items := &mocks.ItemRepository{}
	items.On("List", mock.Anything, item.ListTasks).Return(nil, errors.New("disk gone"))
	lg := &stubLedger{stats: ledger.DefaultStats("2024-05-10")}
	svc := item.NewService(items, &mocks.MarkerRepository{}, lg, nil, nil)
	applier := NewApplier(svc, lg, nil, nil)

	_, err := applier.Apply(context.Background(), []Command{CompleteTask{Query: "dishes"}}, "assistant")
	require.Error(t, err)
	require.Empty(t, lg.calls)
	items.AssertExpectations(t)
}

func TestApplier_AddTaskToFullListRejectsBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	full := make([]item.Item, item.MaxListLength)
	for i := range full {
		full[i] = item.Item{ID: fmt.Sprintf("t%d", i), Title: fmt.Sprintf("Task %d", i), XPReward: item.XPTask}
	}
	f.items.lists[item.ListTasks] = full

	_, err := f.applier.Apply(ctx, []Command{GrantXP{Amount: 100}, AddTask{Title: "One more"}}, "assistant")
	require.ErrorIs(t, err, ErrListFull)
	require.Empty(t, f.ledger.calls)
	require.Zero(t, f.items.saves)
	require.Len(t, f.items.lists[item.ListTasks], item.MaxListLength)

	require.Len(t, f.activities.entries, 1)
	require.Equal(t, activity.TypeCommandRejected, f.activities.entries[0].ActivityType)
}

func TestApplier_ReplaceMakesRoomForAdds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	drafts := make([]item.Draft, item.MaxListLength)
	for i := range drafts {
		drafts[i] = item.Draft{Title: fmt.Sprintf("Task %d", i)}
	}

	_, err := f.applier.Apply(ctx, []Command{ReplaceTasks{Items: drafts}, AddTask{Title: "One more"}}, "assistant")
	require.ErrorIs(t, err, ErrListFull)

	report, err := f.applier.Apply(ctx, []Command{ReplaceTasks{Items: drafts[:1]}, AddTask{Title: "One more"}}, "assistant")
	require.NoError(t, err)
	require.Len(t, f.items.lists[item.ListTasks], 2)
	require.Equal(t, "One more", report.Added[0].Title)
}

func TestApplier_StorageFailureMidBatchRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tasks := item.DefaultItems(item.ListTasks)
	f.items.lists[item.ListTasks] = tasks
	f.items.failAt = 2 // the add_task write, after complete_task has saved
	start := f.ledger.stats

	cmds := []Command{GrantXP{Amount: 40}, CompleteTask{Query: "water"}, AddTask{Title: "Upload VOD"}}
	_, err := f.applier.Apply(ctx, cmds, "assistant")
	require.Error(t, err)
	require.Equal(t, []int{40, item.XPTask}, f.ledger.calls)
	require.True(t, f.ledger.restored)
	require.Equal(t, start, f.ledger.stats)
	require.Equal(t, tasks, f.items.lists[item.ListTasks])

	require.Len(t, f.activities.entries, 1)
	require.Equal(t, activity.TypeCommandRejected, f.activities.entries[0].ActivityType)
}

func TestApplier_HoldsListsBetweenResolveAndApply(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := item.NewService(f.items, &mocks.MarkerRepository{}, f.ledger, nil, nil)
	f.applier = NewApplier(svc, f.ledger, f.activities, nil)

	// Once the batch has matched its target, complete the same task directly.
	done := make(chan error, 1)
	f.ledger.onGet = func() {
		f.ledger.onGet = nil
		go func() {
			_, err := svc.Complete(ctx, item.ListTasks, "t4")
			done <- err
		}()
		select {
		case err := <-done:
			t.Errorf("direct completion ran inside the batch: %v", err)
		case <-time.After(50 * time.Millisecond):
		}
	}

	report, err := f.applier.Apply(ctx, []Command{CompleteTask{Query: "water"}}, "assistant")
	require.NoError(t, err)
	require.Equal(t, "t4", report.Completed[0].ID)
	require.ErrorIs(t, <-done, item.ErrAlreadyCompleted)
	require.Equal(t, []int{item.XPTask}, f.ledger.calls)
}

func TestMatch(t *testing.T) {
	tasks := item.DefaultItems(item.ListTasks)

	tests := []struct {
		query string
		want  string
		ok    bool
	}{
		{"Drink Water", "t4", true},
		{"water", "t4", true},
		{"BACKPACK", "t2", true},
		{"dshs", "t1", true},
		{"xyzzy", "", false},
		{"   ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			id, ok := Match(tt.query, tasks, nil)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, id)
		})
	}

	tasks[3].Completed = true
	_, ok := Match("water", tasks, nil)
	require.False(t, ok)

	_, ok = Match("dishes", tasks, map[string]bool{"t1": true})
	require.False(t, ok)
}
