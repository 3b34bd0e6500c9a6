package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/rpggio/streamos/internal/domain/activity"
	"github.com/rpggio/streamos/internal/domain/item"
	"github.com/rpggio/streamos/internal/domain/ledger"
	"github.com/sahilm/fuzzy"
)

// Items runs a batch with the list lock held; see item.Service.Batch.
type Items interface {
	Batch(ctx context.Context, fn func(b *item.Batch) error) error
}

// Ledger grants and revokes XP, and can put back an earlier state.
type Ledger interface {
	Get(ctx context.Context) (*ledger.Stats, error)
	ApplyXP(ctx context.Context, delta int, source string) (*ledger.Result, error)
	Restore(ctx context.Context, stats ledger.Stats) error
}

// ActivityRepository records applied and rejected batches.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
}

// Report summarizes an applied batch.
type Report struct {
	Applied   int            `json:"applied"`
	Added     []item.Item    `json:"added,omitempty"`
	Completed []item.Item    `json:"completed,omitempty"`
	Agenda    []item.Item    `json:"agenda,omitempty"`
	Tasks     []item.Item    `json:"tasks,omitempty"`
	XP        *ledger.Result `json:"xp,omitempty"`
}

// Applier applies command batches all-or-nothing: every command is
// validated and resolved before the first mutation, resolution and
// application share one hold of the list lock, and a batch interrupted by
// storage is rolled back.
type Applier struct {
	mu         sync.Mutex
	items      Items
	ledger     Ledger
	activities ActivityRepository
	logger     *slog.Logger
}

// NewApplier creates a new Applier.
func NewApplier(items Items, ledger Ledger, activities ActivityRepository, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{items: items, ledger: ledger, activities: activities, logger: logger}
}

// step is a command with everything needed to apply it resolved.
type step struct {
	cmd    Command
	taskID string
}

// ApplyRaw parses and applies a payload. Rejections are recorded.
func (a *Applier) ApplyRaw(ctx context.Context, raw []byte, source string) (*Report, error) {
	cmds, err := Parse(raw)
	if err != nil {
		a.Reject(ctx, source, err)
		return nil, err
	}
	return a.Apply(ctx, cmds, source)
}

// Apply resolves and applies cmds in order.
func (a *Applier) Apply(ctx context.Context, cmds []Command, source string) (*Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var report *Report
	err := a.items.Batch(ctx, func(b *item.Batch) error {
		steps, err := a.resolve(ctx, b, cmds)
		if err != nil {
			return err
		}
		before, err := a.ledger.Get(ctx)
		if err != nil {
			return fmt.Errorf("reading ledger: %w", err)
		}

		rep := &Report{}
		for i, st := range steps {
			if err := a.applyStep(ctx, b, st, source, rep); err != nil {
				a.logger.Error("command batch interrupted", "source", source, "index", i, "kind", st.cmd.Kind(), "error", err)
				if rep.XP != nil {
					if rerr := a.ledger.Restore(ctx, *before); rerr != nil {
						a.logger.Error("ledger not restored", "error", rerr)
					}
				}
				return fmt.Errorf("applying %s: %w", st.cmd.Kind(), err)
			}
			rep.Applied++
		}
		report = rep
		return nil
	})
	if err != nil {
		a.Reject(ctx, source, err)
		return nil, err
	}

	details, _ := Marshal(cmds)
	a.log(ctx, &activity.ActivityEntry{
		ActivityType: activity.TypeCommandApplied,
		Source:       source,
		Delta:        xpDelta(report.XP),
		Level:        level(report.XP),
		Summary:      summarize(cmds),
		Details:      string(details),
	})
	a.logger.Info("commands applied", "source", source, "count", report.Applied)
	return report, nil
}

// Reject records a batch that was refused without any mutation.
func (a *Applier) Reject(ctx context.Context, source string, reason error) {
	a.logger.Warn("command batch rejected", "source", source, "error", reason)
	a.log(ctx, &activity.ActivityEntry{
		ActivityType: activity.TypeCommandRejected,
		Source:       source,
		Summary:      reason.Error(),
	})
}

func (a *Applier) resolve(ctx context.Context, b *item.Batch, cmds []Command) ([]step, error) {
	if len(cmds) == 0 {
		return nil, ErrEmptyBatch
	}

	var tasks []item.Item
	loadTasks := func() error {
		if tasks != nil {
			return nil
		}
		var err error
		if tasks, err = b.List(ctx, item.ListTasks); err != nil {
			return fmt.Errorf("loading tasks: %w", err)
		}
		return nil
	}

	claimed := make(map[string]bool)
	replaced := false
	taskCount := -1 // projected length of the task list, -1 until known
	steps := make([]step, 0, len(cmds))

	for i, cmd := range cmds {
		st := step{cmd: cmd}
		switch c := cmd.(type) {
		case GrantXP:
		case ReplaceAgenda:
			if err := item.ValidateDrafts(item.ListAgenda, c.Items); err != nil {
				return nil, fmt.Errorf("command %d: %w", i, err)
			}
		case ReplaceTasks:
			if err := item.ValidateDrafts(item.ListTasks, c.Items); err != nil {
				return nil, fmt.Errorf("command %d: %w", i, err)
			}
			replaced = true
			taskCount = len(c.Items)
		case AddTask:
			if err := item.ValidateDraft(item.ListTasks, c.draft()); err != nil {
				return nil, fmt.Errorf("command %d: %w", i, err)
			}
			if taskCount < 0 {
				if err := loadTasks(); err != nil {
					return nil, err
				}
				taskCount = len(tasks)
			}
			taskCount++
			if taskCount > item.MaxListLength {
				return nil, fmt.Errorf("command %d: %w (%d items)", i, ErrListFull, item.MaxListLength)
			}
		case CompleteTask:
			if replaced {
				return nil, fmt.Errorf("command %d: %w: complete_task after replace_tasks", i, ErrConflict)
			}
			if err := loadTasks(); err != nil {
				return nil, err
			}
			id, ok := Match(c.Query, tasks, claimed)
			if !ok {
				return nil, fmt.Errorf("command %d: %w: %q", i, ErrNoMatch, c.Query)
			}
			claimed[id] = true
			st.taskID = id
		default:
			return nil, fmt.Errorf("command %d: %w", i, ErrUnknownKind)
		}
		steps = append(steps, st)
	}
	return steps, nil
}

func (a *Applier) applyStep(ctx context.Context, b *item.Batch, st step, source string, report *Report) error {
	switch c := st.cmd.(type) {
	case GrantXP:
		res, err := a.ledger.ApplyXP(ctx, c.Amount, source)
		if err != nil {
			return err
		}
		report.XP = ledger.Merge(report.XP, res)
	case ReplaceAgenda:
		out, err := b.Replace(ctx, item.ListAgenda, c.Items)
		if err != nil {
			return err
		}
		report.Agenda = out.Items
		report.XP = ledger.Merge(report.XP, out.XP)
	case ReplaceTasks:
		out, err := b.Replace(ctx, item.ListTasks, c.Items)
		if err != nil {
			return err
		}
		report.Tasks = out.Items
		report.XP = ledger.Merge(report.XP, out.XP)
	case AddTask:
		it, err := b.Create(ctx, item.CreateRequest{List: item.ListTasks, Draft: c.draft()})
		if err != nil {
			return err
		}
		report.Added = append(report.Added, *it)
	case CompleteTask:
		out, err := b.Complete(ctx, item.ListTasks, st.taskID)
		if err != nil {
			return err
		}
		report.Completed = append(report.Completed, *out.Item)
		report.XP = ledger.Merge(report.XP, out.XP)
	}
	return nil
}

// Match returns the id of the open task whose title best matches query. A
// case-insensitive substring hit wins over a fuzzy subsequence match; ties
// go to the shortest title.
func Match(query string, tasks []item.Item, skip map[string]bool) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", false
	}

	var open []item.Item
	for _, t := range tasks {
		if !t.Completed && !skip[t.ID] {
			open = append(open, t)
		}
	}

	best := -1
	for i, t := range open {
		title := strings.ToLower(t.Title)
		if title == q {
			return t.ID, true
		}
		if strings.Contains(title, q) && (best < 0 || len(t.Title) < len(open[best].Title)) {
			best = i
		}
	}
	if best >= 0 {
		return open[best].ID, true
	}

	titles := make([]string, len(open))
	for i, t := range open {
		titles[i] = strings.ToLower(t.Title)
	}
	matches := fuzzy.Find(q, titles)
	if len(matches) == 0 {
		return "", false
	}
	return open[matches[0].Index].ID, true
}

func (a *Applier) log(ctx context.Context, entry *activity.ActivityEntry) {
	if a.activities == nil {
		return
	}
	_ = a.activities.Log(ctx, entry)
}

func summarize(cmds []Command) string {
	kinds := make([]string, len(cmds))
	for i, c := range cmds {
		kinds[i] = string(c.Kind())
	}
	return strings.Join(kinds, ", ")
}

func xpDelta(res *ledger.Result) int {
	if res == nil {
		return 0
	}
	return res.Delta
}

func level(res *ledger.Result) int {
	if res == nil {
		return 0
	}
	return res.Stats.Level
}
