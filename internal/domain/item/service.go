package item

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rpggio/streamos/internal/calendar"
	"github.com/rpggio/streamos/internal/domain/activity"
	"github.com/rpggio/streamos/internal/domain/ledger"
	"github.com/rpggio/streamos/internal/repository"
)

// Service handles recurring item business logic. Every list mutation and its
// XP side effect happen under one lock.
type Service struct {
	mu         sync.Mutex
	items      Repository
	markers    MarkerRepository
	ledger     Ledger
	activities ActivityRepository
	logger     *slog.Logger
}

// NewService creates a new item service.
func NewService(
	items Repository,
	markers MarkerRepository,
	ledger Ledger,
	activities ActivityRepository,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		items:      items,
		markers:    markers,
		ledger:     ledger,
		activities: activities,
		logger:     logger,
	}
}

// CreateRequest describes an item creation request.
type CreateRequest struct {
	List  List
	Draft Draft
}

// Outcome is a list mutation together with its ledger effect, if any.
type Outcome struct {
	Item *Item          `json:"item,omitempty"`
	XP   *ledger.Result `json:"xp,omitempty"`
}

// ReplaceOutcome is the result of a bulk list overwrite.
type ReplaceOutcome struct {
	Items []Item         `json:"items"`
	XP    *ledger.Result `json:"xp,omitempty"`
}

// List returns the items of a list, seeding the template when absent.
func (s *Service) List(ctx context.Context, list List) ([]Item, error) {
	if _, err := ParseList(string(list)); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, list)
}

// Create adds a new item. Agenda blocks stay sorted by start time.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Item, error) {
	if err := ValidateDraft(req.List, req.Draft); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(ctx, req)
}

// create must be called with mu held and a validated draft.
func (s *Service) create(ctx context.Context, req CreateRequest) (*Item, error) {
	items, err := s.load(ctx, req.List)
	if err != nil {
		return nil, err
	}
	if len(items) >= MaxListLength {
		return nil, fmt.Errorf("%w: list is full", ErrInvalidInput)
	}

	it := fromDraft(req.List, req.Draft)
	items = append(items, it)
	if req.List == ListAgenda {
		sortAgenda(items)
	}

	if err := s.items.Save(ctx, req.List, items); err != nil {
		return nil, fmt.Errorf("saving %s: %w", req.List, err)
	}
	return &it, nil
}

// Toggle flips an item's completion and grants or revokes its reward.
func (s *Service) Toggle(ctx context.Context, list List, id string) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toggle(ctx, list, id, 0)
}

// CompleteFocus finishes a focus session on an agenda block: the block is
// completed and a bonus is granted on top of its reward.
func (s *Service) CompleteFocus(ctx context.Context, id string) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx, ListAgenda)
	if err != nil {
		return nil, err
	}
	idx := indexOf(items, id)
	if idx < 0 {
		return nil, ErrItemNotFound
	}
	if items[idx].Completed {
		return nil, ErrAlreadyCompleted
	}
	return s.toggle(ctx, ListAgenda, id, XPFocusBonus)
}

// Complete marks an item completed and grants its reward. Unlike Toggle it
// never reverts a completed item.
func (s *Service) Complete(ctx context.Context, list List, id string) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete(ctx, list, id)
}

// complete must be called with mu held.
func (s *Service) complete(ctx context.Context, list List, id string) (*Outcome, error) {
	items, err := s.load(ctx, list)
	if err != nil {
		return nil, err
	}
	idx := indexOf(items, id)
	if idx < 0 {
		return nil, ErrItemNotFound
	}
	if items[idx].Completed {
		return nil, ErrAlreadyCompleted
	}
	return s.toggle(ctx, list, id, 0)
}

// Delete removes an item. A completed item's reward is revoked exactly once.
func (s *Service) Delete(ctx context.Context, list List, id string) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx, list)
	if err != nil {
		return nil, err
	}
	idx := indexOf(items, id)
	if idx < 0 {
		return nil, ErrItemNotFound
	}

	removed := items[idx]
	next := slices.Delete(slices.Clone(items), idx, idx+1)
	if err := s.items.Save(ctx, list, next); err != nil {
		return nil, fmt.Errorf("saving %s: %w", list, err)
	}

	out := &Outcome{Item: &removed}
	if removed.Completed && removed.XPReward != 0 {
		res, err := s.ledger.ApplyXP(ctx, -removed.XPReward, string(list))
		if err != nil {
			s.restore(ctx, list, items)
			return nil, fmt.Errorf("revoking xp: %w", err)
		}
		out.XP = res
	}

	s.logActivity(ctx, &activity.ActivityEntry{
		ActivityType: activity.TypeItemDeleted,
		Source:       string(list),
		Delta:        xpDelta(out.XP),
		Summary:      fmt.Sprintf("deleted %q", removed.Title),
	})
	return out, nil
}

// Move swaps an item with its neighbour. Moving past either end is a no-op.
func (s *Service) Move(ctx context.Context, list List, id string, dir Direction) ([]Item, error) {
	if dir != DirectionUp && dir != DirectionDown {
		return nil, fmt.Errorf("%w: direction must be up or down", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx, list)
	if err != nil {
		return nil, err
	}
	idx := indexOf(items, id)
	if idx < 0 {
		return nil, ErrItemNotFound
	}

	target := idx - 1
	if dir == DirectionDown {
		target = idx + 1
	}
	if target < 0 || target >= len(items) {
		return items, nil
	}

	items[idx], items[target] = items[target], items[idx]
	if err := s.items.Save(ctx, list, items); err != nil {
		return nil, fmt.Errorf("saving %s: %w", list, err)
	}
	return items, nil
}

// Replace overwrites a list. Every new item gets a fresh id and starts
// incomplete. Rewards of completed items being dropped are revoked so a
// replacement cannot be used to keep XP for work that no longer exists.
func (s *Service) Replace(ctx context.Context, list List, drafts []Draft) (*ReplaceOutcome, error) {
	if list != ListAgenda && list != ListTasks {
		return nil, ErrNotReplaceable
	}
	if err := ValidateDrafts(list, drafts); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replace(ctx, list, drafts)
}

// replace must be called with mu held and validated drafts.
func (s *Service) replace(ctx context.Context, list List, drafts []Draft) (*ReplaceOutcome, error) {
	prev, err := s.load(ctx, list)
	if err != nil {
		return nil, err
	}

	next := make([]Item, 0, len(drafts))
	for _, d := range drafts {
		next = append(next, fromDraft(list, d))
	}
	if list == ListAgenda {
		sortAgenda(next)
	}

	if err := s.items.Save(ctx, list, next); err != nil {
		return nil, fmt.Errorf("saving %s: %w", list, err)
	}

	out := &ReplaceOutcome{Items: next}
	if earned := completedXP(prev); earned != 0 {
		res, err := s.ledger.ApplyXP(ctx, -earned, string(list))
		if err != nil {
			s.restore(ctx, list, prev)
			return nil, fmt.Errorf("revoking xp: %w", err)
		}
		out.XP = res
	}

	s.logger.Info("list replaced", "list", list, "items", len(next))
	return out, nil
}

// ResetIfNewDay clears completion flags when the list's reset marker is not
// today. It never touches the ledger.
func (s *Service) ResetIfNewDay(ctx context.Context, list List, today calendar.Day) (bool, error) {
	if _, err := ParseList(string(list)); err != nil {
		return false, err
	}
	if !today.Valid() {
		return false, fmt.Errorf("%w: invalid day %q", ErrInvalidInput, today)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	marker, err := s.markers.GetResetDate(ctx, list)
	switch {
	case err == nil && marker == today:
		return false, nil
	case err != nil && !errors.Is(err, repository.ErrNotFound) && !errors.Is(err, repository.ErrCorrupt):
		return false, fmt.Errorf("reading reset marker: %w", err)
	}

	items, err := s.load(ctx, list)
	if err != nil {
		return false, err
	}

	cleared := 0
	for i := range items {
		if items[i].Completed {
			items[i].Completed = false
			cleared++
		}
	}
	if cleared > 0 {
		if err := s.items.Save(ctx, list, items); err != nil {
			return false, fmt.Errorf("saving %s: %w", list, err)
		}
	}
	if err := s.markers.SetResetDate(ctx, list, today); err != nil {
		return false, fmt.Errorf("writing reset marker: %w", err)
	}

	s.logActivity(ctx, &activity.ActivityEntry{
		ActivityType: activity.TypeListReset,
		Source:       string(list),
		Summary:      fmt.Sprintf("reset %s: %d cleared", list, cleared),
	})
	s.logger.Info("list reset", "list", list, "day", today, "cleared", cleared)
	return true, nil
}

// toggle must be called with mu held.
func (s *Service) toggle(ctx context.Context, list List, id string, bonus int) (*Outcome, error) {
	items, err := s.load(ctx, list)
	if err != nil {
		return nil, err
	}
	idx := indexOf(items, id)
	if idx < 0 {
		return nil, ErrItemNotFound
	}

	next := slices.Clone(items)
	next[idx].Completed = !next[idx].Completed
	if err := s.items.Save(ctx, list, next); err != nil {
		return nil, fmt.Errorf("saving %s: %w", list, err)
	}

	delta := next[idx].XPReward
	if !next[idx].Completed {
		delta = -delta
	}

	out := &Outcome{Item: &next[idx]}
	if bonus != 0 {
		// The bonus is its own grant so reversing the toggle later revokes only the reward.
		res, err := s.ledger.ApplyXP(ctx, bonus, "focus")
		if err != nil {
			s.restore(ctx, list, items)
			return nil, fmt.Errorf("granting bonus: %w", err)
		}
		out.XP = res
	}
	if delta != 0 {
		res, err := s.ledger.ApplyXP(ctx, delta, string(list))
		if err != nil {
			s.restore(ctx, list, items)
			if out.XP != nil {
				if _, rerr := s.ledger.ApplyXP(ctx, -bonus, "focus"); rerr != nil {
					s.logger.Error("bonus not reverted", "error", rerr)
				}
			}
			return nil, fmt.Errorf("applying xp: %w", err)
		}
		out.XP = ledger.Merge(out.XP, res)
	}
	return out, nil
}

// load must be called with mu held.
func (s *Service) load(ctx context.Context, list List) ([]Item, error) {
	items, err := s.items.List(ctx, list)
	switch {
	case err == nil:
		return items, nil
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrCorrupt):
		if errors.Is(err, repository.ErrCorrupt) {
			s.logger.Warn("stored list unreadable, reseeding", "list", list, "error", err)
		}
		seeded := DefaultItems(list)
		if err := s.items.Save(ctx, list, seeded); err != nil {
			return nil, fmt.Errorf("seeding %s: %w", list, err)
		}
		return seeded, nil
	default:
		return nil, fmt.Errorf("loading %s: %w", list, err)
	}
}

func (s *Service) restore(ctx context.Context, list List, items []Item) {
	if err := s.items.Save(ctx, list, items); err != nil {
		s.logger.Error("list restore failed", "list", list, "error", err)
	}
}

func (s *Service) logActivity(ctx context.Context, entry *activity.ActivityEntry) {
	if s.activities == nil {
		return
	}
	_ = s.activities.Log(ctx, entry)
}

func fromDraft(list List, d Draft) Item {
	it := Item{
		ID:             uuid.NewString(),
		Title:          strings.TrimSpace(d.Title),
		Desc:           d.Desc,
		TranslationKey: d.TranslationKey,
	}
	switch list {
	case ListAgenda:
		it.Kind = d.Kind
		if it.Kind == "" {
			it.Kind = defaultKind
		}
		it.StartTime = d.StartTime
		it.EndTime = d.EndTime
		it.XPReward = AgendaXP(it.Kind)
	case ListTasks:
		it.Category = d.Category
		if it.Category == "" {
			it.Category = defaultTaskCat
		}
		it.XPReward = XPTask
	}
	if d.XPReward != nil {
		it.XPReward = *d.XPReward
	}
	return it
}

func sortAgenda(items []Item) {
	slices.SortStableFunc(items, func(a, b Item) int {
		return strings.Compare(a.StartTime, b.StartTime)
	})
}

func indexOf(items []Item, id string) int {
	return slices.IndexFunc(items, func(it Item) bool { return it.ID == id })
}

func completedXP(items []Item) int {
	total := 0
	for _, it := range items {
		if it.Completed {
			total += it.XPReward
		}
	}
	return total
}

func xpDelta(res *ledger.Result) int {
	if res == nil {
		return 0
	}
	return res.Delta
}
