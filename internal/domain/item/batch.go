package item

import (
	"context"
	"slices"
)

// Batch is the service seen from inside Service.Batch: the list lock is held
// for its whole life, and every list it mutates is saved first so a failed
// batch can be put back.
type Batch struct {
	s     *Service
	saved map[List][]Item
}

// Batch runs fn with the list lock held. When fn returns an error every list
// the batch touched is restored to its state before fn ran.
func (s *Service) Batch(ctx context.Context, fn func(b *Batch) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := &Batch{s: s, saved: make(map[List][]Item)}
	if err := fn(b); err != nil {
		b.rollback(ctx)
		return err
	}
	return nil
}

// List returns the current items of a list.
func (b *Batch) List(ctx context.Context, list List) ([]Item, error) {
	if _, err := ParseList(string(list)); err != nil {
		return nil, err
	}
	return b.s.load(ctx, list)
}

// Create is Service.Create without taking the lock.
func (b *Batch) Create(ctx context.Context, req CreateRequest) (*Item, error) {
	if err := ValidateDraft(req.List, req.Draft); err != nil {
		return nil, err
	}
	if err := b.save(ctx, req.List); err != nil {
		return nil, err
	}
	return b.s.create(ctx, req)
}

// Complete is Service.Complete without taking the lock.
func (b *Batch) Complete(ctx context.Context, list List, id string) (*Outcome, error) {
	if err := b.save(ctx, list); err != nil {
		return nil, err
	}
	return b.s.complete(ctx, list, id)
}

// Replace is Service.Replace without taking the lock.
func (b *Batch) Replace(ctx context.Context, list List, drafts []Draft) (*ReplaceOutcome, error) {
	if list != ListAgenda && list != ListTasks {
		return nil, ErrNotReplaceable
	}
	if err := ValidateDrafts(list, drafts); err != nil {
		return nil, err
	}
	if err := b.save(ctx, list); err != nil {
		return nil, err
	}
	return b.s.replace(ctx, list, drafts)
}

func (b *Batch) save(ctx context.Context, list List) error {
	if _, ok := b.saved[list]; ok {
		return nil
	}
	items, err := b.s.load(ctx, list)
	if err != nil {
		return err
	}
	b.saved[list] = slices.Clone(items)
	return nil
}

func (b *Batch) rollback(ctx context.Context) {
	for list, items := range b.saved {
		b.s.restore(ctx, list, items)
		b.s.logger.Warn("list rolled back", "list", list)
	}
}
