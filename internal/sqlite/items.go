package sqlite

import (
	"context"
	"fmt"

	"github.com/rpggio/streamos/internal/calendar"
	"github.com/rpggio/streamos/internal/domain/badge"
	"github.com/rpggio/streamos/internal/domain/item"
	"github.com/rpggio/streamos/internal/repository"
)

// ItemRepository implements item.Repository and item.MarkerRepository on the
// documents table
type ItemRepository struct {
	docs *DocumentStore
}

// NewItemRepository creates a new ItemRepository
func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{docs: NewDocumentStore(db)}
}

func listKey(list item.List) (string, error) {
	switch list {
	case item.ListAgenda:
		return KeyAgenda, nil
	case item.ListTasks:
		return KeyTasks, nil
	case item.ListChecklist:
		return KeyChecklist, nil
	}
	return "", fmt.Errorf("%w: unknown list %q", repository.ErrInvalidInput, list)
}

// List returns the stored items of a list
func (r *ItemRepository) List(ctx context.Context, list item.List) ([]item.Item, error) {
	key, err := listKey(list)
	if err != nil {
		return nil, err
	}
	var items []item.Item
	if err := r.docs.getJSON(ctx, key, &items); err != nil {
		return nil, err
	}
	if items == nil {
		return nil, fmt.Errorf("%w: %s is null", repository.ErrCorrupt, key)
	}
	return items, nil
}

// Save replaces the stored items of a list
func (r *ItemRepository) Save(ctx context.Context, list item.List, items []item.Item) error {
	key, err := listKey(list)
	if err != nil {
		return err
	}
	if items == nil {
		items = []item.Item{}
	}
	return r.docs.putJSON(ctx, key, items)
}

// GetResetDate returns the day the list was last reset
func (r *ItemRepository) GetResetDate(ctx context.Context, list item.List) (calendar.Day, error) {
	var raw string
	if err := r.docs.getJSON(ctx, keyResetPrefix+string(list), &raw); err != nil {
		return "", err
	}
	day, err := calendar.ParseDay(raw)
	if err != nil {
		return "", fmt.Errorf("%w: reset marker %q", repository.ErrCorrupt, raw)
	}
	return day, nil
}

// SetResetDate records the day the list was reset
func (r *ItemRepository) SetResetDate(ctx context.Context, list item.List, day calendar.Day) error {
	return r.docs.putJSON(ctx, keyResetPrefix+string(list), day)
}

// BadgeCache implements badge.CacheRepository on the documents table
type BadgeCache struct {
	docs *DocumentStore
}

// NewBadgeCache creates a new BadgeCache
func NewBadgeCache(db *DB) *BadgeCache {
	return &BadgeCache{docs: NewDocumentStore(db)}
}

// SaveBadges stores the last evaluated badge set
func (c *BadgeCache) SaveBadges(ctx context.Context, badges []badge.Badge) error {
	return c.docs.putJSON(ctx, KeyBadges, badges)
}

// PreferenceRepository stores user preferences on the documents table
type PreferenceRepository struct {
	docs *DocumentStore
}

// NewPreferenceRepository creates a new PreferenceRepository
func NewPreferenceRepository(db *DB) *PreferenceRepository {
	return &PreferenceRepository{docs: NewDocumentStore(db)}
}

// Language returns the stored UI language
func (p *PreferenceRepository) Language(ctx context.Context) (string, error) {
	var lang string
	if err := p.docs.getJSON(ctx, KeyLanguage, &lang); err != nil {
		return "", err
	}
	return lang, nil
}

// SetLanguage stores the UI language
func (p *PreferenceRepository) SetLanguage(ctx context.Context, lang string) error {
	return p.docs.putJSON(ctx, KeyLanguage, lang)
}
