package mocks

import (
	"context"

	"github.com/rpggio/streamos/internal/calendar"
	"github.com/rpggio/streamos/internal/domain/activity"
	"github.com/rpggio/streamos/internal/domain/chat"
	"github.com/rpggio/streamos/internal/domain/item"
	"github.com/rpggio/streamos/internal/domain/ledger"
	"github.com/rpggio/streamos/internal/domain/project"
	"github.com/stretchr/testify/mock"
)

// LedgerRepository is a mock for ledger.Repository.
type LedgerRepository struct {
	mock.Mock
}

func (m *LedgerRepository) Load(ctx context.Context) (*ledger.Stats, error) {
	args := m.Called(ctx)
	if stats, ok := args.Get(0).(*ledger.Stats); ok {
		return stats, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LedgerRepository) Save(ctx context.Context, stats *ledger.Stats) error {
	args := m.Called(ctx, stats)
	return args.Error(0)
}

func (m *LedgerRepository) Delete(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Ledger is a mock for the XP applier consumed by item and project services.
type Ledger struct {
	mock.Mock
}

func (m *Ledger) ApplyXP(ctx context.Context, delta int, source string) (*ledger.Result, error) {
	args := m.Called(ctx, delta, source)
	if res, ok := args.Get(0).(*ledger.Result); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

// ItemRepository is a mock for item.Repository.
type ItemRepository struct {
	mock.Mock
}

func (m *ItemRepository) List(ctx context.Context, list item.List) ([]item.Item, error) {
	args := m.Called(ctx, list)
	if items, ok := args.Get(0).([]item.Item); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ItemRepository) Save(ctx context.Context, list item.List, items []item.Item) error {
	args := m.Called(ctx, list, items)
	return args.Error(0)
}

// MarkerRepository is a mock for item.MarkerRepository.
type MarkerRepository struct {
	mock.Mock
}

func (m *MarkerRepository) GetResetDate(ctx context.Context, list item.List) (calendar.Day, error) {
	args := m.Called(ctx, list)
	if day, ok := args.Get(0).(calendar.Day); ok {
		return day, args.Error(1)
	}
	return "", args.Error(1)
}

func (m *MarkerRepository) SetResetDate(ctx context.Context, list item.List, day calendar.Day) error {
	args := m.Called(ctx, list, day)
	return args.Error(0)
}

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Update(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProjectRepository) List(ctx context.Context, opts project.ListOptions) ([]project.Project, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ChatRepository is a mock for chat.Repository.
type ChatRepository struct {
	mock.Mock
}

func (m *ChatRepository) CreateSession(ctx context.Context, sess *chat.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *ChatRepository) GetSession(ctx context.Context, id string) (*chat.Session, error) {
	args := m.Called(ctx, id)
	if sess, ok := args.Get(0).(*chat.Session); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ChatRepository) UpdateSession(ctx context.Context, sess *chat.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *ChatRepository) ListSessions(ctx context.Context, status *chat.SessionStatus) ([]chat.Session, error) {
	args := m.Called(ctx, status)
	if list, ok := args.Get(0).([]chat.Session); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ChatRepository) AppendMessage(ctx context.Context, msg *chat.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *ChatRepository) ListMessages(ctx context.Context, sessionID string, limit int) ([]chat.Message, error) {
	args := m.Called(ctx, sessionID, limit)
	if list, ok := args.Get(0).([]chat.Message); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
