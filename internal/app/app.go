// Package app wires the domain services onto one SQLite store and owns the
// load-time sequence.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rpggio/streamos/internal/assistant"
	"github.com/rpggio/streamos/internal/calendar"
	"github.com/rpggio/streamos/internal/command"
	"github.com/rpggio/streamos/internal/domain/activity"
	"github.com/rpggio/streamos/internal/domain/badge"
	"github.com/rpggio/streamos/internal/domain/chat"
	"github.com/rpggio/streamos/internal/domain/item"
	"github.com/rpggio/streamos/internal/domain/ledger"
	"github.com/rpggio/streamos/internal/domain/project"
	"github.com/rpggio/streamos/internal/repository"
	"github.com/rpggio/streamos/internal/sqlite"
)

// Config holds the wiring options.
type Config struct {
	Clock     calendar.Clock
	Model     assistant.Model
	Assistant assistant.Options
	Logger    *slog.Logger
}

// App holds every service.
type App struct {
	Ledger   *ledger.Service
	Items    *item.Service
	Projects *project.Service
	Activity *activity.Service
	Chat     *chat.Service
	Badges   *badge.Tracker
	Commands *command.Applier
	Coach    *assistant.Coach
	Clock    calendar.Clock

	mu     sync.Mutex
	day    calendar.Day // last day the load sequence ran for
	backup *sqlite.BackupRepository
	prefs  *sqlite.PreferenceRepository
	logger *slog.Logger
}

// StatsView is the ledger with its evaluated badges.
type StatsView struct {
	Stats  ledger.Stats  `json:"stats"`
	Badges []badge.Badge `json:"badges"`
}

// XPView is one ledger mutation with the badges it produced.
type XPView struct {
	*ledger.Result
	Badges []badge.Badge `json:"badges"`
}

// BootReport describes what the load-time sequence changed.
type BootReport struct {
	Stats ledger.Stats `json:"stats"`
	Reset []item.List  `json:"reset,omitempty"`
}

// New wires the services onto db.
func New(db *sqlite.DB, cfg Config) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock, _ = calendar.NewClock("")
	}

	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), logger)
	itemRepo := sqlite.NewItemRepository(db)

	ledgerSvc := ledger.NewService(sqlite.NewLedgerRepository(db), activitySvc, clock, logger)
	tracker := badge.NewTracker(sqlite.NewBadgeCache(db), logger)
	ledgerSvc.Subscribe(tracker)

	itemSvc := item.NewService(itemRepo, itemRepo, ledgerSvc, activitySvc, logger)
	projectSvc := project.NewService(sqlite.NewProjectRepository(db), ledgerSvc, activitySvc, logger)
	chatSvc := chat.NewService(sqlite.NewChatRepository(db), logger)
	applier := command.NewApplier(itemSvc, ledgerSvc, activitySvc, logger)

	coach := assistant.NewCoach(chatSvc, ledgerSvc, applier, cfg.Model, cfg.Assistant, logger)

	return &App{
		Ledger:   ledgerSvc,
		Items:    itemSvc,
		Projects: projectSvc,
		Activity: activitySvc,
		Chat:     chatSvc,
		Badges:   tracker,
		Commands: applier,
		Coach:    coach,
		Clock:    clock,
		backup:   sqlite.NewBackupRepository(db),
		prefs:    sqlite.NewPreferenceRepository(db),
		logger:   logger,
	}
}

// Boot reconciles the streak, then resets each recurring list whose marker
// is not today. It runs once per load and again after a restore or reset.
func (a *App) Boot(ctx context.Context) (*BootReport, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.boot(ctx)
}

func (a *App) boot(ctx context.Context) (*BootReport, error) {
	today := a.Clock.Today()

	stats, err := a.Ledger.ReconcileOnLoad(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("reconciling ledger: %w", err)
	}

	report := &BootReport{Stats: *stats}
	for _, list := range item.Lists {
		reset, err := a.Items.ResetIfNewDay(ctx, list, today)
		if err != nil {
			return nil, fmt.Errorf("resetting %s: %w", list, err)
		}
		if reset {
			report.Reset = append(report.Reset, list)
		}
	}
	a.day = today
	a.logger.Info("boot complete", "day", today, "streak", stats.Streak, "lists_reset", len(report.Reset))
	return report, nil
}

// EnsureDay reruns the load sequence when the calendar day has moved on
// since the last one, so a long-running server rolls over at midnight.
// It returns nil when the day is unchanged.
func (a *App) EnsureDay(ctx context.Context) (*BootReport, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Clock.Today() == a.day {
		return nil, nil
	}
	a.logger.Info("day rolled over", "from", a.day, "to", a.Clock.Today())
	return a.boot(ctx)
}

// Stats returns the ledger with freshly evaluated badges.
func (a *App) Stats(ctx context.Context) (*StatsView, error) {
	stats, err := a.Ledger.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsView{Stats: *stats, Badges: badge.Evaluate(*stats)}, nil
}

// ApplyXP applies a delta and evaluates badges on the result.
func (a *App) ApplyXP(ctx context.Context, delta int, source string) (*XPView, error) {
	res, err := a.Ledger.ApplyXP(ctx, delta, source)
	if err != nil {
		return nil, err
	}
	return WithBadges(res), nil
}

// WithBadges evaluates badges for a ledger result. A nil result yields nil.
func WithBadges(res *ledger.Result) *XPView {
	if res == nil {
		return nil
	}
	return &XPView{Result: res, Badges: badge.Evaluate(res.Stats)}
}

// Export returns every persisted document as one object.
func (a *App) Export(ctx context.Context) (map[string]json.RawMessage, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.backup.Export(ctx)
}

// Import restores a snapshot and reruns the load sequence on it.
func (a *App) Import(ctx context.Context, snapshot map[string]json.RawMessage) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n, err := a.backup.Import(ctx, snapshot)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidInput) {
			return 0, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
		}
		return 0, err
	}
	if _, err := a.boot(ctx); err != nil {
		return n, err
	}
	a.logger.Info("backup restored", "documents", n)
	return n, nil
}

// ResetXP deletes the ledger and reboots onto default stats. Lists,
// projects and history are kept.
func (a *App) ResetXP(ctx context.Context) (*StatsView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.Ledger.Reset(ctx); err != nil {
		return nil, err
	}
	report, err := a.boot(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsView{Stats: report.Stats, Badges: badge.Evaluate(report.Stats)}, nil
}

// FactoryReset wipes all state and reboots onto defaults.
func (a *App) FactoryReset(ctx context.Context) (*BootReport, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.backup.Wipe(ctx); err != nil {
		return nil, err
	}
	a.logger.Warn("factory reset")
	return a.boot(ctx)
}

// Language returns the stored UI language, Spanish when unset.
func (a *App) Language(ctx context.Context) (chat.Language, error) {
	lang, err := a.prefs.Language(ctx)
	switch {
	case err == nil:
		return chat.ParseLanguage(lang), nil
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrCorrupt):
		return chat.LanguageSpanish, nil
	}
	return "", err
}

// SetLanguage stores the UI language.
func (a *App) SetLanguage(ctx context.Context, lang string) (chat.Language, error) {
	if lang != string(chat.LanguageEnglish) && lang != string(chat.LanguageSpanish) {
		return "", fmt.Errorf("%w: unsupported language %q", ErrInvalidInput, lang)
	}
	if err := a.prefs.SetLanguage(ctx, lang); err != nil {
		return "", err
	}
	return chat.Language(lang), nil
}
