package root

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rpggio/streamos/internal/app"
	"github.com/rpggio/streamos/internal/assistant"
	"github.com/rpggio/streamos/internal/calendar"
	"github.com/rpggio/streamos/internal/config"
	"github.com/rpggio/streamos/internal/sqlite"
)

type configLoader func() (config.Config, error)

// openApp opens the store, wires the services and runs the load sequence.
// A nil model leaves the assistant unconfigured.
func openApp(ctx context.Context, cfg config.Config, model assistant.Model, logger *slog.Logger) (*app.App, func(), error) {
	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return nil, nil, fmt.Errorf("preparing database path: %w", err)
	}
	db, err := sqlite.Open(cfg.DB.Path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}

	clock, err := calendar.NewClock(cfg.Clock.Timezone)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("loading timezone: %w", err)
	}
	interval, err := cfg.Assistant.Interval()
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	timeout, err := cfg.Assistant.RequestTimeout()
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	a := app.New(db, app.Config{
		Clock: clock,
		Model: model,
		Assistant: assistant.Options{
			History:  cfg.Assistant.History,
			Interval: interval,
			Burst:    cfg.Assistant.Burst,
			Timeout:  timeout,
		},
		Logger: logger,
	})
	if _, err := a.Boot(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	return a, cleanup, nil
}

// cliLogger keeps one-shot commands quiet unless something goes wrong.
func cliLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// withApp loads config, opens the app for one command and closes it after.
func withApp(ctx context.Context, load configLoader, fn func(*app.App) error) error {
	cfg, err := load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a, cleanup, err := openApp(ctx, cfg, nil, cliLogger())
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(a)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
