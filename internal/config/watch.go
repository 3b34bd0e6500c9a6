package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// LevelWatcher re-reads the config file when it changes and applies its log
// level to a slog.LevelVar.
type LevelWatcher struct {
	path    string
	level   *slog.LevelVar
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// WatchLevel starts watching path. The directory is watched rather than the
// file so editors that replace the file on save are still seen.
func WatchLevel(ctx context.Context, path string, level *slog.LevelVar, logger *slog.Logger) (*LevelWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &LevelWatcher{
		path:    abs,
		level:   level,
		logger:  logger,
		watcher: watcher,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go w.run(ctx)
	return w, nil
}

// Stop ends the watch and waits for the event loop to exit.
func (w *LevelWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		if err := w.watcher.Close(); err != nil {
			w.logger.Warn("config watcher close failed", "error", err)
		}
	})
}

func (w *LevelWatcher) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

func (w *LevelWatcher) reload() {
	// Writers truncate before writing; an empty file is a save in progress.
	if info, err := os.Stat(w.path); err != nil || info.Size() == 0 {
		return
	}
	cfg := Default()
	if err := loadFromFile(w.path, &cfg); err != nil {
		w.logger.Warn("config reload failed", "path", w.path, "error", err)
		return
	}
	next := ParseLevel(cfg.Log.Level)
	if next == w.level.Level() {
		return
	}
	w.level.Set(next)
	w.logger.Info("log level changed", "level", next)
}
