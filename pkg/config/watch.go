package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a [Watcher] waits for writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads a configuration file when it changes.
type Watcher struct {
	Path     string
	Debounce time.Duration
	Logger   *log.Logger
}

// Watch runs a [Watcher] for path with default settings.
func Watch(ctx context.Context, path string, logger *log.Logger, onChange func(Config)) error {
	w := &Watcher{Path: path, Logger: logger}
	return w.Run(ctx, onChange)
}

// Run blocks until ctx is cancelled, calling onChange with every valid
// reload. Invalid files are logged and skipped so the previous settings stay
// in effect. The parent directory is watched, so editors that replace the
// file by renaming are handled.
func (w *Watcher) Run(ctx context.Context, onChange func(Config)) error {
	path := w.Path
	if path == "" {
		path = DefaultPath()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := w.Logger
	if logger == nil {
		logger = log.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	logger.Debug("watching config", "path", path)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	name := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "error", err)
		case <-timer.C:
			cfg, err := Load(path)
			if err != nil {
				logger.Warn("ignoring invalid config", "path", path, "error", err)
				continue
			}
			logger.Info("config reloaded", "path", path)
			onChange(cfg)
		}
	}
}
