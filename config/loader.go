package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces editor save bursts into one reload
const DefaultDebounce = 100 * time.Millisecond

// Loader holds the current configuration and reloads it when the file changes
type Loader struct {
	path     string
	log      *slog.Logger
	debounce time.Duration

	mu       sync.RWMutex
	config   *Config
	onChange []func(*Config)
}

// NewLoader creates a loader for path
// A nil log uses the process default at the time of each message
func NewLoader(path string, log *slog.Logger) *Loader {
	return &Loader{path: path, log: log, debounce: DefaultDebounce}
}

func (l *Loader) logger() *slog.Logger {
	if l.log == nil {
		return slog.Default()
	}
	return l.log
}

// Load reads the file and makes it current
func (l *Loader) Load() (*Config, error) {
	cfg, err := Load(l.path)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.config = cfg
	l.mu.Unlock()
	return cfg, nil
}

// Config returns the current configuration, nil before Load
func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config
}

// OnChange registers a callback run after each successful reload
func (l *Loader) OnChange(cb func(*Config)) {
	l.mu.Lock()
	l.onChange = append(l.onChange, cb)
	l.mu.Unlock()
}

// Watch reloads on writes to the config file until ctx is cancelled
// The parent directory is watched so editors that replace the file are seen
func (l *Loader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	go l.watchLoop(ctx, watcher)
	return nil
}

func (l *Loader) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	name := filepath.Base(l.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(l.debounce, l.reload)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			l.logger().Warn("config watcher error", "error", err)
		}
	}
}

// reload keeps the previous configuration when the new file is invalid
func (l *Loader) reload() {
	cfg, err := Load(l.path)
	if err != nil {
		l.logger().Warn("config reload rejected", "path", l.path, "error", err)
		return
	}

	l.mu.Lock()
	l.config = cfg
	callbacks := slices.Clone(l.onChange)
	l.mu.Unlock()

	l.logger().Info("config reloaded", "path", l.path)
	for _, cb := range callbacks {
		cb(cfg)
	}
}
