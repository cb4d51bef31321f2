package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/simscope/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last write before a reload.
const DefaultDebounce = 500 * time.Millisecond

// Reloader watches a config file and hands every successfully parsed
// revision to OnChange. Invalid revisions are logged and skipped.
type Reloader struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func(*Config)

	Debounce time.Duration
	Logger   *slog.Logger
}

// NewReloader creates a file watcher for path. The parent directory is
// watched so that editors replacing the file are noticed too.
func NewReloader(path string, onChange func(*Config)) (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("resolve %q: %w", path, err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", path, err)
	}

	return &Reloader{
		watcher:  watcher,
		path:     abs,
		onChange: onChange,
		Debounce: DefaultDebounce,
		Logger:   logging.NewNop(),
	}, nil
}

// Run watches for changes. Blocks until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != r.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(r.Debounce, r.reload)
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.Logger.Warn("Config watcher error", "error", err)
		}
	}
}

func (r *Reloader) reload() {
	cfg, err := Load(r.path)
	if err != nil {
		r.Logger.Error("Config reload failed", "path", r.path, "error", err)
		return
	}
	r.Logger.Info("Config reloaded", "path", r.path)
	r.onChange(cfg)
}
