package db

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the database files must be quiet before a
// change is published
const DefaultDebounce = 250 * time.Millisecond

// Watcher republishes snapshots when another process writes the database
type Watcher struct {
	db       *DB
	fs       *fsnotify.Watcher
	base     string
	debounce time.Duration
}

// NewWatcher watches the directory holding the database file
func NewWatcher(db *DB, debounce time.Duration) (*Watcher, error) {
	if db.path == "" {
		return nil, fmt.Errorf("watching database: no file path")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(db.path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(db.path), err)
	}

	return &Watcher{
		db:       db,
		fs:       fw,
		base:     filepath.Base(db.path),
		debounce: debounce,
	}, nil
}

// relevant matches the database file and its -journal, -wal and -shm files
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !strings.HasPrefix(filepath.Base(ev.Name), w.base) {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}

// Run blocks until ctx is done, refreshing subscribers after each burst of
// file changes.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.db.log.WithError(err).Warn("watching database")

		case <-fire:
			fire = nil
			if err := w.db.Refresh(ctx); err != nil {
				w.db.log.WithError(err).Error("refreshing after external change")
				continue
			}
			w.db.log.Debug("database changed on disk", "path", w.db.path)
		}
	}
}
