package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// ErrNoMatch is returned when a pattern matches no file.
var ErrNoMatch = errors.New("no file matches input pattern")

// Event represents a change to the watched input.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Resolve expands pattern to a single input file. Plain paths are returned
// as-is so that a missing file surfaces as a read error. When a glob
// matches several files the most recently modified one wins.
// Supports recursive patterns like ~/exports/**/health_stats*.json.
func Resolve(pattern string) (string, error) {
	if !hasMeta(pattern) {
		return pattern, nil
	}

	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoMatch, pattern)
	}

	var (
		newest   string
		newestAt int64
	)
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if ts := info.ModTime().UnixNano(); newest == "" || ts > newestAt || (ts == newestAt && m > newest) {
			newest, newestAt = m, ts
		}
	}
	if newest == "" {
		return "", fmt.Errorf("%w: %s", ErrNoMatch, pattern)
	}
	return newest, nil
}

func hasMeta(pattern string) bool {
	for _, c := range pattern {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

// Watcher reports changes to one input file. It watches the parent
// directory so that editors and sync tools replacing the file by rename are
// still seen. For a glob only the static directory prefix is watched, not
// the subdirectories a ** may reach.
type Watcher struct {
	fsw     *fsnotify.Watcher
	Events  chan Event
	pattern string
}

// New creates a Watcher for the file at path (or every file matching the
// glob pattern, when path is one).
func New(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	base, _ := doublestar.SplitPattern(filepath.ToSlash(abs))
	dir := filepath.FromSlash(base)
	if !hasMeta(abs) {
		dir = filepath.Dir(abs)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		fsw:     fsw,
		Events:  make(chan Event, 16),
		pattern: filepath.ToSlash(abs),
	}, nil
}

// Matches reports whether name refers to the watched input.
func (w *Watcher) Matches(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	ok, err := doublestar.Match(w.pattern, filepath.ToSlash(abs))
	return err == nil && ok
}

// Start begins listening for file events. It blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	defer w.fsw.Close()
	defer close(w.Events)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.Matches(ev.Name) {
				continue
			}
			// Forward content changes; a rename away is followed by a create.
			switch {
			case ev.Op&fsnotify.Write != 0,
				ev.Op&fsnotify.Create != 0,
				ev.Op&fsnotify.Remove != 0,
				ev.Op&fsnotify.Rename != 0:
				select {
				case w.Events <- Event{Path: ev.Name, Op: ev.Op}:
				case <-ctx.Done():
					return
				}
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}
