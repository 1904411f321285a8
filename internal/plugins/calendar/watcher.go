package calendar

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/keyxmakerx/almanac/internal/apperror"
)

// settleDelay is how long a file must stay quiet before it is re-read.
// Editors often write a file in several steps.
const settleDelay = 150 * time.Millisecond

// DirLoader keeps the calendars in a directory in sync with the service.
// Each *.yaml, *.yml or *.json file becomes the calendar named by its stem.
type DirLoader struct {
	svc    CalendarService
	dir    string
	logger *slog.Logger
}

// NewDirLoader creates a loader for dir.
func NewDirLoader(svc CalendarService, dir string, logger *slog.Logger) *DirLoader {
	return &DirLoader{svc: svc, dir: dir, logger: logger}
}

// calendarIDFromPath returns the calendar id for a calendar file, or false
// for files the loader ignores.
func calendarIDFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return "", false
	}
	ext := strings.ToLower(filepath.Ext(base))
	switch ext {
	case ".yaml", ".yml", ".json":
		return strings.TrimSuffix(base, filepath.Ext(base)), true
	default:
		return "", false
	}
}

// LoadAll ingests every calendar file in the directory. Invalid files are
// logged and skipped; only a directory that cannot be read is an error.
func (l *DirLoader) LoadAll(ctx context.Context) error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return err
	}
	loaded := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if l.load(ctx, filepath.Join(l.dir, e.Name())) {
			loaded++
		}
	}
	l.logger.Info("calendar dir loaded", slog.String("dir", l.dir), slog.Int("calendars", loaded))
	return nil
}

// load ingests one file and reports whether a snapshot was swapped in.
func (l *DirLoader) load(ctx context.Context, path string) bool {
	id, ok := calendarIDFromPath(path)
	if !ok {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Warn("calendar file unreadable", slog.String("path", path), slog.String("error", err.Error()))
		return false
	}
	snap, err := l.svc.ImportCalendar(WithActor(ctx, "file:"+path), id, SourceFile, data)
	if err != nil {
		attrs := []any{slog.String("path", path), slog.String("error", err.Error())}
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && len(appErr.Fields) > 0 {
			attrs = append(attrs, slog.Any("fields", appErr.Fields))
		}
		l.logger.Warn("calendar file rejected, keeping previous snapshot", attrs...)
		return false
	}
	l.logger.Debug("calendar file loaded", slog.String("id", id), slog.String("hash", snap.Hash))
	return true
}

// unload removes the calendar of a deleted file. Calendars that were
// replaced through the API since are kept, and a removed preset override
// falls back to the preset.
func (l *DirLoader) unload(ctx context.Context, path string) {
	id, ok := calendarIDFromPath(path)
	if !ok {
		return
	}
	snap, err := l.svc.GetCalendar(ctx, id)
	if err != nil || snap.Source != SourceFile {
		return
	}
	if err := l.svc.DeleteCalendar(WithActor(ctx, "file:"+path), id); err != nil {
		l.logger.Warn("calendar unload failed", slog.String("id", id), slog.String("error", err.Error()))
		return
	}
	if err := l.svc.LoadPresets(ctx); err != nil {
		l.logger.Warn("restoring presets failed", slog.String("error", err.Error()))
	}
	l.logger.Info("calendar file removed", slog.String("id", id))
}

// Watch processes file events in the directory until ctx is cancelled.
func (l *DirLoader) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(l.dir); err != nil {
		return err
	}
	l.logger.Info("watcher: started", slog.String("dir", l.dir))

	pending := make(map[string]bool)
	timer := time.NewTimer(settleDelay)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			l.logger.Info("watcher: stopped")
			return nil

		case <-timer.C:
			for path := range pending {
				l.load(ctx, path)
			}
			clear(pending)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if _, ok := calendarIDFromPath(ev.Name); !ok {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[ev.Name] = true
				timer.Reset(settleDelay)

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// Rename fires on the old path; the new path arrives as Create.
				delete(pending, ev.Name)
				l.unload(ctx, ev.Name)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
