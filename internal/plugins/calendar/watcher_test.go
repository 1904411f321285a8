package calendar

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const tinyNative = `name: Tiny
months:
  - {name: One, numeric_representation: 1, number_of_days: 5, number_of_leap_year_days: 5}
weekdays:
  - {name: Day}
time: {hours_in_day: 1, minutes_in_hour: 1, seconds_in_minute: 60}
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestCalendarIDFromPath(t *testing.T) {
	tests := []struct {
		path string
		id   string
		ok   bool
	}{
		{"/cals/eberron.yaml", "eberron", true},
		{"/cals/greyhawk.YML", "greyhawk", true},
		{"sc-export.json", "sc-export", true},
		{"/cals/.hidden.yaml", "", false},
		{"/cals/notes.txt", "", false},
		{"/cals/eberron.yaml~", "", false},
	}
	for _, tt := range tests {
		id, ok := calendarIDFromPath(tt.path)
		if id != tt.id || ok != tt.ok {
			t.Errorf("calendarIDFromPath(%q) = %q, %v; want %q, %v", tt.path, id, ok, tt.id, tt.ok)
		}
	}
}

func TestDirLoader_LoadAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tiny.yaml", tinyNative)
	writeFile(t, dir, "sc.json", simpleCalendarV1)
	writeFile(t, dir, "broken.yaml", "months: [")
	writeFile(t, dir, "readme.md", "# not a calendar")

	svc := newTestService(t)
	loader := NewDirLoader(svc, dir, discardLogger())
	if err := loader.LoadAll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, id := range []string{"tiny", "sc"} {
		snap, err := svc.GetCalendar(context.Background(), id)
		if err != nil {
			t.Fatalf("%s: %v", id, err)
		}
		if snap.Source != SourceFile {
			t.Errorf("%s: expected source file, got %s", id, snap.Source)
		}
	}
	if _, err := svc.GetCalendar(context.Background(), "broken"); err == nil {
		t.Error("expected broken file to be skipped")
	}
}

func TestDirLoader_LoadAllMissingDir(t *testing.T) {
	loader := NewDirLoader(newTestService(t), filepath.Join(t.TempDir(), "absent"), discardLogger())
	if err := loader.LoadAll(context.Background()); err == nil {
		t.Error("expected error for a missing directory")
	}
}

func TestDirLoader_Watch(t *testing.T) {
	dir := t.TempDir()
	svc := newTestService(t)
	loader := NewDirLoader(svc, dir, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loader.Watch(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)

	path := writeFile(t, dir, "tiny.yaml", tinyNative)
	eventually(t, "tiny to load", func() bool {
		_, err := svc.GetCalendar(ctx, "tiny")
		return err == nil
	})
	first, _ := svc.GetCalendar(ctx, "tiny")

	// An invalid edit keeps the previous snapshot.
	writeFile(t, dir, "tiny.yaml", "name: Tiny\nmonths: []\n")
	time.Sleep(4 * settleDelay)
	if cur, _ := svc.GetCalendar(ctx, "tiny"); cur != first {
		t.Error("expected invalid edit to keep the previous snapshot")
	}

	// A valid edit swaps it.
	writeFile(t, dir, "tiny.yaml", tinyNative+"description: edited\n")
	eventually(t, "tiny to reload", func() bool {
		cur, err := svc.GetCalendar(ctx, "tiny")
		return err == nil && cur.Calendar.Description == "edited"
	})

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	eventually(t, "tiny to unload", func() bool {
		_, err := svc.GetCalendar(ctx, "tiny")
		return err != nil
	})
}

func TestDirLoader_RemovedOverrideRestoresPreset(t *testing.T) {
	dir := t.TempDir()
	svc := newTestService(t)
	path := writeFile(t, dir, "gregorian.yaml", tinyNative)
	loader := NewDirLoader(svc, dir, discardLogger())
	if err := loader.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	snap, _ := svc.GetCalendar(context.Background(), "gregorian")
	if snap.Name != "Tiny" {
		t.Fatalf("expected file to override preset, got %s", snap.Name)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	loader.unload(context.Background(), path)

	snap, err := svc.GetCalendar(context.Background(), "gregorian")
	if err != nil {
		t.Fatalf("expected preset back, got %v", err)
	}
	if snap.Source != SourcePreset {
		t.Errorf("expected preset source, got %s", snap.Source)
	}
}

func TestDirLoader_UnloadKeepsAPICalendars(t *testing.T) {
	svc := newTestService(t)
	loader := NewDirLoader(svc, t.TempDir(), discardLogger())
	loader.unload(context.Background(), "/somewhere/gregorian.yaml")
	if _, err := svc.GetCalendar(context.Background(), "gregorian"); err != nil {
		t.Errorf("expected preset calendar to survive unrelated file removal: %v", err)
	}
}
