package audit

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/keyxmakerx/almanac/internal/apperror"
	"github.com/keyxmakerx/almanac/internal/plugins/calendar"
)

// --- Mock Repository ---

// mockAuditRepo implements AuditRepository for testing.
type mockAuditRepo struct {
	logFn       func(ctx context.Context, entry *AuditEntry) error
	listFn      func(ctx context.Context, limit, offset int) ([]AuditEntry, int, error)
	listByCalFn func(ctx context.Context, calendarID string, limit int) ([]AuditEntry, error)
	statsFn     func(ctx context.Context, calendarID string) (*CalendarStats, error)
}

func (m *mockAuditRepo) Log(ctx context.Context, entry *AuditEntry) error {
	if m.logFn != nil {
		return m.logFn(ctx, entry)
	}
	return nil
}

func (m *mockAuditRepo) List(ctx context.Context, limit, offset int) ([]AuditEntry, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit, offset)
	}
	return nil, 0, nil
}

func (m *mockAuditRepo) ListByCalendar(ctx context.Context, calendarID string, limit int) ([]AuditEntry, error) {
	if m.listByCalFn != nil {
		return m.listByCalFn(ctx, calendarID, limit)
	}
	return nil, nil
}

func (m *mockAuditRepo) GetCalendarStats(ctx context.Context, calendarID string) (*CalendarStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx, calendarID)
	}
	return &CalendarStats{}, nil
}

// --- Test Helpers ---

func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", expectedCode)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status %d, got %d (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// --- Log Tests ---

func TestLog_Success(t *testing.T) {
	var got *AuditEntry
	svc := NewAuditService(&mockAuditRepo{
		logFn: func(_ context.Context, entry *AuditEntry) error {
			got = entry
			return nil
		},
	})

	err := svc.Log(context.Background(), &AuditEntry{CalendarID: "harptos", Action: calendar.ActionPut})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.CalendarID != "harptos" {
		t.Errorf("entry not passed to repository: %+v", got)
	}
}

func TestLog_MissingFields(t *testing.T) {
	svc := NewAuditService(&mockAuditRepo{})

	assertAppError(t, svc.Log(context.Background(), &AuditEntry{Action: calendar.ActionPut}), 400)
	assertAppError(t, svc.Log(context.Background(), &AuditEntry{CalendarID: "harptos"}), 400)
}

func TestLog_RepoError(t *testing.T) {
	svc := NewAuditService(&mockAuditRepo{
		logFn: func(context.Context, *AuditEntry) error { return errors.New("disk full") },
	})
	assertAppError(t, svc.Log(context.Background(), &AuditEntry{CalendarID: "x", Action: "a"}), 500)
}

// --- Activity Tests ---

func TestGetActivity_PageClamped(t *testing.T) {
	var gotLimit, gotOffset int
	svc := NewAuditService(&mockAuditRepo{
		listFn: func(_ context.Context, limit, offset int) ([]AuditEntry, int, error) {
			gotLimit, gotOffset = limit, offset
			return []AuditEntry{{ID: 1}}, 1, nil
		},
	})

	feed, err := svc.GetActivity(context.Background(), -3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if feed.Page != 1 || gotOffset != 0 || gotLimit != perPage {
		t.Errorf("expected page 1 at offset 0 limit %d, got page %d offset %d limit %d", perPage, feed.Page, gotOffset, gotLimit)
	}
}

func TestGetActivity_Offset(t *testing.T) {
	var gotOffset int
	svc := NewAuditService(&mockAuditRepo{
		listFn: func(_ context.Context, _, offset int) ([]AuditEntry, int, error) {
			gotOffset = offset
			return nil, 0, nil
		},
	})
	if _, err := svc.GetActivity(context.Background(), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotOffset != 2*perPage {
		t.Errorf("expected offset %d, got %d", 2*perPage, gotOffset)
	}
}

func TestGetActivity_RepoError(t *testing.T) {
	svc := NewAuditService(&mockAuditRepo{
		listFn: func(context.Context, int, int) ([]AuditEntry, int, error) { return nil, 0, errors.New("boom") },
	})
	_, err := svc.GetActivity(context.Background(), 1)
	assertAppError(t, err, 500)
}

// --- History Tests ---

func TestGetCalendarHistory(t *testing.T) {
	svc := NewAuditService(&mockAuditRepo{
		listByCalFn: func(_ context.Context, id string, limit int) ([]AuditEntry, error) {
			if limit != maxCalendarHistoryEntries {
				t.Errorf("expected limit %d, got %d", maxCalendarHistoryEntries, limit)
			}
			return []AuditEntry{{CalendarID: id}}, nil
		},
		statsFn: func(_ context.Context, id string) (*CalendarStats, error) {
			return &CalendarStats{TotalChanges: 1}, nil
		},
	})

	h, err := svc.GetCalendarHistory(context.Background(), "harptos")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h.Entries) != 1 || h.Stats.TotalChanges != 1 {
		t.Errorf("unexpected history %+v", h)
	}
}

func TestGetCalendarHistory_EmptyID(t *testing.T) {
	svc := NewAuditService(&mockAuditRepo{})
	_, err := svc.GetCalendarHistory(context.Background(), "")
	assertAppError(t, err, 400)
}

// --- Recorder Tests ---

func TestCalendarRecorder(t *testing.T) {
	repo := NewAuditRepository(10)
	rec := NewCalendarRecorder(NewAuditService(repo), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// A request context that is already done must not lose the entry.
	rec.RecordChange(ctx, calendar.Change{
		CalendarID: "harptos",
		Action:     calendar.ActionAdvanced,
		Actor:      "api:192.0.2.1",
		Version:    4,
		Details:    map[string]any{"seconds": int64(60)},
	})

	entries, total, err := repo.List(context.Background(), 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Fatalf("expected 1 entry, got %d", total)
	}
	e := entries[0]
	if e.Action != calendar.ActionAdvanced || e.Actor != "api:192.0.2.1" || e.Version != 4 {
		t.Errorf("unexpected entry %+v", e)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCalendarRecorder_LogsRejectedChanges(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	rec := NewCalendarRecorder(NewAuditService(NewAuditRepository(10)), logger)

	rec.RecordChange(context.Background(), calendar.Change{Action: calendar.ActionPut, Actor: "file:/cal/x.yaml"})

	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "calendar change not audited") {
		t.Fatalf("expected a warning, got %q", out)
	}
	if !strings.Contains(out, "calendar ID is required") || !strings.Contains(out, "actor=file:/cal/x.yaml") {
		t.Errorf("warning lacks the cause or actor: %q", out)
	}
}

func TestCalendarRecorder_LeavesInternalFailuresToService(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	repo := &mockAuditRepo{
		logFn: func(ctx context.Context, entry *AuditEntry) error {
			return errors.New("disk on fire")
		},
	}
	rec := NewCalendarRecorder(NewAuditService(repo), logger)

	rec.RecordChange(context.Background(), calendar.Change{CalendarID: "gregorian", Action: calendar.ActionPut})

	if buf.Len() != 0 {
		t.Errorf("expected no recorder warning, got %q", buf.String())
	}
}

func TestCalendarRecorder_WiredIntoService(t *testing.T) {
	repo := NewAuditRepository(10)
	svc := calendar.NewCalendarService(calendar.NewCalendarRepository(), nil,
		calendar.WithChangeRecorder(NewCalendarRecorder(NewAuditService(repo), discardLogger())))
	ctx := context.Background()
	if err := svc.LoadPresets(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.AdvanceTime(ctx, "gregorian", calendar.AdvanceInput{Seconds: 3600}); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteCalendar(ctx, "gregorian"); err != nil {
		t.Fatal(err)
	}

	entries, err := repo.ListByCalendar(ctx, "gregorian", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Action != calendar.ActionDeleted || entries[1].Action != calendar.ActionAdvanced {
		t.Errorf("unexpected history %+v", entries)
	}
}
