package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/keyxmakerx/almanac/internal/apperror"
)

// perPage is the number of entries per page of the activity feed.
const perPage = 50

// maxCalendarHistoryEntries caps the history returned for one calendar.
const maxCalendarHistoryEntries = 100

// AuditService handles business logic for the audit log.
type AuditService interface {
	// Log records an entry. Failures are logged; callers may ignore the
	// error since auditing must not block the change itself.
	Log(ctx context.Context, entry *AuditEntry) error

	// GetActivity returns a page (1-indexed) of the feed across calendars.
	GetActivity(ctx context.Context, page int) (*ActivityPage, error)

	// GetCalendarHistory returns recent entries and stats for one calendar.
	GetCalendarHistory(ctx context.Context, calendarID string) (*CalendarHistory, error)
}

// auditService implements AuditService.
type auditService struct {
	repo AuditRepository
}

// NewAuditService creates a new audit service with the given repository.
func NewAuditService(repo AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) Log(ctx context.Context, entry *AuditEntry) error {
	if entry.CalendarID == "" {
		return apperror.NewBadRequest("calendar ID is required for audit entry")
	}
	if entry.Action == "" {
		return apperror.NewBadRequest("action is required for audit entry")
	}

	if err := s.repo.Log(ctx, entry); err != nil {
		slog.Error("failed to write audit log entry",
			slog.String("calendar_id", entry.CalendarID),
			slog.String("action", entry.Action),
			slog.Any("error", err),
		)
		return apperror.NewInternal(fmt.Errorf("writing audit entry: %w", err))
	}
	return nil
}

// GetActivity clamps invalid page numbers to 1.
func (s *auditService) GetActivity(ctx context.Context, page int) (*ActivityPage, error) {
	if page < 1 {
		page = 1
	}

	entries, total, err := s.repo.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing activity: %w", err))
	}
	return &ActivityPage{Entries: entries, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *auditService) GetCalendarHistory(ctx context.Context, calendarID string) (*CalendarHistory, error) {
	if calendarID == "" {
		return nil, apperror.NewBadRequest("calendar ID is required")
	}

	entries, err := s.repo.ListByCalendar(ctx, calendarID, maxCalendarHistoryEntries)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing calendar history: %w", err))
	}
	stats, err := s.repo.GetCalendarStats(ctx, calendarID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("getting calendar stats: %w", err))
	}
	return &CalendarHistory{Entries: entries, Stats: stats}, nil
}
