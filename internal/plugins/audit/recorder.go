package audit

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/keyxmakerx/almanac/internal/apperror"
	"github.com/keyxmakerx/almanac/internal/plugins/calendar"
)

// calendarRecorder turns calendar changes into audit entries.
type calendarRecorder struct {
	svc    AuditService
	logger *slog.Logger
}

// NewCalendarRecorder adapts svc to the calendar service's ChangeRecorder.
// Changes the audit log refuses are reported on logger.
func NewCalendarRecorder(svc AuditService, logger *slog.Logger) calendar.ChangeRecorder {
	return &calendarRecorder{svc: svc, logger: logger}
}

func (r *calendarRecorder) RecordChange(ctx context.Context, ch calendar.Change) {
	err := r.svc.Log(context.WithoutCancel(ctx), &AuditEntry{
		CalendarID: ch.CalendarID,
		Action:     ch.Action,
		Source:     ch.Source,
		Actor:      ch.Actor,
		Version:    ch.Version,
		Hash:       ch.Hash,
		Details:    ch.Details,
	})
	// Internal failures are logged by the service itself.
	if err != nil && apperror.SafeCode(err) < http.StatusInternalServerError {
		r.logger.Warn("calendar change not audited",
			slog.String("calendar_id", ch.CalendarID),
			slog.String("action", ch.Action),
			slog.String("actor", ch.Actor),
			slog.String("error", apperror.SafeMessage(err)),
		)
	}
}
