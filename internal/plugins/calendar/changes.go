package calendar

import "context"

// Change actions, in "resource.verb" form.
const (
	ActionPut      = "calendar.put"
	ActionImported = "calendar.imported"
	ActionDeleted  = "calendar.deleted"
	ActionAdvanced = "calendar.advanced"
)

// Change describes one completed snapshot swap or removal.
type Change struct {
	CalendarID string
	Action     string
	Source     string

	// Actor identifies who caused the change, e.g. "api:203.0.113.7" or
	// "file:/srv/calendars/faerun.yaml". Empty when unknown.
	Actor string

	// Version and Hash describe the new snapshot; zero for deletions.
	Version int64
	Hash    string

	Details map[string]any
}

// ChangeRecorder receives every change after it has been published.
// Implementations must not block for long and must not fail the change.
type ChangeRecorder interface {
	RecordChange(ctx context.Context, ch Change)
}

// Option configures a calendar service.
type Option func(*calendarService)

// WithChangeRecorder reports snapshot changes to r.
func WithChangeRecorder(r ChangeRecorder) Option {
	return func(s *calendarService) {
		s.recorder = r
	}
}

type actorKey struct{}

// WithActor attaches the identity recorded with changes made under ctx.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func actorFrom(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

// record forwards ch to the configured recorder, if any.
func (s *calendarService) record(ctx context.Context, ch Change) {
	if s.recorder == nil {
		return
	}
	ch.Actor = actorFrom(ctx)
	s.recorder.RecordChange(ctx, ch)
}
