package calendar

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"runtime"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/keyxmakerx/almanac/internal/apperror"
	"github.com/keyxmakerx/almanac/internal/reckoning"
)

// noteNamespace derives stable ids for notes submitted without one, so the
// same note gets the same id (and ICS UID) on every request.
var noteNamespace = uuid.MustParse("6f1d3a52-6a0e-4d0c-9a3e-4b1c8d2f7e10")

// idPattern restricts calendar ids to characters safe in URLs and cache keys.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// CalendarService handles calendar snapshots and the calculations served
// from them.
type CalendarService interface {
	// LoadPresets registers every bundled calendar under its preset name.
	// Ids that already exist are left alone.
	LoadPresets(ctx context.Context) error

	ListCalendars(ctx context.Context) ([]Summary, error)
	GetCalendar(ctx context.Context, id string) (*Snapshot, error)

	// PutCalendar validates input and swaps it in as the snapshot for id.
	PutCalendar(ctx context.Context, id, source string, input PutCalendarInput) (*Snapshot, error)

	// ImportCalendar detects the document format, converts it, and swaps it
	// in like PutCalendar. A clock carried by the document replaces the
	// current time.
	ImportCalendar(ctx context.Context, id, source string, data []byte) (*Snapshot, error)

	DeleteCalendar(ctx context.Context, id string) error

	// AdvanceTime folds a clock delta into the snapshot's current time.
	AdvanceTime(ctx context.Context, id string, input AdvanceInput) (*Snapshot, error)

	ToDate(ctx context.Context, id string, timestamp int64) (*DateResult, error)

	// ToTimestamp clamps out-of-range fields to the calendar like the
	// engine does; the returned Date is the date actually converted.
	ToTimestamp(ctx context.Context, id string, date reckoning.DateTime) (*DateResult, error)

	// Display builds the display bundle for timestamp, or for the current
	// time when timestamp is nil.
	Display(ctx context.Context, id string, timestamp *int64) (*reckoning.DisplayDate, error)

	// View derives the current, selected or visible day from the client's
	// browsing state and the snapshot's clock.
	View(ctx context.Context, id string, input ViewInput) (*ViewResult, error)

	VisibilityGrid(ctx context.Context, id string, input VisibilityInput) (*VisibilityGrid, error)
	ExportNotesICS(ctx context.Context, id string, input ExportInput) (string, error)
}

// calendarService implements CalendarService.
type calendarService struct {
	repo     CalendarRepository
	cache    ResultCache
	recorder ChangeRecorder
	now      func() time.Time
}

// NewCalendarService creates a calendar service. A nil cache disables
// result caching.
func NewCalendarService(repo CalendarRepository, cache ResultCache, opts ...Option) CalendarService {
	if cache == nil {
		cache = NewNoopCache()
	}
	s := &calendarService{repo: repo, cache: cache, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// --- Snapshots ---

func (s *calendarService) LoadPresets(ctx context.Context) error {
	for _, name := range reckoning.PresetNames() {
		cal, err := reckoning.LoadPreset(name)
		if err != nil {
			return fmt.Errorf("loading preset %s: %w", name, err)
		}
		_, err = s.repo.Update(ctx, name, func(prev *Snapshot) (*Snapshot, error) {
			if prev != nil {
				return prev, nil
			}
			return s.newSnapshot(name, SourcePreset, cal, 0, nil)
		})
		if err != nil {
			return fmt.Errorf("storing preset %s: %w", name, err)
		}
	}
	return nil
}

func (s *calendarService) ListCalendars(ctx context.Context) ([]Summary, error) {
	snaps, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing calendars: %w", err))
	}
	out := make([]Summary, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, summarize(snap))
	}
	return out, nil
}

func (s *calendarService) GetCalendar(ctx context.Context, id string) (*Snapshot, error) {
	snap, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("getting calendar %s: %w", id, err))
	}
	if snap == nil {
		return nil, apperror.NewNotFound("calendar not found")
	}
	return snap, nil
}

func (s *calendarService) PutCalendar(ctx context.Context, id, source string, input PutCalendarInput) (*Snapshot, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	cal := input.Calendar
	if err := cal.Validate(); err != nil {
		return nil, apperror.NewInvalidCalendar(err)
	}
	snap, err := s.swap(ctx, id, source, &cal, input.CurrentTime)
	if err != nil {
		return nil, err
	}
	s.record(ctx, Change{CalendarID: id, Action: ActionPut, Source: source, Version: snap.Version, Hash: snap.Hash})
	return snap, nil
}

func (s *calendarService) ImportCalendar(ctx context.Context, id, source string, data []byte) (*Snapshot, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	result, err := DetectAndParse(data)
	if err != nil {
		var fields validation.Errors
		if errors.As(err, &fields) {
			return nil, apperror.NewInvalidCalendar(err)
		}
		return nil, apperror.NewBadRequest("could not parse calendar: " + err.Error())
	}
	snap, err := s.swap(ctx, id, source, result.Calendar, result.CurrentTime)
	if err != nil {
		return nil, err
	}
	s.record(ctx, Change{
		CalendarID: id,
		Action:     ActionImported,
		Source:     source,
		Version:    snap.Version,
		Hash:       snap.Hash,
		Details:    map[string]any{"format": string(result.Format)},
	})
	return snap, nil
}

func (s *calendarService) DeleteCalendar(ctx context.Context, id string) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("deleting calendar %s: %w", id, err))
	}
	if !removed {
		return apperror.NewNotFound("calendar not found")
	}
	slog.Info("calendar deleted", slog.String("id", id))
	s.record(ctx, Change{CalendarID: id, Action: ActionDeleted})
	return nil
}

func (s *calendarService) AdvanceTime(ctx context.Context, id string, input AdvanceInput) (*Snapshot, error) {
	var from int64
	snap, err := s.repo.Update(ctx, id, func(prev *Snapshot) (*Snapshot, error) {
		if prev == nil {
			return nil, apperror.NewNotFound("calendar not found")
		}
		from = prev.CurrentTime
		next := *prev
		next.CurrentTime = prev.Calendar.AdvanceSeconds(prev.CurrentTime, input.Seconds)
		next.Version = prev.Version + 1
		next.UpdatedAt = s.now()
		return &next, nil
	})
	if err != nil {
		return nil, wrapRepoErr(err, "advancing calendar "+id)
	}
	s.record(ctx, Change{
		CalendarID: id,
		Action:     ActionAdvanced,
		Source:     snap.Source,
		Version:    snap.Version,
		Hash:       snap.Hash,
		Details:    map[string]any{"seconds": input.Seconds, "from": from, "to": snap.CurrentTime},
	})
	return snap, nil
}

// swap stores cal as the snapshot for id. A nil current keeps the previous
// clock value.
func (s *calendarService) swap(ctx context.Context, id, source string, cal *reckoning.Calendar, current *int64) (*Snapshot, error) {
	snap, err := s.repo.Update(ctx, id, func(prev *Snapshot) (*Snapshot, error) {
		now := int64(0)
		switch {
		case current != nil:
			now = *current
		case prev != nil:
			now = prev.CurrentTime
		}
		return s.newSnapshot(id, source, cal, now, prev)
	})
	if err != nil {
		return nil, wrapRepoErr(err, "storing calendar "+id)
	}

	slog.Info("calendar swapped",
		slog.String("id", id),
		slog.String("source", source),
		slog.Int64("version", snap.Version),
		slog.String("hash", snap.Hash),
	)
	return snap, nil
}

// newSnapshot builds the successor of prev (which may be nil).
func (s *calendarService) newSnapshot(id, source string, cal *reckoning.Calendar, current int64, prev *Snapshot) (*Snapshot, error) {
	hash, err := calendarHash(cal)
	if err != nil {
		return nil, err
	}
	name := cal.Name
	if name == "" {
		name = id
	}
	version := int64(1)
	if prev != nil {
		version = prev.Version + 1
	}
	return &Snapshot{
		ID:          id,
		Name:        name,
		Source:      source,
		Calendar:    cal,
		CurrentTime: current,
		Hash:        hash,
		Version:     version,
		UpdatedAt:   s.now(),
	}, nil
}

// --- Conversions ---

func (s *calendarService) ToDate(ctx context.Context, id string, timestamp int64) (*DateResult, error) {
	snap, err := s.GetCalendar(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DateResult{Timestamp: timestamp, Date: snap.Calendar.SecondsToDate(timestamp)}, nil
}

func (s *calendarService) ToTimestamp(ctx context.Context, id string, date reckoning.DateTime) (*DateResult, error) {
	snap, err := s.GetCalendar(ctx, id)
	if err != nil {
		return nil, err
	}
	cal := snap.Calendar
	ts := cal.DateToSeconds(date)
	return &DateResult{Timestamp: ts, Date: cal.SecondsToDate(ts)}, nil
}

func (s *calendarService) Display(ctx context.Context, id string, timestamp *int64) (*reckoning.DisplayDate, error) {
	snap, err := s.GetCalendar(ctx, id)
	if err != nil {
		return nil, err
	}
	ts := snap.CurrentTime
	if timestamp != nil {
		ts = *timestamp
	}

	key := cacheKey(snap.Hash, "display", ts)
	return cached(ctx, s.cache, key, func() (*reckoning.DisplayDate, error) {
		d := snap.Calendar.Display(ts)
		return &d, nil
	})
}

func (s *calendarService) View(ctx context.Context, id string, input ViewInput) (*ViewResult, error) {
	snap, err := s.GetCalendar(ctx, id)
	if err != nil {
		return nil, err
	}
	err = validation.ValidateStruct(&input,
		validation.Field(&input.Mode, validation.In(ViewModeCurrent, ViewModeSelected, ViewModeVisible)),
	)
	if err != nil {
		return nil, validationError("invalid view request", err)
	}
	if input.Mode == "" {
		input.Mode = ViewModeCurrent
	}

	cal := snap.Calendar
	state := reckoning.ViewState{Current: snap.CurrentTime, Selected: input.Selected, Visible: input.Visible}
	date := cal.ViewPosition(state, viewModes[input.Mode])
	return &ViewResult{
		Mode:    input.Mode,
		Date:    date,
		Display: cal.Display(cal.DateToSeconds(date)),
	}, nil
}

// --- Notes ---

func (s *calendarService) VisibilityGrid(ctx context.Context, id string, input VisibilityInput) (*VisibilityGrid, error) {
	snap, err := s.GetCalendar(ctx, id)
	if err != nil {
		return nil, err
	}
	cal := snap.Calendar

	err = validation.ValidateStruct(&input,
		validation.Field(&input.Month, validation.Min(0), validation.Max(len(cal.Months)-1)),
		validation.Field(&input.Notes, validation.Each(validation.By(validateNote))),
	)
	if err != nil {
		return nil, validationError("invalid visibility request", err)
	}
	notes := withNoteIDs(input.Notes)

	digest, err := contentHash(notes)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	key := cacheKey(snap.Hash, "grid", input.Year, input.Month, digest)
	return cached(ctx, s.cache, key, func() (*VisibilityGrid, error) {
		return buildGrid(ctx, cal, input.Year, input.Month, notes)
	})
}

// buildGrid evaluates every note against every day of the month, one note
// per goroutine.
func buildGrid(ctx context.Context, cal *reckoning.Calendar, year, month int, notes []reckoning.Note) (*VisibilityGrid, error) {
	layout := cal.MonthLayout(year, month)
	rows := make([]NoteVisibility, len(notes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, note := range notes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row := NoteVisibility{
				ID:      note.ID,
				Title:   note.Title,
				Visible: make([]bool, layout.Days),
				Match:   make([]string, layout.Days),
			}
			for day := 0; day < layout.Days; day++ {
				m := cal.MatchNote(reckoning.DateTime{Year: year, Month: layout.MonthIndex, Day: day}, note)
				row.Visible[day] = m != reckoning.MatchNone
				row.Match[day] = m.String()
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &VisibilityGrid{Layout: layout, Notes: rows}, nil
}

func (s *calendarService) ExportNotesICS(ctx context.Context, id string, input ExportInput) (string, error) {
	snap, err := s.GetCalendar(ctx, id)
	if err != nil {
		return "", err
	}
	err = validation.ValidateStruct(&input,
		validation.Field(&input.Notes, validation.Each(validation.By(validateNote))),
	)
	if err != nil {
		return "", validationError("invalid notes", err)
	}

	feed, err := ExportNotesICS(snap.Calendar, snap.Name, withNoteIDs(input.Notes), s.now())
	if err != nil {
		return "", apperror.NewValidation(err.Error())
	}
	return feed, nil
}

// withNoteIDs returns notes with derived ids filled in where missing. The
// input slice is not modified.
func withNoteIDs(notes []reckoning.Note) []reckoning.Note {
	out := make([]reckoning.Note, len(notes))
	for i, n := range notes {
		if n.ID == "" {
			data, _ := json.Marshal(n)
			n.ID = uuid.NewSHA1(noteNamespace, append(strconv.AppendInt(nil, int64(i), 10), data...)).String()
		}
		out[i] = n
	}
	return out
}

// --- Helpers ---

// cached returns the value under key, computing and storing it on a miss.
// Cache errors are logged and otherwise ignored.
func cached[T any](ctx context.Context, cache ResultCache, key string, compute func() (T, error)) (T, error) {
	var hit T
	ok, err := cache.Get(ctx, key, &hit)
	if err != nil {
		slog.Warn("result cache read failed", slog.String("key", key), slog.Any("error", err))
	}
	if ok {
		return hit, nil
	}

	v, err := compute()
	if err != nil {
		return v, err
	}
	if err := cache.Set(ctx, key, v); err != nil {
		slog.Warn("result cache write failed", slog.String("key", key), slog.Any("error", err))
	}
	return v, nil
}

// calendarHash is the content hash of a calendar's JSON encoding.
func calendarHash(cal *reckoning.Calendar) (string, error) {
	h, err := contentHash(cal)
	if err != nil {
		return "", fmt.Errorf("hashing calendar: %w", err)
	}
	return h, nil
}

func contentHash(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:16]), nil
}

func validateID(id string) error {
	err := validation.Validate(id,
		validation.Required,
		validation.Length(1, 64),
		validation.Match(idPattern),
	)
	if err != nil {
		return apperror.NewValidation("invalid calendar id: " + err.Error())
	}
	return nil
}

func validateNote(value interface{}) error {
	n, _ := value.(reckoning.Note)
	return validation.ValidateStruct(&n,
		validation.Field(&n.Start, validation.Required),
		validation.Field(&n.End, validation.Required),
		validation.Field(&n.Repeats, validation.By(func(v interface{}) error {
			if r, _ := v.(reckoning.Repeat); !r.Valid() {
				return fmt.Errorf("unknown repeat mode %q", r)
			}
			return nil
		})),
	)
}

// validationError converts ozzo field errors into a 422 with Fields set.
func validationError(message string, err error) error {
	appErr := apperror.NewValidation(message)
	var fields validation.Errors
	if errors.As(err, &fields) {
		appErr.Fields = make(map[string]string, len(fields))
		for k, v := range fields {
			appErr.Fields[k] = v.Error()
		}
	}
	return appErr
}

// wrapRepoErr passes AppErrors through and hides everything else.
func wrapRepoErr(err error, op string) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.NewInternal(fmt.Errorf("%s: %w", op, err))
}
