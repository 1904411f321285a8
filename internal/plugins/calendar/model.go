// Package calendar is the almanac service plugin. It keeps calendar
// snapshots in memory, ingests new configurations, and exposes the
// reckoning engine over HTTP: conversions, display bundles, note
// visibility grids and ICS export.
//
// The plugin follows the usual layering: model (this file), repository
// (snapshot store), service (business logic), handler and routes (Echo).
package calendar

import (
	"time"

	"github.com/keyxmakerx/almanac/internal/reckoning"
)

// --- Snapshots ---

// Snapshot is one immutable calendar configuration plus its clock. A new
// configuration or clock value always produces a new Snapshot; existing
// ones are never modified, so readers can hold one for a whole request.
type Snapshot struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Source      string              `json:"source"`
	Calendar    *reckoning.Calendar `json:"calendar"`
	CurrentTime int64               `json:"current_time"`

	// Hash identifies the calendar configuration. Derived results are
	// cached under it, so replacing the configuration invalidates them.
	Hash string `json:"hash"`

	// Version increases by one on every swap of this id.
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot sources.
const (
	SourcePreset = "preset"
	SourceFile   = "file"
	SourceAPI    = "api"
)

// Summary is the list view of a snapshot.
type Summary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Source      string    `json:"source"`
	Months      int       `json:"months"`
	Weekdays    int       `json:"weekdays"`
	CurrentTime int64     `json:"current_time"`
	Version     int64     `json:"version"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// summarize builds the list view of s.
func summarize(s *Snapshot) Summary {
	return Summary{
		ID:          s.ID,
		Name:        s.Name,
		Source:      s.Source,
		Months:      len(s.Calendar.Months),
		Weekdays:    len(s.Calendar.Weekdays),
		CurrentTime: s.CurrentTime,
		Version:     s.Version,
		UpdatedAt:   s.UpdatedAt,
	}
}

// --- Inputs ---

// PutCalendarInput replaces a calendar's configuration. CurrentTime is
// optional; when nil the previous clock value (or 0) is kept.
type PutCalendarInput struct {
	Calendar    reckoning.Calendar `json:"calendar"`
	CurrentTime *int64             `json:"current_time,omitempty"`
}

// AdvanceInput folds a real-time clock delta into the current time.
type AdvanceInput struct {
	Seconds int64 `json:"seconds"`
}

// VisibilityInput asks which days of a month each note occupies.
type VisibilityInput struct {
	Year  int              `json:"year"`
	Month int              `json:"month"`
	Notes []reckoning.Note `json:"notes"`
}

// ExportInput selects the notes to export as ICS.
type ExportInput struct {
	Notes []reckoning.Note `json:"notes"`
}

// View modes accepted by ViewInput.
const (
	ViewModeCurrent  = "current"
	ViewModeSelected = "selected"
	ViewModeVisible  = "visible"
)

var viewModes = map[string]reckoning.ViewMode{
	ViewModeCurrent:  reckoning.ViewCurrent,
	ViewModeSelected: reckoning.ViewSelected,
	ViewModeVisible:  reckoning.ViewVisible,
}

// ViewInput carries a client's browsing state. The current day always comes
// from the snapshot's clock. An empty Mode means current.
type ViewInput struct {
	Mode     string              `json:"mode"`
	Selected *reckoning.DateTime `json:"selected,omitempty"`
	Visible  *reckoning.MonthRef `json:"visible,omitempty"`
}

// --- Outputs ---

// ViewResult is a derived position and its display bundle.
type ViewResult struct {
	Mode    string                `json:"mode"`
	Date    reckoning.DateTime    `json:"date"`
	Display reckoning.DisplayDate `json:"display"`
}

// VisibilityGrid is the per-day visibility of a set of notes in one month.
type VisibilityGrid struct {
	Layout reckoning.MonthLayout `json:"layout"`
	Notes  []NoteVisibility      `json:"notes"`
}

// NoteVisibility is one row of a VisibilityGrid. Visible and Match are
// indexed by day index.
type NoteVisibility struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Visible []bool   `json:"visible"`
	Match   []string `json:"match"`
}

// DateResult pairs a timestamp with its structured date.
type DateResult struct {
	Timestamp int64              `json:"timestamp"`
	Date      reckoning.DateTime `json:"date"`
}
