// Package audit records calendar configuration changes. Every snapshot
// swap, import, clock advance and deletion reported by the calendar service
// becomes an AuditEntry in a bounded in-memory log, so a game master can
// see who changed what and when.
//
// The plugin only observes; it never changes calendar data.
package audit

import "time"

// AuditEntry is a single recorded change.
type AuditEntry struct {
	ID         int64  `json:"id"`
	CalendarID string `json:"calendar_id"`

	// Action is one of the calendar.Action* constants.
	Action string `json:"action"`
	Source string `json:"source,omitempty"`
	Actor  string `json:"actor,omitempty"`

	// Version and Hash identify the snapshot the change produced.
	Version int64  `json:"version,omitempty"`
	Hash    string `json:"hash,omitempty"`

	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// CalendarStats summarizes the recorded activity of one calendar.
type CalendarStats struct {
	// TotalChanges counts entries still held in the log.
	TotalChanges int `json:"total_changes"`

	// ByAction counts entries per action.
	ByAction map[string]int `json:"by_action"`

	// LastChangedAt is nil when nothing has been recorded.
	LastChangedAt *time.Time `json:"last_changed_at,omitempty"`

	// Actors is the number of distinct actors.
	Actors int `json:"actors"`
}

// ActivityPage is one page of the global activity feed.
type ActivityPage struct {
	Entries []AuditEntry `json:"entries"`
	Total   int          `json:"total"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
}

// CalendarHistory is the response of the per-calendar history endpoint.
type CalendarHistory struct {
	Entries []AuditEntry   `json:"entries"`
	Stats   *CalendarStats `json:"stats"`
}
