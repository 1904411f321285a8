package audit

import (
	"context"
	"sync"
	"time"
)

// AuditRepository defines the data access contract for audit entries.
type AuditRepository interface {
	// Log stores entry, assigning its ID and, when zero, its CreatedAt.
	Log(ctx context.Context, entry *AuditEntry) error

	// List returns entries newest first, with the total held.
	List(ctx context.Context, limit, offset int) ([]AuditEntry, int, error)

	// ListByCalendar returns up to limit entries for one calendar, newest
	// first.
	ListByCalendar(ctx context.Context, calendarID string, limit int) ([]AuditEntry, error)

	// GetCalendarStats aggregates the held entries of one calendar.
	GetCalendarStats(ctx context.Context, calendarID string) (*CalendarStats, error)
}

// memoryRepository keeps the most recent entries in a ring buffer.
type memoryRepository struct {
	mu      sync.RWMutex
	entries []AuditEntry // ring; next is the slot written next
	next    int
	full    bool
	seq     int64
}

// NewAuditRepository creates a repository holding at most capacity entries.
// Older entries are dropped first.
func NewAuditRepository(capacity int) AuditRepository {
	if capacity < 1 {
		capacity = 1
	}
	return &memoryRepository{entries: make([]AuditEntry, capacity)}
}

func (r *memoryRepository) Log(ctx context.Context, entry *AuditEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	entry.ID = r.seq
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	r.entries[r.next] = *entry
	r.next++
	if r.next == len(r.entries) {
		r.next = 0
		r.full = true
	}
	return nil
}

// newestFirst calls fn for every held entry from newest to oldest until fn
// returns false. Callers hold r.mu.
func (r *memoryRepository) newestFirst(fn func(AuditEntry) bool) {
	n := r.len()
	for i := 0; i < n; i++ {
		idx := (r.next - 1 - i + len(r.entries)) % len(r.entries)
		if !fn(r.entries[idx]) {
			return
		}
	}
}

func (r *memoryRepository) len() int {
	if r.full {
		return len(r.entries)
	}
	return r.next
}

func (r *memoryRepository) List(ctx context.Context, limit, offset int) ([]AuditEntry, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []AuditEntry{}
	i := 0
	r.newestFirst(func(e AuditEntry) bool {
		if i >= offset {
			out = append(out, e)
		}
		i++
		return len(out) < limit
	})
	return out, r.len(), nil
}

func (r *memoryRepository) ListByCalendar(ctx context.Context, calendarID string, limit int) ([]AuditEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []AuditEntry{}
	r.newestFirst(func(e AuditEntry) bool {
		if e.CalendarID == calendarID {
			out = append(out, e)
		}
		return len(out) < limit
	})
	return out, nil
}

func (r *memoryRepository) GetCalendarStats(ctx context.Context, calendarID string) (*CalendarStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &CalendarStats{ByAction: make(map[string]int)}
	actors := make(map[string]bool)
	r.newestFirst(func(e AuditEntry) bool {
		if e.CalendarID != calendarID {
			return true
		}
		if stats.LastChangedAt == nil {
			t := e.CreatedAt
			stats.LastChangedAt = &t
		}
		stats.TotalChanges++
		stats.ByAction[e.Action]++
		if e.Actor != "" {
			actors[e.Actor] = true
		}
		return true
	})
	stats.Actors = len(actors)
	return stats, nil
}
