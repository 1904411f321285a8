package calendar

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
)

// CalendarRepository stores calendar snapshots by id.
type CalendarRepository interface {
	// Get returns the snapshot for id, or nil when there is none.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// List returns every snapshot ordered by id.
	List(ctx context.Context) ([]*Snapshot, error)

	// Update replaces the snapshot for id with the result of fn. fn receives
	// the current snapshot (nil when absent) and must not modify it. When
	// fn returns an error nothing is stored.
	Update(ctx context.Context, id string, fn func(prev *Snapshot) (*Snapshot, error)) (*Snapshot, error)

	// Delete removes id. It reports whether anything was removed.
	Delete(ctx context.Context, id string) (bool, error)
}

// snapshotMap is never modified after it is published.
type snapshotMap map[string]*Snapshot

// memoryRepo keeps snapshots in an atomically swapped map. Readers load
// the current map without locking; writers are serialized and publish a
// modified copy.
type memoryRepo struct {
	mu   sync.Mutex
	snap atomic.Pointer[snapshotMap]
}

// NewCalendarRepository creates an empty in-memory snapshot repository.
func NewCalendarRepository() CalendarRepository {
	r := &memoryRepo{}
	empty := snapshotMap{}
	r.snap.Store(&empty)
	return r
}

func (r *memoryRepo) Get(_ context.Context, id string) (*Snapshot, error) {
	return (*r.snap.Load())[id], nil
}

func (r *memoryRepo) List(_ context.Context) ([]*Snapshot, error) {
	m := *r.snap.Load()
	out := make([]*Snapshot, 0, len(m))
	for _, s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRepo) Update(ctx context.Context, id string, fn func(prev *Snapshot) (*Snapshot, error)) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cur := *r.snap.Load()
	next, err := fn(cur[id])
	if err != nil {
		return nil, err
	}

	r.publish(cur, func(m snapshotMap) { m[id] = next })
	return next, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return false, err
	}

	cur := *r.snap.Load()
	if _, ok := cur[id]; !ok {
		return false, nil
	}
	r.publish(cur, func(m snapshotMap) { delete(m, id) })
	return true, nil
}

// publish stores a copy of cur with edit applied. Callers hold r.mu.
func (r *memoryRepo) publish(cur snapshotMap, edit func(snapshotMap)) {
	next := make(snapshotMap, len(cur)+1)
	for k, v := range cur {
		next[k] = v
	}
	edit(next)
	r.snap.Store(&next)
}
