package calendar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestMemoryRepo_UpdateAndGet(t *testing.T) {
	repo := NewCalendarRepository()
	ctx := context.Background()

	got, err := repo.Get(ctx, "a")
	if err != nil || got != nil {
		t.Fatalf("expected nothing stored, got %v, %v", got, err)
	}

	snap, err := repo.Update(ctx, "a", func(prev *Snapshot) (*Snapshot, error) {
		if prev != nil {
			t.Error("expected no previous snapshot")
		}
		return &Snapshot{ID: "a", Version: 1}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = repo.Get(ctx, "a")
	if got != snap {
		t.Error("expected Get to return the stored snapshot")
	}
}

func TestMemoryRepo_UpdateErrorStoresNothing(t *testing.T) {
	repo := NewCalendarRepository()
	ctx := context.Background()
	_, err := repo.Update(ctx, "a", func(prev *Snapshot) (*Snapshot, error) {
		return nil, errors.New("rejected")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if got, _ := repo.Get(ctx, "a"); got != nil {
		t.Error("expected nothing stored")
	}
}

func TestMemoryRepo_ListSorted(t *testing.T) {
	repo := NewCalendarRepository()
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		_, _ = repo.Update(ctx, id, func(*Snapshot) (*Snapshot, error) { return &Snapshot{ID: id}, nil })
	}
	list, _ := repo.List(ctx)
	if len(list) != 3 || list[0].ID != "a" || list[1].ID != "b" || list[2].ID != "c" {
		t.Errorf("unexpected order %v", list)
	}
}

func TestMemoryRepo_Delete(t *testing.T) {
	repo := NewCalendarRepository()
	ctx := context.Background()
	_, _ = repo.Update(ctx, "a", func(*Snapshot) (*Snapshot, error) { return &Snapshot{ID: "a"}, nil })

	removed, err := repo.Delete(ctx, "a")
	if err != nil || !removed {
		t.Fatalf("expected removal, got %v, %v", removed, err)
	}
	removed, _ = repo.Delete(ctx, "a")
	if removed {
		t.Error("expected second delete to report nothing removed")
	}
}

func TestMemoryRepo_CancelledContext(t *testing.T) {
	repo := NewCalendarRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := repo.Update(ctx, "a", func(*Snapshot) (*Snapshot, error) { return &Snapshot{}, nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// TestMemoryRepo_ConcurrentUpdates checks that serialized writers never
// lose an update while readers run alongside them.
func TestMemoryRepo_ConcurrentUpdates(t *testing.T) {
	repo := NewCalendarRepository()
	ctx := context.Background()
	const writers, perWriter = 8, 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_, _ = repo.Update(ctx, "counter", func(prev *Snapshot) (*Snapshot, error) {
					next := &Snapshot{ID: "counter", Version: 1}
					if prev != nil {
						next.Version = prev.Version + 1
					}
					return next, nil
				})
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if s, _ := repo.Get(ctx, "counter"); s != nil && s.ID != "counter" {
					panic(fmt.Sprintf("torn snapshot %+v", s))
				}
				_, _ = repo.List(ctx)
			}
		}()
	}
	wg.Wait()

	s, _ := repo.Get(ctx, "counter")
	if s.Version != writers*perWriter {
		t.Errorf("expected version %d, got %d", writers*perWriter, s.Version)
	}
}
