package infrastructure

import (
	"slices"
	"sync"
	"testing"

	"github.com/disgoorg/snowflake/v2"
)

type stored struct {
	name string
}

func TestMemoryRepository_Get(t *testing.T) {
	repo := NewMemoryRepository[*stored]()
	guildID := snowflake.ID(123)

	if _, ok := repo.Get(guildID); ok {
		t.Fatal("expected no value before save")
	}

	value := &stored{name: "first"}
	repo.Save(guildID, value)

	got, ok := repo.Get(guildID)
	if !ok || got != value {
		t.Error("expected same instance after save")
	}

	if _, ok := repo.Get(snowflake.ID(456)); ok {
		t.Error("expected no value for a different guild")
	}
}

func TestMemoryRepository_SaveOverwrites(t *testing.T) {
	repo := NewMemoryRepository[*stored]()
	guildID := snowflake.ID(123)

	repo.Save(guildID, &stored{name: "first"})
	second := &stored{name: "second"}
	repo.Save(guildID, second)

	got, _ := repo.Get(guildID)
	if got != second {
		t.Error("expected the newer value after overwrite")
	}
}

func TestMemoryRepository_CompareAndDelete(t *testing.T) {
	tests := []struct {
		name        string
		saved       bool
		useStale    bool
		wantDeleted bool
	}{
		{name: "deletes matching value", saved: true, wantDeleted: true},
		{name: "keeps a newer value", saved: true, useStale: true, wantDeleted: false},
		{name: "nothing stored", saved: false, wantDeleted: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMemoryRepository[*stored]()
			guildID := snowflake.ID(1)
			current := &stored{name: "current"}
			if tt.saved {
				repo.Save(guildID, current)
			}

			target := current
			if tt.useStale {
				target = &stored{name: "stale"}
			}

			if got := repo.CompareAndDelete(guildID, target); got != tt.wantDeleted {
				t.Errorf("expected deleted = %v, got %v", tt.wantDeleted, got)
			}
			_, ok := repo.Get(guildID)
			if ok != (tt.saved && !tt.wantDeleted) {
				t.Errorf("unexpected presence after CompareAndDelete: %v", ok)
			}
		})
	}
}

func TestMemoryRepository_Count(t *testing.T) {
	repo := NewMemoryRepository[*stored]()

	if repo.Count() != 0 {
		t.Errorf("expected count 0, got %d", repo.Count())
	}

	first := &stored{}
	repo.Save(snowflake.ID(1), first)
	repo.Save(snowflake.ID(2), &stored{})
	if repo.Count() != 2 {
		t.Errorf("expected count 2, got %d", repo.Count())
	}

	repo.CompareAndDelete(snowflake.ID(1), first)
	if repo.Count() != 1 {
		t.Errorf("expected count 1 after delete, got %d", repo.Count())
	}
}

func TestMemoryRepository_ConcurrentAccess(t *testing.T) {
	repo := NewMemoryRepository[*stored]()
	var wg sync.WaitGroup

	for i := range 100 {
		wg.Go(func() {
			repo.Save(snowflake.ID(i), &stored{})
		})
	}
	wg.Wait()

	if repo.Count() != 100 {
		t.Errorf("expected 100 values, got %d", repo.Count())
	}

	for i := range 100 {
		wg.Go(func() {
			if _, ok := repo.Get(snowflake.ID(i)); !ok {
				t.Errorf("expected a value for guild %d", i)
			}
		})
	}
	wg.Wait()
}

func TestNewSessionRepository(t *testing.T) {
	repo := NewSessionRepository()
	if _, ok := repo.Get(snowflake.ID(1)); ok {
		t.Error("expected an empty session store")
	}
}

func TestMemoryRepository_Keys(t *testing.T) {
	repo := NewMemoryRepository[*stored]()
	if keys := repo.Keys(); len(keys) != 0 {
		t.Fatalf("expected no keys, got %v", keys)
	}

	repo.Save(snowflake.ID(1), &stored{name: "a"})
	repo.Save(snowflake.ID(2), &stored{name: "b"})

	keys := repo.Keys()
	slices.Sort(keys)
	if !slices.Equal(keys, []snowflake.ID{1, 2}) {
		t.Errorf("expected keys [1 2], got %v", keys)
	}
}
