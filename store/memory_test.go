package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/rushteam/cinekit/core"
)

func TestMemoryStore_KV(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	defer m.Close()

	if _, err := m.Get(ctx, "missing"); err != core.ErrStoreNotFound {
		t.Fatalf("Get(missing) error = %v, want ErrStoreNotFound", err)
	}

	if err := m.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := m.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get(k) = %q, %v, want \"v\", nil", got, err)
	}

	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := m.Get(ctx, "k"); err != core.ErrStoreNotFound {
		t.Fatalf("Get after Delete error = %v, want ErrStoreNotFound", err)
	}
}

func TestMemoryStore_AppendIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	defer m.Close()

	// replaying the same event must not change the row
	for i := 0; i < 3; i++ {
		if err := m.Append(ctx, "u1", "A", core.StrengthLike); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	row, err := m.Row(ctx, "u1")
	if err != nil {
		t.Fatalf("Row: %v", err)
	}
	if len(row) != 1 || row["A"] != core.StrengthLike {
		t.Fatalf("Row = %v, want {A: %g}", row, core.StrengthLike)
	}
	if n, _ := m.Count(ctx, "u1"); n != 1 {
		t.Fatalf("Count = %d, want 1", n)
	}
}

func TestMemoryStore_AppendLastWriteWins(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	defer m.Close()

	// user changes their mind: dislike overrides the earlier like
	_ = m.Append(ctx, "u1", "A", core.StrengthLike)
	_ = m.Append(ctx, "u1", "A", core.StrengthDislike)

	row, _ := m.Row(ctx, "u1")
	if row["A"] != core.StrengthDislike {
		t.Fatalf("row[A] = %g, want %g", row["A"], core.StrengthDislike)
	}
}

func TestMemoryStore_AppendRejectsEmptyIDs(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	defer m.Close()

	if err := m.Append(ctx, "", "A", 1); err == nil {
		t.Error("Append with empty user id succeeded")
	}
	if err := m.Append(ctx, "u1", "", 1); err == nil {
		t.Error("Append with empty item id succeeded")
	}
}

func TestMemoryStore_RowReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	defer m.Close()

	_ = m.Append(ctx, "u1", "A", core.StrengthLike)

	row, _ := m.Row(ctx, "u1")
	row["A"] = 99 // caller-side mutation must not leak back

	again, _ := m.Row(ctx, "u1")
	if again["A"] != core.StrengthLike {
		t.Fatalf("internal row mutated through returned copy: %v", again)
	}
}

func TestMemoryStore_RowUnknownUser(t *testing.T) {
	m := NewMemoryStore()
	defer m.Close()

	row, err := m.Row(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Row(ghost): %v", err)
	}
	if len(row) != 0 {
		t.Fatalf("Row(ghost) = %v, want empty", row)
	}
}

func TestMemoryStore_Users(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	defer m.Close()

	_ = m.Append(ctx, "u1", "A", 1)
	_ = m.Append(ctx, "u2", "B", 1)

	users, err := m.Users(ctx)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("Users = %v, want 2 entries", users)
	}
}

func TestMemoryStore_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	defer m.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := fmt.Sprintf("u%d", i%4)
			itemID := fmt.Sprintf("item%d", i)
			_ = m.Append(ctx, userID, itemID, core.StrengthLike)
		}(i)
	}
	wg.Wait()

	total := 0
	users, _ := m.Users(ctx)
	for _, u := range users {
		n, _ := m.Count(ctx, u)
		total += n
	}
	if total != 20 {
		t.Fatalf("total interactions = %d, want 20", total)
	}
}
