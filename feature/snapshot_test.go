package feature

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/cinekit/store"
)

func TestSnapshot_SaveLoadRoundtrip(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	defer st.Close()

	idx, err := Build(testCatalog())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := Save(ctx, st, "snap", idx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	restored, err := Load(ctx, st, "snap")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if restored.Len() != idx.Len() {
		t.Fatalf("restored %d items, want %d", restored.Len(), idx.Len())
	}
	if restored.Meta().CatalogChecksum != idx.Meta().CatalogChecksum {
		t.Error("checksum lost in roundtrip")
	}
	for _, itemID := range idx.Items() {
		want, _ := idx.VectorOf(itemID)
		got, err := restored.VectorOf(itemID)
		if err != nil {
			t.Fatalf("restored VectorOf(%s): %v", itemID, err)
		}
		for id, w := range want {
			if math.Abs(got[id]-w) > 1e-12 {
				t.Errorf("item %s term %d: restored %g, want %g", itemID, id, got[id], w)
			}
		}
		if restored.NormalizedPopularity(itemID) != idx.NormalizedPopularity(itemID) {
			t.Errorf("item %s popularity lost in roundtrip", itemID)
		}
	}
}

func TestSnapshot_LoadMissingKey(t *testing.T) {
	st := store.NewMemoryStore()
	defer st.Close()

	if _, err := Load(context.Background(), st, "nope"); err == nil {
		t.Fatal("Load(missing) = nil error, want error")
	}
}

func TestLoadOrBuild_ReusesFreshSnapshot(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	defer st.Close()

	catalog := testCatalog()
	first, err := LoadOrBuild(ctx, st, "snap", catalog)
	if err != nil {
		t.Fatalf("LoadOrBuild (build): %v", err)
	}

	second, err := LoadOrBuild(ctx, st, "snap", catalog)
	if err != nil {
		t.Fatalf("LoadOrBuild (restore): %v", err)
	}
	if second.Meta().BuiltAt != first.Meta().BuiltAt {
		t.Error("fresh snapshot was rebuilt instead of restored")
	}
}

func TestLoadOrBuild_RebuildsStaleSnapshot(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	defer st.Close()

	if _, err := LoadOrBuild(ctx, st, "snap", testCatalog()); err != nil {
		t.Fatalf("LoadOrBuild (build): %v", err)
	}

	changed := testCatalog()
	changed[0].Popularity = 0.95

	idx, err := LoadOrBuild(ctx, st, "snap", changed)
	if err != nil {
		t.Fatalf("LoadOrBuild (rebuild): %v", err)
	}
	if idx.Meta().CatalogChecksum != Checksum(changed) {
		t.Error("stale snapshot served despite catalog change")
	}
}
