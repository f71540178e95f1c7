package cinekit

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/feature"
	"github.com/rushteam/cinekit/store"
)

func newTestWorld(t *testing.T) (*feature.Handle, *store.MemoryStore) {
	t.Helper()
	idx, err := feature.Build([]feature.Record{
		{
			ItemID:              "A",
			CategoricalFeatures: []string{"Space", "Drama"},
			TextFeatures:        []string{"wormhole voyage"},
			Popularity:          0.9,
		},
		{
			ItemID:              "B",
			CategoricalFeatures: []string{"Space", "Action"},
			TextFeatures:        []string{"laser battle"},
			Popularity:          0.5,
		},
		{
			ItemID:              "C",
			CategoricalFeatures: []string{"Comedy"},
			TextFeatures:        []string{"village wedding"},
			Popularity:          0.2,
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return feature.NewHandle(idx), store.NewMemoryStore()
}

func TestNewRecommender_Validation(t *testing.T) {
	handle, st := newTestWorld(t)
	defer st.Close()

	if _, err := NewRecommender(nil, st); !core.IsInvalidConfig(err) {
		t.Fatalf("missing index error = %v, want INVALID_CONFIG", err)
	}
	if _, err := NewRecommender(handle, nil); !core.IsInvalidConfig(err) {
		t.Fatalf("missing store error = %v, want INVALID_CONFIG", err)
	}
	if _, err := NewRecommender(handle, st, WithTopKNeighbors(0)); !core.IsInvalidConfig(err) {
		t.Fatalf("zero topk error = %v, want INVALID_CONFIG", err)
	}
	if _, err := NewRecommender(handle, st, WithWeightTable(nil)); !core.IsInvalidConfig(err) {
		t.Fatalf("nil weight table error = %v, want INVALID_CONFIG", err)
	}
}

func TestRecommend_WarmUser(t *testing.T) {
	ctx := context.Background()
	handle, st := newTestWorld(t)
	defer st.Close()

	_ = st.Append(ctx, "alice", "A", core.StrengthLike)
	_ = st.Append(ctx, "bob", "A", core.StrengthLike)
	_ = st.Append(ctx, "bob", "B", core.StrengthLike)

	rec, err := NewRecommender(handle, st, WithMinInteractions(1), WithMinUsers(1))
	if err != nil {
		t.Fatalf("NewRecommender: %v", err)
	}

	recs, err := rec.Recommend(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	for _, r := range recs {
		if r.ItemID == "A" {
			t.Fatal("already seen item A was recommended")
		}
		if r.Factors.IsFallback {
			t.Errorf("%s flagged as fallback for a user with history", r.ItemID)
		}
		if sum := r.Factors.ContentWeight + r.Factors.NeighborWeight; math.Abs(sum-1) > 1e-9 {
			t.Errorf("%s weights sum to %g, want 1", r.ItemID, sum)
		}
	}

	// B shares taste and neighbor signal with alice, C shares neither
	if len(recs) < 2 || recs[0].ItemID != "B" {
		t.Fatalf("recs = %v, want B first", recIDs(recs))
	}
	if recs[0].Score <= recs[1].Score {
		t.Error("results are not ordered by blended score")
	}
}

func TestRecommend_ColdUserFallsBackToPopularity(t *testing.T) {
	ctx := context.Background()
	handle, st := newTestWorld(t)
	defer st.Close()

	rec, err := NewRecommender(handle, st)
	if err != nil {
		t.Fatalf("NewRecommender: %v", err)
	}

	recs, err := rec.Recommend(ctx, "carol", 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d recs, want the whole catalog", len(recs))
	}

	want := []string{"A", "B", "C"} // popularity order
	for i, id := range want {
		if recs[i].ItemID != id {
			t.Fatalf("cold-start order = %v, want %v", recIDs(recs), want)
		}
	}
	for _, r := range recs {
		if !r.Factors.IsFallback {
			t.Errorf("%s not flagged as fallback for a cold user", r.ItemID)
		}
		// neighbor source has no data: blend degrades to content-only
		if r.Factors.ContentWeight != 1 || r.Factors.NeighborWeight != 0 {
			t.Errorf("%s weights = (%g, %g), want (1, 0)",
				r.ItemID, r.Factors.ContentWeight, r.Factors.NeighborWeight)
		}
	}
}

func TestRecommend_IncludeSeen(t *testing.T) {
	ctx := context.Background()
	handle, st := newTestWorld(t)
	defer st.Close()

	_ = st.Append(ctx, "alice", "A", core.StrengthLike)

	rec, err := NewRecommender(handle, st)
	if err != nil {
		t.Fatalf("NewRecommender: %v", err)
	}

	recs, err := rec.Recommend(ctx, "alice", 10, WithExcludeSeen(false))
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	found := false
	for _, r := range recs {
		if r.ItemID == "A" {
			found = true
		}
	}
	if !found {
		t.Fatal("WithExcludeSeen(false) still filtered the seen item")
	}
}

func TestRecommend_TopNTruncates(t *testing.T) {
	ctx := context.Background()
	handle, st := newTestWorld(t)
	defer st.Close()

	rec, err := NewRecommender(handle, st)
	if err != nil {
		t.Fatalf("NewRecommender: %v", err)
	}

	recs, err := rec.Recommend(ctx, "carol", 2)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d recs, want 2", len(recs))
	}
}

func TestRecommend_EmptyUserID(t *testing.T) {
	handle, st := newTestWorld(t)
	defer st.Close()

	rec, err := NewRecommender(handle, st)
	if err != nil {
		t.Fatalf("NewRecommender: %v", err)
	}
	if _, err := rec.Recommend(context.Background(), "", 10); err == nil {
		t.Fatal("empty user id accepted")
	}
}

func recIDs(recs []core.Recommendation) []string {
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.ItemID
	}
	return ids
}
