package rank

import (
	"context"
	"math"
	"sort"
	"testing"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/recall"
)

func newScoredItem(id string, content, neighbor float64) *core.Item {
	it := core.NewItem(id)
	it.PutFeature("content_score", content)
	it.PutFeature("neighbor_score", neighbor)
	return it
}

func newHybridContext(n int, content, neighbor recall.Outcome) *core.RecommendContext {
	rctx := &core.RecommendContext{UserID: "u1", InteractionCount: n}
	recall.PutOutcome(rctx, "content", content)
	recall.PutOutcome(rctx, "neighbor", neighbor)
	return rctx
}

func TestNewHybridNode_RejectsInvalidTable(t *testing.T) {
	_, err := NewHybridNode(WeightTable{{MinCount: 0, Content: 0.7, Neighbor: 0.7}})
	if !core.IsInvalidConfig(err) {
		t.Fatalf("NewHybridNode error = %v, want INVALID_CONFIG", err)
	}
}

func TestNewHybridNode_NilTableUsesDefault(t *testing.T) {
	n, err := NewHybridNode(nil)
	if err != nil {
		t.Fatalf("NewHybridNode: %v", err)
	}
	if len(n.Table) == 0 {
		t.Fatal("nil table was not replaced with the default")
	}
}

func TestHybridNode_BlendsByTier(t *testing.T) {
	node, err := NewHybridNode(nil)
	if err != nil {
		t.Fatalf("NewHybridNode: %v", err)
	}

	tests := []struct {
		name  string
		count int
		want  float64 // blended score for content=0.8, neighbor=0.2
	}{
		{"cold tier", 0, 0.9*0.8 + 0.1*0.2},
		{"middle tier", 10, 0.6*0.8 + 0.4*0.2},
		{"heavy tier", 25, 0.4*0.8 + 0.6*0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rctx := newHybridContext(tt.count, recall.OutcomeScored, recall.OutcomeScored)
			items, err := node.Process(context.Background(), rctx, []*core.Item{
				newScoredItem("A", 0.8, 0.2),
			})
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if got := items[0].Score; math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("blended score = %g, want %g", got, tt.want)
			}
			cw := items[0].Feature("content_weight")
			nw := items[0].Feature("neighbor_weight")
			if math.Abs(cw+nw-1) > 1e-9 {
				t.Errorf("weights %g + %g != 1", cw, nw)
			}
		})
	}
}

func TestHybridNode_NeighborInsufficientDataForcesContentOnly(t *testing.T) {
	node, err := NewHybridNode(nil)
	if err != nil {
		t.Fatalf("NewHybridNode: %v", err)
	}

	// interaction count says heavy tier, but the neighbor source had no data
	rctx := newHybridContext(25, recall.OutcomeScored, recall.OutcomeInsufficientData)
	items, err := node.Process(context.Background(), rctx, []*core.Item{
		newScoredItem("A", 0.8, 0.0),
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if got := items[0].Feature("content_weight"); got != 1 {
		t.Errorf("content_weight = %g, want 1", got)
	}
	if got := items[0].Feature("neighbor_weight"); got != 0 {
		t.Errorf("neighbor_weight = %g, want 0", got)
	}
	if got := items[0].Score; got != 0.8 {
		t.Errorf("blended score = %g, want 0.8", got)
	}
}

func TestHybridNode_FallbackLabel(t *testing.T) {
	node, err := NewHybridNode(nil)
	if err != nil {
		t.Fatalf("NewHybridNode: %v", err)
	}

	tests := []struct {
		name    string
		outcome recall.Outcome
		want    string
	}{
		{"scored", recall.OutcomeScored, "false"},
		{"fallback", recall.OutcomeFallback, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rctx := newHybridContext(0, tt.outcome, recall.OutcomeScored)
			items, err := node.Process(context.Background(), rctx, []*core.Item{
				newScoredItem("A", 0.8, 0.2),
			})
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if got := items[0].Labels["is_fallback"].Value; got != tt.want {
				t.Errorf("is_fallback = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHybridNode_ContentInsufficientDataIsInternalError(t *testing.T) {
	node, err := NewHybridNode(nil)
	if err != nil {
		t.Fatalf("NewHybridNode: %v", err)
	}

	rctx := newHybridContext(0, recall.OutcomeInsufficientData, recall.OutcomeScored)
	_, err = node.Process(context.Background(), rctx, []*core.Item{newScoredItem("A", 0.8, 0.2)})
	if err == nil {
		t.Fatal("content source reporting insufficient data must not be silently accepted")
	}
}

func TestHybridNode_MonotonicRescalePreservesRanking(t *testing.T) {
	node, err := NewHybridNode(nil)
	if err != nil {
		t.Fatalf("NewHybridNode: %v", err)
	}

	base := []*core.Item{
		newScoredItem("A", 0.9, 0.1),
		newScoredItem("B", 0.5, 0.5),
		newScoredItem("C", 0.1, 0.9),
	}
	// rescaling one component by a positive constant keeps the per-component order
	scaled := []*core.Item{
		newScoredItem("A", 0.9*0.5, 0.1),
		newScoredItem("B", 0.5*0.5, 0.5),
		newScoredItem("C", 0.1*0.5, 0.9),
	}

	rank := func(items []*core.Item) []string {
		rctx := newHybridContext(0, recall.OutcomeScored, recall.OutcomeScored)
		out, err := node.Process(context.Background(), rctx, items)
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
		ids := make([]string, len(out))
		for i, it := range out {
			ids[i] = it.ID
		}
		return ids
	}

	got, want := rank(scaled), rank(base)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ranking changed under monotonic rescale: got %v, want %v", got, want)
		}
	}
}

func TestHybridNode_BlendedScoreRescalePreservesRanking(t *testing.T) {
	node, err := NewHybridNode(nil)
	if err != nil {
		t.Fatalf("NewHybridNode: %v", err)
	}

	rctx := newHybridContext(10, recall.OutcomeScored, recall.OutcomeScored)
	out, err := node.Process(context.Background(), rctx, []*core.Item{
		newScoredItem("A", 0.9, 0.1),
		newScoredItem("B", 0.5, 0.5),
		newScoredItem("C", 0.1, 0.9),
		newScoredItem("D", 0.7, 0.2),
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	order := func(items []*core.Item) []string {
		sorted := append([]*core.Item(nil), items...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
		ids := make([]string, len(sorted))
		for i, it := range sorted {
			ids[i] = it.ID
		}
		return ids
	}

	before := order(out)

	// any strictly increasing transform of the blended score keeps the order
	for _, it := range out {
		it.Score = 2*it.Score + 1
	}
	after := order(out)

	for i := range before {
		if after[i] != before[i] {
			t.Fatalf("ranking changed under blended-score rescale: %v vs %v", after, before)
		}
	}
}
