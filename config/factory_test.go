package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/feature"
	"github.com/rushteam/cinekit/pipeline"
	"github.com/rushteam/cinekit/store"
)

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	idx, err := feature.Build([]feature.Record{
		{ItemID: "A", CategoricalFeatures: []string{"Drama"}, Popularity: 0.5},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return &Runtime{
		Index:        feature.NewHandle(idx),
		Interactions: store.NewMemoryStore(),
	}
}

const testPipelineYAML = `
pipeline:
  name: test
  nodes:
    - type: recall.fanout
      config:
        sources: [content, neighbor]
        top_k: 10
    - type: rank.hybrid
      config:
        tiers:
          - { min_count: 0, content: 0.8, neighbor: 0.2 }
          - { min_count: 10, content: 0.5, neighbor: 0.5 }
    - type: filter
      config:
        exclude_seen: true
    - type: rerank.topn
      config:
        n: 5
`

func TestRuntime_BuildPipelineFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte(testPipelineYAML), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	p, err := newTestRuntime(t).BuildPipeline(path)
	if err != nil {
		t.Fatalf("BuildPipeline: %v", err)
	}

	wantKinds := []pipeline.Kind{
		pipeline.KindRecall,
		pipeline.KindRank,
		pipeline.KindFilter,
		pipeline.KindReRank,
	}
	if len(p.Nodes) != len(wantKinds) {
		t.Fatalf("built %d nodes, want %d", len(p.Nodes), len(wantKinds))
	}
	for i, want := range wantKinds {
		if got := p.Nodes[i].Kind(); got != want {
			t.Errorf("node %d kind = %v, want %v", i, got, want)
		}
	}
}

func TestRuntime_UnknownNodeType(t *testing.T) {
	yaml := `
pipeline:
  name: test
  nodes:
    - type: rank.deep_learning
`
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	_, err := newTestRuntime(t).BuildPipeline(path)
	if !core.IsInvalidConfig(err) {
		t.Fatalf("BuildPipeline error = %v, want INVALID_CONFIG", err)
	}
}

func TestBuildHybridNode_InvalidTiers(t *testing.T) {
	_, err := buildHybridNode(map[string]interface{}{
		"tiers": []interface{}{
			map[string]interface{}{"min_count": 0, "content": 0.7, "neighbor": 0.7},
		},
	})
	if !core.IsInvalidConfig(err) {
		t.Fatalf("buildHybridNode error = %v, want INVALID_CONFIG", err)
	}
}

func TestBuildFanoutNode_UnknownSource(t *testing.T) {
	r := newTestRuntime(t)
	_, err := r.buildFanoutNode(map[string]interface{}{
		"sources": []interface{}{"two_tower"},
	})
	if err == nil {
		t.Fatal("unknown source type accepted")
	}
}

func TestBuildFanoutNode_NeighborParamValidation(t *testing.T) {
	r := newTestRuntime(t)
	_, err := r.buildFanoutNode(map[string]interface{}{
		"sources": []interface{}{"neighbor"},
		"top_k":   -1,
	})
	if !core.IsInvalidConfig(err) {
		t.Fatalf("buildFanoutNode error = %v, want INVALID_CONFIG", err)
	}
}
