package feast

import (
	"context"
	"testing"

	"github.com/rushteam/cinekit/core"
)

// fakeClient serves canned feature vectors keyed by movie id.
type fakeClient struct {
	values map[string]map[string]interface{}
	err    error
}

func (f *fakeClient) OnlineFeatures(_ context.Context, req *OnlineFeaturesRequest) (*OnlineFeaturesResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([]FeatureVector, len(req.EntityRows))
	for i, row := range req.EntityRows {
		id, _ := row[DefaultEntityKey].(string)
		vectors[i] = FeatureVector{Values: f.values[id], EntityRow: row}
	}
	return &OnlineFeaturesResponse{Vectors: vectors}, nil
}

func (f *fakeClient) Close() error { return nil }

func TestCatalogSource_Fetch(t *testing.T) {
	client := &fakeClient{values: map[string]map[string]interface{}{
		"A": {
			"movie_catalog:genres":     []string{"Science Fiction", "Drama"},
			"movie_catalog:keywords":   "space, wormhole",
			"movie_catalog:overview":   "a voyage through a wormhole",
			"movie_catalog:popularity": 0.9,
		},
		"B": {
			// genres stored as a comma separated string
			"movie_catalog:genres":     "Comedy,Romance",
			"movie_catalog:popularity": 0.3,
		},
	}}

	src := &CatalogSource{Client: client, Project: "movies"}
	records, err := src.Fetch(context.Background(), []string{"A", "B"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	a := records[0]
	if a.ItemID != "A" {
		t.Fatalf("records[0].ItemID = %s, want A", a.ItemID)
	}
	if len(a.CategoricalFeatures) != 2 || a.CategoricalFeatures[0] != "Science Fiction" {
		t.Errorf("A categorical = %v", a.CategoricalFeatures)
	}
	if len(a.KeywordFeatures) != 2 || a.KeywordFeatures[0] != "space" {
		t.Errorf("A keywords = %v", a.KeywordFeatures)
	}
	if len(a.TextFeatures) != 1 {
		t.Errorf("A text features = %v, want only the overview", a.TextFeatures)
	}
	if a.Popularity != 0.9 {
		t.Errorf("A popularity = %g, want 0.9", a.Popularity)
	}

	b := records[1]
	if len(b.CategoricalFeatures) != 2 || b.CategoricalFeatures[1] != "Romance" {
		t.Errorf("B categorical = %v", b.CategoricalFeatures)
	}
	if len(b.TextFeatures) != 0 {
		t.Errorf("B text features = %v, want none", b.TextFeatures)
	}
}

func TestCatalogSource_MissingFeaturesStillProduceRecord(t *testing.T) {
	client := &fakeClient{values: map[string]map[string]interface{}{}}
	src := &CatalogSource{Client: client, Project: "movies"}

	records, err := src.Fetch(context.Background(), []string{"ghost"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 1 || records[0].ItemID != "ghost" {
		t.Fatalf("records = %v, want one empty record for ghost", records)
	}
}

func TestCatalogSource_FetchErrors(t *testing.T) {
	src := &CatalogSource{Client: &fakeClient{err: context.DeadlineExceeded}}
	if _, err := src.Fetch(context.Background(), []string{"A"}); !core.IsDataError(err) {
		t.Fatalf("Fetch error = %v, want DATA_ERROR", err)
	}

	src = &CatalogSource{Client: &fakeClient{}}
	if _, err := src.Fetch(context.Background(), nil); !core.IsDataError(err) {
		t.Fatalf("Fetch(no ids) error = %v, want DATA_ERROR", err)
	}

	src = &CatalogSource{}
	if _, err := src.Fetch(context.Background(), []string{"A"}); !core.IsInvalidConfig(err) {
		t.Fatalf("Fetch(no client) error = %v, want INVALID_CONFIG", err)
	}
}
