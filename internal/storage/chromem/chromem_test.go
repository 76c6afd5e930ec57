package chromem

import (
	"context"
	"fmt"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/cdekimpe/kagent-memory/internal/common"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(arbor.NewLogger(), common.ChromemConfig{})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return store
}

// vec returns a unit vector pointing along one of four axes, so cosine
// similarity between same-axis vectors is 1 and cross-axis is 0.
func vec(axis int) []float32 {
	v := make([]float32, 4)
	v[axis%4] = 1
	return v
}

func TestAddAndSearch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ids, err := store.Add(ctx,
		[][]float32{vec(0), vec(1)},
		[]string{"first document", "second document"},
		[]map[string]interface{}{
			{"user_id": "user-1", "chunk_index": 0},
			{"user_id": "user-2", "chunk_index": 0},
		},
		nil,
	)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if len(ids) != 2 || ids[0] == "" || ids[1] == "" {
		t.Fatalf("expected two generated ids, got %v", ids)
	}

	hits, err := store.Search(ctx, vec(0), 10, nil, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	// Same-axis vector must rank first.
	if hits[0].Content != "first document" {
		t.Errorf("expected first document ranked first, got %q", hits[0].Content)
	}
	if hits[0].Score <= hits[1].Score {
		t.Errorf("expected descending scores, got %f then %f", hits[0].Score, hits[1].Score)
	}
}

func TestSearch_MetadataRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	meta := map[string]interface{}{
		"user_id":      "user-1",
		"chunk_index":  3,
		"total_chunks": 5,
	}
	if _, err := store.Add(ctx, [][]float32{vec(0)}, []string{"doc"}, []map[string]interface{}{meta}, nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	hits, err := store.Search(ctx, vec(0), 1, nil, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}

	if hits[0].Metadata["user_id"] != "user-1" {
		t.Errorf("expected user_id preserved, got %v", hits[0].Metadata)
	}
	// JSON round-trip turns ints into float64.
	if hits[0].Metadata["chunk_index"] != float64(3) {
		t.Errorf("expected chunk_index 3, got %v", hits[0].Metadata["chunk_index"])
	}
	if _, present := hits[0].Metadata[metadataKey]; present {
		t.Error("internal metadata key should not leak into results")
	}
}

func TestSearch_UserFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx,
		[][]float32{vec(0), vec(0), vec(0)},
		[]string{"alpha memory", "beta memory", "alpha again"},
		[]map[string]interface{}{
			{"user_id": "alpha"},
			{"user_id": "beta"},
			{"user_id": "alpha"},
		},
		nil,
	)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	hits, err := store.Search(ctx, vec(0), 10, map[string]interface{}{"user_id": "alpha"}, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits for user alpha, got %d", len(hits))
	}
	for _, hit := range hits {
		if hit.Metadata["user_id"] != "alpha" {
			t.Errorf("filter leak: got hit for %v", hit.Metadata["user_id"])
		}
	}
}

func TestSearch_ClampsTopKToCollectionSize(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Add(ctx, [][]float32{vec(0)}, []string{"only one"}, []map[string]interface{}{{"user_id": "u"}}, nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	hits, err := store.Search(ctx, vec(0), 50, nil, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("expected 1 hit, got %d", len(hits))
	}
}

func TestSearch_EmptyCollection(t *testing.T) {
	store := newTestStore(t)

	hits, err := store.Search(context.Background(), vec(0), 10, nil, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits from empty collection, got %d", len(hits))
	}
}

func TestSearch_ScoreThreshold(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// vec(1) is orthogonal to the query, so its similarity is far below the
	// threshold.
	if _, err := store.Add(ctx,
		[][]float32{vec(0), vec(1)},
		[]string{"close", "far"},
		[]map[string]interface{}{{"k": "v"}, {"k": "v"}},
		nil,
	); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	threshold := 0.9
	hits, err := store.Search(ctx, vec(0), 10, nil, &threshold)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 || hits[0].Content != "close" {
		t.Errorf("expected only the close hit above threshold, got %v", hits)
	}
}

func TestDelete_ByFilterReturnsCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx,
		[][]float32{vec(0), vec(1), vec(2)},
		[]string{"one", "two", "three"},
		[]map[string]interface{}{
			{"user_id": "doomed"},
			{"user_id": "doomed"},
			{"user_id": "survivor"},
		},
		nil,
	)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	count, err := store.Delete(ctx, nil, map[string]interface{}{"user_id": "doomed"})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 deleted, got %d", count)
	}

	hits, err := store.Search(ctx, vec(2), 10, nil, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 || hits[0].Metadata["user_id"] != "survivor" {
		t.Errorf("expected only survivor left, got %v", hits)
	}
}

func TestDelete_NonMatchingFilterYieldsZero(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Add(ctx, [][]float32{vec(0)}, []string{"doc"}, []map[string]interface{}{{"user_id": "u"}}, nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	count, err := store.Delete(ctx, nil, map[string]interface{}{"user_id": "nobody"})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 deleted for non-matching filter, got %d", count)
	}
}

func TestDelete_ByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ids, err := store.Add(ctx, [][]float32{vec(0), vec(1)}, []string{"a", "b"},
		[]map[string]interface{}{{"k": "v"}, {"k": "v"}}, nil)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	count, err := store.Delete(ctx, ids[:1], nil)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 deleted, got %d", count)
	}
}

func TestAdd_ExplicitIDs(t *testing.T) {
	store := newTestStore(t)

	ids, err := store.Add(context.Background(), [][]float32{vec(0)}, []string{"doc"},
		[]map[string]interface{}{{"k": "v"}}, []string{"my-id"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "my-id" {
		t.Errorf("expected explicit id preserved, got %v", ids)
	}
}

func TestHealthCheck(t *testing.T) {
	store, err := NewStore(arbor.NewLogger(), common.ChromemConfig{})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if store.HealthCheck(context.Background()) {
		t.Error("expected unhealthy before Initialize")
	}

	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if !store.HealthCheck(context.Background()) {
		t.Error("expected healthy after Initialize")
	}
}

func TestPersistentStore(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(arbor.NewLogger(), common.ChromemConfig{Path: dir})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	ctx := context.Background()
	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if _, err := store.Add(ctx, [][]float32{vec(0)}, []string{"persisted"},
		[]map[string]interface{}{{"user_id": "u"}}, nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewStore(arbor.NewLogger(), common.ChromemConfig{Path: dir})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if err := reopened.Initialize(ctx); err != nil {
		t.Fatalf("reopen Initialize failed: %v", err)
	}

	hits, err := reopened.Search(ctx, vec(0), 1, nil, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 || hits[0].Content != "persisted" {
		t.Errorf("expected persisted document after reopen, got %v", hits)
	}
}

func TestConcurrentAdds(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	done := make(chan error, 4)
	for g := 0; g < 4; g++ {
		go func(g int) {
			_, err := store.Add(ctx,
				[][]float32{vec(g)},
				[]string{fmt.Sprintf("doc-%d", g)},
				[]map[string]interface{}{{"writer": fmt.Sprintf("g%d", g)}},
				nil,
			)
			done <- err
		}(g)
	}
	for g := 0; g < 4; g++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent Add failed: %v", err)
		}
	}

	hits, err := store.Search(ctx, vec(0), 10, nil, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 4 {
		t.Errorf("expected 4 documents, got %d", len(hits))
	}
}
