package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuerySpecBody(t *testing.T) {
	t.Run("no filters gets match_all placeholder", func(t *testing.T) {
		spec := QuerySpec{
			Should:             []map[string]any{MatchClause("title", "crash", 3)},
			MinimumShouldMatch: 1,
			Size:               10,
		}
		body := spec.Body()

		assert.Equal(t, 10, body["size"])
		boolQ := body["query"].(map[string]any)["bool"].(map[string]any)
		must := boolQ["must"].([]map[string]any)
		require.Len(t, must, 1)
		assert.Contains(t, must[0], "match_all")
		assert.Equal(t, 1, boolQ["minimum_should_match"])
		_, hasSort := body["sort"]
		assert.False(t, hasSort)
	})

	t.Run("filters are passed through unchanged", func(t *testing.T) {
		start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
		spec := QuerySpec{
			Must: []map[string]any{
				TermFilter("contributor_login", "alice"),
				DateRangeFilter("created_at", start, end),
			},
			MinimumShouldMatch: 1,
			Size:               5,
		}
		boolQ := spec.Body()["query"].(map[string]any)["bool"].(map[string]any)
		must := boolQ["must"].([]map[string]any)
		require.Len(t, must, 2)
		assert.Equal(t, "alice", must[0]["term"].(map[string]any)["contributor_login"])
		rng := must[1]["range"].(map[string]any)["created_at"].(map[string]any)
		assert.Equal(t, "2024-02-01T00:00:00Z", rng["gte"])
		assert.Equal(t, "2024-02-29T23:59:59Z", rng["lte"])
	})

	t.Run("date sort overrides relevance order", func(t *testing.T) {
		spec := QuerySpec{Size: 10, SortByCreatedDesc: true}
		sort := spec.Body()["sort"].([]map[string]any)
		require.Len(t, sort, 1)
		assert.Equal(t, "desc", sort[0]["created_at"].(map[string]any)["order"])
	})
}

func TestClauses(t *testing.T) {
	t.Run("match clause carries boost", func(t *testing.T) {
		c := MatchClause("body", "panic", 2)
		field := c["match"].(map[string]any)["body"].(map[string]any)
		assert.Equal(t, "panic", field["query"])
		assert.Equal(t, 2.0, field["boost"])
	})

	t.Run("knn clause doubles candidates", func(t *testing.T) {
		c := KNNClause("embedding", []float32{0.1, 0.2}, 10, 2)
		knn := c["knn"].(map[string]any)
		assert.Equal(t, "embedding", knn["field"])
		assert.Equal(t, 20, knn["num_candidates"])
		assert.Equal(t, 2.0, knn["boost"])
	})
}
