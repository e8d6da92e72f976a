package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devinsight/devinsight/internal/index"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return f.vector, f.err
}

type fakeSearcher struct {
	spec index.QuerySpec
	hits []index.Hit
	err  error
}

func (f *fakeSearcher) Search(_ context.Context, spec index.QuerySpec) ([]index.Hit, error) {
	f.spec = spec
	return f.hits, f.err
}

func newTestSearchService(embedder Embedder, searcher Searcher, opts SearchOptions) *SearchService {
	return NewSearchService(embedder, searcher, opts, zerolog.Nop())
}

func TestBuildSpecHybridClauses(t *testing.T) {
	svc := newTestSearchService(fakeEmbedder{vector: []float32{0.1, 0.2}}, &fakeSearcher{}, SearchOptions{})

	spec, err := svc.BuildSpec(context.Background(), "how do I fix the login crash")
	require.NoError(t, err)

	assert.Empty(t, spec.Must)
	require.Len(t, spec.Should, 5)
	assert.Contains(t, spec.Should[0], "knn")
	assert.Contains(t, spec.Should[1], "match")
	assert.Equal(t, 1, spec.MinimumShouldMatch)
	assert.Equal(t, 10, spec.Size)
	assert.False(t, spec.SortByCreatedDesc)
}

func TestBuildSpecContributorAndDateFilters(t *testing.T) {
	svc := newTestSearchService(fakeEmbedder{vector: []float32{0.1}}, &fakeSearcher{}, SearchOptions{})

	spec, err := svc.BuildSpec(context.Background(), "issues by alice last month")
	require.NoError(t, err)

	require.Len(t, spec.Must, 2)
	assert.Contains(t, spec.Must[0], "term")
	assert.Contains(t, spec.Must[1], "range")
	// Filters do not loosen the should requirement by default.
	assert.Equal(t, 1, spec.MinimumShouldMatch)
	assert.True(t, spec.SortByCreatedDesc)
}

func TestBuildSpecRelaxedMinShould(t *testing.T) {
	svc := newTestSearchService(fakeEmbedder{vector: []float32{0.1}}, &fakeSearcher{}, SearchOptions{RelaxMinShould: true})

	spec, err := svc.BuildSpec(context.Background(), "issues by alice last month")
	require.NoError(t, err)
	assert.Equal(t, 0, spec.MinimumShouldMatch)

	// Without filters the requirement stays.
	spec, err = svc.BuildSpec(context.Background(), "login crash")
	require.NoError(t, err)
	assert.Equal(t, 1, spec.MinimumShouldMatch)
}

func TestBuildSpecEmbeddingFailureDegradesToKeyword(t *testing.T) {
	svc := newTestSearchService(fakeEmbedder{err: ErrEmbeddingUnavailable}, &fakeSearcher{}, SearchOptions{})

	spec, err := svc.BuildSpec(context.Background(), "login crash")
	require.NoError(t, err)

	require.Len(t, spec.Should, 4)
	for _, clause := range spec.Should {
		assert.NotContains(t, clause, "knn")
	}
}

func TestRetrieveMapsIndexFailure(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("connection refused")}
	svc := newTestSearchService(fakeEmbedder{vector: []float32{0.1}}, searcher, SearchOptions{})

	_, err := svc.Retrieve(context.Background(), "login crash")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetrievalUnavailable)
}

func TestRetrievePassesSpecThrough(t *testing.T) {
	searcher := &fakeSearcher{hits: []index.Hit{{Score: 1.5}}}
	svc := newTestSearchService(fakeEmbedder{vector: []float32{0.1}}, searcher, SearchOptions{TopK: 5})

	hits, err := svc.Retrieve(context.Background(), "most recent issues")
	require.NoError(t, err)
	assert.Len(t, hits, 1)
	assert.Equal(t, 5, searcher.spec.Size)
	assert.True(t, searcher.spec.SortByCreatedDesc)
}
