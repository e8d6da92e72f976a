package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/devinsight/devinsight/internal/index"
	"github.com/devinsight/devinsight/internal/query"
)

// Searcher executes a structured retrieval request against the issue index.
type Searcher interface {
	Search(ctx context.Context, spec index.QuerySpec) ([]index.Hit, error)
}

// SearchOptions tune retrieval without changing its semantics.
type SearchOptions struct {
	// TopK bounds the number of hits returned. Zero means the default of 10.
	TopK int
	// RelaxMinShould drops the minimum_should_match requirement when hard
	// filters are present, so filter-only questions with weak keyword
	// overlap still return hits.
	RelaxMinShould bool
}

// SearchService turns a natural-language question into one hybrid index
// query: intent classification and constraint extraction shape the filters,
// the embedded question drives vector similarity, and the raw text drives
// the keyword clauses.
type SearchService struct {
	embedder Embedder
	searcher Searcher
	opts     SearchOptions
	now      func() time.Time
	log      zerolog.Logger
}

// NewSearchService wires the retrieval pipeline.
func NewSearchService(embedder Embedder, searcher Searcher, opts SearchOptions, log zerolog.Logger) *SearchService {
	if opts.TopK <= 0 {
		opts.TopK = 10
	}
	return &SearchService{
		embedder: embedder,
		searcher: searcher,
		opts:     opts,
		now:      time.Now,
		log:      log.With().Str("component", "search").Logger(),
	}
}

// Retrieve answers a question with ranked index hits. Embedding failure is
// not fatal: the query degrades to keyword and filter clauses only. Index
// failure is fatal and surfaces as ErrRetrievalUnavailable.
func (s *SearchService) Retrieve(ctx context.Context, question string) ([]index.Hit, error) {
	spec, err := s.BuildSpec(ctx, question)
	if err != nil {
		return nil, err
	}

	hits, err := s.searcher.Search(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrievalUnavailable, err)
	}
	s.log.Debug().Str("question", question).Int("hits", len(hits)).Msg("retrieval complete")
	return hits, nil
}

// BuildSpec derives the index query for a question. Constraint extraction
// and embedding are independent, so the embedding call runs concurrently
// with the pure analysis steps.
func (s *SearchService) BuildSpec(ctx context.Context, question string) (index.QuerySpec, error) {
	var vector []float32
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.embedder.Embed(gctx, question)
		if err != nil {
			// Keyword and filter clauses can still answer the question.
			s.log.Warn().Err(err).Msg("embedding failed, degrading to keyword search")
			return nil
		}
		vector = v
		return nil
	})

	intent := query.ClassifyIntent(question)

	var must []map[string]any
	if login, ok := query.ExtractContributor(question); ok {
		must = append(must, index.TermFilter("contributor_login", login))
	}
	if start, end, ok := query.ResolveDateRange(question, s.now()); ok {
		must = append(must, index.DateRangeFilter("created_at", start, end))
	}

	if err := g.Wait(); err != nil {
		return index.QuerySpec{}, err
	}

	k := s.opts.TopK
	var should []map[string]any
	if len(vector) > 0 {
		should = append(should, index.KNNClause("embedding", vector, k, 2))
	}
	should = append(should,
		index.MatchClause("title", question, 3),
		index.MatchClause("body", question, 2),
		index.MatchClause("labels", question, 2),
	)
	should = append(should, index.TermFilter("state", "closed"))

	minShould := 1
	if s.opts.RelaxMinShould && len(must) > 0 {
		minShould = 0
	}

	return index.QuerySpec{
		Must:               must,
		Should:             should,
		MinimumShouldMatch: minShould,
		Size:               k,
		SortByCreatedDesc:  intent == query.IntentDate,
	}, nil
}
