package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/devinsight/devinsight/internal/index"
	"github.com/devinsight/devinsight/internal/models"
)

// Source fetches raw records from the tracker.
type Source interface {
	ListIssues(ctx context.Context, repo, state string) ([]models.Issue, error)
	ListContributors(ctx context.Context, repo string) ([]models.Contributor, error)
}

// Warehouse appends cleaned issue rows for reporting.
type Warehouse interface {
	EnsureTable(ctx context.Context) error
	InsertIssues(ctx context.Context, issues []models.Issue) error
}

// Index provisions and bulk-loads the search index.
type Index interface {
	EnsureIndex(ctx context.Context, recreate bool) error
	BulkIndex(ctx context.Context, docs []index.Document) error
}

// Embedder turns document text into a vector. Documents whose embedding
// fails are skipped, never indexed with a zero vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Pipeline runs the full load: fetch, clean, merge contributor stats, append
// to the warehouse, embed, and bulk-index.
type Pipeline struct {
	source    Source
	warehouse Warehouse
	index     Index
	embedder  Embedder
	workers   int
	log       zerolog.Logger
}

// NewPipeline wires the pipeline dependencies. workers bounds the number of
// concurrent embedding calls.
func NewPipeline(source Source, warehouse Warehouse, idx Index, embedder Embedder, workers int, log zerolog.Logger) *Pipeline {
	if workers <= 0 {
		workers = 4
	}
	return &Pipeline{
		source:    source,
		warehouse: warehouse,
		index:     idx,
		embedder:  embedder,
		workers:   workers,
		log:       log,
	}
}

// Run ingests every repo in order. recreateIndex drops and re-provisions the
// index first, so the new document generation fully replaces the old one.
func (p *Pipeline) Run(ctx context.Context, repos []string, recreateIndex bool) error {
	if err := p.warehouse.EnsureTable(ctx); err != nil {
		return fmt.Errorf("warehouse setup failed: %w", err)
	}
	if err := p.index.EnsureIndex(ctx, recreateIndex); err != nil {
		return fmt.Errorf("index setup failed: %w", err)
	}

	for _, repo := range repos {
		if err := p.ingestRepo(ctx, repo); err != nil {
			return fmt.Errorf("ingest %s: %w", repo, err)
		}
	}
	return nil
}

func (p *Pipeline) ingestRepo(ctx context.Context, repo string) error {
	p.log.Info().Str("repo", repo).Msg("ingest started")

	// Issues and contributors are independent fetches.
	var (
		issues       []models.Issue
		contributors []models.Contributor
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		issues, err = p.source.ListIssues(gctx, repo, "all")
		return err
	})
	g.Go(func() error {
		var err error
		contributors, err = p.source.ListContributors(gctx, repo)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	p.log.Info().Str("repo", repo).Int("issues", len(issues)).Int("contributors", len(contributors)).Msg("fetched")

	merged := MergeContributorStats(CleanIssues(issues), contributors)

	if err := p.warehouse.InsertIssues(ctx, merged); err != nil {
		return fmt.Errorf("warehouse load failed: %w", err)
	}

	docs, skipped := p.embedDocuments(ctx, merged)
	if len(docs) == 0 {
		p.log.Warn().Str("repo", repo).Int("skipped", skipped).Msg("nothing to index")
		return nil
	}
	if err := p.index.BulkIndex(ctx, docs); err != nil {
		return err
	}

	p.log.Info().Str("repo", repo).Int("indexed", len(docs)).Int("skipped", skipped).Msg("ingest finished")
	return nil
}

// embedDocuments embeds issues on a bounded worker pool. Order of the output
// is not significant; failed embeddings are counted and dropped.
func (p *Pipeline) embedDocuments(ctx context.Context, issues []models.Issue) ([]index.Document, int) {
	pool, err := ants.NewPool(p.workers)
	if err != nil {
		p.log.Error().Err(err).Msg("worker pool unavailable, embedding sequentially")
		return p.embedSequential(ctx, issues)
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		docs    = make([]index.Document, 0, len(issues))
		skipped int
	)

	for _, is := range issues {
		is := is
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			doc, ok := p.embedOne(ctx, is)
			mu.Lock()
			defer mu.Unlock()
			if ok {
				docs = append(docs, doc)
			} else {
				skipped++
			}
		}); err != nil {
			wg.Done()
			mu.Lock()
			skipped++
			mu.Unlock()
		}
	}
	wg.Wait()

	return docs, skipped
}

func (p *Pipeline) embedSequential(ctx context.Context, issues []models.Issue) ([]index.Document, int) {
	docs := make([]index.Document, 0, len(issues))
	skipped := 0
	for _, is := range issues {
		if doc, ok := p.embedOne(ctx, is); ok {
			docs = append(docs, doc)
		} else {
			skipped++
		}
	}
	return docs, skipped
}

func (p *Pipeline) embedOne(ctx context.Context, is models.Issue) (index.Document, bool) {
	text := fmt.Sprintf("%s %s repo: %s contributor: %s", is.Title, is.Body, is.RepoName, is.ContributorLogin)
	vec, err := p.embedder.Embed(ctx, text)
	if err != nil {
		p.log.Warn().Err(err).Int64("issue", is.ID).Msg("embedding failed, skipping document")
		return index.Document{}, false
	}
	doc := index.FromIssue(is)
	doc.Embedding = vec
	return doc, true
}
