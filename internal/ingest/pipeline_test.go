package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devinsight/devinsight/internal/index"
	"github.com/devinsight/devinsight/internal/models"
)

type fakeSource struct {
	issues       []models.Issue
	contributors []models.Contributor
}

func (f *fakeSource) ListIssues(_ context.Context, _, _ string) ([]models.Issue, error) {
	return f.issues, nil
}

func (f *fakeSource) ListContributors(_ context.Context, _ string) ([]models.Contributor, error) {
	return f.contributors, nil
}

type fakeWarehouse struct {
	rows []models.Issue
}

func (f *fakeWarehouse) EnsureTable(context.Context) error { return nil }
func (f *fakeWarehouse) InsertIssues(_ context.Context, issues []models.Issue) error {
	f.rows = append(f.rows, issues...)
	return nil
}

type fakeIndex struct {
	recreated bool
	docs      []index.Document
}

func (f *fakeIndex) EnsureIndex(_ context.Context, recreate bool) error {
	f.recreated = recreate
	return nil
}

func (f *fakeIndex) BulkIndex(_ context.Context, docs []index.Document) error {
	f.docs = append(f.docs, docs...)
	return nil
}

type fakeEmbedder struct {
	failOn string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return nil, errors.New("model unavailable")
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func TestPipelineRun(t *testing.T) {
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	source := &fakeSource{
		issues: []models.Issue{
			{ID: 1, Title: "Crash on startup", Creator: "alice", RepoName: "o/r", CreatedAt: created},
			{ID: 2, Title: "Unembeddable", Creator: "bob", RepoName: "o/r", CreatedAt: created},
			{ID: 3, Title: "Docs typo", Creator: "carol", RepoName: "o/r", CreatedAt: created},
		},
		contributors: []models.Contributor{
			{Login: "alice", Contributions: 3},
			{Login: "bob", Contributions: 12},
		},
	}
	wh := &fakeWarehouse{}
	idx := &fakeIndex{}
	emb := &fakeEmbedder{failOn: "Unembeddable"}

	p := NewPipeline(source, wh, idx, emb, 2, zerolog.Nop())
	err := p.Run(context.Background(), []string{"o/r"}, true)
	require.NoError(t, err)

	t.Run("index recreated when asked", func(t *testing.T) {
		assert.True(t, idx.recreated)
	})

	t.Run("warehouse receives all merged rows", func(t *testing.T) {
		require.Len(t, wh.rows, 3)
		require.NotNil(t, wh.rows[0].CommitCount)
		assert.Equal(t, 3, *wh.rows[0].CommitCount)
		assert.Nil(t, wh.rows[2].CommitCount, "unknown contributor stays absent")
	})

	t.Run("failed embeddings are skipped, not zero-vectored", func(t *testing.T) {
		require.Len(t, idx.docs, 2)
		for _, d := range idx.docs {
			assert.NotEqual(t, int64(2), d.IssueID)
			assert.NotEmpty(t, d.Embedding)
		}
	})

	t.Run("documents carry merged contributor stats", func(t *testing.T) {
		var alice *index.Document
		for i := range idx.docs {
			if idx.docs[i].IssueID == 1 {
				alice = &idx.docs[i]
			}
		}
		require.NotNil(t, alice)
		assert.Equal(t, "alice", alice.ContributorLogin)
		require.NotNil(t, alice.CommitCount)
		assert.Equal(t, 3, *alice.CommitCount)
	})
}
