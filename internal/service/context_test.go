package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devinsight/devinsight/internal/index"
)

func intPtr(n int) *int { return &n }

func hitWithCommits(title string, commits *int) index.Hit {
	return index.Hit{Source: index.Document{Title: title, CommitCount: commits}}
}

func TestBuildContextOrdersByCommitCount(t *testing.T) {
	hits := []index.Hit{
		hitWithCommits("five", intPtr(5)),
		hitWithCommits("none", nil),
		hitWithCommits("ten", intPtr(10)),
	}

	out := BuildContext(hits, 200)

	iTen := strings.Index(out, "Title: ten")
	iFive := strings.Index(out, "Title: five")
	iNone := strings.Index(out, "Title: none")
	require.True(t, iTen >= 0 && iFive >= 0 && iNone >= 0)
	assert.Less(t, iTen, iFive)
	assert.Less(t, iFive, iNone)

	// The absent count is reported as unknown, not rewritten to zero.
	assert.Contains(t, out, "Commit Count: unknown")
	assert.Contains(t, out, "Commit Count: 10")
}

func TestBuildContextStableOnTies(t *testing.T) {
	hits := []index.Hit{
		hitWithCommits("first", intPtr(3)),
		hitWithCommits("second", intPtr(3)),
		hitWithCommits("absent", nil),
		hitWithCommits("zero", intPtr(0)),
	}

	out := BuildContext(hits, 200)

	assert.Less(t, strings.Index(out, "Title: first"), strings.Index(out, "Title: second"))
	// nil sorts as zero, so retrieval order decides between them.
	assert.Less(t, strings.Index(out, "Title: absent"), strings.Index(out, "Title: zero"))
}

func TestBuildContextBodyPreview(t *testing.T) {
	long := strings.Repeat("a", 250)
	hits := []index.Hit{
		{Source: index.Document{Title: "long", Body: long}},
		{Source: index.Document{Title: "short", Body: "fits"}},
	}

	out := BuildContext(hits, 200)

	assert.Contains(t, out, strings.Repeat("a", 200)+"...")
	assert.NotContains(t, out, strings.Repeat("a", 201))
	// Short bodies are not suffixed.
	assert.True(t, strings.HasSuffix(out, "Body: fits"))
}

func TestBuildContextFieldRendering(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	hits := []index.Hit{{Source: index.Document{
		Title:            "Crash on login",
		RepoName:         "acme/app",
		State:            "closed",
		CreatedAt:        &created,
		ContributorLogin: "alice",
		CommitCount:      intPtr(7),
		Labels:           []string{"bug", "p1"},
		Body:             "steps to reproduce",
	}}}

	out := BuildContext(hits, 200)

	assert.Contains(t, out, "Issue #1:")
	assert.Contains(t, out, "- Repo: acme/app")
	assert.Contains(t, out, "- Created: 2024-03-01T12:00:00Z")
	assert.Contains(t, out, "- Closed: unknown")
	assert.Contains(t, out, "- Labels: bug, p1")
}

func TestBuildContextDoesNotMutateInput(t *testing.T) {
	hits := []index.Hit{
		hitWithCommits("low", intPtr(1)),
		hitWithCommits("high", intPtr(9)),
	}

	BuildContext(hits, 200)

	assert.Equal(t, "low", hits[0].Source.Title)
	assert.Equal(t, "high", hits[1].Source.Title)
}
