package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devinsight/devinsight/internal/models"
)

func TestCleanText(t *testing.T) {
	t.Run("code blocks collapse to marker", func(t *testing.T) {
		got := CleanText("crash here ```python\nraise ValueError\n``` on startup")
		assert.Equal(t, "crash here [code] on startup", got)
	})

	t.Run("whitespace collapses", func(t *testing.T) {
		assert.Equal(t, "Test Issue", CleanText("   Test \n\n  Issue   "))
	})

	t.Run("long bodies are capped with ellipsis", func(t *testing.T) {
		got := CleanText(strings.Repeat("a", 3000))
		assert.Len(t, got, 2003)
		assert.True(t, strings.HasSuffix(got, "..."))
	})

	t.Run("empty passes through", func(t *testing.T) {
		assert.Equal(t, "", CleanText(""))
	})
}

func TestCleanIssue(t *testing.T) {
	is := models.Issue{
		Title:  "  Flaky   test ",
		Body:   "see ```go\npanic()\n```",
		Labels: []string{"Bug", " HIGH-priority ", ""},
	}
	got := CleanIssue(is)

	assert.Equal(t, "Flaky test", got.Title)
	assert.Equal(t, "see [code]", got.Body)
	assert.Equal(t, []string{"bug", "high-priority"}, got.Labels)
	// original untouched
	assert.Equal(t, "  Flaky   test ", is.Title)
}
