package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		text string
		want Intent
	}{
		{"show me the most recent issues", IntentDate},
		{"latest bugs in the parser", IntentDate},
		{"what happened last month", IntentDate},
		{"issues opened this week", IntentDate},
		{"closed this month", IntentDate},
		{"when was the login bug fixed", IntentDate},
		{"recently closed pull requests", IntentDate},
		{"MOST RECENT issues", IntentDate},
		{"who has the most commits", IntentSemantic},
		{"memory leak in the scheduler", IntentSemantic},
		{"", IntentSemantic},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyIntent(tt.text), "text: %q", tt.text)
	}
}

func TestExtractContributor(t *testing.T) {
	t.Run("by pattern", func(t *testing.T) {
		login, ok := ExtractContributor("issues by alice")
		require.True(t, ok)
		assert.Equal(t, "alice", login)
	})

	t.Run("from pattern", func(t *testing.T) {
		login, ok := ExtractContributor("bugs from bob123")
		require.True(t, ok)
		assert.Equal(t, "bob123", login)
	})

	t.Run("by wins over from", func(t *testing.T) {
		login, ok := ExtractContributor("PRs from carol merged by dave")
		require.True(t, ok)
		assert.Equal(t, "dave", login)
	})

	t.Run("first by match wins", func(t *testing.T) {
		login, ok := ExtractContributor("commits by alice and by bob")
		require.True(t, ok)
		assert.Equal(t, "alice", login)
	})

	t.Run("hyphens and underscores", func(t *testing.T) {
		login, ok := ExtractContributor("work by a-user_42")
		require.True(t, ok)
		assert.Equal(t, "a-user_42", login)
	})

	t.Run("no match", func(t *testing.T) {
		_, ok := ExtractContributor("random text")
		assert.False(t, ok)
	})

	t.Run("token must start with a letter", func(t *testing.T) {
		_, ok := ExtractContributor("increased by 42")
		assert.False(t, ok)
	})
}

func TestResolveDateRange(t *testing.T) {
	// Fixed clock: Friday 2024-03-15.
	now := time.Date(2024, time.March, 15, 14, 30, 0, 0, time.UTC)

	t.Run("this month", func(t *testing.T) {
		start, end, ok := ResolveDateRange("issues this month", now)
		require.True(t, ok)
		assert.Equal(t, "2024-03-01", start.Format("2006-01-02"))
		assert.Equal(t, "2024-03-15", end.Format("2006-01-02"))
	})

	t.Run("last month spans leap February", func(t *testing.T) {
		start, end, ok := ResolveDateRange("closed last month", now)
		require.True(t, ok)
		assert.Equal(t, "2024-02-01", start.Format("2006-01-02"))
		assert.Equal(t, "2024-02-29", end.Format("2006-01-02"))
	})

	t.Run("this week starts on Monday", func(t *testing.T) {
		start, end, ok := ResolveDateRange("opened this week", now)
		require.True(t, ok)
		assert.Equal(t, "2024-03-11", start.Format("2006-01-02"))
		assert.Equal(t, time.Monday, start.Weekday())
		assert.Equal(t, "2024-03-15", end.Format("2006-01-02"))
	})

	t.Run("this week on a Monday is a single day", func(t *testing.T) {
		monday := time.Date(2024, time.March, 11, 9, 0, 0, 0, time.UTC)
		start, end, ok := ResolveDateRange("this week", monday)
		require.True(t, ok)
		assert.Equal(t, "2024-03-11", start.Format("2006-01-02"))
		assert.Equal(t, "2024-03-11", end.Format("2006-01-02"))
	})

	t.Run("last month beats this week and this month", func(t *testing.T) {
		start, _, ok := ResolveDateRange("last month or this week or this month", now)
		require.True(t, ok)
		assert.Equal(t, "2024-02-01", start.Format("2006-01-02"))
	})

	t.Run("no phrase", func(t *testing.T) {
		_, _, ok := ResolveDateRange("who has the most commits", now)
		assert.False(t, ok)
	})
}
