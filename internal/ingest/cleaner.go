// Package ingest prepares raw GitHub records for the warehouse and the
// search index: cleaning text, attaching contributor statistics, and running
// the embed-and-load pipeline.
package ingest

import (
	"regexp"
	"strings"

	"github.com/devinsight/devinsight/internal/models"
)

const maxCleanLen = 2000

var (
	codeBlockRe  = regexp.MustCompile("(?s)```.*?```")
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CleanText normalizes issue text for indexing: fenced code blocks collapse
// to a "[code]" marker, whitespace runs collapse to single spaces, and very
// long bodies are capped.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = codeBlockRe.ReplaceAllString(text, "[code]")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	if len(text) > maxCleanLen {
		text = text[:maxCleanLen] + "..."
	}
	return text
}

// CleanIssue returns a copy with normalized title, body and labels. The
// input is not modified.
func CleanIssue(is models.Issue) models.Issue {
	is.Title = CleanText(is.Title)
	is.Body = CleanText(is.Body)
	labels := make([]string, 0, len(is.Labels))
	for _, l := range is.Labels {
		if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
			labels = append(labels, l)
		}
	}
	is.Labels = labels
	return is
}

// CleanIssues cleans a batch, preserving order.
func CleanIssues(issues []models.Issue) []models.Issue {
	out := make([]models.Issue, len(issues))
	for i, is := range issues {
		out[i] = CleanIssue(is)
	}
	return out
}
