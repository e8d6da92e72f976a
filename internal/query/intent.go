// Package query turns free-form question text into structured retrieval
// inputs: a coarse intent and optional contributor / date-range constraints.
// Everything here is a pure function over lower-cased text.
package query

import (
	"regexp"
	"strings"
	"time"
)

// Intent is the coarse classification of a question. It decides whether the
// retrieval request sorts by recency instead of relevance.
type Intent string

const (
	IntentDate     Intent = "date_query"
	IntentSemantic Intent = "semantic_query"
)

// dateKeywords are the temporal trigger phrases. First match wins; there is
// no partial scoring.
var dateKeywords = []string{
	"most recent",
	"latest",
	"last month",
	"this week",
	"this month",
	"when",
	"recently closed",
}

// ClassifyIntent returns IntentDate when the text contains any temporal
// trigger phrase, IntentSemantic otherwise.
func ClassifyIntent(text string) Intent {
	lower := strings.ToLower(text)
	for _, kw := range dateKeywords {
		if strings.Contains(lower, kw) {
			return IntentDate
		}
	}
	return IntentSemantic
}

var (
	byPattern   = regexp.MustCompile(`\bby\s+([a-z][a-z0-9_-]*)\b`)
	fromPattern = regexp.MustCompile(`\bfrom\s+([a-z][a-z0-9_-]*)\b`)
)

// ExtractContributor pulls an explicit contributor login out of phrases like
// "issues by alice" or "bugs from bob123". The "by" pattern is tried before
// "from"; only the first match of the winning pattern is used.
func ExtractContributor(text string) (string, bool) {
	lower := strings.ToLower(text)
	if m := byPattern.FindStringSubmatch(lower); m != nil {
		return m[1], true
	}
	if m := fromPattern.FindStringSubmatch(lower); m != nil {
		return m[1], true
	}
	return "", false
}

// ResolveDateRange recognizes "last month", "this week" and "this month"
// relative to now, in now's location, at day granularity (both bounds
// inclusive). Precedence is fixed: "last month" is checked first, then
// "this week", then "this month". Multiple phrases never raise an error;
// the first in that order applies.
func ResolveDateRange(text string, now time.Time) (start, end time.Time, ok bool) {
	lower := strings.ToLower(text)
	today := midnight(now)

	switch {
	case strings.Contains(lower, "last month"):
		firstOfThisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		lastOfPrevMonth := firstOfThisMonth.AddDate(0, 0, -1)
		firstOfPrevMonth := time.Date(lastOfPrevMonth.Year(), lastOfPrevMonth.Month(), 1, 0, 0, 0, 0, now.Location())
		return firstOfPrevMonth, lastOfPrevMonth, true

	case strings.Contains(lower, "this week"):
		// Monday-start weeks: most recent Monday on or before today.
		offset := (int(now.Weekday()) + 6) % 7
		return today.AddDate(0, 0, -offset), today, true

	case strings.Contains(lower, "this month"):
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), today, true
	}

	return time.Time{}, time.Time{}, false
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
