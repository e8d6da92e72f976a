package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/devinsight/devinsight/internal/index"
)

// BuildContext renders ranked hits into the text block handed to the LLM.
// Hits are ordered by commit count descending so contribution questions see
// the strongest contributors first; an absent count sorts as zero without
// being rewritten in the output. The sort is stable, so retrieval order
// breaks ties. Bodies are cut to previewLen runes with a trailing "..."
// only when something was actually removed.
func BuildContext(hits []index.Hit, previewLen int) string {
	sorted := make([]index.Hit, len(hits))
	copy(sorted, hits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sortCommits(sorted[i].Source) > sortCommits(sorted[j].Source)
	})

	var b strings.Builder
	for i, hit := range sorted {
		if i > 0 {
			b.WriteString("\n\n")
		}
		doc := hit.Source
		fmt.Fprintf(&b, "Issue #%d:\n", i+1)
		fmt.Fprintf(&b, "- Title: %s\n", doc.Title)
		fmt.Fprintf(&b, "- Repo: %s\n", doc.RepoName)
		fmt.Fprintf(&b, "- State: %s\n", doc.State)
		fmt.Fprintf(&b, "- Created: %s\n", formatDate(doc.CreatedAt))
		fmt.Fprintf(&b, "- Closed: %s\n", formatDate(doc.ClosedAt))
		fmt.Fprintf(&b, "- Contributor: %s\n", doc.ContributorLogin)
		fmt.Fprintf(&b, "- Commit Count: %s\n", formatCount(doc.CommitCount))
		fmt.Fprintf(&b, "- Labels: %s\n", strings.Join(doc.Labels, ", "))
		fmt.Fprintf(&b, "- Body: %s", preview(doc.Body, previewLen))
	}
	return b.String()
}

func sortCommits(doc index.Document) int {
	if doc.CommitCount == nil {
		return 0
	}
	return *doc.CommitCount
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "unknown"
	}
	return t.UTC().Format(time.RFC3339)
}

func formatCount(n *int) string {
	if n == nil {
		return "unknown"
	}
	return fmt.Sprintf("%d", *n)
}

func preview(body string, max int) string {
	runes := []rune(body)
	if max <= 0 || len(runes) <= max {
		return body
	}
	return string(runes[:max]) + "..."
}
