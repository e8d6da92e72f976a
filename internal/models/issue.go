package models

import "time"

// Issue is one tracked unit of work (an issue or a pull request) after
// cleaning. Contributor fields are nil until the merge step resolves them;
// nil means "no data", which is not the same as zero.
type Issue struct {
	ID            int64      `json:"issue_id"`
	Number        int        `json:"number"`
	Title         string     `json:"title"`
	Body          string     `json:"body"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
	ClosedAt      *time.Time `json:"closed_at"`
	State         string     `json:"state"` // "open" | "closed"
	RepoName      string     `json:"repo_name"`
	Creator       string     `json:"creator"`
	CreatorType   string     `json:"creator_type"` // "User" | "Bot" | "Organization"
	IsPR          bool       `json:"is_pr"`
	PRURL         string     `json:"pr_url,omitempty"`
	Labels        []string   `json:"labels"`
	Assignees     []string   `json:"assignees"`
	CommentsCount int        `json:"comments_count"`
	CommentsURL   string     `json:"comments_url,omitempty"`
	HTMLURL       string     `json:"html_url"`

	// Populated exactly once by ingest.MergeContributorStats.
	ContributorLogin string `json:"contributor_login,omitempty"`
	ContributorRole  string `json:"contributor_role,omitempty"`
	Contributions    *int   `json:"contributions,omitempty"`
	CommitCount      *int   `json:"commit_count,omitempty"`
}

// Contributor is a per-repo aggregate from the GitHub contributors endpoint.
// Read-only; used only to enrich issues.
type Contributor struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
}
