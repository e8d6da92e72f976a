// Package index talks to the Elasticsearch index that stores issue documents
// and their embeddings. It owns the hybrid query contract: structured must
// filters plus weighted should clauses executed as one ranked request.
package index

import (
	"time"

	"github.com/devinsight/devinsight/internal/models"
)

// Document is an issue as stored in the index. Field names follow the index
// mapping, so the JSON tags are the schema.
type Document struct {
	IssueID          int64      `json:"issue_id"`
	Number           int        `json:"number"`
	Title            string     `json:"title"`
	Body             string     `json:"body"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
	ClosedAt         *time.Time `json:"closed_at,omitempty"`
	State            string     `json:"state"`
	RepoName         string     `json:"repo_name"`
	Creator          string     `json:"creator"`
	CreatorType      string     `json:"creator_type,omitempty"`
	IsPR             bool       `json:"is_pr"`
	PRURL            string     `json:"pr_url,omitempty"`
	Labels           []string   `json:"labels"`
	Assignees        []string   `json:"assignees,omitempty"`
	CommentsCount    int        `json:"comments_count"`
	HTMLURL          string     `json:"html_url"`
	ContributorLogin string     `json:"contributor_login,omitempty"`
	ContributorRole  string     `json:"contributor_role,omitempty"`
	Contributions    *int       `json:"contributions,omitempty"`
	CommitCount      *int       `json:"commit_count,omitempty"`
	Embedding        []float32  `json:"embedding,omitempty"`
}

// FromIssue maps a merged issue onto its index document. The embedding is
// attached separately by the ingest pipeline.
func FromIssue(is models.Issue) Document {
	created := is.CreatedAt
	return Document{
		IssueID:          is.ID,
		Number:           is.Number,
		Title:            is.Title,
		Body:             is.Body,
		CreatedAt:        &created,
		UpdatedAt:        is.UpdatedAt,
		ClosedAt:         is.ClosedAt,
		State:            is.State,
		RepoName:         is.RepoName,
		Creator:          is.Creator,
		CreatorType:      is.CreatorType,
		IsPR:             is.IsPR,
		PRURL:            is.PRURL,
		Labels:           is.Labels,
		Assignees:        is.Assignees,
		CommentsCount:    is.CommentsCount,
		HTMLURL:          is.HTMLURL,
		ContributorLogin: is.ContributorLogin,
		ContributorRole:  is.ContributorRole,
		Contributions:    is.Contributions,
		CommitCount:      is.CommitCount,
	}
}

// Hit is one ranked search result. Score is engine-defined, higher is better;
// it is zero when the engine sorted by date instead of relevance.
type Hit struct {
	Source Document
	Score  float64
	Rank   int
}
