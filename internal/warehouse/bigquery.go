// Package warehouse persists cleaned issue rows in BigQuery and serves the
// aggregate reporting queries. The table is append-only; re-ingested issues
// supersede earlier rows at the index layer, not here.
package warehouse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/devinsight/devinsight/internal/models"
)

const insertBatchSize = 500

// Client wraps one BigQuery dataset/table pair.
type Client struct {
	bq      *bigquery.Client
	dataset string
	table   string
	log     zerolog.Logger
}

// NewClient connects to BigQuery. credentialsFile may be empty, in which
// case application-default credentials apply.
func NewClient(ctx context.Context, projectID, dataset, table, credentialsFile string, log zerolog.Logger) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	bq, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}
	return &Client{bq: bq, dataset: dataset, table: table, log: log}, nil
}

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.bq.Close()
}

// issueRow is the unified issues-plus-contributor schema. Null types keep
// "no contributor data" distinguishable from zero in the warehouse too.
type issueRow struct {
	IssueID          int64                  `bigquery:"issue_id"`
	Number           int64                  `bigquery:"number"`
	Title            string                 `bigquery:"title"`
	Body             string                 `bigquery:"body"`
	CreatedAt        time.Time              `bigquery:"created_at"`
	UpdatedAt        bigquery.NullTimestamp `bigquery:"updated_at"`
	ClosedAt         bigquery.NullTimestamp `bigquery:"closed_at"`
	State            string                 `bigquery:"state"`
	RepoName         string                 `bigquery:"repo_name"`
	Creator          string                 `bigquery:"creator"`
	CreatorType      string                 `bigquery:"creator_type"`
	IsPR             bool                   `bigquery:"is_pr"`
	PRURL            bigquery.NullString    `bigquery:"pr_url"`
	Labels           []string               `bigquery:"labels"`
	Assignees        []string               `bigquery:"assignees"`
	CommentsCount    int64                  `bigquery:"comments_count"`
	CommentsURL      bigquery.NullString    `bigquery:"comments_url"`
	HTMLURL          string                 `bigquery:"html_url"`
	ContributorLogin bigquery.NullString    `bigquery:"contributor_login"`
	ContributorRole  bigquery.NullString    `bigquery:"contributor_role"`
	Contributions    bigquery.NullInt64     `bigquery:"contributions"`
	CommitCount      bigquery.NullInt64     `bigquery:"commit_count"`
}

func toRow(is models.Issue) issueRow {
	return issueRow{
		IssueID:          is.ID,
		Number:           int64(is.Number),
		Title:            is.Title,
		Body:             is.Body,
		CreatedAt:        is.CreatedAt,
		UpdatedAt:        nullTimestamp(is.UpdatedAt),
		ClosedAt:         nullTimestamp(is.ClosedAt),
		State:            is.State,
		RepoName:         is.RepoName,
		Creator:          is.Creator,
		CreatorType:      is.CreatorType,
		IsPR:             is.IsPR,
		PRURL:            nullString(is.PRURL),
		Labels:           is.Labels,
		Assignees:        is.Assignees,
		CommentsCount:    int64(is.CommentsCount),
		CommentsURL:      nullString(is.CommentsURL),
		HTMLURL:          is.HTMLURL,
		ContributorLogin: nullString(is.ContributorLogin),
		ContributorRole:  nullString(is.ContributorRole),
		Contributions:    nullInt(is.Contributions),
		CommitCount:      nullInt(is.CommitCount),
	}
}

func nullTimestamp(t *time.Time) bigquery.NullTimestamp {
	if t == nil {
		return bigquery.NullTimestamp{}
	}
	return bigquery.NullTimestamp{Timestamp: *t, Valid: true}
}

func nullString(s string) bigquery.NullString {
	if s == "" {
		return bigquery.NullString{}
	}
	return bigquery.NullString{StringVal: s, Valid: true}
}

func nullInt(n *int) bigquery.NullInt64 {
	if n == nil {
		return bigquery.NullInt64{}
	}
	return bigquery.NullInt64{Int64: int64(*n), Valid: true}
}

// EnsureTable creates the dataset and table when missing.
func (c *Client) EnsureTable(ctx context.Context) error {
	ds := c.bq.Dataset(c.dataset)
	if _, err := ds.Metadata(ctx); err != nil {
		if !isNotFound(err) {
			return fmt.Errorf("failed to read dataset %s: %w", c.dataset, err)
		}
		if err := ds.Create(ctx, &bigquery.DatasetMetadata{Location: "US"}); err != nil {
			return fmt.Errorf("failed to create dataset %s: %w", c.dataset, err)
		}
		c.log.Info().Str("dataset", c.dataset).Msg("dataset created")
	}

	tbl := ds.Table(c.table)
	if _, err := tbl.Metadata(ctx); err == nil {
		return nil
	} else if !isNotFound(err) {
		return fmt.Errorf("failed to read table %s: %w", c.table, err)
	}

	schema, err := bigquery.InferSchema(issueRow{})
	if err != nil {
		return fmt.Errorf("failed to infer schema: %w", err)
	}
	if err := tbl.Create(ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		return fmt.Errorf("failed to create table %s: %w", c.table, err)
	}
	c.log.Info().Str("table", c.table).Msg("table created")
	return nil
}

// InsertIssues appends rows in batches to stay under payload limits.
func (c *Client) InsertIssues(ctx context.Context, issues []models.Issue) error {
	if len(issues) == 0 {
		return nil
	}
	inserter := c.bq.Dataset(c.dataset).Table(c.table).Inserter()

	for start := 0; start < len(issues); start += insertBatchSize {
		end := min(start+insertBatchSize, len(issues))
		rows := make([]issueRow, 0, end-start)
		for _, is := range issues[start:end] {
			rows = append(rows, toRow(is))
		}
		if err := inserter.Put(ctx, rows); err != nil {
			return fmt.Errorf("failed to insert rows %d-%d: %w", start, end, err)
		}
		c.log.Info().Int("from", start+1).Int("to", end).Int("total", len(issues)).Msg("inserted batch")
	}
	return nil
}

func (c *Client) tableFQN() string {
	return fmt.Sprintf("`%s.%s.%s`", c.bq.Project(), c.dataset, c.table)
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
