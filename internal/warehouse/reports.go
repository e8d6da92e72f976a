package warehouse

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// IssueStats summarizes the lifecycle state of the whole corpus.
type IssueStats struct {
	Closed           int64   `json:"closed"`
	Open             int64   `json:"open"`
	AvgResolutionHrs float64 `json:"avg_resolution_hrs"`
}

// TopContributor is one row of the commits leaderboard.
type TopContributor struct {
	Name    string `json:"name"`
	Commits int64  `json:"commits"`
}

// Blocker is an open issue surfaced on the report, newest first.
type Blocker struct {
	Title     string    `json:"title"`
	RepoName  string    `json:"repo_name"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// Report is the full payload for GET /reports.
type Report struct {
	Issues       IssueStats       `json:"issues"`
	Contributors []TopContributor `json:"contributors"`
	Blockers     []Blocker        `json:"blockers"`
}

// RecentIssue is one row of GET /issues/recent.
type RecentIssue struct {
	IssueID          int64      `json:"issue_id"`
	Number           int64      `json:"number"`
	Title            string     `json:"title"`
	Body             string     `json:"body"`
	RepoName         string     `json:"repo_name"`
	State            string     `json:"state"`
	ContributorLogin string     `json:"contributor_login"`
	CommitCount      int64      `json:"commit_count"`
	CreatedAt        *time.Time `json:"created_at"`
	ClosedAt         *time.Time `json:"closed_at"`
}

// BuildReport runs the three aggregate queries: totals, top contributors by
// max commit count, and the newest open blockers.
func (c *Client) BuildReport(ctx context.Context) (Report, error) {
	report := Report{
		Contributors: []TopContributor{},
		Blockers:     []Blocker{},
	}

	stats, err := c.issueStats(ctx)
	if err != nil {
		return report, err
	}
	report.Issues = stats

	contributors, err := c.topContributors(ctx, 5)
	if err != nil {
		return report, err
	}
	report.Contributors = contributors

	blockers, err := c.openBlockers(ctx, 5)
	if err != nil {
		return report, err
	}
	report.Blockers = blockers

	return report, nil
}

func (c *Client) issueStats(ctx context.Context) (IssueStats, error) {
	q := c.bq.Query(fmt.Sprintf(`
		SELECT
			COUNT(CASE WHEN state = 'closed' THEN 1 END) AS closed,
			COUNT(CASE WHEN state = 'open' THEN 1 END) AS open,
			ROUND(AVG(
				CASE
					WHEN closed_at IS NOT NULL
					THEN TIMESTAMP_DIFF(closed_at, created_at, HOUR)
				END
			), 1) AS avg_resolution_hrs
		FROM %s`, c.tableFQN()))

	it, err := q.Read(ctx)
	if err != nil {
		return IssueStats{}, fmt.Errorf("stats query failed: %w", err)
	}

	var row struct {
		Closed           int64                `bigquery:"closed"`
		Open             int64                `bigquery:"open"`
		AvgResolutionHrs bigquery.NullFloat64 `bigquery:"avg_resolution_hrs"`
	}
	if err := it.Next(&row); err != nil && err != iterator.Done {
		return IssueStats{}, fmt.Errorf("stats row read failed: %w", err)
	}
	return IssueStats{
		Closed:           row.Closed,
		Open:             row.Open,
		AvgResolutionHrs: row.AvgResolutionHrs.Float64,
	}, nil
}

func (c *Client) topContributors(ctx context.Context, limit int) ([]TopContributor, error) {
	q := c.bq.Query(fmt.Sprintf(`
		SELECT
			contributor_login AS name,
			MAX(commit_count) AS commits
		FROM %s
		WHERE contributor_login IS NOT NULL AND contributor_login != ''
		GROUP BY contributor_login
		ORDER BY commits DESC
		LIMIT @limit`, c.tableFQN()))
	q.Parameters = []bigquery.QueryParameter{{Name: "limit", Value: int64(limit)}}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("contributors query failed: %w", err)
	}

	out := []TopContributor{}
	for {
		var row struct {
			Name    string             `bigquery:"name"`
			Commits bigquery.NullInt64 `bigquery:"commits"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("contributors row read failed: %w", err)
		}
		out = append(out, TopContributor{Name: row.Name, Commits: row.Commits.Int64})
	}
	return out, nil
}

func (c *Client) openBlockers(ctx context.Context, limit int) ([]Blocker, error) {
	q := c.bq.Query(fmt.Sprintf(`
		SELECT title, repo_name, state, created_at
		FROM %s
		WHERE state = 'open'
		ORDER BY created_at DESC
		LIMIT @limit`, c.tableFQN()))
	q.Parameters = []bigquery.QueryParameter{{Name: "limit", Value: int64(limit)}}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("blockers query failed: %w", err)
	}

	out := []Blocker{}
	for {
		var row struct {
			Title     string    `bigquery:"title"`
			RepoName  string    `bigquery:"repo_name"`
			State     string    `bigquery:"state"`
			CreatedAt time.Time `bigquery:"created_at"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("blockers row read failed: %w", err)
		}
		out = append(out, Blocker{Title: row.Title, RepoName: row.RepoName, State: row.State, CreatedAt: row.CreatedAt})
	}
	return out, nil
}

// RecentIssues returns the newest issue rows, created_at descending.
func (c *Client) RecentIssues(ctx context.Context, limit int) ([]RecentIssue, error) {
	if limit <= 0 {
		limit = 20
	}
	q := c.bq.Query(fmt.Sprintf(`
		SELECT
			issue_id, number, title, body, repo_name, state,
			contributor_login, commit_count, created_at, closed_at
		FROM %s
		ORDER BY created_at DESC
		LIMIT @limit`, c.tableFQN()))
	q.Parameters = []bigquery.QueryParameter{{Name: "limit", Value: int64(limit)}}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("recent issues query failed: %w", err)
	}

	out := []RecentIssue{}
	for {
		var row struct {
			IssueID          int64                  `bigquery:"issue_id"`
			Number           int64                  `bigquery:"number"`
			Title            string                 `bigquery:"title"`
			Body             string                 `bigquery:"body"`
			RepoName         string                 `bigquery:"repo_name"`
			State            string                 `bigquery:"state"`
			ContributorLogin bigquery.NullString    `bigquery:"contributor_login"`
			CommitCount      bigquery.NullInt64     `bigquery:"commit_count"`
			CreatedAt        time.Time              `bigquery:"created_at"`
			ClosedAt         bigquery.NullTimestamp `bigquery:"closed_at"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("recent issues row read failed: %w", err)
		}

		ri := RecentIssue{
			IssueID:          row.IssueID,
			Number:           row.Number,
			Title:            row.Title,
			Body:             row.Body,
			RepoName:         row.RepoName,
			State:            row.State,
			ContributorLogin: row.ContributorLogin.StringVal,
			CommitCount:      row.CommitCount.Int64,
		}
		created := row.CreatedAt
		ri.CreatedAt = &created
		if row.ClosedAt.Valid {
			closed := row.ClosedAt.Timestamp
			ri.ClosedAt = &closed
		}
		out = append(out, ri)
	}
	return out, nil
}
