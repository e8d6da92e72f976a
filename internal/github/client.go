package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/devinsight/devinsight/internal/models"
)

const (
	apiBase        = "https://api.github.com"
	defaultPerPage = 100
)

// Client is a minimal wrapper around GitHub's REST API v3.
// It is intentionally light, covering just the endpoints the ingest pipeline requires.
type Client struct {
	http    *http.Client
	token   string
	baseURL string
	log     zerolog.Logger
}

// NewClient returns a ready-to-use GitHub API client.
// token may be an empty string, but you will be subject to very low rate-limits.
func NewClient(token string, log zerolog.Logger) *Client {
	return &Client{
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		token:   token,
		baseURL: apiBase,
		log:     log,
	}
}

// issueJSON is the wire shape of one item from /repos/{repo}/issues.
type issueJSON struct {
	ID          int64      `json:"id"`
	Number      int        `json:"number"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	State       string     `json:"state"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
	ClosedAt    *time.Time `json:"closed_at"`
	HTMLURL     string     `json:"html_url"`
	Comments    int        `json:"comments"`
	CommentsURL string     `json:"comments_url"`
	User        *struct {
		Login string `json:"login"`
		Type  string `json:"type"`
	} `json:"user"`
	Labels []struct {
		Name string `json:"name"`
	} `json:"labels"`
	Assignees []struct {
		Login string `json:"login"`
	} `json:"assignees"`
	PullRequest *struct {
		HTMLURL string `json:"html_url"`
	} `json:"pull_request"`
}

// ListIssues fetches every page of issues for "owner/name" with full metadata.
// Items that are pull requests are kept and flagged; commit-level data is not
// fetched here, it is merged later from the contributors endpoint.
func (c *Client) ListIssues(ctx context.Context, repo, state string) ([]models.Issue, error) {
	var issues []models.Issue

	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("%s/repos/%s/issues", c.baseURL, repoPath(repo))
		params := url.Values{}
		params.Set("state", state)
		params.Set("per_page", fmt.Sprint(defaultPerPage))
		params.Set("page", fmt.Sprint(page))

		var raw []issueJSON
		if err := c.get(ctx, endpoint+"?"+params.Encode(), &raw); err != nil {
			return nil, err
		}
		if len(raw) == 0 {
			break
		}

		for _, it := range raw {
			issues = append(issues, toIssue(it, repo))
		}
		c.log.Debug().Str("repo", repo).Int("page", page).Int("count", len(raw)).Msg("fetched issues page")
	}

	return issues, nil
}

func toIssue(it issueJSON, repo string) models.Issue {
	is := models.Issue{
		ID:            it.ID,
		Number:        it.Number,
		Title:         it.Title,
		Body:          it.Body,
		State:         it.State,
		CreatedAt:     it.CreatedAt,
		UpdatedAt:     it.UpdatedAt,
		ClosedAt:      it.ClosedAt,
		RepoName:      repo,
		IsPR:          it.PullRequest != nil,
		CommentsCount: it.Comments,
		CommentsURL:   it.CommentsURL,
		HTMLURL:       it.HTMLURL,
		Labels:        []string{},
		Assignees:     []string{},
	}
	if it.User != nil {
		is.Creator = it.User.Login
		is.CreatorType = it.User.Type
	}
	if it.PullRequest != nil {
		is.PRURL = it.PullRequest.HTMLURL
	}
	for _, l := range it.Labels {
		is.Labels = append(is.Labels, l.Name)
	}
	for _, a := range it.Assignees {
		is.Assignees = append(is.Assignees, a.Login)
	}
	return is
}

// ListContributors fetches every page of /contributors for "owner/name".
// GitHub returns 202 while contributor stats are compiling; that is retried
// after a short sleep, as are rate-limit 403s.
func (c *Client) ListContributors(ctx context.Context, repo string) ([]models.Contributor, error) {
	var contributors []models.Contributor

	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("%s/repos/%s/contributors", c.baseURL, repoPath(repo))
		params := url.Values{}
		params.Set("per_page", fmt.Sprint(defaultPerPage))
		params.Set("page", fmt.Sprint(page))
		params.Set("anon", "false")

		var raw []models.Contributor
		if err := c.get(ctx, endpoint+"?"+params.Encode(), &raw); err != nil {
			return nil, err
		}
		if len(raw) == 0 {
			break
		}

		contributors = append(contributors, raw...)
		c.log.Debug().Str("repo", repo).Int("page", page).Int("count", len(raw)).Msg("fetched contributors page")
	}

	return contributors, nil
}

// get executes the request, retrying on 202 (stats compiling) and on
// rate-limit 403 responses, and decodes the JSON body into v.
func (c *Client) get(ctx context.Context, rawURL string, v any) error {
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		c.addHeaders(req)

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode == http.StatusAccepted:
			resp.Body.Close()
			c.log.Info().Msg("github stats compiling (202), retrying")
			if err := sleepCtx(ctx, 3*time.Second); err != nil {
				return err
			}
			continue
		case resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
			resp.Body.Close()
			c.log.Warn().Msg("github rate limited, backing off")
			if err := sleepCtx(ctx, 10*time.Second); err != nil {
				return err
			}
			continue
		case resp.StatusCode >= 300:
			resp.Body.Close()
			return fmt.Errorf("github: unexpected status %s for %s", resp.Status, rawURL)
		}

		err = json.NewDecoder(resp.Body).Decode(v)
		resp.Body.Close()
		return err
	}
}

// addHeaders sets authentication and Accept headers.
func (c *Client) addHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("User-Agent", "devinsight-ingest")
}

// repoPath escapes "owner/name" path segments individually.
func repoPath(repo string) string {
	parts := strings.SplitN(repo, "/", 2)
	if len(parts) != 2 {
		return url.PathEscape(repo)
	}
	return url.PathEscape(parts[0]) + "/" + url.PathEscape(parts[1])
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
