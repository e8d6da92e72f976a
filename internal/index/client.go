package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/rs/zerolog"
)

// Config selects either an Elastic Cloud deployment or plain addresses.
type Config struct {
	CloudID   string
	Addresses []string
	Username  string
	Password  string
	Index     string
	Dims      int // embedding dimensions for the index mapping
}

// Client wraps the Elasticsearch client for one issues index.
type Client struct {
	es    *elasticsearch.Client
	index string
	dims  int
	log   zerolog.Logger
}

// NewClient connects to Elasticsearch. It does not touch the index; call
// EnsureIndex before bulk loading.
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		CloudID:   cfg.CloudID,
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	dims := cfg.Dims
	if dims == 0 {
		dims = 3072
	}
	return &Client{es: es, index: cfg.Index, dims: dims, log: log}, nil
}

// mapping mirrors the warehouse schema plus a dense_vector embedding field.
const mappingTemplate = `{
  "settings": {"number_of_shards": 1, "number_of_replicas": 0},
  "mappings": {
    "properties": {
      "issue_id": {"type": "long"},
      "number": {"type": "long"},
      "title": {"type": "text"},
      "body": {"type": "text"},
      "created_at": {"type": "date"},
      "updated_at": {"type": "date"},
      "closed_at": {"type": "date"},
      "state": {"type": "keyword"},
      "repo_name": {"type": "keyword"},
      "creator": {"type": "keyword"},
      "creator_type": {"type": "keyword"},
      "is_pr": {"type": "boolean"},
      "pr_url": {"type": "keyword"},
      "labels": {"type": "keyword"},
      "assignees": {"type": "keyword"},
      "comments_count": {"type": "integer"},
      "html_url": {"type": "keyword"},
      "contributor_login": {"type": "keyword"},
      "contributor_role": {"type": "keyword"},
      "contributions": {"type": "integer"},
      "commit_count": {"type": "integer"},
      "embedding": {"type": "dense_vector", "dims": %d, "index": true, "similarity": "cosine"}
    }
  }
}`

// EnsureIndex creates the index with its mapping when missing. With recreate
// set, an existing index is dropped first; ingested documents fully replace
// any prior generation.
func (c *Client) EnsureIndex(ctx context.Context, recreate bool) error {
	exists, err := c.indexExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		if !recreate {
			return nil
		}
		res, err := c.es.Indices.Delete([]string{c.index}, c.es.Indices.Delete.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("failed to delete index %s: %w", c.index, err)
		}
		res.Body.Close()
		c.log.Info().Str("index", c.index).Msg("dropped existing index")
	}

	mapping := fmt.Sprintf(mappingTemplate, c.dims)
	res, err := c.es.Indices.Create(
		c.index,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", c.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", c.index, res.String())
	}
	c.log.Info().Str("index", c.index).Int("dims", c.dims).Msg("index created")
	return nil
}

func (c *Client) indexExists(ctx context.Context) (bool, error) {
	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to check index %s: %w", c.index, err)
	}
	defer res.Body.Close()
	return res.StatusCode == 200, nil
}

// BulkIndex loads documents, using the issue id as document id so a
// re-ingested issue replaces its previous document.
func (c *Client) BulkIndex(ctx context.Context, docs []Document) error {
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client: c.es,
		Index:  c.index,
	})
	if err != nil {
		return fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	for _, doc := range docs {
		payload, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal document %d: %w", doc.IssueID, err)
		}
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: strconv.FormatInt(doc.IssueID, 10),
			Body:       bytes.NewReader(payload),
			OnFailure: func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					c.log.Error().Err(err).Str("doc", item.DocumentID).Msg("bulk index item failed")
				} else {
					c.log.Error().Str("doc", item.DocumentID).Str("reason", res.Error.Reason).Msg("bulk index item rejected")
				}
			},
		})
		if err != nil {
			return fmt.Errorf("failed to enqueue document %d: %w", doc.IssueID, err)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return fmt.Errorf("bulk indexing failed: %w", err)
	}
	stats := bi.Stats()
	c.log.Info().Uint64("indexed", stats.NumFlushed).Uint64("failed", stats.NumFailed).Msg("bulk load finished")
	if stats.NumFailed > 0 {
		return fmt.Errorf("bulk indexing: %d documents failed", stats.NumFailed)
	}
	return nil
}

// searchResponse is the subset of the search reply we consume.
type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source Document `json:"_source"`
			Score  *float64 `json:"_score"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search executes a QuerySpec and returns ranked hits in engine order.
func (c *Client) Search(ctx context.Context, spec QuerySpec) ([]Hit, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(spec.Body()); err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search returned %s: %s", res.Status(), body)
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]Hit, len(parsed.Hits.Hits))
	for i, h := range parsed.Hits.Hits {
		score := 0.0
		if h.Score != nil {
			score = *h.Score
		}
		hits[i] = Hit{Source: h.Source, Score: score, Rank: i + 1}
	}
	return hits, nil
}

// Ping reports whether the cluster is reachable.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: %s", res.Status())
	}
	return nil
}
