package models

import "time"

// AskRequest is the payload for POST /ask. The frontend historically sent
// either "question" or "query", so both are accepted.
type AskRequest struct {
	Question   string `json:"question"`
	Query      string `json:"query"`
	MaxSources int    `json:"max_sources"`
}

// Text returns whichever of the two question fields was supplied.
func (r AskRequest) Text() string {
	if r.Question != "" {
		return r.Question
	}
	return r.Query
}

// Source is one retrieved issue echoed back to the caller for citation.
type Source struct {
	Title       string     `json:"title" bson:"title"`
	Repo        string     `json:"repo" bson:"repo"`
	Contributor string     `json:"contributor" bson:"contributor"`
	CommitCount *int       `json:"commit_count" bson:"commit_count,omitempty"`
	CreatedAt   *time.Time `json:"created_at" bson:"created_at,omitempty"`
	State       string     `json:"state" bson:"state"`
}

// AskResponse is always well-formed: an answer string, the sources actually
// used (possibly empty), and their count. Failures never cross the HTTP
// boundary as anything else.
type AskResponse struct {
	Answer     string   `json:"answer"`
	Sources    []Source `json:"sources"`
	NumSources int      `json:"num_sources"`
}

// CachedAnswer is a previously generated answer persisted in Mongo so
// repeated questions skip the retrieval pipeline.
type CachedAnswer struct {
	ID         string    `bson:"_id"` // normalized question text
	Question   string    `bson:"question"`
	Answer     string    `bson:"answer"`
	Sources    []Source  `bson:"sources"`
	NumSources int       `bson:"num_sources"`
	CreatedAt  time.Time `bson:"created_at"`
}
