package service

import "errors"

var (
	// ErrEmbeddingUnavailable means the query vector could not be produced,
	// either because the input was empty or the model call failed. Callers
	// degrade to keyword-only retrieval; it is never fatal for a request.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrRetrievalUnavailable means the index could not be reached or
	// rejected the request. Callers surface an empty, well-formed result.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrEmptyQuery rejects blank question text before any remote call.
	ErrEmptyQuery = errors.New("query cannot be empty")
)
