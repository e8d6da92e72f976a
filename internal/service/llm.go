package service

import "context"

// LLM produces an answer for a fully composed prompt.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
