package service

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
)

const openAISystemPrompt = "You are a precise assistant that answers questions about GitHub issues using only the provided context."

// OpenAILLM implements the LLM interface using the OpenAI chat completions API.
// It is an alternative backend for deployments without Vertex AI access.
type OpenAILLM struct {
	client openai.Client
	model  string
}

// NewOpenAILLM creates a chat completions client for the given model.
func NewOpenAILLM(apiKey, model string) *OpenAILLM {
	return &OpenAILLM{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Generate produces an answer for the prompt using a single chat completion.
func (l *OpenAILLM) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := l.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(l.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(openAISystemPrompt),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response generated")
	}
	return resp.Choices[0].Message.Content, nil
}
