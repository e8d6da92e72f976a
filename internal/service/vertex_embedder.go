package service

import (
	"context"
	"fmt"
	"strings"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"
)

// VertexEmbedder generates query/document embeddings through the Vertex AI
// prediction endpoint (gemini-embedding-001, 3072 dimensions).
type VertexEmbedder struct {
	client    *aiplatform.PredictionClient
	modelName string
}

// NewVertexEmbedder creates the prediction client. credentialsFile may be
// empty to use application-default credentials.
func NewVertexEmbedder(ctx context.Context, projectID, location, model, credentialsFile string) (*VertexEmbedder, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := aiplatform.NewPredictionClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	if location == "" {
		location = "us-central1"
	}
	modelName := fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s", projectID, location, model)

	return &VertexEmbedder{
		client:    client,
		modelName: modelName,
	}, nil
}

// Embed generates an embedding vector for the input text using
// task_type = "RETRIEVAL_QUERY" so it aligns with document embeddings.
// Empty or whitespace-only input fails without a remote call; the model must
// never be asked to produce a vector for nothing.
func (v *VertexEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty input", ErrEmbeddingUnavailable)
	}

	instance, err := structpb.NewStruct(map[string]interface{}{
		"content":   text,
		"task_type": "RETRIEVAL_QUERY",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create instance: %w", err)
	}

	req := &aiplatformpb.PredictRequest{
		Endpoint:  v.modelName,
		Instances: []*structpb.Value{structpb.NewStructValue(instance)},
	}

	resp, err := v.client.Predict(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}

	if len(resp.Predictions) == 0 {
		return nil, fmt.Errorf("%w: no predictions returned", ErrEmbeddingUnavailable)
	}

	prediction := resp.Predictions[0].GetStructValue()
	embeddings := prediction.GetFields()["embeddings"].GetStructValue()
	values := embeddings.GetFields()["values"].GetListValue().GetValues()
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", ErrEmbeddingUnavailable)
	}

	result := make([]float32, len(values))
	for i, val := range values {
		result[i] = float32(val.GetNumberValue())
	}

	return result, nil
}

// Close releases the Vertex AI client resources.
func (v *VertexEmbedder) Close() error {
	return v.client.Close()
}
