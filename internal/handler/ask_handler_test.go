package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devinsight/devinsight/internal/models"
	"github.com/devinsight/devinsight/internal/service"
)

type stubAsker struct {
	resp models.AskResponse
	err  error
}

func (s stubAsker) Ask(_ context.Context, _ string) (models.AskResponse, error) {
	return s.resp, s.err
}

func newAskApp(svc asker) *fiber.App {
	app := fiber.New()
	NewAskHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1"))
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, models.AskResponse) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out models.AskResponse
	if resp.StatusCode == fiber.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func TestAskEndpoint(t *testing.T) {
	one := 1
	svc := stubAsker{resp: models.AskResponse{
		Answer:     "alice fixed it",
		Sources:    []models.Source{{Title: "t", Contributor: "alice", CommitCount: &one}},
		NumSources: 1,
	}}
	app := newAskApp(svc)

	status, out := postJSON(t, app, "/api/v1/ask", `{"question":"who fixed it"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alice fixed it", out.Answer)
	assert.Equal(t, 1, out.NumSources)

	// The legacy aliases serve the same flow.
	status, _ = postJSON(t, app, "/api/v1/query", `{"query":"who fixed it"}`)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = postJSON(t, app, "/api/v1/chat", `{"question":"who fixed it"}`)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestAskEndpointEmptyQuestion(t *testing.T) {
	app := newAskApp(stubAsker{err: service.ErrEmptyQuery})

	status, _ := postJSON(t, app, "/api/v1/ask", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestAskEndpointDegradedResponse(t *testing.T) {
	app := newAskApp(stubAsker{err: service.ErrRetrievalUnavailable})

	status, out := postJSON(t, app, "/api/v1/ask", `{"question":"anything"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, out.Answer, "Error processing query")
	assert.Empty(t, out.Sources)
	assert.Zero(t, out.NumSources)
}
