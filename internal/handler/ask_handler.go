package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/devinsight/devinsight/internal/models"
	"github.com/devinsight/devinsight/internal/service"
)

// AskHandler wires HTTP to the question-answering flow.
type AskHandler struct {
	svc asker
	log zerolog.Logger
}

type asker interface {
	Ask(ctx context.Context, question string) (models.AskResponse, error)
}

// NewAskHandler creates an AskHandler instance.
func NewAskHandler(svc asker, log zerolog.Logger) *AskHandler {
	return &AskHandler{svc: svc, log: log}
}

// Register mounts the ask endpoint and its legacy aliases.
func (h *AskHandler) Register(r fiber.Router) {
	r.Post("/ask", h.ask)
	r.Post("/query", h.ask)
	r.Post("/chat", h.ask)
}

// ask handles POST /ask (and /query, /chat).
func (h *AskHandler) ask(c *fiber.Ctx) error {
	var req models.AskRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.svc.Ask(c.UserContext(), req.Text())
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuery) {
			return fiber.NewError(fiber.StatusBadRequest, "question is required")
		}
		// The contract is a well-formed response even when retrieval or
		// generation is down, so the frontend always has an answer field.
		h.log.Error().Err(err).Str("question", req.Text()).Msg("ask failed")
		return c.JSON(models.AskResponse{
			Answer:     "Error processing query: " + err.Error(),
			Sources:    []models.Source{},
			NumSources: 0,
		})
	}

	if req.MaxSources > 0 && len(resp.Sources) > req.MaxSources {
		resp.Sources = resp.Sources[:req.MaxSources]
		resp.NumSources = len(resp.Sources)
	}
	return c.JSON(resp)
}
