package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthHandler reports liveness of the server and its backing stores.
type HealthHandler struct {
	mongoDB *mongo.Client
	index   pinger
}

type pinger interface {
	Ping(ctx context.Context) error
}

// NewHealthHandler creates a HealthHandler. mongoDB may be nil when the
// answer cache is disabled.
func NewHealthHandler(mongoDB *mongo.Client, index pinger) *HealthHandler {
	return &HealthHandler{
		mongoDB: mongoDB,
		index:   index,
	}
}

func (h *HealthHandler) Register(r fiber.Router) {
	r.Get("/health", h.health)
}

func (h *HealthHandler) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "DevInsight API",
		"stores": fiber.Map{
			"mongo": h.checkMongo(c.UserContext()),
			"index": h.checkIndex(c.UserContext()),
		},
	})
}

func (h *HealthHandler) checkMongo(ctx context.Context) string {
	if h.mongoDB == nil {
		return "not_configured"
	}
	if err := h.mongoDB.Ping(ctx, nil); err != nil {
		return "error"
	}
	return "connected"
}

func (h *HealthHandler) checkIndex(ctx context.Context) string {
	if h.index == nil {
		return "not_configured"
	}
	if err := h.index.Ping(ctx); err != nil {
		return "error"
	}
	return "connected"
}
