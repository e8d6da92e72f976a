package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

// RegisterRoutes mounts every API route group. wh may be nil when the
// warehouse is not configured, in which case the reports routes are skipped.
func RegisterRoutes(app *fiber.App,
	askSvc asker,
	searchSvc retriever,
	wh reporter,
	mongoDB *mongo.Client,
	idx pinger,
	log zerolog.Logger,
) {
	v1 := app.Group("/api/v1")
	NewAskHandler(askSvc, log).Register(v1)
	NewSearchHandler(searchSvc).Register(v1)
	if wh != nil {
		NewReportsHandler(wh, log).Register(v1)
	}
	NewHealthHandler(mongoDB, idx).Register(v1)
}
