package handler

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/devinsight/devinsight/internal/index"
)

// SearchHandler exposes raw hybrid retrieval without answer generation,
// mainly for debugging relevance.
type SearchHandler struct {
	svc retriever
}

type retriever interface {
	Retrieve(ctx context.Context, question string) ([]index.Hit, error)
}

// NewSearchHandler creates a SearchHandler instance.
func NewSearchHandler(svc retriever) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// Register mounts GET /search on the given router group.
func (h *SearchHandler) Register(r fiber.Router) {
	r.Get("/search", h.search)
}

// search handles GET /search?q=...
func (h *SearchHandler) search(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query parameter q is required")
	}

	hits, err := h.svc.Retrieve(c.UserContext(), q)
	if err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}

	results := make([]fiber.Map, len(hits))
	for i, hit := range hits {
		doc := hit.Source
		results[i] = fiber.Map{
			"rank":        hit.Rank,
			"score":       hit.Score,
			"title":       doc.Title,
			"repo":        doc.RepoName,
			"state":       doc.State,
			"contributor": doc.ContributorLogin,
			"created_at":  doc.CreatedAt,
			"html_url":    doc.HTMLURL,
		}
	}

	return c.JSON(fiber.Map{
		"query":   q,
		"results": results,
		"total":   len(results),
	})
}

// parseLimit reads a positive integer query parameter with a default cap.
func parseLimit(c *fiber.Ctx, name string, def, max int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
