package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/devinsight/devinsight/internal/warehouse"
)

// ReportsHandler serves warehouse analytics: the aggregate report and the
// recent-issues feed.
type ReportsHandler struct {
	wh  reporter
	log zerolog.Logger
}

type reporter interface {
	BuildReport(ctx context.Context) (warehouse.Report, error)
	RecentIssues(ctx context.Context, limit int) ([]warehouse.RecentIssue, error)
}

// NewReportsHandler creates a ReportsHandler instance.
func NewReportsHandler(wh reporter, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{wh: wh, log: log}
}

// Register mounts GET /reports and GET /issues/recent.
func (h *ReportsHandler) Register(r fiber.Router) {
	r.Get("/reports", h.reports)
	r.Get("/issues/recent", h.recentIssues)
}

// reports handles GET /reports
func (h *ReportsHandler) reports(c *fiber.Ctx) error {
	report, err := h.wh.BuildReport(c.UserContext())
	if err != nil {
		// The dashboard expects the report shape even on failure.
		h.log.Error().Err(err).Msg("report build failed")
		return c.JSON(warehouse.Report{
			Contributors: []warehouse.TopContributor{},
			Blockers:     []warehouse.Blocker{},
		})
	}
	return c.JSON(report)
}

// recentIssues handles GET /issues/recent?limit=N
func (h *ReportsHandler) recentIssues(c *fiber.Ctx) error {
	limit := parseLimit(c, "limit", 10, 100)

	issues, err := h.wh.RecentIssues(c.UserContext(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("recent issues query failed")
		return c.JSON(fiber.Map{"issues": []warehouse.RecentIssue{}, "total": 0})
	}
	return c.JSON(fiber.Map{"issues": issues, "total": len(issues)})
}
