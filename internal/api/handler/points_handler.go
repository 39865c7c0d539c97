package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"nightwatch/backend/internal/dto"
	"nightwatch/backend/internal/service"
	"nightwatch/backend/pkg/response"
)

// PointsHandler serves the points and achievement read endpoints.
type PointsHandler struct {
	pointsSvc service.PointsService
}

// NewPointsHandler creates a PointsHandler.
func NewPointsHandler(pointsSvc service.PointsService) *PointsHandler {
	return &PointsHandler{pointsSvc: pointsSvc}
}

// Summary returns the caller's ledger-derived totals.
// GET /api/v1/points/summary
func (h *PointsHandler) Summary(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	summary, err := h.pointsSvc.Summary(c.Request.Context(), actor.UserID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, summary)
}

// History pages through the caller's ledger entries, newest first.
// GET /api/v1/points/history
func (h *PointsHandler) History(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 15001, "invalid pagination")
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	entries, total, err := h.pointsSvc.History(c.Request.Context(), actor.UserID, &page)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, entries, total, page.GetPage(), page.GetPageSize())
}

// Achievements returns every badge with its unlock state for the caller.
// GET /api/v1/points/achievements
func (h *PointsHandler) Achievements(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	achievements, err := h.pointsSvc.Achievements(c.Request.Context(), actor.UserID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": achievements})
}

// Leaderboard ranks users by ledger total.
// GET /api/v1/points/leaderboard
func (h *PointsHandler) Leaderboard(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			response.BadRequest(c, 15001, "limit must be 1..100")
			return
		}
		limit = parsed
	}

	rows, err := h.pointsSvc.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": rows})
}
