package handler

import (
	"github.com/gin-gonic/gin"

	"nightwatch/backend/internal/dto"
	"nightwatch/backend/internal/service"
	"nightwatch/backend/pkg/response"
)

// BackfillHandler exposes the historical points backfill (admin only).
type BackfillHandler struct {
	migrationSvc service.MigrationService
}

// NewBackfillHandler creates a BackfillHandler.
func NewBackfillHandler(migrationSvc service.MigrationService) *BackfillHandler {
	return &BackfillHandler{migrationSvc: migrationSvc}
}

// Preview computes the backfill summary without writing anything.
// GET /api/v1/admin/backfill/preview
func (h *BackfillHandler) Preview(c *gin.Context) {
	summary, err := h.migrationSvc.Preview(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, summary)
}

// Run executes the backfill; with dry_run it commits nothing.
// POST /api/v1/admin/backfill
func (h *BackfillHandler) Run(c *gin.Context) {
	var req dto.BackfillRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 17001, "invalid request body")
			return
		}
	}

	summary, err := h.migrationSvc.Execute(c.Request.Context(), req.DryRun)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, summary)
}
