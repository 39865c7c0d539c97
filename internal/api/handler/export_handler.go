package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"nightwatch/backend/internal/service"
	"nightwatch/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves the calendar and spreadsheet exports.
type ExportHandler struct {
	exportSvc   service.ExportService
	horizonDays int
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(exportSvc service.ExportService, horizonDays int) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, horizonDays: horizonDays}
}

// Calendar renders the caller's bookings as an ICS feed.
// GET /api/v1/export/calendar
func (h *ExportHandler) Calendar(c *gin.Context) {
	from, to, ok := parseRange(c, h.horizonDays)
	if !ok {
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	feed, err := h.exportSvc.Calendar(c.Request.Context(), actor.UserID, from, to)
	if err != nil {
		response.InternalError(c)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shifts.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}

// Leaderboard exports the points ranking as an .xlsx workbook (admin only).
// GET /api/v1/export/leaderboard
func (h *ExportHandler) Leaderboard(c *gin.Context) {
	buf, filename, err := h.exportSvc.Leaderboard(c.Request.Context(), 100)
	if err != nil {
		if errors.Is(err, service.ErrExportNothingToExport) {
			response.NotFound(c, 16101, "nothing to export")
			return
		}
		response.InternalError(c)
		return
	}

	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
