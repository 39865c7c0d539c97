package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"nightwatch/backend/internal/dto"
	"nightwatch/backend/internal/service"
	"nightwatch/backend/pkg/response"
)

// ReportHandler serves the shift-report endpoints.
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// File submits a report, optionally bound to a booking.
// POST /api/v1/reports
func (h *ReportHandler) File(c *gin.Context) {
	var req dto.FileReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "invalid request body")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	report, err := h.reportSvc.File(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.Created(c, report)
}

// ListByBooking returns the reports filed against one booking.
// GET /api/v1/bookings/:id/reports
func (h *ReportHandler) ListByBooking(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	reports, err := h.reportSvc.ListByBooking(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, gin.H{"list": reports})
}

func (h *ReportHandler) handleReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReportBookingNotFound):
		response.NotFound(c, 14101, "booking not found")
	case errors.Is(err, service.ErrReportNotYourBooking):
		response.Forbidden(c, 14102, "reports may only be filed against your own booking")
	case errors.Is(err, service.ErrBookingCancelled):
		response.Conflict(c, 14103, "the booking has been cancelled")
	default:
		response.InternalError(c)
	}
}
