package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"nightwatch/backend/internal/dto"
	"nightwatch/backend/internal/service"
	pkgerrors "nightwatch/backend/pkg/errors"
	"nightwatch/backend/pkg/response"
)

// ScheduleHandler serves the recurring-schedule admin endpoints.
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
}

// NewScheduleHandler creates a ScheduleHandler.
func NewScheduleHandler(scheduleSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// Create defines a recurring pattern.
// POST /api/v1/schedules
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "invalid request body")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	schedule, err := h.scheduleSvc.Create(c.Request.Context(), &req, actor.UserID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.Created(c, schedule)
}

// Get returns one schedule.
// GET /api/v1/schedules/:id
func (h *ScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.scheduleSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, schedule)
}

// List returns all live schedules.
// GET /api/v1/schedules
func (h *ScheduleHandler) List(c *gin.Context) {
	schedules, err := h.scheduleSvc.List(c.Request.Context())
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": schedules})
}

// Update edits a schedule. Existing bookings keep their captured times.
// PUT /api/v1/schedules/:id
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req dto.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "invalid request body")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	schedule, err := h.scheduleSvc.Update(c.Request.Context(), c.Param("id"), &req, actor.UserID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, schedule)
}

// Delete soft-deletes a schedule. Future slots stop generating; existing
// bookings survive.
// DELETE /api/v1/schedules/:id
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.scheduleSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, nil)
}

// PreviewSlots expands one schedule over a range without touching bookings.
// GET /api/v1/schedules/:id/preview
func (h *ScheduleHandler) PreviewSlots(c *gin.Context) {
	from, to, ok := parseRange(c, 28)
	if !ok {
		return
	}

	slots, err := h.scheduleSvc.PreviewSlots(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": slots})
}

func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 12101, "schedule not found")
	case errors.Is(err, service.ErrInvalidCron):
		response.BadRequest(c, 12102, "cron expression is malformed")
	case errors.Is(err, service.ErrInvalidDuration):
		response.BadRequest(c, 12103, "duration must be positive")
	case errors.Is(err, service.ErrInvalidValidity):
		response.BadRequest(c, 12104, "valid_from must not be after valid_to")
	case errors.Is(err, service.ErrInvalidTimezone):
		response.BadRequest(c, 12105, "unknown timezone")
	case errors.Is(err, service.ErrTooManyOccurrences):
		response.BadRequest(c, 12106, "range expands to too many occurrences")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 12107, "schedule was modified concurrently, retry")
	default:
		response.InternalError(c)
	}
}
