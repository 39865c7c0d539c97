package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"nightwatch/backend/internal/dto"
	"nightwatch/backend/internal/service"
	"nightwatch/backend/pkg/response"
)

// BookingHandler serves the booking lifecycle endpoints.
type BookingHandler struct {
	bookingSvc  service.BookingService
	horizonDays int
}

// NewBookingHandler creates a BookingHandler.
func NewBookingHandler(bookingSvc service.BookingService, horizonDays int) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc, horizonDays: horizonDays}
}

// Commit claims a slot for the caller.
// POST /api/v1/bookings
func (h *BookingHandler) Commit(c *gin.Context) {
	var req dto.CommitBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "invalid request body")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	booking, err := h.bookingSvc.Commit(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.Created(c, booking)
}

// Assign books a slot for another user (admin only).
// POST /api/v1/bookings/assign
func (h *BookingHandler) Assign(c *gin.Context) {
	var req dto.AssignBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "invalid request body")
		return
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	booking, err := h.bookingSvc.AssignUser(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.Created(c, booking)
}

// Get returns one booking.
// GET /api/v1/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	booking, err := h.bookingSvc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.OK(c, booking)
}

// ListMine lists the caller's bookings in [from, to).
// GET /api/v1/bookings/my
func (h *BookingHandler) ListMine(c *gin.Context) {
	from, to, ok := parseRange(c, h.horizonDays)
	if !ok {
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	bookings, err := h.bookingSvc.ListMine(c.Request.Context(), actor, from, to)
	if err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.OK(c, gin.H{"list": bookings})
}

// Cancel withdraws a booking before the cutoff (admins bypass it).
// DELETE /api/v1/bookings/:id
func (h *BookingHandler) Cancel(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.bookingSvc.Cancel(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.OK(c, nil)
}

// Unassign removes another user's booking (admin only).
// DELETE /api/v1/bookings/:id/assignment
func (h *BookingHandler) Unassign(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.bookingSvc.UnassignUser(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.OK(c, nil)
}

// CheckIn marks a shift started. Idempotent.
// POST /api/v1/bookings/:id/checkin
func (h *BookingHandler) CheckIn(c *gin.Context) {
	// The body is optional; an empty one means "check in now".
	var req dto.CheckInRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 13001, "invalid request body")
			return
		}
	}

	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	booking, err := h.bookingSvc.CheckIn(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.OK(c, booking)
}

func (h *BookingHandler) handleBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 13101, "schedule not found")
	case errors.Is(err, service.ErrBookingNotFound):
		response.NotFound(c, 13102, "booking not found")
	case errors.Is(err, service.ErrSlotNotProduced):
		response.BadRequest(c, 13103, "the schedule does not generate a shift at that time")
	case errors.Is(err, service.ErrSlotAlreadyBooked):
		response.Conflict(c, 13104, "the shift slot is already booked")
	case errors.Is(err, service.ErrBookingCancelled):
		response.Conflict(c, 13105, "the booking has been cancelled")
	case errors.Is(err, service.ErrNotBookingOwner):
		response.Forbidden(c, 13106, "not your booking")
	case errors.Is(err, service.ErrCancellationWindowExpired):
		response.BadRequest(c, 13107, "the cancellation window has closed")
	case errors.Is(err, service.ErrCheckInTooEarly):
		response.BadRequest(c, 13108, "check-in has not opened for this shift yet")
	case errors.Is(err, service.ErrAdminRequired):
		response.Forbidden(c, 13109, "administrator privilege required")
	case errors.Is(err, service.ErrPointsUserNotFound):
		response.NotFound(c, 13110, "user not found")
	case errors.Is(err, service.ErrDuplicateBooking):
		response.Conflict(c, 13111, "you already hold a booking for this shift")
	default:
		response.InternalError(c)
	}
}
