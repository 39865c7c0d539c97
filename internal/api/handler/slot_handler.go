package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"nightwatch/backend/internal/service"
	"nightwatch/backend/pkg/response"
)

// SlotHandler serves the availability view.
type SlotHandler struct {
	slotSvc     service.SlotService
	horizonDays int
}

// NewSlotHandler creates a SlotHandler.
func NewSlotHandler(slotSvc service.SlotService, horizonDays int) *SlotHandler {
	return &SlotHandler{slotSvc: slotSvc, horizonDays: horizonDays}
}

// List expands every schedule over [from, to) and annotates each slot with
// its occupancy.
// GET /api/v1/slots
func (h *SlotHandler) List(c *gin.Context) {
	from, to, ok := parseRange(c, h.horizonDays)
	if !ok {
		return
	}

	slots, err := h.slotSvc.ListSlots(c.Request.Context(), from, to)
	if err != nil {
		if errors.Is(err, service.ErrTooManyOccurrences) {
			response.BadRequest(c, 12106, "range expands to too many occurrences")
		} else {
			response.InternalError(c)
		}
		return
	}

	response.OK(c, gin.H{"list": slots})
}
