package handler

import (
	"nightwatch/backend/config"
	"nightwatch/backend/internal/service"
)

// Handler aggregates every HTTP handler.
type Handler struct {
	Auth     *AuthHandler
	User     *UserHandler
	Schedule *ScheduleHandler
	Slot     *SlotHandler
	Booking  *BookingHandler
	Report   *ReportHandler
	Points   *PointsHandler
	Export   *ExportHandler
	Backfill *BackfillHandler
}

// NewHandler creates the handler aggregate.
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(svc.Auth),
		User:     NewUserHandler(svc.User),
		Schedule: NewScheduleHandler(svc.Schedule),
		Slot:     NewSlotHandler(svc.Slot, cfg.Booking.HorizonDays),
		Booking:  NewBookingHandler(svc.Booking, cfg.Booking.HorizonDays),
		Report:   NewReportHandler(svc.Report),
		Points:   NewPointsHandler(svc.Points),
		Export:   NewExportHandler(svc.Export, cfg.Booking.HorizonDays),
		Backfill: NewBackfillHandler(svc.Migration),
	}
}
