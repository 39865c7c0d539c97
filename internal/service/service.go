package service

import (
	"go.uber.org/zap"

	"nightwatch/backend/config"
	"nightwatch/backend/internal/event"
	"nightwatch/backend/internal/repository"
	"nightwatch/backend/pkg/cron"
	"nightwatch/backend/pkg/jwt"
	"nightwatch/backend/pkg/redis"
)

// Service aggregates all business services.
type Service struct {
	Auth      AuthService
	User      UserService
	Schedule  ScheduleService
	Slot      SlotService
	Booking   BookingService
	Report    ReportService
	Points    PointsService
	Migration MigrationService
	Export    ExportService
}

// NewService wires the full service layer. rdb may be nil when Redis is
// unavailable; auth then degrades to stateless tokens and the bus skips
// notification publishing.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	bus event.Bus,
	logger *zap.Logger,
) *Service {
	eval := cron.NewEvaluator()
	expander := NewExpander(eval, cfg.Booking.MaxOccurrences)

	points := NewPointsService(repo, bus, logger)

	return &Service{
		Auth:      NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:      NewUserService(repo, points, logger),
		Schedule:  NewScheduleService(repo, eval, expander, logger),
		Slot:      NewSlotService(repo, expander, logger),
		Booking:   NewBookingService(&cfg.Booking, repo, expander, points, bus, logger),
		Report:    NewReportService(repo, points, logger),
		Points:    points,
		Migration: NewMigrationService(repo, points, logger),
		Export:    NewExportService(repo, points, logger),
	}
}
