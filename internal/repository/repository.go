package repository

import "gorm.io/gorm"

// Repository aggregates every data-access interface.
type Repository struct {
	User        UserRepository
	Schedule    ScheduleRepository
	Booking     BookingRepository
	Report      ReportRepository
	Points      PointsRepository
	Achievement AchievementRepository
	Audit       AuditRepository
}

// NewRepository wires the gorm-backed implementations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:        NewUserRepo(db),
		Schedule:    NewScheduleRepo(db),
		Booking:     NewBookingRepo(db),
		Report:      NewReportRepo(db),
		Points:      NewPointsRepo(db),
		Achievement: NewAchievementRepo(db),
		Audit:       NewAuditRepo(db),
	}
}
