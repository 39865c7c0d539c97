package repository

import (
	"context"

	"gorm.io/gorm"

	"nightwatch/backend/internal/model"
)

// ReportRepository is the shift-report data-access interface.
type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	ListByBooking(ctx context.Context, bookingID string) ([]model.Report, error)
	CountByBooking(ctx context.Context, bookingID string) (int64, error)
	// MaxSeverityByBooking returns the highest severity filed against the
	// booking, or -1 when no report exists.
	MaxSeverityByBooking(ctx context.Context, bookingID string) (int, error)
}

// ── Report Repository implementation ──

type reportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) Create(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepo) ListByBooking(ctx context.Context, bookingID string) ([]model.Report, error) {
	var reports []model.Report
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&reports).Error
	return reports, err
}

func (r *reportRepo) CountByBooking(ctx context.Context, bookingID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("booking_id = ?", bookingID).
		Count(&count).Error
	return count, err
}

func (r *reportRepo) MaxSeverityByBooking(ctx context.Context, bookingID string) (int, error) {
	var severity *int
	err := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Select("MAX(severity)").
		Where("booking_id = ?", bookingID).
		Scan(&severity).Error
	if err != nil {
		return -1, err
	}
	if severity == nil {
		return -1, nil
	}
	return *severity, nil
}
