package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"nightwatch/backend/internal/model"
)

// BookingRepository is the booking data-access interface.
type BookingRepository interface {
	// Create inserts the booking. The partial unique index on
	// (schedule_id, shift_start, seat) makes this the slot test-and-set:
	// a losing concurrent insert returns gorm.ErrDuplicatedKey.
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	// ListActiveInRange lists non-cancelled bookings with shift_start in
	// [from, to), for the availability view.
	ListActiveInRange(ctx context.Context, from, to time.Time) ([]model.Booking, error)
	ListByUser(ctx context.Context, userID string, from, to time.Time) ([]model.Booking, error)
	// ListAllAscending streams every booking in ascending shift_start order,
	// for the historical migrator.
	ListAllAscending(ctx context.Context, offset, limit int) ([]model.Booking, error)
	// SetCheckedIn records the check-in once; returns false when the booking
	// was already checked in or cancelled.
	SetCheckedIn(ctx context.Context, bookingID string, at time.Time, late bool) (bool, error)
	// SetCancelled cancels once; returns false when already cancelled.
	SetCancelled(ctx context.Context, bookingID, actorID string, at time.Time) (bool, error)
	// FindActiveBySlotUser returns the caller's own non-cancelled booking on
	// a slot, if any.
	FindActiveBySlotUser(ctx context.Context, scheduleID string, shiftStart time.Time, userID string) (*model.Booking, error)
	// CountCompletedByUser counts distinct bookings of the user that have at
	// least one report.
	CountCompletedByUser(ctx context.Context, userID string) (int64, error)
}

// ── Booking Repository implementation ──

type bookingRepo struct {
	db *gorm.DB
}

func NewBookingRepo(db *gorm.DB) BookingRepository {
	return &bookingRepo{db: db}
}

func (r *bookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("booking_id = ?", id).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepo) ListActiveInRange(ctx context.Context, from, to time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("shift_start >= ? AND shift_start < ? AND cancelled_at IS NULL", from, to).
		Order("shift_start ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepo) ListByUser(ctx context.Context, userID string, from, to time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND shift_start >= ? AND shift_start < ? AND cancelled_at IS NULL", userID, from, to).
		Order("shift_start ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepo) ListAllAscending(ctx context.Context, offset, limit int) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Where("cancelled_at IS NULL").
		Order("shift_start ASC, booking_id ASC").
		Offset(offset).Limit(limit).
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepo) SetCheckedIn(ctx context.Context, bookingID string, at time.Time, late bool) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("booking_id = ? AND checked_in_at IS NULL AND cancelled_at IS NULL", bookingID).
		Updates(map[string]interface{}{
			"checked_in_at": at,
			"late_check_in": late,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *bookingRepo) SetCancelled(ctx context.Context, bookingID, actorID string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("booking_id = ? AND cancelled_at IS NULL", bookingID).
		Updates(map[string]interface{}{
			"cancelled_at": at,
			"cancelled_by": actorID,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *bookingRepo) FindActiveBySlotUser(ctx context.Context, scheduleID string, shiftStart time.Time, userID string) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.WithContext(ctx).
		Where("schedule_id = ? AND shift_start = ? AND user_id = ? AND cancelled_at IS NULL",
			scheduleID, shiftStart, userID).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepo) CountCompletedByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("bookings.user_id = ? AND bookings.cancelled_at IS NULL", userID).
		Where("EXISTS (SELECT 1 FROM reports WHERE reports.booking_id = bookings.booking_id)").
		Count(&count).Error
	return count, err
}
