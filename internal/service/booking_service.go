package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"nightwatch/backend/config"
	"nightwatch/backend/internal/dto"
	"nightwatch/backend/internal/event"
	"nightwatch/backend/internal/model"
	"nightwatch/backend/internal/repository"
)

// ── booking module errors ──

var (
	ErrScheduleNotFound          = errors.New("schedule not found")
	ErrBookingNotFound           = errors.New("booking not found")
	ErrSlotNotProduced           = errors.New("the schedule does not generate a shift at that time")
	ErrSlotAlreadyBooked         = errors.New("the shift slot is already booked")
	ErrDuplicateBooking          = errors.New("you already hold a booking for this shift")
	ErrBookingCancelled          = errors.New("the booking has been cancelled")
	ErrNotBookingOwner           = errors.New("only the booking owner may do this")
	ErrCancellationWindowExpired = errors.New("the cancellation window has closed")
	ErrCheckInTooEarly           = errors.New("check-in has not opened for this shift yet")
	ErrAdminRequired             = errors.New("administrator privilege required")
)

// BookingService is the booking coordinator. It owns the concurrency
// discipline for slot occupancy: the insert itself is the test-and-set,
// serialized by the store's partial unique index, so under concurrent
// commits exactly capacity winners succeed and the rest observe
// ErrSlotAlreadyBooked.
type BookingService interface {
	// Commit books a slot for the actor.
	Commit(ctx context.Context, actor Actor, req *dto.CommitBookingRequest) (*dto.BookingResponse, error)
	// Cancel cancels the actor's booking before the cutoff; admins bypass
	// both the ownership and the cutoff checks.
	Cancel(ctx context.Context, actor Actor, bookingID string) error
	// CheckIn marks the shift started. Idempotent: a repeat call returns the
	// existing state without touching checked_in_at or re-awarding points.
	CheckIn(ctx context.Context, actor Actor, bookingID string, req *dto.CheckInRequest) (*dto.BookingResponse, error)
	// AssignUser is the admin variant of Commit for another user.
	AssignUser(ctx context.Context, actor Actor, req *dto.AssignBookingRequest) (*dto.BookingResponse, error)
	// UnassignUser is the admin variant of Cancel, bypassing the cutoff.
	UnassignUser(ctx context.Context, actor Actor, bookingID string) error
	// Get returns one booking with its derived status.
	Get(ctx context.Context, actor Actor, bookingID string) (*dto.BookingResponse, error)
	// ListMine lists the actor's bookings in [from, to).
	ListMine(ctx context.Context, actor Actor, from, to time.Time) ([]dto.BookingResponse, error)
}

type bookingService struct {
	cfg      *config.BookingConfig
	repo     *repository.Repository
	expander *Expander
	points   PointsService
	bus      event.Bus
	logger   *zap.Logger
	now      func() time.Time
}

// NewBookingService creates a BookingService instance.
func NewBookingService(
	cfg *config.BookingConfig,
	repo *repository.Repository,
	expander *Expander,
	points PointsService,
	bus event.Bus,
	logger *zap.Logger,
) BookingService {
	return &bookingService{
		cfg:      cfg,
		repo:     repo,
		expander: expander,
		points:   points,
		bus:      bus,
		logger:   logger,
		now:      time.Now,
	}
}

// ════════════════════════════════════════════════════════════
// Commit — claim a slot
// ════════════════════════════════════════════════════════════

func (s *bookingService) Commit(ctx context.Context, actor Actor, req *dto.CommitBookingRequest) (*dto.BookingResponse, error) {
	return s.commit(ctx, actor, actor.UserID, req)
}

func (s *bookingService) commit(ctx context.Context, actor Actor, userID string, req *dto.CommitBookingRequest) (*dto.BookingResponse, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, req.ScheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("load schedule failed", zap.Error(err))
		return nil, err
	}

	// Reject times the schedule does not generate. Exact instant match only.
	produces, err := s.expander.Produces(schedule, req.StartTime)
	if err != nil {
		return nil, err
	}
	if !produces {
		return nil, ErrSlotNotProduced
	}

	// One active booking per user per slot.
	if _, err := s.repo.Booking.FindActiveBySlotUser(ctx, req.ScheduleID, req.StartTime, userID); err == nil {
		return nil, ErrDuplicateBooking
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	booking := &model.Booking{
		UserID:       userID,
		ScheduleID:   schedule.ScheduleID,
		ScheduleName: schedule.Name,
		ShiftStart:   req.StartTime,
		ShiftEnd:     req.StartTime.Add(schedule.Duration()),
		BuddyUserID:  req.BuddyUserID,
		BuddyName:    req.BuddyName,
		CreatedAt:    s.now(),
	}

	// Seat assignment is the test-and-set: walk every seat from zero; each
	// insert either wins its seat via the partial unique index or collides
	// and tries the next. Cancelled rows leave the index, so a seat freed by
	// cancellation is reclaimed here. Exhausting capacity means the slot is
	// full.
	committed := false
	for seat := 0; seat < schedule.Capacity; seat++ {
		booking.Seat = seat
		err := s.repo.Booking.Create(ctx, booking)
		if err == nil {
			committed = true
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		s.logger.Error("insert booking failed", zap.Error(err))
		return nil, err
	}
	if !committed {
		return nil, ErrSlotAlreadyBooked
	}

	s.bus.Emit(ctx, event.New(event.TypeBookingCreated, actor.UserID, booking.BookingID,
		map[string]interface{}{
			"user_id":       userID,
			"schedule_id":   booking.ScheduleID,
			"schedule_name": booking.ScheduleName,
			"shift_start":   booking.ShiftStart,
			"shift_end":     booking.ShiftEnd,
		}))

	return s.toResponse(ctx, booking), nil
}

// ════════════════════════════════════════════════════════════
// Cancel / UnassignUser
// ════════════════════════════════════════════════════════════

func (s *bookingService) Cancel(ctx context.Context, actor Actor, bookingID string) error {
	return s.cancel(ctx, actor, bookingID, actor.IsAdmin())
}

func (s *bookingService) UnassignUser(ctx context.Context, actor Actor, bookingID string) error {
	if !actor.IsAdmin() {
		return ErrAdminRequired
	}
	return s.cancel(ctx, actor, bookingID, true)
}

func (s *bookingService) cancel(ctx context.Context, actor Actor, bookingID string, bypass bool) error {
	booking, err := s.repo.Booking.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookingNotFound
		}
		return err
	}
	if booking.IsCancelled() {
		return ErrBookingCancelled
	}

	if !bypass {
		if booking.UserID != actor.UserID {
			return ErrNotBookingOwner
		}
		if !s.now().Before(booking.ShiftStart.Add(-s.cfg.CancelCutoff)) {
			return ErrCancellationWindowExpired
		}
	}

	ok, err := s.repo.Booking.SetCancelled(ctx, bookingID, actor.UserID, s.now())
	if err != nil {
		return err
	}
	if !ok {
		// lost a race with another cancel; the outcome is the same
		return ErrBookingCancelled
	}

	s.bus.Emit(ctx, event.New(event.TypeBookingCancelled, actor.UserID, bookingID,
		map[string]interface{}{
			"user_id":     booking.UserID,
			"schedule_id": booking.ScheduleID,
			"shift_start": booking.ShiftStart,
			"by_admin":    bypass && actor.UserID != booking.UserID,
		}))

	return nil
}

// ════════════════════════════════════════════════════════════
// CheckIn
// ════════════════════════════════════════════════════════════

func (s *bookingService) CheckIn(ctx context.Context, actor Actor, bookingID string, req *dto.CheckInRequest) (*dto.BookingResponse, error) {
	booking, err := s.repo.Booking.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if booking.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrNotBookingOwner
	}
	if booking.IsCancelled() {
		return nil, ErrBookingCancelled
	}

	// Idempotent: already checked in means return the existing state, no
	// second award pass.
	if booking.CheckedInAt != nil {
		return s.toResponse(ctx, booking), nil
	}

	at := s.now()
	if req != nil && req.At != nil {
		at = *req.At
	}
	if at.Before(booking.ShiftStart.Add(-s.cfg.CheckInOpen)) {
		return nil, ErrCheckInTooEarly
	}
	// Late check-in is permitted, only flagged for review downstream.
	late := at.After(booking.ShiftStart.Add(s.cfg.LateCheckInFlag))

	ok, err := s.repo.Booking.SetCheckedIn(ctx, bookingID, at, late)
	if err != nil {
		return nil, err
	}
	if !ok {
		// a concurrent request got there first; reload and report its state
		existing, err := s.repo.Booking.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		return s.toResponse(ctx, existing), nil
	}

	booking.CheckedInAt = &at
	booking.LateCheckIn = late

	s.bus.Emit(ctx, event.New(event.TypeBookingCheckedIn, actor.UserID, bookingID,
		map[string]interface{}{
			"user_id":     booking.UserID,
			"shift_start": booking.ShiftStart,
			"at":          at,
			"late":        late,
		}))

	if _, err := s.points.OnCheckIn(ctx, booking, at); err != nil {
		// the check-in itself stands; the award can be replayed by backfill
		s.logger.Error("award check-in points failed",
			zap.String("booking_id", bookingID), zap.Error(err))
	}

	return s.toResponse(ctx, booking), nil
}

// ════════════════════════════════════════════════════════════
// AssignUser (admin)
// ════════════════════════════════════════════════════════════

func (s *bookingService) AssignUser(ctx context.Context, actor Actor, req *dto.AssignBookingRequest) (*dto.BookingResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminRequired
	}
	if _, err := s.repo.User.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPointsUserNotFound
		}
		return nil, err
	}
	return s.commit(ctx, actor, req.UserID, &req.CommitBookingRequest)
}

// ════════════════════════════════════════════════════════════
// Reads
// ════════════════════════════════════════════════════════════

func (s *bookingService) Get(ctx context.Context, actor Actor, bookingID string) (*dto.BookingResponse, error) {
	booking, err := s.repo.Booking.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if booking.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrNotBookingOwner
	}
	return s.toResponse(ctx, booking), nil
}

func (s *bookingService) ListMine(ctx context.Context, actor Actor, from, to time.Time) ([]dto.BookingResponse, error) {
	bookings, err := s.repo.Booking.ListByUser(ctx, actor.UserID, from, to)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.BookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, *s.toResponse(ctx, &bookings[i]))
	}
	return resp, nil
}

func (s *bookingService) toResponse(ctx context.Context, b *model.Booking) *dto.BookingResponse {
	hasReport := false
	if count, err := s.repo.Report.CountByBooking(ctx, b.BookingID); err == nil {
		hasReport = count > 0
	}
	return &dto.BookingResponse{
		ID:           b.BookingID,
		UserID:       b.UserID,
		ScheduleID:   b.ScheduleID,
		ScheduleName: b.ScheduleName,
		ShiftStart:   b.ShiftStart,
		ShiftEnd:     b.ShiftEnd,
		BuddyUserID:  b.BuddyUserID,
		BuddyName:    b.BuddyName,
		CheckedInAt:  b.CheckedInAt,
		LateCheckIn:  b.LateCheckIn,
		Status:       string(b.Status(s.now(), hasReport)),
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
	}
}
