package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"nightwatch/backend/internal/dto"
	"nightwatch/backend/internal/model"
	"nightwatch/backend/internal/repository"
	"nightwatch/backend/pkg/cron"
)

// ── schedule module errors ──

var (
	ErrInvalidCron     = errors.New("cron expression is malformed")
	ErrInvalidDuration = errors.New("duration must be positive")
	ErrInvalidValidity = errors.New("valid_from must not be after valid_to")
)

// ScheduleService is the admin CRUD surface for recurring patterns. Edits
// and deletion never touch existing bookings: those carry captured
// shift_end and schedule_name snapshots.
type ScheduleService interface {
	Create(ctx context.Context, req *dto.CreateScheduleRequest, callerID string) (*dto.ScheduleResponse, error)
	Get(ctx context.Context, id string) (*dto.ScheduleResponse, error)
	List(ctx context.Context) ([]dto.ScheduleResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateScheduleRequest, callerID string) (*dto.ScheduleResponse, error)
	Delete(ctx context.Context, id string) error
	// PreviewSlots expands one schedule over [from, to) without touching
	// bookings; used by admins to sanity-check a cron pattern.
	PreviewSlots(ctx context.Context, id string, from, to time.Time) ([]model.ShiftSlot, error)
}

type scheduleService struct {
	repo     *repository.Repository
	eval     cron.Evaluator
	expander *Expander
	logger   *zap.Logger
}

// NewScheduleService creates a ScheduleService instance.
func NewScheduleService(repo *repository.Repository, eval cron.Evaluator, expander *Expander, logger *zap.Logger) ScheduleService {
	return &scheduleService{repo: repo, eval: eval, expander: expander, logger: logger}
}

func (s *scheduleService) validate(cronExpr string, durationMinutes int, validFrom, validTo *time.Time, timezone string) error {
	if err := s.eval.Validate(cronExpr); err != nil {
		return ErrInvalidCron
	}
	if durationMinutes <= 0 {
		return ErrInvalidDuration
	}
	if validFrom != nil && validTo != nil && validFrom.After(*validTo) {
		return ErrInvalidValidity
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return ErrInvalidTimezone
	}
	return nil
}

func (s *scheduleService) Create(ctx context.Context, req *dto.CreateScheduleRequest, callerID string) (*dto.ScheduleResponse, error) {
	if err := s.validate(req.CronExpression, req.DurationMinutes, req.ValidFrom, req.ValidTo, req.Timezone); err != nil {
		return nil, err
	}

	capacity := req.Capacity
	if capacity <= 0 {
		capacity = 1
	}

	schedule := &model.Schedule{
		Name:            req.Name,
		CronExpression:  req.CronExpression,
		DurationMinutes: req.DurationMinutes,
		ValidFrom:       req.ValidFrom,
		ValidTo:         req.ValidTo,
		Timezone:        req.Timezone,
		Capacity:        capacity,
	}
	schedule.CreatedBy = &callerID
	schedule.UpdatedBy = &callerID

	if err := s.repo.Schedule.Create(ctx, schedule); err != nil {
		s.logger.Error("insert schedule failed", zap.Error(err))
		return nil, err
	}

	return toScheduleResponse(schedule), nil
}

func (s *scheduleService) Get(ctx context.Context, id string) (*dto.ScheduleResponse, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return toScheduleResponse(schedule), nil
}

func (s *scheduleService) List(ctx context.Context) ([]dto.ScheduleResponse, error) {
	schedules, err := s.repo.Schedule.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		resp = append(resp, *toScheduleResponse(&schedules[i]))
	}
	return resp, nil
}

func (s *scheduleService) Update(ctx context.Context, id string, req *dto.UpdateScheduleRequest, callerID string) (*dto.ScheduleResponse, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		schedule.Name = *req.Name
	}
	if req.CronExpression != nil {
		schedule.CronExpression = *req.CronExpression
	}
	if req.DurationMinutes != nil {
		schedule.DurationMinutes = *req.DurationMinutes
	}
	if req.ValidFrom != nil {
		schedule.ValidFrom = req.ValidFrom
	}
	if req.ValidTo != nil {
		schedule.ValidTo = req.ValidTo
	}
	if req.Timezone != nil {
		schedule.Timezone = *req.Timezone
	}
	if req.Capacity != nil {
		schedule.Capacity = *req.Capacity
	}
	if err := s.validate(schedule.CronExpression, schedule.DurationMinutes, schedule.ValidFrom, schedule.ValidTo, schedule.Timezone); err != nil {
		return nil, err
	}

	schedule.UpdatedBy = &callerID
	if err := s.repo.Schedule.Update(ctx, schedule); err != nil {
		return nil, err
	}

	return toScheduleResponse(schedule), nil
}

func (s *scheduleService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Schedule.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduleNotFound
		}
		return err
	}
	return s.repo.Schedule.Delete(ctx, id)
}

func (s *scheduleService) PreviewSlots(ctx context.Context, id string, from, to time.Time) ([]model.ShiftSlot, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return s.expander.Expand(schedule, from, to)
}

func toScheduleResponse(m *model.Schedule) *dto.ScheduleResponse {
	return &dto.ScheduleResponse{
		ID:              m.ScheduleID,
		Name:            m.Name,
		CronExpression:  m.CronExpression,
		DurationMinutes: m.DurationMinutes,
		ValidFrom:       m.ValidFrom,
		ValidTo:         m.ValidTo,
		Timezone:        m.Timezone,
		Capacity:        m.Capacity,
		CreatedAt:       m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       m.UpdatedAt.Format(time.RFC3339),
	}
}
