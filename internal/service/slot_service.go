package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"nightwatch/backend/internal/dto"
	"nightwatch/backend/internal/model"
	"nightwatch/backend/internal/repository"
)

// SlotService is the availability view: derived slots merged with live
// bookings. Reads are not transactionally coupled to writes; a slot shown
// open here can still lose the commit race, and the commit outcome is
// authoritative.
type SlotService interface {
	// ListSlots expands every schedule over [from, to) and annotates each
	// slot with its occupancy.
	ListSlots(ctx context.Context, from, to time.Time) ([]dto.AnnotatedSlotResponse, error)
}

type slotService struct {
	repo     *repository.Repository
	expander *Expander
	logger   *zap.Logger
}

// NewSlotService creates a SlotService instance.
func NewSlotService(repo *repository.Repository, expander *Expander, logger *zap.Logger) SlotService {
	return &slotService{repo: repo, expander: expander, logger: logger}
}

func (s *slotService) ListSlots(ctx context.Context, from, to time.Time) ([]dto.AnnotatedSlotResponse, error) {
	schedules, err := s.repo.Schedule.List(ctx)
	if err != nil {
		s.logger.Error("list schedules failed", zap.Error(err))
		return nil, err
	}

	var slots []model.ShiftSlot
	for i := range schedules {
		expanded, err := s.expander.Expand(&schedules[i], from, to)
		if err != nil {
			return nil, err
		}
		slots = append(slots, expanded...)
	}

	bookings, err := s.repo.Booking.ListActiveInRange(ctx, from, to)
	if err != nil {
		s.logger.Error("list bookings failed", zap.Error(err))
		return nil, err
	}

	return annotateSlots(slots, bookings), nil
}

// slotKey is the natural slot identity (schedule_id, start instant).
type slotKey struct {
	scheduleID string
	startUnix  int64
}

// annotateSlots pairs bookings with slots by exact start-time equality after
// normalizing to Unix instants. A booking whose shift_start matches no
// expanded slot (for example after a schedule edit) is left unpaired, never
// attached to the nearest slot.
func annotateSlots(slots []model.ShiftSlot, bookings []model.Booking) []dto.AnnotatedSlotResponse {
	index := make(map[slotKey][]model.Booking)
	for _, b := range bookings {
		if b.IsCancelled() {
			continue
		}
		key := slotKey{scheduleID: b.ScheduleID, startUnix: b.ShiftStart.Unix()}
		index[key] = append(index[key], b)
	}

	annotated := make([]dto.AnnotatedSlotResponse, 0, len(slots))
	for _, slot := range slots {
		key := slotKey{scheduleID: slot.ScheduleID, startUnix: slot.StartTime.Unix()}
		occupants := index[key]

		resp := dto.AnnotatedSlotResponse{
			ScheduleID:   slot.ScheduleID,
			ScheduleName: slot.ScheduleName,
			StartTime:    slot.StartTime,
			EndTime:      slot.EndTime,
			Capacity:     slot.Capacity,
			Occupancy:    len(occupants),
			IsBooked:     len(occupants) >= slot.Capacity,
		}
		for _, b := range occupants {
			brief := dto.OccupantBrief{UserID: b.UserID, BuddyName: b.BuddyName}
			if b.User != nil {
				brief.Name = b.User.Name
			}
			resp.Occupants = append(resp.Occupants, brief)
		}
		annotated = append(annotated, resp)
	}

	sort.Slice(annotated, func(i, j int) bool {
		if !annotated[i].StartTime.Equal(annotated[j].StartTime) {
			return annotated[i].StartTime.Before(annotated[j].StartTime)
		}
		return annotated[i].ScheduleName < annotated[j].ScheduleName
	})

	return annotated
}
