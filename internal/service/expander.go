package service

import (
	"errors"
	"fmt"
	"time"

	"nightwatch/backend/internal/model"
	"nightwatch/backend/pkg/cron"
)

// ── expander errors ──

var (
	ErrInvalidTimezone    = errors.New("schedule timezone cannot be loaded")
	ErrTooManyOccurrences = errors.New("requested range expands to too many occurrences")
)

// Expander materializes recurring schedules into concrete shift slots. It is
// a pure function of its inputs: the same schedule and range always produce
// the same slots.
type Expander struct {
	eval           cron.Evaluator
	maxOccurrences int
}

// NewExpander creates an expander with a hard cap on occurrences per call,
// guarding against pathological cron/range combinations.
func NewExpander(eval cron.Evaluator, maxOccurrences int) *Expander {
	return &Expander{eval: eval, maxOccurrences: maxOccurrences}
}

// Expand returns the schedule's slots with start times in [from, to),
// ascending. The range is first clipped against the schedule's validity
// bounds; an empty clipped range yields an empty slice, not an error.
//
// The cron expression is evaluated against the wall clock of the schedule's
// timezone and each local match is converted to an absolute instant
// afterwards, so a slot's local start hour is stable across DST transitions
// even though its UTC offset is not.
func (e *Expander) Expand(schedule *model.Schedule, from, to time.Time) ([]model.ShiftSlot, error) {
	loc, err := schedule.Location()
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, schedule.Timezone)
	}

	// Clip to [max(from, valid_from), min(to, valid_to)).
	if schedule.ValidFrom != nil && schedule.ValidFrom.After(from) {
		from = *schedule.ValidFrom
	}
	if schedule.ValidTo != nil && schedule.ValidTo.Before(to) {
		to = *schedule.ValidTo
	}
	if !from.Before(to) {
		return []model.ShiftSlot{}, nil
	}

	duration := schedule.Duration()
	slots := make([]model.ShiftSlot, 0, 16)

	// The evaluator is strictly-after; back off one second so a match
	// exactly at the range start is included. Cron resolution is one minute,
	// so a second is safe.
	cursor := from.In(loc).Add(-time.Second)
	for {
		next, err := e.eval.Next(schedule.CronExpression, cursor)
		if err != nil {
			return nil, err
		}
		if next.IsZero() || !next.Before(to) {
			break
		}
		if len(slots) >= e.maxOccurrences {
			return nil, fmt.Errorf("%w: cap %d reached for schedule %s",
				ErrTooManyOccurrences, e.maxOccurrences, schedule.ScheduleID)
		}
		slots = append(slots, model.ShiftSlot{
			ScheduleID:   schedule.ScheduleID,
			ScheduleName: schedule.Name,
			StartTime:    next,
			EndTime:      next.Add(duration),
			Capacity:     schedule.Capacity,
		})
		cursor = next
	}

	return slots, nil
}

// Produces reports whether the schedule generates a slot starting exactly at
// start. Bookings are only accepted for produced slots; matching is exact
// instant equality, never nearest-slot.
func (e *Expander) Produces(schedule *model.Schedule, start time.Time) (bool, error) {
	slots, err := e.Expand(schedule, start, start.Add(time.Minute))
	if err != nil {
		return false, err
	}
	return len(slots) > 0 && slots[0].StartTime.Equal(start), nil
}
