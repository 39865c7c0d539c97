package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"nightwatch/backend/config"
	"nightwatch/backend/internal/dto"
	"nightwatch/backend/internal/model"
	"nightwatch/backend/pkg/cron"
)

func testBookingConfig() *config.BookingConfig {
	return &config.BookingConfig{
		CancelCutoff:    2 * time.Hour,
		CheckInOpen:     30 * time.Minute,
		LateCheckInFlag: 15 * time.Minute,
		MaxOccurrences:  1000,
		HorizonDays:     28,
	}
}

type bookingFixture struct {
	svc    *bookingService
	stores *mockStores
	bus    *recordingBus
}

// newBookingFixture wires a booking service over the in-memory stores with a
// daily 18:00 UTC schedule and one volunteer and one admin user.
func newBookingFixture(t *testing.T, capacity int) *bookingFixture {
	t.Helper()
	repo, stores := newMockRepository()
	bus := &recordingBus{}
	logger := zap.NewNop()

	expander := NewExpander(cron.NewEvaluator(), 1000)
	points := NewPointsService(repo, bus, logger)
	svc := NewBookingService(testBookingConfig(), repo, expander, points, bus, logger).(*bookingService)

	ctx := context.Background()
	if err := stores.schedules.Create(ctx, &model.Schedule{
		ScheduleID:      "sched-1",
		Name:            "Evening Patrol",
		CronExpression:  "0 18 * * *",
		DurationMinutes: 120,
		Timezone:        "UTC",
		Capacity:        capacity,
	}); err != nil {
		t.Fatalf("seed schedule: %v", err)
	}
	for _, u := range []model.User{
		{UserID: "user-1", Name: "Thandi", Email: "thandi@example.org", Role: model.RoleVolunteer},
		{UserID: "admin-1", Name: "Sipho", Email: "sipho@example.org", Role: model.RoleAdmin},
	} {
		user := u
		if err := stores.users.Create(ctx, &user); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	return &bookingFixture{svc: svc, stores: stores, bus: bus}
}

// slotStart is a produced occurrence of the fixture schedule.
var slotStart = time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

func volunteer() Actor { return Actor{UserID: "user-1", Role: model.RoleVolunteer} }
func admin() Actor     { return Actor{UserID: "admin-1", Role: model.RoleAdmin} }

func commitReq() *dto.CommitBookingRequest {
	return &dto.CommitBookingRequest{ScheduleID: "sched-1", StartTime: slotStart}
}

func TestCommitConcurrentSingleWinner(t *testing.T) {
	f := newBookingFixture(t, 1)

	const contenders = 50
	var wg sync.WaitGroup
	results := make([]error, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := Actor{UserID: fmt.Sprintf("user-%d", i), Role: model.RoleVolunteer}
			_, err := f.svc.Commit(context.Background(), actor, commitReq())
			results[i] = err
		}(i)
	}
	wg.Wait()

	winners, losers := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrSlotAlreadyBooked):
			losers++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winners != 1 || losers != contenders-1 {
		t.Fatalf("winners = %d, losers = %d; want 1 and %d", winners, losers, contenders-1)
	}

	if count := f.stores.bookings.countActive("sched-1", slotStart); count != 1 {
		t.Fatalf("slot occupancy = %d, want 1", count)
	}
}

func TestCommitFillsCapacity(t *testing.T) {
	f := newBookingFixture(t, 2)
	ctx := context.Background()

	const contenders = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := Actor{UserID: fmt.Sprintf("user-%d", i), Role: model.RoleVolunteer}
			_, err := f.svc.Commit(ctx, actor, commitReq())
			if err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			} else if !errors.Is(err, ErrSlotAlreadyBooked) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if winners != 2 {
		t.Fatalf("winners = %d, want capacity 2", winners)
	}
}

func TestCommitReclaimsCancelledSeat(t *testing.T) {
	f := newBookingFixture(t, 2)
	ctx := context.Background()

	first, err := f.svc.Commit(ctx, volunteer(), commitReq())
	if err != nil {
		t.Fatalf("first Commit: %v", err)
	}
	second := Actor{UserID: "user-2", Role: model.RoleVolunteer}
	if _, err := f.svc.Commit(ctx, second, commitReq()); err != nil {
		t.Fatalf("second Commit: %v", err)
	}

	// Freeing the lower seat must reopen the slot, not strand it behind the
	// still-occupied higher seat.
	f.svc.now = func() time.Time { return slotStart.Add(-3 * time.Hour) }
	if err := f.svc.Cancel(ctx, volunteer(), first.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	third := Actor{UserID: "user-3", Role: model.RoleVolunteer}
	if _, err := f.svc.Commit(ctx, third, commitReq()); err != nil {
		t.Fatalf("recommit after cancellation: %v", err)
	}
	if count := f.stores.bookings.countActive("sched-1", slotStart); count != 2 {
		t.Fatalf("slot occupancy = %d, want 2", count)
	}

	fourth := Actor{UserID: "user-4", Role: model.RoleVolunteer}
	if _, err := f.svc.Commit(ctx, fourth, commitReq()); !errors.Is(err, ErrSlotAlreadyBooked) {
		t.Fatalf("expected ErrSlotAlreadyBooked on the full slot, got %v", err)
	}
}

func TestCommitRejectsDoubleBooking(t *testing.T) {
	f := newBookingFixture(t, 2)
	ctx := context.Background()

	if _, err := f.svc.Commit(ctx, volunteer(), commitReq()); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, err := f.svc.Commit(ctx, volunteer(), commitReq()); !errors.Is(err, ErrDuplicateBooking) {
		t.Fatalf("expected ErrDuplicateBooking, got %v", err)
	}

	// The remaining seat stays open to someone else.
	other := Actor{UserID: "user-2", Role: model.RoleVolunteer}
	if _, err := f.svc.Commit(ctx, other, commitReq()); err != nil {
		t.Fatalf("second user Commit: %v", err)
	}
}

func TestCommitRejectsUnproducedSlot(t *testing.T) {
	f := newBookingFixture(t, 1)

	req := commitReq()
	req.StartTime = slotStart.Add(30 * time.Minute)

	_, err := f.svc.Commit(context.Background(), volunteer(), req)
	if !errors.Is(err, ErrSlotNotProduced) {
		t.Fatalf("expected ErrSlotNotProduced, got %v", err)
	}
}

func TestCommitUnknownSchedule(t *testing.T) {
	f := newBookingFixture(t, 1)

	req := commitReq()
	req.ScheduleID = "no-such-schedule"

	_, err := f.svc.Commit(context.Background(), volunteer(), req)
	if !errors.Is(err, ErrScheduleNotFound) {
		t.Fatalf("expected ErrScheduleNotFound, got %v", err)
	}
}

func TestCommitCapturesScheduleFields(t *testing.T) {
	f := newBookingFixture(t, 1)
	f.svc.now = func() time.Time { return slotStart.Add(-3 * time.Hour) }

	resp, err := f.svc.Commit(context.Background(), volunteer(), commitReq())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if resp.ScheduleName != "Evening Patrol" {
		t.Errorf("schedule name = %q", resp.ScheduleName)
	}
	if !resp.ShiftEnd.Equal(slotStart.Add(2 * time.Hour)) {
		t.Errorf("shift end = %s", resp.ShiftEnd)
	}
	if resp.Status != string(model.BookingBooked) {
		t.Errorf("status = %q, want booked", resp.Status)
	}
}

func TestCancelRespectsCutoff(t *testing.T) {
	f := newBookingFixture(t, 1)
	ctx := context.Background()

	resp, err := f.svc.Commit(ctx, volunteer(), commitReq())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// One minute inside the cutoff window: too late for the owner.
	f.svc.now = func() time.Time { return slotStart.Add(-2*time.Hour + time.Minute) }
	if err := f.svc.Cancel(ctx, volunteer(), resp.ID); !errors.Is(err, ErrCancellationWindowExpired) {
		t.Fatalf("expected ErrCancellationWindowExpired, got %v", err)
	}

	// Well before the cutoff: permitted.
	f.svc.now = func() time.Time { return slotStart.Add(-3 * time.Hour) }
	if err := f.svc.Cancel(ctx, volunteer(), resp.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	// Cancelling twice reports the terminal state.
	if err := f.svc.Cancel(ctx, volunteer(), resp.ID); !errors.Is(err, ErrBookingCancelled) {
		t.Fatalf("expected ErrBookingCancelled, got %v", err)
	}
}

func TestCancelAdminBypassesCutoff(t *testing.T) {
	f := newBookingFixture(t, 1)
	ctx := context.Background()

	resp, err := f.svc.Commit(ctx, volunteer(), commitReq())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	f.svc.now = func() time.Time { return slotStart.Add(-10 * time.Minute) }
	if err := f.svc.Cancel(ctx, admin(), resp.ID); err != nil {
		t.Fatalf("admin cancel inside the window: %v", err)
	}
}

func TestCancelOwnerOnly(t *testing.T) {
	f := newBookingFixture(t, 1)
	ctx := context.Background()

	resp, err := f.svc.Commit(ctx, volunteer(), commitReq())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	f.svc.now = func() time.Time { return slotStart.Add(-3 * time.Hour) }
	other := Actor{UserID: "user-2", Role: model.RoleVolunteer}
	if err := f.svc.Cancel(ctx, other, resp.ID); !errors.Is(err, ErrNotBookingOwner) {
		t.Fatalf("expected ErrNotBookingOwner, got %v", err)
	}
}

func TestCheckInIdempotent(t *testing.T) {
	f := newBookingFixture(t, 1)
	ctx := context.Background()

	resp, err := f.svc.Commit(ctx, volunteer(), commitReq())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	first := slotStart.Add(-5 * time.Minute)
	f.svc.now = func() time.Time { return first }

	got, err := f.svc.CheckIn(ctx, volunteer(), resp.ID, nil)
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if got.CheckedInAt == nil || !got.CheckedInAt.Equal(first) {
		t.Fatalf("checked_in_at = %v, want %s", got.CheckedInAt, first)
	}

	// Repeat ten minutes later: the original timestamp must survive and the
	// check-in award must not double.
	f.svc.now = func() time.Time { return first.Add(10 * time.Minute) }
	again, err := f.svc.CheckIn(ctx, volunteer(), resp.ID, nil)
	if err != nil {
		t.Fatalf("repeat CheckIn: %v", err)
	}
	if again.CheckedInAt == nil || !again.CheckedInAt.Equal(first) {
		t.Fatalf("repeat moved checked_in_at to %v", again.CheckedInAt)
	}

	checkins := 0
	for _, e := range f.stores.points.entriesFor(resp.ID) {
		if e.Reason == model.ReasonShiftCheckIn {
			checkins++
		}
	}
	if checkins != 1 {
		t.Fatalf("shift_checkin entries = %d, want 1", checkins)
	}
}

func TestCheckInTooEarly(t *testing.T) {
	f := newBookingFixture(t, 1)
	ctx := context.Background()

	resp, err := f.svc.Commit(ctx, volunteer(), commitReq())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	f.svc.now = func() time.Time { return slotStart.Add(-31 * time.Minute) }
	if _, err := f.svc.CheckIn(ctx, volunteer(), resp.ID, nil); !errors.Is(err, ErrCheckInTooEarly) {
		t.Fatalf("expected ErrCheckInTooEarly, got %v", err)
	}
}

func TestCheckInLateIsFlaggedNotRejected(t *testing.T) {
	f := newBookingFixture(t, 1)
	ctx := context.Background()

	resp, err := f.svc.Commit(ctx, volunteer(), commitReq())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	f.svc.now = func() time.Time { return slotStart.Add(20 * time.Minute) }
	got, err := f.svc.CheckIn(ctx, volunteer(), resp.ID, nil)
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if !got.LateCheckIn {
		t.Fatal("20 minutes past start must set the late flag")
	}
	if got.Status != string(model.BookingCheckedIn) {
		t.Fatalf("status = %q, want checked_in", got.Status)
	}
}

func TestCheckInCancelledBooking(t *testing.T) {
	f := newBookingFixture(t, 1)
	ctx := context.Background()

	resp, err := f.svc.Commit(ctx, volunteer(), commitReq())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	f.svc.now = func() time.Time { return slotStart.Add(-3 * time.Hour) }
	if err := f.svc.Cancel(ctx, volunteer(), resp.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	f.svc.now = func() time.Time { return slotStart }
	if _, err := f.svc.CheckIn(ctx, volunteer(), resp.ID, nil); !errors.Is(err, ErrBookingCancelled) {
		t.Fatalf("expected ErrBookingCancelled, got %v", err)
	}
}

func TestAssignUserRequiresAdmin(t *testing.T) {
	f := newBookingFixture(t, 1)
	ctx := context.Background()

	req := &dto.AssignBookingRequest{CommitBookingRequest: *commitReq(), UserID: "user-1"}
	if _, err := f.svc.AssignUser(ctx, volunteer(), req); !errors.Is(err, ErrAdminRequired) {
		t.Fatalf("expected ErrAdminRequired, got %v", err)
	}

	resp, err := f.svc.AssignUser(ctx, admin(), req)
	if err != nil {
		t.Fatalf("AssignUser: %v", err)
	}
	if resp.UserID != "user-1" {
		t.Fatalf("assigned user = %q, want user-1", resp.UserID)
	}
}

func TestMissedStatusDerivedAfterShiftEnd(t *testing.T) {
	f := newBookingFixture(t, 1)
	ctx := context.Background()

	resp, err := f.svc.Commit(ctx, volunteer(), commitReq())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	f.svc.now = func() time.Time { return slotStart.Add(3 * time.Hour) }
	got, err := f.svc.Get(ctx, volunteer(), resp.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != string(model.BookingMissed) {
		t.Fatalf("status = %q, want missed", got.Status)
	}
}
