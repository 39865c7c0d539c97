package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"nightwatch/backend/internal/event"
	"nightwatch/backend/internal/model"
	"nightwatch/backend/internal/repository"
)

// recordingBus captures emitted events for assertions.
type recordingBus struct {
	events []event.Event
}

func (b *recordingBus) Emit(_ context.Context, e event.Event) {
	b.events = append(b.events, e)
}

func (b *recordingBus) ofType(eventType string) []event.Event {
	var out []event.Event
	for _, e := range b.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func newTestPoints(t *testing.T) (PointsService, *repository.Repository, *mockStores, *recordingBus) {
	t.Helper()
	repo, stores := newMockRepository()
	bus := &recordingBus{}
	return NewPointsService(repo, bus, zap.NewNop()), repo, stores, bus
}

func seedBooking(stores *mockStores, userID string, start time.Time, checkedIn *time.Time) *model.Booking {
	booking := &model.Booking{
		UserID:       userID,
		ScheduleID:   "sched-1",
		ScheduleName: "Evening Patrol",
		ShiftStart:   start,
		ShiftEnd:     start.Add(2 * time.Hour),
		CheckedInAt:  checkedIn,
		CreatedAt:    start.Add(-24 * time.Hour),
	}
	if err := stores.bookings.Create(context.Background(), booking); err != nil {
		panic(err)
	}
	return booking
}

func TestOnCheckInWritesLedgerOnce(t *testing.T) {
	points, _, stores, _ := newTestPoints(t)

	// Saturday 23:00 UTC, checked in 20 minutes early: all four rules fire.
	start := time.Date(2026, 3, 7, 23, 0, 0, 0, time.UTC)
	at := start.Add(-20 * time.Minute)
	booking := seedBooking(stores, "user-1", start, &at)

	inserted, err := points.OnCheckIn(context.Background(), booking, at)
	if err != nil {
		t.Fatalf("OnCheckIn: %v", err)
	}
	if len(inserted) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(inserted))
	}

	// Replaying the same booking inserts nothing more.
	again, err := points.OnCheckIn(context.Background(), booking, at)
	if err != nil {
		t.Fatalf("OnCheckIn replay: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("replay inserted %d entries, want 0", len(again))
	}
	if got := len(stores.points.entriesFor(booking.BookingID)); got != 4 {
		t.Fatalf("ledger has %d entries for the booking, want 4", got)
	}

	summary, err := points.Summary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	// 10 + 3 + 5 + 3
	if summary.TotalPoints != 21 {
		t.Fatalf("total = %d, want 21", summary.TotalPoints)
	}
}

func TestOnCheckInUsesScheduleTimezone(t *testing.T) {
	points, _, stores, _ := newTestPoints(t)

	// 20:00 UTC on a Friday is 22:00 in Johannesburg: late-night on the
	// local wall clock even though the UTC hour is not.
	if err := stores.schedules.Create(context.Background(), &model.Schedule{
		ScheduleID:      "sched-1",
		Name:            "Evening Patrol",
		CronExpression:  "0 22 * * *",
		DurationMinutes: 120,
		Timezone:        "Africa/Johannesburg",
		Capacity:        1,
	}); err != nil {
		t.Fatalf("seed schedule: %v", err)
	}

	start := time.Date(2026, 3, 6, 20, 0, 0, 0, time.UTC) // Fri 22:00 SAST
	booking := seedBooking(stores, "user-1", start, &start)

	inserted, err := points.OnCheckIn(context.Background(), booking, start)
	if err != nil {
		t.Fatalf("OnCheckIn: %v", err)
	}

	found := false
	for _, e := range inserted {
		if e.Reason == model.ReasonLateNightBonus {
			found = true
		}
		if e.Reason == model.ReasonWeekendBonus {
			t.Fatal("Friday must not earn the weekend bonus")
		}
	}
	if !found {
		t.Fatal("22:00 local start must earn the late-night bonus")
	}
}

func TestOnCheckInSkipsWithoutCheckIn(t *testing.T) {
	points, _, stores, _ := newTestPoints(t)

	start := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	booking := seedBooking(stores, "user-1", start, nil)

	inserted, err := points.OnCheckIn(context.Background(), booking, start)
	if err != nil {
		t.Fatalf("OnCheckIn: %v", err)
	}
	if len(inserted) != 0 {
		t.Fatalf("a booking without check-in earned %d entries", len(inserted))
	}
}

func TestOnReportFiledAwardsCompletion(t *testing.T) {
	points, _, stores, _ := newTestPoints(t)

	start := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	booking := seedBooking(stores, "user-1", start, &start)

	id := booking.BookingID
	if err := stores.reports.Create(context.Background(), &model.Report{
		BookingID: &id,
		UserID:    "user-1",
		Severity:  model.SeverityEmergency,
		Message:   "break-in attempt on Oak Street",
		CreatedAt: start.Add(90 * time.Minute),
	}); err != nil {
		t.Fatalf("seed report: %v", err)
	}

	inserted, err := points.OnReportFiled(context.Background(), booking, start.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("OnReportFiled: %v", err)
	}
	if len(inserted) != 3 {
		t.Fatalf("expected completion, report and level2 entries, got %d", len(inserted))
	}

	summary, err := points.Summary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.TotalPoints != 30 {
		t.Fatalf("total = %d, want 30", summary.TotalPoints)
	}
	if summary.CompletedShifts != 1 {
		t.Fatalf("completed shifts = %d, want 1", summary.CompletedShifts)
	}
}

func TestAchievementUnlockEmittedOnce(t *testing.T) {
	points, _, stores, bus := newTestPoints(t)
	stores.achievements.defs = []model.Achievement{
		{Code: "first_watch", Name: "First Watch", Criteria: model.CriteriaShifts, Threshold: 1},
		{Code: "point_scorer", Name: "Point Scorer", Criteria: model.CriteriaPoints, Threshold: 20},
	}

	start := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	booking := seedBooking(stores, "user-1", start, &start)
	id := booking.BookingID
	if err := stores.reports.Create(context.Background(), &model.Report{
		BookingID: &id,
		UserID:    "user-1",
		Severity:  model.SeverityNormal,
		Message:   "quiet night",
		CreatedAt: start.Add(time.Hour),
	}); err != nil {
		t.Fatalf("seed report: %v", err)
	}

	if _, err := points.OnReportFiled(context.Background(), booking, start.Add(2*time.Hour)); err != nil {
		t.Fatalf("OnReportFiled: %v", err)
	}

	// The completed-shift badge was already satisfied before the ledger
	// write, so only the points badge crosses its threshold here.
	unlocks := bus.ofType(event.TypeAchievementUnlocked)
	if len(unlocks) != 1 || unlocks[0].Target != "point_scorer" {
		t.Fatalf("expected one point_scorer unlock, got %v", unlocks)
	}

	// A replay inserts nothing and therefore re-emits nothing.
	if _, err := points.OnReportFiled(context.Background(), booking, start.Add(3*time.Hour)); err != nil {
		t.Fatalf("OnReportFiled replay: %v", err)
	}
	if again := bus.ofType(event.TypeAchievementUnlocked); len(again) != 1 {
		t.Fatalf("replay emitted %d unlock events, want 1", len(again))
	}

	achievements, err := points.Achievements(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Achievements: %v", err)
	}
	for _, a := range achievements {
		switch a.Code {
		case "first_watch":
			if !a.Unlocked {
				t.Error("first_watch should be unlocked")
			}
		case "point_scorer":
			if !a.Unlocked {
				t.Error("point_scorer should be unlocked at 20 points")
			}
		}
	}
}

func TestLeaderboardRanksByTotal(t *testing.T) {
	points, _, stores, _ := newTestPoints(t)

	for i, tc := range []struct {
		userID string
		points int
	}{
		{"user-a", 10},
		{"user-b", 40},
		{"user-c", 25},
	} {
		entry := model.PointsEntry{
			UserID:        tc.userID,
			PointsAwarded: tc.points,
			Reason:        model.ReasonShiftCheckIn,
			Multiplier:    1,
			CreatedAt:     time.Date(2026, 3, 1, 0, i, 0, 0, time.UTC),
		}
		if err := stores.points.Insert(context.Background(), &entry); err != nil {
			t.Fatalf("seed entry: %v", err)
		}
	}

	rows, err := points.Leaderboard(context.Background(), 2)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].UserID != "user-b" || rows[0].Rank != 1 {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
	if rows[1].UserID != "user-c" || rows[1].Rank != 2 {
		t.Fatalf("unexpected second row %+v", rows[1])
	}
}

func TestSummaryMatchesLedgerReduction(t *testing.T) {
	points, _, stores, _ := newTestPoints(t)

	entries := []model.PointsEntry{
		{UserID: "user-1", PointsAwarded: 10, Reason: model.ReasonShiftCheckIn, Multiplier: 1},
		{UserID: "user-1", PointsAwarded: 15, Reason: model.ReasonShiftCompletion, Multiplier: 2},
		{UserID: "user-2", PointsAwarded: 10, Reason: model.ReasonShiftCheckIn, Multiplier: 1},
	}
	for i := range entries {
		if err := stores.points.Insert(context.Background(), &entries[i]); err != nil {
			t.Fatalf("seed entry: %v", err)
		}
	}

	summary, err := points.Summary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	// 10*1 + 15*2: the multiplier participates in the reduction.
	if summary.TotalPoints != 40 {
		t.Fatalf("total = %d, want 40", summary.TotalPoints)
	}
}
