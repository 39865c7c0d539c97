package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"nightwatch/backend/internal/dto"
	"nightwatch/backend/internal/event"
	"nightwatch/backend/internal/model"
	"nightwatch/backend/internal/repository"
	pkgerrors "nightwatch/backend/pkg/errors"
)

// ── points module errors ──

var ErrPointsUserNotFound = errors.New("user not found")

// PointsService is the points & achievement engine. Both award entry points
// are idempotent: the ledger's (booking_id, reason) key is checked before
// insert and enforced by the store, so at-least-once delivery of lifecycle
// events never double-credits.
type PointsService interface {
	// OnCheckIn awards the check-in rules for a booking. at stamps the
	// created ledger rows (the live path passes the check-in time, the
	// migrator the booking's historical one).
	OnCheckIn(ctx context.Context, booking *model.Booking, at time.Time) ([]model.PointsEntry, error)
	// OnReportFiled awards the report rules for a booking.
	OnReportFiled(ctx context.Context, booking *model.Booking, at time.Time) ([]model.PointsEntry, error)
	// Summary recomputes the user's totals from the ledger.
	Summary(ctx context.Context, userID string) (*dto.PointsSummaryResponse, error)
	History(ctx context.Context, userID string, page *dto.PaginationRequest) ([]dto.PointsEntryResponse, int64, error)
	// Achievements recomputes unlock states from the ledger and booking
	// history; nothing here is a stored counter.
	Achievements(ctx context.Context, userID string) ([]dto.AchievementResponse, error)
	Leaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntryResponse, error)
}

type pointsService struct {
	repo   *repository.Repository
	bus    event.Bus
	logger *zap.Logger
}

// NewPointsService creates a PointsService instance.
func NewPointsService(repo *repository.Repository, bus event.Bus, logger *zap.Logger) PointsService {
	return &pointsService{repo: repo, bus: bus, logger: logger}
}

// scheduleLocation resolves the timezone a booking's shift_start should be
// judged in. Soft-deleted schedules still resolve; a missing schedule falls
// back to UTC rather than failing the award.
func (s *pointsService) scheduleLocation(ctx context.Context, scheduleID string) *time.Location {
	schedule, err := s.repo.Schedule.GetByIDAny(ctx, scheduleID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("resolve schedule timezone failed",
				zap.String("schedule_id", scheduleID), zap.Error(err))
		}
		return time.UTC
	}
	loc, err := schedule.Location()
	if err != nil {
		s.logger.Warn("load schedule timezone failed",
			zap.String("timezone", schedule.Timezone), zap.Error(err))
		return time.UTC
	}
	return loc
}

func (s *pointsService) OnCheckIn(ctx context.Context, booking *model.Booking, at time.Time) ([]model.PointsEntry, error) {
	if booking.CheckedInAt == nil {
		return nil, nil
	}
	loc := s.scheduleLocation(ctx, booking.ScheduleID)
	awards := CheckInAwards(booking.ShiftStart.In(loc), *booking.CheckedInAt)
	return s.apply(ctx, booking, awards, at)
}

func (s *pointsService) OnReportFiled(ctx context.Context, booking *model.Booking, at time.Time) ([]model.PointsEntry, error) {
	maxSeverity, err := s.repo.Report.MaxSeverityByBooking(ctx, booking.BookingID)
	if err != nil {
		return nil, err
	}
	if maxSeverity < 0 {
		return nil, nil // no report on record, nothing to award
	}
	awards := ReportAwards(maxSeverity)
	return s.apply(ctx, booking, awards, at)
}

// apply writes the awards that are not yet on the ledger, then re-evaluates
// achievements so newly crossed thresholds emit an unlock event. A
// concurrent duplicate absorbed by the uniqueness constraint is skipped, not
// an error.
func (s *pointsService) apply(ctx context.Context, booking *model.Booking, awards []Award, at time.Time) ([]model.PointsEntry, error) {
	var unlockedBefore map[string]bool
	if before, err := s.Achievements(ctx, booking.UserID); err == nil {
		unlockedBefore = make(map[string]bool, len(before))
		for _, a := range before {
			unlockedBefore[a.Code] = a.Unlocked
		}
	}

	inserted := make([]model.PointsEntry, 0, len(awards))
	for _, award := range awards {
		exists, err := s.repo.Points.Exists(ctx, booking.BookingID, award.Reason)
		if err != nil {
			return inserted, err
		}
		if exists {
			continue
		}

		bookingID := booking.BookingID
		entry := model.PointsEntry{
			UserID:        booking.UserID,
			BookingID:     &bookingID,
			PointsAwarded: award.Points,
			Reason:        award.Reason,
			Multiplier:    1,
			CreatedAt:     at,
		}
		if err := s.repo.Points.Insert(ctx, &entry); err != nil {
			if errors.Is(err, pkgerrors.ErrDuplicateAward) {
				continue
			}
			return inserted, err
		}
		inserted = append(inserted, entry)

		s.bus.Emit(ctx, event.New(event.TypePointsAwarded, booking.UserID, booking.BookingID,
			map[string]interface{}{
				"reason": string(award.Reason),
				"points": award.Points,
			}))
	}

	if len(inserted) > 0 && unlockedBefore != nil {
		s.emitNewUnlocks(ctx, booking.UserID, unlockedBefore)
	}

	return inserted, nil
}

func (s *pointsService) emitNewUnlocks(ctx context.Context, userID string, before map[string]bool) {
	after, err := s.Achievements(ctx, userID)
	if err != nil {
		s.logger.Warn("re-evaluate achievements failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	for _, a := range after {
		if a.Unlocked && !before[a.Code] {
			s.bus.Emit(ctx, event.New(event.TypeAchievementUnlocked, userID, a.Code,
				map[string]interface{}{
					"name":      a.Name,
					"threshold": a.Threshold,
					"criteria":  a.Criteria,
				}))
		}
	}
}

func (s *pointsService) Summary(ctx context.Context, userID string) (*dto.PointsSummaryResponse, error) {
	total, err := s.repo.Points.SumByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	completed, err := s.repo.Booking.CountCompletedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.PointsSummaryResponse{
		UserID:          userID,
		TotalPoints:     total,
		CompletedShifts: int(completed),
	}, nil
}

func (s *pointsService) History(ctx context.Context, userID string, page *dto.PaginationRequest) ([]dto.PointsEntryResponse, int64, error) {
	entries, total, err := s.repo.Points.ListByUser(ctx, userID, page.GetOffset(), page.GetPageSize())
	if err != nil {
		return nil, 0, err
	}

	resp := make([]dto.PointsEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, dto.PointsEntryResponse{
			ID:            e.EntryID,
			BookingID:     e.BookingID,
			PointsAwarded: e.PointsAwarded,
			Reason:        string(e.Reason),
			Multiplier:    e.Multiplier,
			CreatedAt:     e.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp, total, nil
}

func (s *pointsService) Achievements(ctx context.Context, userID string) ([]dto.AchievementResponse, error) {
	summary, err := s.Summary(ctx, userID)
	if err != nil {
		return nil, err
	}
	defs, err := s.repo.Achievement.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.AchievementResponse, 0, len(defs))
	for _, def := range defs {
		resp = append(resp, dto.AchievementResponse{
			Code:        def.Code,
			Name:        def.Name,
			Description: def.Description,
			Criteria:    def.Criteria,
			Threshold:   def.Threshold,
			Unlocked:    def.Unlocked(summary.CompletedShifts, summary.TotalPoints),
		})
	}
	return resp, nil
}

func (s *pointsService) Leaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntryResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.repo.Points.Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.LeaderboardEntryResponse, 0, len(rows))
	for i, row := range rows {
		resp = append(resp, dto.LeaderboardEntryResponse{
			Rank:   i + 1,
			UserID: row.UserID,
			Name:   row.Name,
			Total:  row.Total,
		})
	}
	return resp, nil
}
