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
)

// migrationBatchSize is the page size of the backfill scan.
const migrationBatchSize = 500

// MigrationService is the historical backfill: it replays the live points
// rules over bookings that have no ledger entries yet, stamping the inserted
// rows with the bookings' own historical timestamps. Re-running after a
// partial failure is safe: every award is guarded by the ledger's
// (booking_id, reason) key, so credited awards are skipped individually and
// a booking whose live credit was only partial gets the missing rows filled
// in. The scan proceeds in ascending shift order and is resumable by simply
// invoking it again.
type MigrationService interface {
	// Preview computes the full summary without writing anything.
	Preview(ctx context.Context) (*dto.BackfillSummaryResponse, error)
	// Execute runs the backfill. With dryRun it performs the same
	// computation as a real run but commits nothing.
	Execute(ctx context.Context, dryRun bool) (*dto.BackfillSummaryResponse, error)
}

type migrationService struct {
	repo   *repository.Repository
	points PointsService
	logger *zap.Logger
}

// NewMigrationService creates a MigrationService instance.
func NewMigrationService(repo *repository.Repository, points PointsService, logger *zap.Logger) MigrationService {
	return &migrationService{repo: repo, points: points, logger: logger}
}

func (s *migrationService) Preview(ctx context.Context) (*dto.BackfillSummaryResponse, error) {
	return s.Execute(ctx, true)
}

func (s *migrationService) Execute(ctx context.Context, dryRun bool) (*dto.BackfillSummaryResponse, error) {
	summary := &dto.BackfillSummaryResponse{DryRun: dryRun}
	affected := make(map[string]bool)

	for offset := 0; ; offset += migrationBatchSize {
		batch, err := s.repo.Booking.ListAllAscending(ctx, offset, migrationBatchSize)
		if err != nil {
			return summary, err
		}
		if len(batch) == 0 {
			break
		}

		for i := range batch {
			booking := &batch[i]
			summary.BookingsScanned++

			written, total, err := s.processBooking(ctx, booking, dryRun)
			if err != nil {
				// Partial-failure semantics: one bad row never aborts the
				// batch. Log, count, continue.
				summary.BookingsFailed++
				s.logger.Error("backfill booking failed",
					zap.String("booking_id", booking.BookingID),
					zap.Error(err))
				continue
			}
			if written == 0 {
				summary.BookingsSkipped++
				continue
			}
			summary.EntriesWritten += written
			summary.PointsTotal += total
			affected[booking.UserID] = true
		}
	}

	summary.UsersAffected = len(affected)

	if !dryRun {
		// Totals are a pure reduction over the ledger, so "recompute" is a
		// verification read; achievements re-evaluate from the same data.
		for userID := range affected {
			if _, err := s.points.Summary(ctx, userID); err != nil {
				s.logger.Warn("recompute totals failed", zap.String("user_id", userID), zap.Error(err))
			}
			if _, err := s.points.Achievements(ctx, userID); err != nil {
				s.logger.Warn("re-evaluate achievements failed", zap.String("user_id", userID), zap.Error(err))
			}
		}
	}

	s.logger.Info("backfill finished",
		zap.Bool("dry_run", dryRun),
		zap.Int("scanned", summary.BookingsScanned),
		zap.Int("skipped", summary.BookingsSkipped),
		zap.Int("failed", summary.BookingsFailed),
		zap.Int("entries", summary.EntriesWritten),
		zap.Int("points", summary.PointsTotal),
		zap.Int("users", summary.UsersAffected),
	)

	return summary, nil
}

// processBooking replays the rules for one booking. It returns the number of
// entries written (or would-be written under dryRun) and their point total.
// Per-award idempotency lives in the points engine, so a booking already
// credited in full comes back with zero writes and counts as skipped.
func (s *migrationService) processBooking(ctx context.Context, booking *model.Booking, dryRun bool) (int, int, error) {
	if dryRun {
		return s.computeOnly(ctx, booking)
	}

	written := 0
	total := 0

	if booking.CheckedInAt != nil {
		// Historical stamp: the check-in time, not now.
		entries, err := s.points.OnCheckIn(ctx, booking, *booking.CheckedInAt)
		if err != nil {
			return written, total, err
		}
		for _, e := range entries {
			written++
			total += e.Value()
		}
	}

	reports, err := s.repo.Report.ListByBooking(ctx, booking.BookingID)
	if err != nil {
		return written, total, err
	}
	if len(reports) > 0 {
		// Historical stamp: the first report's filing time.
		entries, err := s.points.OnReportFiled(ctx, booking, reports[0].CreatedAt)
		if err != nil {
			return written, total, err
		}
		for _, e := range entries {
			written++
			total += e.Value()
		}
	}

	return written, total, nil
}

// computeOnly runs the same pure rule functions as the live engine without
// any writes, consulting the ledger so already-credited awards are excluded
// and the dry-run numbers match what a real run would commit.
func (s *migrationService) computeOnly(ctx context.Context, booking *model.Booking) (int, int, error) {
	var awards []Award
	if booking.CheckedInAt != nil {
		loc := s.resolveLocation(ctx, booking.ScheduleID)
		awards = append(awards, CheckInAwards(booking.ShiftStart.In(loc), *booking.CheckedInAt)...)
	}

	maxSeverity, err := s.repo.Report.MaxSeverityByBooking(ctx, booking.BookingID)
	if err != nil {
		return 0, 0, err
	}
	if maxSeverity >= 0 {
		awards = append(awards, ReportAwards(maxSeverity)...)
	}

	written := 0
	total := 0
	for _, a := range awards {
		credited, err := s.repo.Points.Exists(ctx, booking.BookingID, a.Reason)
		if err != nil {
			return written, total, err
		}
		if credited {
			continue
		}
		written++
		total += a.Points
	}
	return written, total, nil
}

func (s *migrationService) resolveLocation(ctx context.Context, scheduleID string) *time.Location {
	schedule, err := s.repo.Schedule.GetByIDAny(ctx, scheduleID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("resolve schedule failed", zap.String("schedule_id", scheduleID), zap.Error(err))
		}
		return time.UTC
	}
	loc, err := schedule.Location()
	if err != nil {
		return time.UTC
	}
	return loc
}
