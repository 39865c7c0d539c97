package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"nightwatch/backend/internal/repository"
)

// ── export module errors ──

var ErrExportNothingToExport = errors.New("nothing to export for the requested range")

// ExportService renders booking and points data for external consumption:
// an ICS calendar feed per volunteer and an XLSX leaderboard for admins. It
// only reads captured booking fields (shift_start, shift_end, schedule_name,
// buddy_name), which are guaranteed consistent with the schedule's duration
// at booking time.
type ExportService interface {
	// Calendar renders the user's bookings in [from, to) as an ICS feed.
	Calendar(ctx context.Context, userID string, from, to time.Time) (string, error)
	// Leaderboard renders the points ranking as an .xlsx workbook.
	Leaderboard(ctx context.Context, limit int) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	points PointsService
	logger *zap.Logger
}

// NewExportService creates an ExportService instance.
func NewExportService(repo *repository.Repository, points PointsService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, points: points, logger: logger}
}

func (s *exportService) Calendar(ctx context.Context, userID string, from, to time.Time) (string, error) {
	bookings, err := s.repo.Booking.ListByUser(ctx, userID, from, to)
	if err != nil {
		s.logger.Error("list bookings for export failed", zap.Error(err))
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//nightwatch//shift calendar//EN")

	for i := range bookings {
		b := &bookings[i]
		ev := cal.AddEvent(fmt.Sprintf("booking-%s@nightwatch", b.BookingID))
		ev.SetCreatedTime(b.CreatedAt)
		ev.SetStartAt(b.ShiftStart)
		ev.SetEndAt(b.ShiftEnd)
		ev.SetSummary(b.ScheduleName)
		if b.BuddyName != nil {
			ev.SetDescription("Buddy: " + *b.BuddyName)
		}
	}

	return cal.Serialize(), nil
}

func (s *exportService) Leaderboard(ctx context.Context, limit int) (*bytes.Buffer, string, error) {
	rows, err := s.points.Leaderboard(ctx, limit)
	if err != nil {
		return nil, "", err
	}
	if len(rows) == 0 {
		return nil, "", ErrExportNothingToExport
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Leaderboard"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Rank", "Name", "Points"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for i, row := range rows {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), row.Rank)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", i+2), row.Name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", i+2), row.Total)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("leaderboard_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf, filename, nil
}
