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

// ── report module errors ──

var (
	ErrReportBookingNotFound = errors.New("booking for this report not found")
	ErrReportNotYourBooking  = errors.New("reports may only be filed against your own booking")
)

// ReportService files shift reports. The first report against a booking
// completes it for points purposes; a late report against an already-missed
// booking is still accepted and still awards completion.
type ReportService interface {
	File(ctx context.Context, actor Actor, req *dto.FileReportRequest) (*dto.ReportResponse, error)
	ListByBooking(ctx context.Context, actor Actor, bookingID string) ([]dto.ReportResponse, error)
}

type reportService struct {
	repo   *repository.Repository
	points PointsService
	logger *zap.Logger
	now    func() time.Time
}

// NewReportService creates a ReportService instance.
func NewReportService(repo *repository.Repository, points PointsService, logger *zap.Logger) ReportService {
	return &reportService{repo: repo, points: points, logger: logger, now: time.Now}
}

func (s *reportService) File(ctx context.Context, actor Actor, req *dto.FileReportRequest) (*dto.ReportResponse, error) {
	var booking *model.Booking
	if req.BookingID != nil {
		var err error
		booking, err = s.repo.Booking.GetByID(ctx, *req.BookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrReportBookingNotFound
			}
			return nil, err
		}
		if booking.UserID != actor.UserID && !actor.IsAdmin() {
			return nil, ErrReportNotYourBooking
		}
		if booking.IsCancelled() {
			return nil, ErrBookingCancelled
		}
	}

	report := &model.Report{
		BookingID: req.BookingID,
		UserID:    actor.UserID,
		Severity:  req.Severity,
		Message:   req.Message,
		CreatedAt: s.now(),
	}
	if err := s.repo.Report.Create(ctx, report); err != nil {
		s.logger.Error("insert report failed", zap.Error(err))
		return nil, err
	}

	if booking != nil {
		if _, err := s.points.OnReportFiled(ctx, booking, report.CreatedAt); err != nil {
			// the report stands; the award can be replayed by backfill
			s.logger.Error("award report points failed",
				zap.String("booking_id", booking.BookingID), zap.Error(err))
		}
	}

	return toReportResponse(report), nil
}

func (s *reportService) ListByBooking(ctx context.Context, actor Actor, bookingID string) ([]dto.ReportResponse, error) {
	booking, err := s.repo.Booking.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportBookingNotFound
		}
		return nil, err
	}
	if booking.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrReportNotYourBooking
	}

	reports, err := s.repo.Report.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		resp = append(resp, *toReportResponse(&reports[i]))
	}
	return resp, nil
}

func toReportResponse(r *model.Report) *dto.ReportResponse {
	return &dto.ReportResponse{
		ID:        r.ReportID,
		BookingID: r.BookingID,
		UserID:    r.UserID,
		Severity:  r.Severity,
		Message:   r.Message,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}
