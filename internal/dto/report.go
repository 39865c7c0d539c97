package dto

// ── report requests ──

// FileReportRequest files a shift report. BookingID is optional: off-shift
// observations are accepted but only booking-bound reports drive completion.
type FileReportRequest struct {
	BookingID *string `json:"booking_id" binding:"omitempty,uuid"`
	Severity  int     `json:"severity"   binding:"min=0,max=2"`
	Message   string  `json:"message"    binding:"required,min=2,max=2000"`
}

// ── report responses ──

// ReportResponse is one filed report.
type ReportResponse struct {
	ID        string  `json:"id"`
	BookingID *string `json:"booking_id,omitempty"`
	UserID    string  `json:"user_id"`
	Severity  int     `json:"severity"`
	Message   string  `json:"message"`
	CreatedAt string  `json:"created_at"`
}
