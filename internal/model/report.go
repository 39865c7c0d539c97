package model

import "time"

// Report severities.
const (
	SeverityNormal    = 0
	SeverityAttention = 1
	SeverityEmergency = 2
)

// Report is a shift report. A booking with at least one report counts as
// completed; severity 2 earns a bonus.
type Report struct {
	ReportID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"report_id"`
	BookingID *string   `gorm:"type:uuid"                                      json:"booking_id,omitempty"`
	UserID    string    `gorm:"type:uuid;not null"                             json:"user_id"`
	Severity  int       `gorm:"type:smallint;not null"                         json:"severity"`
	Message   string    `gorm:"type:varchar(2000);not null"                    json:"message"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (Report) TableName() string { return "reports" }
