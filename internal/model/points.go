package model

import "time"

// PointReason is the closed enum of ledger reasons. (BookingID, Reason) is
// the award idempotency key.
type PointReason string

const (
	ReasonShiftCheckIn    PointReason = "shift_checkin"
	ReasonEarlyCheckIn    PointReason = "early_checkin"
	ReasonWeekendBonus    PointReason = "weekend_bonus"
	ReasonLateNightBonus  PointReason = "late_night_bonus"
	ReasonShiftCompletion PointReason = "shift_completion"
	ReasonReportFiled     PointReason = "report_filed"
	ReasonLevel2Report    PointReason = "level2_report"
)

// PointsEntry is one row of the append-only points ledger. A user's total is
// always Σ(points_awarded × multiplier) over their rows; there is no
// independently mutated counter.
type PointsEntry struct {
	EntryID       string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"entry_id"`
	UserID        string      `gorm:"type:uuid;not null"                             json:"user_id"`
	BookingID     *string     `gorm:"type:uuid"                                      json:"booking_id,omitempty"`
	PointsAwarded int         `gorm:"not null"                                       json:"points_awarded"`
	Reason        PointReason `gorm:"type:varchar(40);not null"                      json:"reason"`
	Multiplier    int         `gorm:"not null;default:1"                             json:"multiplier"`
	CreatedAt     time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (PointsEntry) TableName() string { return "points_history" }

// Value is the entry's contribution to the user's total.
func (e *PointsEntry) Value() int { return e.PointsAwarded * e.Multiplier }
