package model

// Achievement criteria kinds.
const (
	CriteriaShifts = "shifts" // threshold against completed-shift count
	CriteriaPoints = "points" // threshold against ledger point total
)

// Achievement is a threshold badge definition. Unlocks are recomputed on
// demand from the ledger and booking history, never stored as counters.
type Achievement struct {
	AchievementID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"achievement_id"`
	Code          string `gorm:"type:varchar(40);not null;uniqueIndex"          json:"code"`
	Name          string `gorm:"type:varchar(120);not null"                     json:"name"`
	Description   string `gorm:"type:varchar(500)"                              json:"description,omitempty"`
	Criteria      string `gorm:"type:varchar(20);not null"                      json:"criteria"`
	Threshold     int    `gorm:"not null"                                       json:"threshold"`
	SortOrder     int    `gorm:"not null;default:0"                             json:"sort_order"`
}

func (Achievement) TableName() string { return "achievements" }

// Unlocked reports whether the badge is earned for the given completed-shift
// count and point total.
func (a *Achievement) Unlocked(completedShifts, totalPoints int) bool {
	switch a.Criteria {
	case CriteriaShifts:
		return completedShifts >= a.Threshold
	case CriteriaPoints:
		return totalPoints >= a.Threshold
	default:
		return false
	}
}
