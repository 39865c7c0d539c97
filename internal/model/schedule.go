package model

import "time"

// Schedule is a recurring patrol pattern. The cron expression is evaluated in
// Timezone: "hour 18" means 18:00 local, whatever the UTC offset happens to
// be on a given date. ValidFrom/ValidTo bound the recurrence when set.
type Schedule struct {
	ScheduleID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"schedule_id"`
	Name            string     `gorm:"type:varchar(120);not null"                     json:"name"`
	CronExpression  string     `gorm:"type:varchar(120);not null"                     json:"cron_expression"`
	DurationMinutes int        `gorm:"not null"                                       json:"duration_minutes"`
	ValidFrom       *time.Time `json:"valid_from,omitempty"`
	ValidTo         *time.Time `json:"valid_to,omitempty"`
	Timezone        string     `gorm:"type:varchar(64);not null;default:'UTC'"        json:"timezone"`
	Capacity        int        `gorm:"not null;default:1"                             json:"capacity"`
	VersionedModel
}

func (Schedule) TableName() string { return "schedules" }

// Duration returns the shift length.
func (s *Schedule) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// Location loads the schedule's timezone.
func (s *Schedule) Location() (*time.Location, error) {
	return time.LoadLocation(s.Timezone)
}

// ShiftSlot is one concrete occurrence of a schedule. Slots are derived on
// demand and never persisted; their identity is (ScheduleID, StartTime).
type ShiftSlot struct {
	ScheduleID   string    `json:"schedule_id"`
	ScheduleName string    `json:"schedule_name"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Capacity     int       `json:"capacity"`
}
