package model

import "time"

// BookingStatus is derived from a booking's columns and the clock; it is
// never stored.
type BookingStatus string

const (
	BookingBooked    BookingStatus = "booked"
	BookingCheckedIn BookingStatus = "checked_in"
	BookingCompleted BookingStatus = "completed"
	BookingMissed    BookingStatus = "missed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is a volunteer's claim on one shift slot. ScheduleName and
// ShiftEnd are captured at commit time so schedule edits or deletion never
// rewrite an existing booking.
type Booking struct {
	BookingID    string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"booking_id"`
	UserID       string     `gorm:"type:uuid;not null"                             json:"user_id"`
	ScheduleID   string     `gorm:"type:uuid;not null"                             json:"schedule_id"`
	ScheduleName string     `gorm:"type:varchar(120);not null"                     json:"schedule_name"`
	ShiftStart   time.Time  `gorm:"not null"                                       json:"shift_start"`
	ShiftEnd     time.Time  `gorm:"not null"                                       json:"shift_end"`
	Seat         int        `gorm:"not null;default:0"                             json:"seat"`
	BuddyUserID  *string    `gorm:"type:uuid"                                      json:"buddy_user_id,omitempty"`
	BuddyName    *string    `gorm:"type:varchar(120)"                              json:"buddy_name,omitempty"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	LateCheckIn  bool       `gorm:"not null;default:false"                         json:"late_check_in"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy  *string    `gorm:"type:uuid"                                      json:"cancelled_by,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

func (Booking) TableName() string { return "bookings" }

// IsCancelled reports whether the booking was cancelled.
func (b *Booking) IsCancelled() bool { return b.CancelledAt != nil }

// Status derives the lifecycle state at the given instant.
//
//	booked → checked_in → completed   (first report filed)
//	booked → missed                   (shift ended, never checked in)
//	booked | checked_in → cancelled
//
// hasReport is supplied by the caller because report existence lives in a
// different table.
func (b *Booking) Status(now time.Time, hasReport bool) BookingStatus {
	switch {
	case b.IsCancelled():
		return BookingCancelled
	case hasReport:
		return BookingCompleted
	case b.CheckedInAt != nil:
		return BookingCheckedIn
	case now.After(b.ShiftEnd):
		return BookingMissed
	default:
		return BookingBooked
	}
}
