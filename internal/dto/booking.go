package dto

import "time"

// ── slot responses ──

// OccupantBrief identifies who holds a slot seat.
type OccupantBrief struct {
	UserID    string  `json:"user_id"`
	Name      string  `json:"name"`
	BuddyName *string `json:"buddy_name,omitempty"`
}

// AnnotatedSlotResponse is one derived shift slot merged with its bookings.
type AnnotatedSlotResponse struct {
	ScheduleID   string          `json:"schedule_id"`
	ScheduleName string          `json:"schedule_name"`
	StartTime    time.Time       `json:"start_time"`
	EndTime      time.Time       `json:"end_time"`
	Capacity     int             `json:"capacity"`
	Occupancy    int             `json:"occupancy"`
	IsBooked     bool            `json:"is_booked"` // occupancy >= capacity
	Occupants    []OccupantBrief `json:"occupants,omitempty"`
}

// ── booking requests ──

// CommitBookingRequest claims a slot.
type CommitBookingRequest struct {
	ScheduleID  string    `json:"schedule_id" binding:"required,uuid"`
	StartTime   time.Time `json:"start_time"  binding:"required"`
	BuddyUserID *string   `json:"buddy_user_id" binding:"omitempty,uuid"`
	BuddyName   *string   `json:"buddy_name"    binding:"omitempty,max=120"`
}

// AssignBookingRequest is the admin variant: books a slot for another user,
// bypassing the cutoff checks.
type AssignBookingRequest struct {
	CommitBookingRequest
	UserID string `json:"user_id" binding:"required,uuid"`
}

// CheckInRequest marks the start of a booked shift. At defaults to now when
// omitted.
type CheckInRequest struct {
	At *time.Time `json:"at"`
}

// ── booking responses ──

// BookingResponse is one booking with its derived lifecycle state.
type BookingResponse struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	ScheduleID   string     `json:"schedule_id"`
	ScheduleName string     `json:"schedule_name"`
	ShiftStart   time.Time  `json:"shift_start"`
	ShiftEnd     time.Time  `json:"shift_end"`
	BuddyUserID  *string    `json:"buddy_user_id,omitempty"`
	BuddyName    *string    `json:"buddy_name,omitempty"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	LateCheckIn  bool       `json:"late_check_in"`
	Status       string     `json:"status"`
	CreatedAt    string     `json:"created_at"`
}
