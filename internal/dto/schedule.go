package dto

import "time"

// ── schedule requests ──

// CreateScheduleRequest defines a recurring patrol pattern.
type CreateScheduleRequest struct {
	Name            string     `json:"name"             binding:"required,min=2,max=120"`
	CronExpression  string     `json:"cron_expression"  binding:"required"`
	DurationMinutes int        `json:"duration_minutes" binding:"required"`
	ValidFrom       *time.Time `json:"valid_from"`
	ValidTo         *time.Time `json:"valid_to"`
	Timezone        string     `json:"timezone"         binding:"required"`
	Capacity        int        `json:"capacity"         binding:"omitempty,min=1"`
}

// UpdateScheduleRequest edits a schedule. Edits never rewrite existing
// bookings' captured shift boundaries.
type UpdateScheduleRequest struct {
	Name            *string    `json:"name"             binding:"omitempty,min=2,max=120"`
	CronExpression  *string    `json:"cron_expression"`
	DurationMinutes *int       `json:"duration_minutes"`
	ValidFrom       *time.Time `json:"valid_from"`
	ValidTo         *time.Time `json:"valid_to"`
	Timezone        *string    `json:"timezone"`
	Capacity        *int       `json:"capacity"         binding:"omitempty,min=1"`
}

// ── schedule responses ──

// ScheduleResponse is one recurring pattern.
type ScheduleResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	CronExpression  string     `json:"cron_expression"`
	DurationMinutes int        `json:"duration_minutes"`
	ValidFrom       *time.Time `json:"valid_from,omitempty"`
	ValidTo         *time.Time `json:"valid_to,omitempty"`
	Timezone        string     `json:"timezone"`
	Capacity        int        `json:"capacity"`
	CreatedAt       string     `json:"created_at"`
	UpdatedAt       string     `json:"updated_at"`
}
