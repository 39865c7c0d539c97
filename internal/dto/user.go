package dto

// ── user requests ──

// CreateUserRequest creates a volunteer or admin account (admin only).
type CreateUserRequest struct {
	Name     string  `json:"name"     binding:"required,min=2,max=120"`
	Email    string  `json:"email"    binding:"required,email"`
	Phone    *string `json:"phone"    binding:"omitempty,max=32"`
	Password string  `json:"password" binding:"required,min=8"`
	Role     string  `json:"role"     binding:"omitempty,oneof=volunteer admin"`
}

// ── user responses ──

// UserResponse is the sanitized user view.
type UserResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
	Role  string  `json:"role"`
}

// ProfileResponse is GET /users/me: the user plus ledger-derived stats.
type ProfileResponse struct {
	UserResponse
	TotalPoints     int                   `json:"total_points"`
	CompletedShifts int                   `json:"completed_shifts"`
	Achievements    []AchievementResponse `json:"achievements"`
}
