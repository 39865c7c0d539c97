package dto

// ── points responses ──

// PointsEntryResponse is one ledger row.
type PointsEntryResponse struct {
	ID            string  `json:"id"`
	BookingID     *string `json:"booking_id,omitempty"`
	PointsAwarded int     `json:"points_awarded"`
	Reason        string  `json:"reason"`
	Multiplier    int     `json:"multiplier"`
	CreatedAt     string  `json:"created_at"`
}

// PointsSummaryResponse is the ledger reduction for one user.
type PointsSummaryResponse struct {
	UserID          string `json:"user_id"`
	TotalPoints     int    `json:"total_points"`
	CompletedShifts int    `json:"completed_shifts"`
}

// AchievementResponse is one badge with its computed unlock state.
type AchievementResponse struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Criteria    string `json:"criteria"`
	Threshold   int    `json:"threshold"`
	Unlocked    bool   `json:"unlocked"`
}

// LeaderboardEntryResponse is one ranked user.
type LeaderboardEntryResponse struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Total  int    `json:"total"`
}
