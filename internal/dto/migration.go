package dto

// ── backfill requests ──

// BackfillRequest controls the historical points backfill.
type BackfillRequest struct {
	DryRun bool `json:"dry_run"`
}

// ── backfill responses ──

// BackfillSummaryResponse reports one backfill pass. A dry run and a real
// run over the same data produce the same numbers.
type BackfillSummaryResponse struct {
	DryRun          bool `json:"dry_run"`
	BookingsScanned int  `json:"bookings_scanned"`
	BookingsSkipped int  `json:"bookings_skipped"` // already credited or nothing to award
	BookingsFailed  int  `json:"bookings_failed"`  // logged and skipped, batch continued
	EntriesWritten  int  `json:"entries_written"`
	PointsTotal     int  `json:"points_total"`
	UsersAffected   int  `json:"users_affected"`
}
