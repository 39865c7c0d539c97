package service

import (
	"time"

	"nightwatch/backend/internal/model"
)

// Fixed point values. The historical migrator replays these same rules, so
// they must stay pure functions of booking/report data.
const (
	pointsShiftCheckIn    = 10
	pointsEarlyCheckIn    = 3
	pointsWeekendBonus    = 5
	pointsLateNightBonus  = 3
	pointsShiftCompletion = 15
	pointsReportFiled     = 5
	pointsLevel2Report    = 10

	earlyCheckInMargin = 15 * time.Minute
	lateNightFromHour  = 22
	lateNightToHour    = 5
)

// Award is one computed rule outcome, prior to ledger insertion.
type Award struct {
	Reason model.PointReason
	Points int
}

// CheckInAwards computes the check-in awards for a booking. localStart must
// be the shift start converted to the schedule's timezone: the weekend and
// late-night rules judge the local wall clock, not UTC.
func CheckInAwards(localStart, checkedInAt time.Time) []Award {
	awards := []Award{{Reason: model.ReasonShiftCheckIn, Points: pointsShiftCheckIn}}

	if localStart.Sub(checkedInAt) > earlyCheckInMargin {
		awards = append(awards, Award{Reason: model.ReasonEarlyCheckIn, Points: pointsEarlyCheckIn})
	}
	if wd := localStart.Weekday(); wd == time.Saturday || wd == time.Sunday {
		awards = append(awards, Award{Reason: model.ReasonWeekendBonus, Points: pointsWeekendBonus})
	}
	if h := localStart.Hour(); h >= lateNightFromHour || h <= lateNightToHour {
		awards = append(awards, Award{Reason: model.ReasonLateNightBonus, Points: pointsLateNightBonus})
	}

	return awards
}

// ReportAwards computes the report awards for a booking given the highest
// severity filed against it. Completion and report_filed are one-shot per
// booking; the ledger's (booking_id, reason) uniqueness makes re-computing
// them on every report harmless.
func ReportAwards(maxSeverity int) []Award {
	awards := []Award{
		{Reason: model.ReasonShiftCompletion, Points: pointsShiftCompletion},
		{Reason: model.ReasonReportFiled, Points: pointsReportFiled},
	}
	if maxSeverity >= model.SeverityEmergency {
		awards = append(awards, Award{Reason: model.ReasonLevel2Report, Points: pointsLevel2Report})
	}
	return awards
}
