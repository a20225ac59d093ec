package payouts

import (
	"time"

	"github.com/mealora/mealora-backend/pkg/enums"
)

// NextPayoutDate returns the first disbursement instant strictly after the
// given time for the schedule, always at midnight UTC. Manual schedules
// have no next date and return nil.
//
// AnchorDay is the weekday (0=Sunday) for weekly schedules and the day of
// month for monthly ones; monthly anchors past the end of a month clamp to
// its last day.
func NextPayoutDate(interval enums.PayoutInterval, anchorDay int, after time.Time) *time.Time {
	after = after.UTC()

	switch interval {
	case enums.PayoutIntervalDaily:
		next := midnight(after).AddDate(0, 0, 1)
		return &next

	case enums.PayoutIntervalWeekly:
		next := midnight(after).AddDate(0, 0, 1)
		for int(next.Weekday()) != normalizeWeekday(anchorDay) {
			next = next.AddDate(0, 0, 1)
		}
		return &next

	case enums.PayoutIntervalMonthly:
		next := monthlyAnchor(after.Year(), after.Month(), anchorDay)
		if !next.After(after) {
			year, month := after.Year(), after.Month()+1
			next = monthlyAnchor(year, month, anchorDay)
		}
		return &next

	default:
		return nil
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func normalizeWeekday(day int) int {
	if day < 0 || day > 6 {
		return 1 // Monday
	}
	return day
}

func monthlyAnchor(year int, month time.Month, day int) time.Time {
	if day < 1 {
		day = 1
	}
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
