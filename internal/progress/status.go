package progress

import (
	"time"

	"okrhub/api/internal/store"
)

const day = 24 * time.Hour

// Evaluate derives an OKR's health from its key-result deadlines, overall
// progress, and the recency of its last activity. The stored status field is
// only a hint; callers decorate every OKR they hand out with this result.
//
// The rules, in order:
//   - no key results: on-track (nothing to violate)
//   - earliest deadline passed while overall progress < 100%: off-track
//   - no update for 7+ days with a deadline at most 14 days out: at-risk
//   - no update for 30+ days: at-risk
//   - otherwise: on-track
//
// A passed deadline with progress at 100% deliberately does not force
// off-track; completed objectives stay governed by the recency rules.
func Evaluate(okr store.OKR, lastActivity, now time.Time) store.OKRStatus {
	if len(okr.KeyResults) == 0 {
		return store.StatusOnTrack
	}

	overall := Overall(okr.KeyResults)

	earliest := okr.KeyResults[0].EndDate
	for _, keyResult := range okr.KeyResults[1:] {
		if keyResult.EndDate.Before(earliest) {
			earliest = keyResult.EndDate
		}
	}

	daysUntilDeadline := ceilDays(earliest.Sub(now))
	if daysUntilDeadline < 0 && overall < 100 {
		return store.StatusOffTrack
	}

	daysSinceUpdate := ceilDays(now.Sub(lastActivity))
	if daysSinceUpdate >= 7 && daysUntilDeadline >= 0 && daysUntilDeadline <= 14 {
		return store.StatusAtRisk
	}
	if daysSinceUpdate >= 30 {
		return store.StatusAtRisk
	}
	return store.StatusOnTrack
}

// LastActivity is the timestamp of the OKR's most recent check-in, or its
// own UpdatedAt when it has none. Check-ins are the sole input to the
// "recency of update" rules.
func LastActivity(okr store.OKR, checkIns []store.CheckIn) time.Time {
	last := time.Time{}
	for _, checkIn := range checkIns {
		if checkIn.OKRID == okr.ID && checkIn.CreatedAt.After(last) {
			last = checkIn.CreatedAt
		}
	}
	if last.IsZero() {
		return okr.UpdatedAt
	}
	return last
}

// DaysUntil counts whole days from now to a deadline, rounding partial days
// up. Negative once the deadline has passed.
func DaysUntil(deadline, now time.Time) int {
	return ceilDays(deadline.Sub(now))
}

func ceilDays(d time.Duration) int {
	days := d / day
	if d%day > 0 {
		days++
	}
	return int(days)
}
