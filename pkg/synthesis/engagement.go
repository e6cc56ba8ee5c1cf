package synthesis

import (
	"time"

	"github.com/odvcencio/ember/pkg/signal"
)

// Engagement cadence cutoffs over entries per day in the last two weeks.
const (
	engagementWindowDays = 14
	dailyPerDay          = 0.8
	regularPerDay        = 0.4
	sporadicPerDay       = 0.15
)

// CalculateEngagement buckets the user's journaling cadence.
func CalculateEngagement(bundle *signal.Bundle, now time.Time) EngagementLevel {
	if bundle.DaysSinceFirstUse(now) <= explorerMaxDays {
		return EngagementNew
	}

	daysSinceLastEntry := bundle.DaysSinceLastEntry(now)
	if daysSinceLastEntry > returningAbsenceDays || daysSinceLastEntry < 0 {
		return EngagementReturning
	}

	cutoff := now.AddDate(0, 0, -engagementWindowDays)
	recent := 0
	for _, e := range bundle.Journal {
		if e.CreatedAt.After(cutoff) {
			recent++
		}
	}

	perDay := float64(recent) / float64(engagementWindowDays)
	switch {
	case perDay >= dailyPerDay:
		return EngagementDaily
	case perDay >= regularPerDay:
		return EngagementRegular
	case perDay >= sporadicPerDay:
		return EngagementSporadic
	default:
		return EngagementChurning
	}
}
