package synthesis

import (
	"time"

	"github.com/odvcencio/ember/pkg/signal"
)

// Archetype cutoffs. First match wins; evaluated top-down.
const (
	explorerMaxDays      = 7
	returningAbsenceDays = 14
	archetypeMoodWindow  = 10
	thrivingCheckInMin   = 3
	consistentCheckInMin = 5
	consistentRecentDays = 2
)

// ClassifyArchetype assigns the user's behavioral archetype from account
// age, recency, and recent mood balance.
func ClassifyArchetype(bundle *signal.Bundle, now time.Time, th Thresholds) Archetype {
	daysSinceFirstUse := bundle.DaysSinceFirstUse(now)
	if daysSinceFirstUse <= explorerMaxDays {
		return ArchetypeExplorer
	}

	daysSinceLastEntry := bundle.DaysSinceLastEntry(now)
	if daysSinceLastEntry > returningAbsenceDays || daysSinceLastEntry < 0 {
		return ArchetypeReturning
	}

	negRatio, posRatio := moodRatios(bundle.Journal, archetypeMoodWindow)
	if negRatio > th.NegativeMoodRatio || decliningPattern(bundle.Journal, th) {
		return ArchetypeStruggling
	}

	checkInStreak := bundle.Streaks.CheckIn.Current
	if posRatio > th.PositiveMoodRatio && checkInStreak >= thrivingCheckInMin {
		return ArchetypeThriving
	}

	if checkInStreak >= consistentCheckInMin || daysSinceLastEntry <= consistentRecentDays {
		return ArchetypeConsistent
	}

	return ArchetypeSporadic
}
