package synthesis

import (
	"time"

	"github.com/odvcencio/ember/pkg/signal"
)

// firstWeekDays is the length of the guided first-week progression.
const firstWeekDays = 7

// CalculateFirstWeekStage walks the first-week progression from account
// age, entry count, and whether introductory content has been shown. The
// stage only moves forward as the calendar advances; past day seven it is
// permanently graduated.
func CalculateFirstWeekStage(bundle *signal.Bundle, now time.Time) FirstWeekStage {
	day := bundle.DaysSinceFirstUse(now)
	if day > firstWeekDays {
		return StageGraduated
	}

	entryCount := bundle.EntryCount()
	introShown := !bundle.Preferences.LastIntroShownAt.IsZero()

	switch day {
	case 1:
		switch {
		case entryCount == 0:
			return StageDay1FirstOpen
		case introShown:
			return StageDay1FirstWisdom
		default:
			return StageDay1FirstEntry
		}
	case 2:
		if entryCount >= 2 {
			return StageDay2SecondEntry
		}
		return StageDay2Returning
	case 3:
		return StageDay3Exploring
	case 4:
		return StageDay4Deepening
	case 5:
		return StageDay5BuildingHabit
	case 6:
		return StageDay6AlmostThere
	default:
		return StageDay7Celebration
	}
}

// stageOrder maps each stage to its position in the progression, used to
// assert monotonicity.
var stageOrder = map[FirstWeekStage]int{
	StageDay1FirstOpen:     0,
	StageDay1FirstEntry:    1,
	StageDay1FirstWisdom:   2,
	StageDay2Returning:     3,
	StageDay2SecondEntry:   4,
	StageDay3Exploring:     5,
	StageDay4Deepening:     6,
	StageDay5BuildingHabit: 7,
	StageDay6AlmostThere:   8,
	StageDay7Celebration:   9,
	StageGraduated:         10,
}

// StageAtLeast reports whether a is at or past b in the progression.
func StageAtLeast(a, b FirstWeekStage) bool {
	return stageOrder[a] >= stageOrder[b]
}
