package synthesis

import "time"

// awarenessDay is World Mental Health Day.
const (
	awarenessMonth = time.October
	awarenessDay   = 10
)

// TemporalFor derives the temporal context for the given moment. firstUseAt
// feeds special-day detection and may be zero.
func TemporalFor(now time.Time, firstUseAt time.Time) TemporalContext {
	weekday := now.Weekday()
	return TemporalContext{
		TimeOfDay:  timeOfDay(now.Hour()),
		DayOfWeek:  weekday,
		IsWeekend:  weekday == time.Saturday || weekday == time.Sunday,
		Season:     seasonOf(now.Month()),
		SpecialDay: specialDayFor(now, firstUseAt),
	}
}

func timeOfDay(hour int) TimeOfDay {
	switch {
	case hour >= 5 && hour < 12:
		return TimeMorning
	case hour >= 12 && hour < 17:
		return TimeAfternoon
	case hour >= 17 && hour < 22:
		return TimeEvening
	default:
		return TimeNight
	}
}

func seasonOf(month time.Month) Season {
	switch month {
	case time.December, time.January, time.February:
		return SeasonWinter
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	default:
		return SeasonAutumn
	}
}

// specialDayFor checks, in order: first-use anniversary, the first week of
// January, and World Mental Health Day. Returns nil on an ordinary day.
func specialDayFor(now time.Time, firstUseAt time.Time) *SpecialDay {
	if !firstUseAt.IsZero() &&
		now.Month() == firstUseAt.Month() &&
		now.Day() == firstUseAt.Day() &&
		now.Year() != firstUseAt.Year() {
		return &SpecialDay{
			Kind:  SpecialAnniversary,
			Years: now.Year() - firstUseAt.Year(),
		}
	}

	if now.Month() == time.January && now.Day() <= 7 {
		return &SpecialDay{Kind: SpecialNewYear}
	}

	if now.Month() == awarenessMonth && now.Day() == awarenessDay {
		return &SpecialDay{Kind: SpecialAwarenessDay}
	}

	return nil
}
