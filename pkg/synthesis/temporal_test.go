package synthesis

import (
	"testing"
	"time"
)

func TestTimeOfDay(t *testing.T) {
	tests := []struct {
		hour int
		want TimeOfDay
	}{
		{5, TimeMorning},
		{11, TimeMorning},
		{12, TimeAfternoon},
		{16, TimeAfternoon},
		{17, TimeEvening},
		{21, TimeEvening},
		{22, TimeNight},
		{3, TimeNight},
	}

	for _, tt := range tests {
		if got := timeOfDay(tt.hour); got != tt.want {
			t.Errorf("timeOfDay(%d) = %v, want %v", tt.hour, got, tt.want)
		}
	}
}

func TestSeasonOf(t *testing.T) {
	tests := []struct {
		month time.Month
		want  Season
	}{
		{time.January, SeasonWinter},
		{time.April, SeasonSpring},
		{time.July, SeasonSummer},
		{time.October, SeasonAutumn},
		{time.December, SeasonWinter},
	}

	for _, tt := range tests {
		if got := seasonOf(tt.month); got != tt.want {
			t.Errorf("seasonOf(%v) = %v, want %v", tt.month, got, tt.want)
		}
	}
}

func TestTemporalFor_Weekend(t *testing.T) {
	saturday := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
	tc := TemporalFor(saturday, time.Time{})
	if !tc.IsWeekend {
		t.Error("saturday should be a weekend")
	}

	wednesday := time.Date(2026, time.March, 11, 10, 0, 0, 0, time.UTC)
	tc = TemporalFor(wednesday, time.Time{})
	if tc.IsWeekend {
		t.Error("wednesday should not be a weekend")
	}
}

func TestSpecialDayFor_Anniversary(t *testing.T) {
	firstUse := time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, time.June, 15, 20, 0, 0, 0, time.UTC)

	day := specialDayFor(now, firstUse)
	if day == nil || day.Kind != SpecialAnniversary {
		t.Fatalf("special day = %v, want anniversary", day)
	}
	if day.Years != 2 {
		t.Errorf("years = %d, want 2", day.Years)
	}
}

func TestSpecialDayFor_NotAnniversaryOnFirstUseDayItself(t *testing.T) {
	firstUse := time.Date(2026, time.June, 15, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, time.June, 15, 20, 0, 0, 0, time.UTC)

	if day := specialDayFor(now, firstUse); day != nil {
		t.Errorf("special day = %v, want nil on the first-use day itself", day)
	}
}

func TestSpecialDayFor_NewYearWeek(t *testing.T) {
	now := time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC)
	day := specialDayFor(now, time.Time{})
	if day == nil || day.Kind != SpecialNewYear {
		t.Errorf("special day = %v, want new year", day)
	}

	now = time.Date(2026, time.January, 8, 8, 0, 0, 0, time.UTC)
	if day := specialDayFor(now, time.Time{}); day != nil {
		t.Errorf("special day = %v, want nil on January 8", day)
	}
}

func TestSpecialDayFor_AnniversaryBeatsNewYear(t *testing.T) {
	firstUse := time.Date(2025, time.January, 3, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, time.January, 3, 9, 0, 0, 0, time.UTC)

	day := specialDayFor(now, firstUse)
	if day == nil || day.Kind != SpecialAnniversary {
		t.Errorf("special day = %v, want anniversary to win the ordering", day)
	}
}

func TestSpecialDayFor_AwarenessDay(t *testing.T) {
	now := time.Date(2026, time.October, 10, 8, 0, 0, 0, time.UTC)
	day := specialDayFor(now, time.Time{})
	if day == nil || day.Kind != SpecialAwarenessDay {
		t.Errorf("special day = %v, want awareness day", day)
	}
}

func TestSpecialDayFor_OrdinaryDay(t *testing.T) {
	now := time.Date(2026, time.May, 20, 8, 0, 0, 0, time.UTC)
	if day := specialDayFor(now, time.Time{}); day != nil {
		t.Errorf("special day = %v, want nil", day)
	}
}
