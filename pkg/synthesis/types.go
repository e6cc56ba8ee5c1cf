// Package synthesis builds one canonical user model from raw behavioral
// signals and keeps it fresh behind a bounded-staleness cache. Classifiers
// here are deliberately simple, explainable rule sets; nothing statistical.
package synthesis

import "time"

// Archetype is the coarse behavioral classification of a user.
type Archetype string

const (
	ArchetypeExplorer   Archetype = "explorer"
	ArchetypeReturning  Archetype = "returning"
	ArchetypeStruggling Archetype = "struggling"
	ArchetypeThriving   Archetype = "thriving"
	ArchetypeConsistent Archetype = "consistent"
	ArchetypeSporadic   Archetype = "sporadic"
)

// MoodTrend describes the direction of recent mood movement.
type MoodTrend string

const (
	TrendImproving MoodTrend = "improving"
	TrendDeclining MoodTrend = "declining"
	TrendVolatile  MoodTrend = "volatile"
	TrendStable    MoodTrend = "stable"
)

// EnergyLevel is derived from recent writing volume.
type EnergyLevel string

const (
	EnergyLow    EnergyLevel = "low"
	EnergyMedium EnergyLevel = "medium"
	EnergyHigh   EnergyLevel = "high"
)

// EngagementLevel describes how actively the user shows up.
type EngagementLevel string

const (
	EngagementNew       EngagementLevel = "new"
	EngagementDaily     EngagementLevel = "daily"
	EngagementRegular   EngagementLevel = "regular"
	EngagementSporadic  EngagementLevel = "sporadic"
	EngagementChurning  EngagementLevel = "churning"
	EngagementReturning EngagementLevel = "returning"
)

// TrustLevel is the inferred depth of user disclosure, used to gate
// communication style.
type TrustLevel string

const (
	TrustNew         TrustLevel = "new"
	TrustBuilding    TrustLevel = "building"
	TrustEstablished TrustLevel = "established"
	TrustDeep        TrustLevel = "deep"
)

// Tone is the communication tone downstream features should adopt.
type Tone string

const (
	ToneWarm    Tone = "warm"
	TonePlayful Tone = "playful"
	ToneDirect  Tone = "direct"
	ToneGentle  Tone = "gentle"
)

// StressCategory names one class of stress indicator.
type StressCategory string

const (
	StressNegativeLanguage StressCategory = "negative_language"
	StressSleepIssues      StressCategory = "sleep_issues"
	StressOverwhelm        StressCategory = "overwhelm"
	StressExternalPressure StressCategory = "external_pressure"
	StressAnxietyMarkers   StressCategory = "anxiety_markers"
	StressLowSelfWorth     StressCategory = "low_self_worth"
)

// StressSignal is one detected stress indicator with its confidence.
// Confidence is always within [0.3, 1.0].
type StressSignal struct {
	Category   StressCategory
	Confidence float64
	Matches    int
}

// TimeOfDay buckets the clock into coarse periods.
type TimeOfDay string

const (
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
	TimeNight     TimeOfDay = "night"
)

// Season is the meteorological season (northern hemisphere).
type Season string

const (
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
)

// SpecialDayKind names a recognized special day.
type SpecialDayKind string

const (
	SpecialAnniversary  SpecialDayKind = "anniversary"
	SpecialNewYear      SpecialDayKind = "new_year"
	SpecialAwarenessDay SpecialDayKind = "awareness_day"
)

// SpecialDay marks a date worth acknowledging. Years is only set for
// anniversaries.
type SpecialDay struct {
	Kind  SpecialDayKind
	Years int
}

// TemporalContext captures the when of the synthesis cycle. It is the only
// classifier output that depends on wall-clock time.
type TemporalContext struct {
	TimeOfDay  TimeOfDay
	DayOfWeek  time.Weekday
	IsWeekend  bool
	Season     Season
	SpecialDay *SpecialDay
}

// FirstWeekStage tracks the guided first-week progression.
type FirstWeekStage string

const (
	StageDay1FirstOpen     FirstWeekStage = "day_1_first_open"
	StageDay1FirstEntry    FirstWeekStage = "day_1_first_entry"
	StageDay1FirstWisdom   FirstWeekStage = "day_1_first_wisdom"
	StageDay2Returning     FirstWeekStage = "day_2_returning"
	StageDay2SecondEntry   FirstWeekStage = "day_2_second_entry"
	StageDay3Exploring     FirstWeekStage = "day_3_exploring"
	StageDay4Deepening     FirstWeekStage = "day_4_deepening"
	StageDay5BuildingHabit FirstWeekStage = "day_5_building_habit"
	StageDay6AlmostThere   FirstWeekStage = "day_6_almost_there"
	StageDay7Celebration   FirstWeekStage = "day_7_celebration"
	StageGraduated         FirstWeekStage = "graduated"
)

// GrowthArea is a theme the user is actively working through, with
// illustrative evidence.
type GrowthArea struct {
	Theme     string
	Evidence  string
	FirstSeen time.Time
	LastSeen  time.Time
}

// WinKind names the class of a recent win.
type WinKind string

const (
	WinFirstEntry      WinKind = "first_entry"
	WinStreakMilestone WinKind = "streak_milestone"
)

// Win is a recent achievement worth celebrating, most salient first.
type Win struct {
	Kind        WinKind
	Track       string // "journal" or "checkin" for streak wins
	Milestone   int
	Description string
}

// Context is the single synthesized, immutable user model. A Context is
// never mutated after assembly; refresh produces a brand-new value.
type Context struct {
	DisplayName         string
	DaysSinceFirstUse   int
	Archetype           Archetype
	MoodTrend           MoodTrend
	DominantMood        string // empty when unknown
	Energy              EnergyLevel
	StressSignals       []StressSignal // at most 3
	Engagement          EngagementLevel
	Trust               TrustLevel
	Tone                Tone
	RecentThemes        []string        // at most 5
	RecurringChallenges []string        // at most 3
	GrowthAreas         []GrowthArea    // at most 2
	RecentWins          []Win           // at most 3
	FirstWeekStage      *FirstWeekStage // nil once graduated
	Temporal            TemporalContext
}

// Stressed reports whether any stress signal was detected.
func (c *Context) Stressed() bool {
	return c != nil && len(c.StressSignals) > 0
}

// EmptyContext is the neutral default served on cold start, before the
// first synthesis has completed.
func EmptyContext(displayName string, now time.Time) *Context {
	stage := StageDay1FirstOpen
	return &Context{
		DisplayName:       displayName,
		DaysSinceFirstUse: 1,
		Archetype:         ArchetypeExplorer,
		MoodTrend:         TrendStable,
		Energy:            EnergyMedium,
		Engagement:        EngagementNew,
		Trust:             TrustNew,
		Tone:              ToneWarm,
		FirstWeekStage:    &stage,
		Temporal:          TemporalFor(now, time.Time{}),
	}
}
