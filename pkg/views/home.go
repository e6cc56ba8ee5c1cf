package views

import (
	"time"

	"github.com/odvcencio/ember/pkg/synthesis"
)

// Memory-surfacing probabilities.
const (
	memoryBaseProbability       = 0.3
	memoryStrugglingProbability = 0.1
	memorySpecialDayProbability = 0.8
)

// Suggested next actions, priority-ordered in ProjectHome.
const (
	ActionBreathingExercise = "breathing_exercise"
	ActionWriteEntry        = "write_entry"
	ActionKeepStreak        = "keep_streak"
	ActionCelebrateWin      = "celebrate_win"
	ActionBrowseMemories    = "browse_memories"
)

// Feature-discovery suggestions; at most one per view.
const (
	DiscoverTherapySession = "therapy_session"
	DiscoverQuickCheckIn   = "quick_checkin"
)

// DayTheme is the fixed per-weekday look of the home screen.
type DayTheme struct {
	Name        string
	Color       string
	PromptStyle string
}

// dayThemes is indexed by time.Weekday (Sunday first).
var dayThemes = [7]DayTheme{
	{Name: "restful sunday", Color: "#8FA7C5", PromptStyle: "reflective"},
	{Name: "fresh monday", Color: "#7FB069", PromptStyle: "intention"},
	{Name: "steady tuesday", Color: "#E0A458", PromptStyle: "focus"},
	{Name: "open wednesday", Color: "#A690A4", PromptStyle: "curiosity"},
	{Name: "warm thursday", Color: "#D4876A", PromptStyle: "gratitude"},
	{Name: "bright friday", Color: "#E8C547", PromptStyle: "celebration"},
	{Name: "slow saturday", Color: "#74A8A0", PromptStyle: "ease"},
}

// HomeExtras is the extra data the home projector reads. Rand must return
// values in [0, 1); inject a fixed source in tests.
type HomeExtras struct {
	WroteToday     bool
	CheckedInToday bool
	SessionCount   int
	JournalStreak  int
	Rand           func() float64
}

// HomeView personalizes the home screen.
type HomeView struct {
	DisplayName      string
	SurfaceMemory    bool
	SuggestedAction  string
	FeatureDiscovery string
	DayTheme         DayTheme
}

// ProjectHome builds the home-personalization view.
func ProjectHome(ctx *synthesis.Context, extras HomeExtras) HomeView {
	return HomeView{
		DisplayName:      ctx.DisplayName,
		SurfaceMemory:    surfaceMemory(ctx, extras.Rand),
		SuggestedAction:  suggestedAction(ctx, extras),
		FeatureDiscovery: featureDiscovery(ctx, extras),
		DayTheme:         dayThemes[ctx.Temporal.DayOfWeek],
	}
}

// MemoryProbability returns the chance of surfacing a memory for the given
// context: lowered while struggling, raised on special days.
func MemoryProbability(ctx *synthesis.Context) float64 {
	switch {
	case ctx.Archetype == synthesis.ArchetypeStruggling:
		return memoryStrugglingProbability
	case ctx.Temporal.SpecialDay != nil:
		return memorySpecialDayProbability
	default:
		return memoryBaseProbability
	}
}

func surfaceMemory(ctx *synthesis.Context, random func() float64) bool {
	if random == nil {
		return false
	}
	return random() < MemoryProbability(ctx)
}

// suggestedAction walks a fixed priority order and returns the first rule
// that fires.
func suggestedAction(ctx *synthesis.Context, extras HomeExtras) string {
	if ctx.Stressed() {
		return ActionBreathingExercise
	}
	if !extras.WroteToday {
		return ActionWriteEntry
	}
	if extras.JournalStreak > 0 && !extras.CheckedInToday {
		return ActionKeepStreak
	}
	if len(ctx.RecentWins) > 0 {
		return ActionCelebrateWin
	}
	return ActionBrowseMemories
}

// featureDiscovery suggests at most one unexplored feature. First-week
// users are left alone; the guided progression covers them.
func featureDiscovery(ctx *synthesis.Context, extras HomeExtras) string {
	if ctx.FirstWeekStage != nil {
		return ""
	}
	if extras.SessionCount == 0 && ctx.Trust != synthesis.TrustNew {
		return DiscoverTherapySession
	}
	if !extras.CheckedInToday && extras.SessionCount > 0 {
		return DiscoverQuickCheckIn
	}
	return ""
}

// ThemeForDay exposes the fixed weekday theme table.
func ThemeForDay(day time.Weekday) DayTheme {
	return dayThemes[day]
}
