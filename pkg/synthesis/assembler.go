package synthesis

import (
	"time"

	"github.com/odvcencio/ember/pkg/analytics"
	"github.com/odvcencio/ember/pkg/signal"
)

// moodSummaryWindowDays is the analytics window the assembler requests.
const moodSummaryWindowDays = 14

// MoodSummarizer is the analytics collaborator the assembler delegates
// mood frequency and streak questions to.
type MoodSummarizer interface {
	Summarize(entries []signal.Entry, windowDays int, now time.Time) analytics.MoodSummary
}

// Assembler runs the classifier suite in its fixed order and produces one
// immutable Context. Later classifiers read earlier outputs (tone reads the
// stress signals), so the order is load-bearing.
type Assembler struct {
	analyzer   MoodSummarizer
	thresholds Thresholds
}

// NewAssembler creates an assembler with production thresholds.
func NewAssembler(analyzer MoodSummarizer) *Assembler {
	return &Assembler{
		analyzer:   analyzer,
		thresholds: DefaultThresholds(),
	}
}

// SetThresholds overrides the classifier constants.
func (a *Assembler) SetThresholds(th Thresholds) {
	a.thresholds = th
}

// Assemble synthesizes the canonical context from one signal bundle.
// Partial contexts are never exposed: the Context is returned complete or
// not at all.
func (a *Assembler) Assemble(bundle *signal.Bundle, now time.Time) *Context {
	th := a.thresholds

	temporal := TemporalFor(now, bundle.FirstUseAt)

	archetype := ClassifyArchetype(bundle, now, th)

	summary := a.analyzer.Summarize(bundle.Journal, moodSummaryWindowDays, now)
	emotional := InferEmotionalState(bundle, summary, th)

	stress := DetectStressSignals(bundle.Journal)

	trust := CalculateTrustLevel(bundle)

	tone := InferTone(bundle, stress)

	engagement := CalculateEngagement(bundle, now)

	themes := ExtractThemes(bundle.Journal)
	challenges := ExtractChallenges(bundle.Journal)
	growth := DetectGrowthAreas(bundle.Journal, themes)
	wins := DetectWins(bundle)

	var stage *FirstWeekStage
	if s := CalculateFirstWeekStage(bundle, now); s != StageGraduated {
		stage = &s
	}

	displayName := ""
	if bundle.Profile != nil {
		displayName = bundle.Profile.DisplayName
	}

	return &Context{
		DisplayName:         displayName,
		DaysSinceFirstUse:   bundle.DaysSinceFirstUse(now),
		Archetype:           archetype,
		MoodTrend:           emotional.Trend,
		DominantMood:        emotional.DominantMood,
		Energy:              emotional.Energy,
		StressSignals:       stress,
		Engagement:          engagement,
		Trust:               trust,
		Tone:                tone,
		RecentThemes:        themes,
		RecurringChallenges: challenges,
		GrowthAreas:         growth,
		RecentWins:          wins,
		FirstWeekStage:      stage,
		Temporal:            temporal,
	}
}
