package synthesis

import (
	"testing"
	"time"

	"github.com/odvcencio/ember/pkg/analytics"
	"github.com/odvcencio/ember/pkg/signal"
)

func TestAssemble_EmptyBundleNewUser(t *testing.T) {
	now := time.Now()
	a := NewAssembler(analytics.NewMoodAnalyzer())

	ctx := a.Assemble(&signal.Bundle{}, now)

	if ctx.Archetype != ArchetypeExplorer {
		t.Errorf("archetype = %v, want %v", ctx.Archetype, ArchetypeExplorer)
	}
	if ctx.Trust != TrustNew {
		t.Errorf("trust = %v, want %v", ctx.Trust, TrustNew)
	}
	if ctx.Tone != ToneWarm {
		t.Errorf("tone = %v, want %v", ctx.Tone, ToneWarm)
	}
	if len(ctx.StressSignals) != 0 {
		t.Errorf("stress signals = %v, want empty", ctx.StressSignals)
	}
	if ctx.Engagement != EngagementNew {
		t.Errorf("engagement = %v, want %v", ctx.Engagement, EngagementNew)
	}
	if ctx.DaysSinceFirstUse != 1 {
		t.Errorf("days since first use = %d, want 1", ctx.DaysSinceFirstUse)
	}
	if ctx.FirstWeekStage == nil || *ctx.FirstWeekStage != StageDay1FirstOpen {
		t.Errorf("first week stage = %v, want day 1 first open", ctx.FirstWeekStage)
	}
}

func TestAssemble_ToneReadsStressOutput(t *testing.T) {
	now := time.Now()
	a := NewAssembler(analytics.NewMoodAnalyzer())

	bundle := &signal.Bundle{
		FirstUseAt: now.AddDate(0, 0, -30),
		Journal: []signal.Entry{
			{Text: "so overwhelmed, too much at work, drowning", Mood: "overwhelmed", WordCount: 8, CreatedAt: now},
			{Text: "still too much to do, totally overwhelmed lol", Mood: "stressed", WordCount: 8, CreatedAt: now.AddDate(0, 0, -1)},
		},
	}

	ctx := a.Assemble(bundle, now)

	if len(ctx.StressSignals) == 0 {
		t.Fatal("expected stress signals")
	}
	// Stress overrides the playful keyword in the same text.
	if ctx.Tone != ToneGentle {
		t.Errorf("tone = %v, want %v when stressed", ctx.Tone, ToneGentle)
	}
}

func TestAssemble_GraduatedStageIsNil(t *testing.T) {
	now := time.Now()
	a := NewAssembler(analytics.NewMoodAnalyzer())

	bundle := &signal.Bundle{FirstUseAt: now.AddDate(0, 0, -30)}
	ctx := a.Assemble(bundle, now)

	if ctx.FirstWeekStage != nil {
		t.Errorf("first week stage = %v, want nil once graduated", *ctx.FirstWeekStage)
	}
}

func TestAssemble_CarriesProfileAndTemporal(t *testing.T) {
	now := time.Date(2026, time.July, 4, 9, 30, 0, 0, time.UTC) // a Saturday
	a := NewAssembler(analytics.NewMoodAnalyzer())

	bundle := &signal.Bundle{
		Profile:    &signal.Profile{DisplayName: "Ada"},
		FirstUseAt: now.AddDate(0, 0, -2),
	}
	ctx := a.Assemble(bundle, now)

	if ctx.DisplayName != "Ada" {
		t.Errorf("display name = %q, want Ada", ctx.DisplayName)
	}
	if ctx.Temporal.TimeOfDay != TimeMorning {
		t.Errorf("time of day = %v, want morning", ctx.Temporal.TimeOfDay)
	}
	if !ctx.Temporal.IsWeekend {
		t.Error("July 4 2026 is a Saturday; weekend flag should be set")
	}
	if ctx.Temporal.Season != SeasonSummer {
		t.Errorf("season = %v, want summer", ctx.Temporal.Season)
	}
}

func TestAssemble_DominantMoodFromAnalytics(t *testing.T) {
	now := time.Now()
	a := NewAssembler(analytics.NewMoodAnalyzer())

	bundle := &signal.Bundle{
		FirstUseAt: now.AddDate(0, 0, -3),
		Journal: []signal.Entry{
			{Mood: "calm", CreatedAt: now},
			{Mood: "calm", CreatedAt: now.Add(-time.Hour)},
			{Mood: "sad", CreatedAt: now.Add(-2 * time.Hour)},
		},
	}
	ctx := a.Assemble(bundle, now)

	if ctx.DominantMood != "calm" {
		t.Errorf("dominant mood = %q, want calm", ctx.DominantMood)
	}
}
