package synthesis

import (
	"testing"

	"github.com/odvcencio/ember/pkg/analytics"
	"github.com/odvcencio/ember/pkg/signal"
)

func TestInferEmotionalState_StableBelowThreeEntries(t *testing.T) {
	bundle := &signal.Bundle{Journal: moodEntries("sad", "sad")}
	summary := analytics.MoodSummary{MostCommonMood: "sad"}

	state := InferEmotionalState(bundle, summary, DefaultThresholds())
	if state.Trend != TrendStable {
		t.Errorf("trend = %v, want %v", state.Trend, TrendStable)
	}
	if state.DominantMood != "sad" {
		t.Errorf("dominant mood = %q, want sad", state.DominantMood)
	}
}

func TestInferEmotionalState_ImprovingOnPositiveStreak(t *testing.T) {
	// A positive streak wins even over a shape that would read as declining.
	bundle := &signal.Bundle{Journal: moodEntries("happy", "happy", "happy", "sad", "happy", "happy")}
	summary := analytics.MoodSummary{PositiveStreakLength: 3}

	state := InferEmotionalState(bundle, summary, DefaultThresholds())
	if state.Trend != TrendImproving {
		t.Errorf("trend = %v, want %v", state.Trend, TrendImproving)
	}
}

func TestInferEmotionalState_Declining(t *testing.T) {
	bundle := &signal.Bundle{Journal: moodEntries("sad", "sad", "okay", "happy", "happy", "happy")}
	summary := analytics.MoodSummary{}

	state := InferEmotionalState(bundle, summary, DefaultThresholds())
	if state.Trend != TrendDeclining {
		t.Errorf("trend = %v, want %v", state.Trend, TrendDeclining)
	}
}

func TestInferEmotionalState_Volatile(t *testing.T) {
	bundle := &signal.Bundle{Journal: moodEntries("happy", "sad", "happy", "sad", "happy")}
	summary := analytics.MoodSummary{}

	state := InferEmotionalState(bundle, summary, DefaultThresholds())
	if state.Trend != TrendVolatile {
		t.Errorf("trend = %v, want %v", state.Trend, TrendVolatile)
	}
}

func TestEnergyLevel(t *testing.T) {
	tests := []struct {
		name  string
		words int
		want  EnergyLevel
	}{
		{"low", 30, EnergyLow},
		{"medium low boundary", 50, EnergyMedium},
		{"medium", 120, EnergyMedium},
		{"medium high boundary", 200, EnergyMedium},
		{"high", 250, EnergyHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := make([]signal.Entry, 5)
			for i := range entries {
				entries[i] = signal.Entry{WordCount: tt.words}
			}
			bundle := &signal.Bundle{Journal: entries}
			state := InferEmotionalState(bundle, analytics.MoodSummary{}, DefaultThresholds())
			if state.Energy != tt.want {
				t.Errorf("energy = %v, want %v", state.Energy, tt.want)
			}
		})
	}
}

func TestEnergyLevel_UsesFiveMostRecent(t *testing.T) {
	entries := make([]signal.Entry, 5)
	for i := range entries {
		entries[i] = signal.Entry{WordCount: 300}
	}
	// Older short entries should not drag the average down.
	for i := 0; i < 10; i++ {
		entries = append(entries, signal.Entry{WordCount: 5})
	}
	bundle := &signal.Bundle{Journal: entries}

	state := InferEmotionalState(bundle, analytics.MoodSummary{}, DefaultThresholds())
	if state.Energy != EnergyHigh {
		t.Errorf("energy = %v, want %v", state.Energy, EnergyHigh)
	}
}
