package synthesis

import (
	"github.com/odvcencio/ember/pkg/analytics"
	"github.com/odvcencio/ember/pkg/signal"
)

// Energy cutoffs over the average word count of recent entries.
const (
	energyWordWindow = 5
	lowEnergyWords   = 50
	highEnergyWords  = 200
)

// trendMinEntries is the floor below which the trend is always stable.
const trendMinEntries = 3

// improvingStreakMin is the positive-mood streak that marks improvement.
const improvingStreakMin = 3

// EmotionalState bundles the mood-derived classifier outputs.
type EmotionalState struct {
	Trend        MoodTrend
	DominantMood string
	Energy       EnergyLevel
}

// InferEmotionalState derives trend, dominant mood, and energy. Mood
// frequency and streak questions are delegated to the analytics summary.
func InferEmotionalState(bundle *signal.Bundle, summary analytics.MoodSummary, th Thresholds) EmotionalState {
	state := EmotionalState{
		Trend:        TrendStable,
		DominantMood: summary.MostCommonMood,
		Energy:       energyLevel(bundle),
	}

	if len(bundle.Journal) < trendMinEntries {
		return state
	}

	switch {
	case summary.PositiveStreakLength >= improvingStreakMin:
		state.Trend = TrendImproving
	case decliningPattern(bundle.Journal, th):
		state.Trend = TrendDeclining
	case volatilePattern(bundle.Journal, th):
		state.Trend = TrendVolatile
	}

	return state
}

func energyLevel(bundle *signal.Bundle) EnergyLevel {
	avg := bundle.AverageWordCount(energyWordWindow)
	switch {
	case avg < lowEnergyWords:
		return EnergyLow
	case avg > highEnergyWords:
		return EnergyHigh
	default:
		return EnergyMedium
	}
}
