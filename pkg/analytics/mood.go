// Package analytics provides mood analytics over journal entries. It is a
// standalone collaborator: the synthesis engine delegates mood frequency and
// streak questions here rather than re-deriving them inline.
package analytics

import (
	"time"

	"github.com/odvcencio/ember/pkg/signal"
)

// Mood valence vocabulary. Labels outside both sets are treated as neutral.
var positiveMoods = map[string]bool{
	"happy":    true,
	"grateful": true,
	"calm":     true,
	"excited":  true,
	"content":  true,
	"hopeful":  true,
	"proud":    true,
	"peaceful": true,
}

var negativeMoods = map[string]bool{
	"sad":         true,
	"anxious":     true,
	"angry":       true,
	"stressed":    true,
	"tired":       true,
	"overwhelmed": true,
	"lonely":      true,
	"frustrated":  true,
}

// IsPositive reports whether a mood label carries positive valence.
func IsPositive(mood string) bool {
	return positiveMoods[mood]
}

// IsNegative reports whether a mood label carries negative valence.
func IsNegative(mood string) bool {
	return negativeMoods[mood]
}

// MoodSummary is the analytics result the synthesis engine consumes.
type MoodSummary struct {
	MostCommonMood       string
	PositiveStreakLength int
}

// MoodAnalyzer computes mood summaries over entry windows.
type MoodAnalyzer struct{}

// NewMoodAnalyzer creates a mood analyzer.
func NewMoodAnalyzer() *MoodAnalyzer {
	return &MoodAnalyzer{}
}

// Summarize computes the most common mood and the positive-mood streak over
// entries created within the last windowDays days. Entries are expected
// most-recent-first; windowDays <= 0 means no window.
func (a *MoodAnalyzer) Summarize(entries []signal.Entry, windowDays int, now time.Time) MoodSummary {
	windowed := entries
	if windowDays > 0 {
		cutoff := now.AddDate(0, 0, -windowDays)
		windowed = windowed[:0:0]
		for _, e := range entries {
			if e.CreatedAt.After(cutoff) {
				windowed = append(windowed, e)
			}
		}
	}

	return MoodSummary{
		MostCommonMood:       mostCommonMood(windowed),
		PositiveStreakLength: positiveStreak(windowed),
	}
}

// mostCommonMood returns the most frequent non-empty mood label. Ties break
// toward the mood seen most recently.
func mostCommonMood(entries []signal.Entry) string {
	counts := make(map[string]int)
	best := ""
	bestCount := 0
	for _, e := range entries {
		if e.Mood == "" {
			continue
		}
		counts[e.Mood]++
		if counts[e.Mood] > bestCount {
			best = e.Mood
			bestCount = counts[e.Mood]
		}
	}
	return best
}

// positiveStreak counts consecutive positive moods from the most recent
// entry backwards.
func positiveStreak(entries []signal.Entry) int {
	streak := 0
	for _, e := range entries {
		if !IsPositive(e.Mood) {
			break
		}
		streak++
	}
	return streak
}
