package synthesis

import (
	"sort"
	"strings"

	"github.com/odvcencio/ember/pkg/signal"
)

// Stress detection bounds.
const (
	stressEntryWindow   = 10
	stressMinMatches    = 2
	maxStressSignals    = 3
	minStressConfidence = 0.3
	maxStressConfidence = 1.0
)

// stressPattern ties a category to its keyword list. Declaration order
// doubles as the tie-break order for equal match counts.
type stressPattern struct {
	category StressCategory
	keywords []string
}

var stressPatterns = []stressPattern{
	{StressNegativeLanguage, []string{
		"hate", "awful", "terrible", "worst", "miserable", "hopeless", "pointless",
	}},
	{StressSleepIssues, []string{
		"can't sleep", "insomnia", "exhausted", "sleepless", "tired all", "barely slept",
	}},
	{StressOverwhelm, []string{
		"overwhelmed", "too much", "drowning", "can't keep up", "no time", "burned out",
	}},
	{StressExternalPressure, []string{
		"deadline", "boss", "bills", "rent", "exam", "pressure from",
	}},
	{StressAnxietyMarkers, []string{
		"anxious", "worried", "panic", "racing thoughts", "on edge", "dread",
	}},
	{StressLowSelfWorth, []string{
		"not good enough", "failure", "useless", "worthless", "hate myself", "disappoint",
	}},
}

// DetectStressSignals scans the concatenated lowercase text of the most
// recent entries for stress-category keywords. A category needs at least
// two matches to emit a signal; confidence is the match count over the
// pattern list size, clamped to [0.3, 1.0]. At most three signals are
// returned, ordered by match count, ties by table order.
func DetectStressSignals(entries []signal.Entry) []StressSignal {
	if len(entries) > stressEntryWindow {
		entries = entries[:stressEntryWindow]
	}

	var b strings.Builder
	for _, e := range entries {
		b.WriteString(strings.ToLower(e.Text))
		b.WriteByte(' ')
	}
	text := b.String()
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var signals []StressSignal
	for _, pattern := range stressPatterns {
		matches := 0
		for _, keyword := range pattern.keywords {
			matches += strings.Count(text, keyword)
		}
		if matches < stressMinMatches {
			continue
		}
		signals = append(signals, StressSignal{
			Category:   pattern.category,
			Confidence: clampConfidence(float64(matches) / float64(len(pattern.keywords))),
			Matches:    matches,
		})
	}

	// Stable sort preserves table order for equal match counts.
	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].Matches > signals[j].Matches
	})

	if len(signals) > maxStressSignals {
		signals = signals[:maxStressSignals]
	}
	return signals
}

func clampConfidence(v float64) float64 {
	if v < minStressConfidence {
		return minStressConfidence
	}
	if v > maxStressConfidence {
		return maxStressConfidence
	}
	return v
}
