package synthesis

import (
	"github.com/odvcencio/ember/pkg/analytics"
	"github.com/odvcencio/ember/pkg/signal"
)

// moodRatios computes negative and positive mood shares over the n most
// recent entries. The denominator floors at 1 so empty windows divide
// safely.
func moodRatios(entries []signal.Entry, n int) (negative, positive float64) {
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	total := len(entries)
	if total == 0 {
		total = 1
	}
	var neg, pos int
	for _, e := range entries {
		switch {
		case analytics.IsNegative(e.Mood):
			neg++
		case analytics.IsPositive(e.Mood):
			pos++
		}
	}
	return float64(neg) / float64(total), float64(pos) / float64(total)
}

// positiveRatio is the positive-mood share of the given entries, denominator
// floored at 1.
func positiveRatio(entries []signal.Entry) float64 {
	total := len(entries)
	if total == 0 {
		total = 1
	}
	pos := 0
	for _, e := range entries {
		if analytics.IsPositive(e.Mood) {
			pos++
		}
	}
	return float64(pos) / float64(total)
}

// decliningPattern splits entries into a recent half (first n/2, since
// entries are most-recent-first) and an older half, and compares their
// positive-mood ratios. Requires the minimum window size; below it the
// answer is always false.
func decliningPattern(entries []signal.Entry, th Thresholds) bool {
	if len(entries) < th.DecliningMinEntries {
		return false
	}
	half := len(entries) / 2
	recent := entries[:half]
	older := entries[half:]
	return positiveRatio(older)-positiveRatio(recent) > th.DecliningDelta
}

// volatilePattern counts adjacent entry pairs whose mood flips between
// positive and negative valence. Requires the minimum window size.
func volatilePattern(entries []signal.Entry, th Thresholds) bool {
	if len(entries) < th.VolatileMinEntries {
		return false
	}
	flips := 0
	for i := 0; i < len(entries)-1; i++ {
		a, b := entries[i].Mood, entries[i+1].Mood
		posToNeg := analytics.IsPositive(a) && analytics.IsNegative(b)
		negToPos := analytics.IsNegative(a) && analytics.IsPositive(b)
		if posToNeg || negToPos {
			flips++
		}
	}
	return float64(flips)/float64(len(entries)-1) > th.VolatileFlipRatio
}
