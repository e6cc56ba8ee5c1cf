package synthesis

import (
	"strings"

	"github.com/odvcencio/ember/pkg/signal"
)

// Tone inference bounds.
const (
	toneEntryWindow   = 5
	directKeywordMin  = 3
	directMaxAvgWords = 100
)

var playfulKeywords = []string{
	"lol", "haha", "funny", "silly", "joke", "hilarious", "😂", "😄",
}

var directiveKeywords = []string{
	"just tell me", "give me", "how do i", "what should", "skip the", "get to the point",
}

// InferTone picks the communication tone. Any detected stress overrides
// everything else and forces gentle.
func InferTone(bundle *signal.Bundle, stress []StressSignal) Tone {
	if len(stress) > 0 {
		return ToneGentle
	}

	entries := bundle.Journal
	if len(entries) > toneEntryWindow {
		entries = entries[:toneEntryWindow]
	}
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(strings.ToLower(e.Text))
		b.WriteByte(' ')
	}
	text := b.String()

	for _, keyword := range playfulKeywords {
		if strings.Contains(text, keyword) {
			return TonePlayful
		}
	}

	directives := 0
	for _, keyword := range directiveKeywords {
		directives += strings.Count(text, keyword)
	}
	if directives >= directKeywordMin && bundle.AverageWordCount(0) < directMaxAvgWords {
		return ToneDirect
	}

	return ToneWarm
}
