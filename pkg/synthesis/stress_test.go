package synthesis

import (
	"strings"
	"testing"

	"github.com/odvcencio/ember/pkg/signal"
)

func textEntries(texts ...string) []signal.Entry {
	entries := make([]signal.Entry, len(texts))
	for i, text := range texts {
		entries[i] = signal.Entry{Text: text, WordCount: len(strings.Fields(text))}
	}
	return entries
}

func TestDetectStressSignals_Empty(t *testing.T) {
	if got := DetectStressSignals(nil); got != nil {
		t.Errorf("signals over no entries = %v, want nil", got)
	}
	if got := DetectStressSignals(textEntries("a lovely calm day")); len(got) != 0 {
		t.Errorf("signals over calm text = %v, want none", got)
	}
}

func TestDetectStressSignals_SingleMatchIsIgnored(t *testing.T) {
	entries := textEntries("feeling a bit anxious today but otherwise fine")
	if got := DetectStressSignals(entries); len(got) != 0 {
		t.Errorf("one keyword match should not emit a signal, got %v", got)
	}
}

func TestDetectStressSignals_EmitsAboveThreshold(t *testing.T) {
	entries := textEntries(
		"so anxious about everything, full of dread",
		"worried sick and anxious again",
	)
	got := DetectStressSignals(entries)
	if len(got) != 1 {
		t.Fatalf("got %d signals, want 1", len(got))
	}
	if got[0].Category != StressAnxietyMarkers {
		t.Errorf("category = %v, want %v", got[0].Category, StressAnxietyMarkers)
	}
	if got[0].Matches < 2 {
		t.Errorf("matches = %d, want >= 2", got[0].Matches)
	}
}

func TestDetectStressSignals_ConfidenceBounds(t *testing.T) {
	// Heavy repetition drives the raw ratio above 1; it must clamp.
	loud := strings.Repeat("overwhelmed, too much, drowning. ", 10)
	entries := textEntries(loud, loud)

	for _, sig := range DetectStressSignals(entries) {
		if sig.Confidence < 0.3 || sig.Confidence > 1.0 {
			t.Errorf("confidence %v out of [0.3, 1.0] for %v", sig.Confidence, sig.Category)
		}
	}

	// Two matches over the seven-keyword negative-language list is a raw
	// ratio of ~0.286; it must clamp up to the 0.3 floor.
	entries = textEntries("i hate mondays", "i hate rain")
	got := DetectStressSignals(entries)
	if len(got) != 1 {
		t.Fatalf("got %d signals, want 1", len(got))
	}
	if got[0].Category != StressNegativeLanguage {
		t.Fatalf("category = %v, want %v", got[0].Category, StressNegativeLanguage)
	}
	if got[0].Confidence != 0.3 {
		t.Errorf("confidence = %v, want clamped 0.3 floor", got[0].Confidence)
	}
}

func TestDetectStressSignals_CapsAtThree(t *testing.T) {
	entries := textEntries(
		"i hate this awful week, everything is terrible and hopeless",
		"exhausted, can't sleep, insomnia every night, exhausted again",
		"overwhelmed at work, too much to do, drowning in tasks, too much",
		"deadline after deadline, my boss keeps adding bills and rent stress",
		"anxious, worried, full of dread, panic rising",
	)
	got := DetectStressSignals(entries)
	if len(got) > 3 {
		t.Errorf("got %d signals, want at most 3", len(got))
	}
	// Ordered by match count descending.
	for i := 1; i < len(got); i++ {
		if got[i].Matches > got[i-1].Matches {
			t.Errorf("signals not ordered by matches: %v", got)
		}
	}
}

func TestDetectStressSignals_WindowsToTenEntries(t *testing.T) {
	// The stressful text sits outside the 10-entry window.
	entries := make([]signal.Entry, 10)
	for i := range entries {
		entries[i] = signal.Entry{Text: "a fine day"}
	}
	entries = append(entries, signal.Entry{Text: "anxious anxious worried dread panic"})

	if got := DetectStressSignals(entries); len(got) != 0 {
		t.Errorf("entries beyond the window should be ignored, got %v", got)
	}
}
