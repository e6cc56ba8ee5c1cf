package synthesis

import (
	"testing"
	"time"

	"github.com/odvcencio/ember/pkg/signal"
)

func bundleWith(journalCount, wordsPer, sessionCount int) *signal.Bundle {
	now := time.Now()
	entries := make([]signal.Entry, journalCount)
	for i := range entries {
		entries[i] = signal.Entry{WordCount: wordsPer, CreatedAt: now}
	}
	sessions := make([]signal.SessionSummary, sessionCount)
	return &signal.Bundle{Journal: entries, Sessions: sessions}
}

func TestCalculateTrustLevel(t *testing.T) {
	tests := []struct {
		name     string
		journal  int
		words    int
		sessions int
		want     TrustLevel
	}{
		{"deep", 60, 160, 4, TrustDeep},
		{"deep boundary", 50, 151, 3, TrustDeep},
		{"established via words", 20, 120, 0, TrustEstablished},
		{"established via sessions", 25, 40, 1, TrustEstablished},
		{"long entries but few of them", 10, 500, 5, TrustBuilding},
		{"building", 5, 20, 0, TrustBuilding},
		{"new", 3, 300, 0, TrustNew},
		{"empty", 0, 0, 0, TrustNew},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateTrustLevel(bundleWith(tt.journal, tt.words, tt.sessions))
			if got != tt.want {
				t.Errorf("trust = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateTrustLevel_DeepReachableThroughBoundedWindow(t *testing.T) {
	// The gather path caps Journal at the recent window, so the deep tier
	// must read the lifetime count, not the slice length.
	bundle := bundleWith(signal.JournalWindow, 160, 4)
	bundle.TotalEntries = 60

	got := CalculateTrustLevel(bundle)
	if got != TrustDeep {
		t.Errorf("trust = %v, want %v", got, TrustDeep)
	}
}

func TestCalculateTrustLevel_DeepNeedsAllThree(t *testing.T) {
	// 60 entries with long words but too few sessions stops at established.
	got := CalculateTrustLevel(bundleWith(60, 160, 2))
	if got != TrustEstablished {
		t.Errorf("trust = %v, want %v", got, TrustEstablished)
	}
}
