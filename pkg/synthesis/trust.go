package synthesis

import "github.com/odvcencio/ember/pkg/signal"

// Trust tier cutoffs, evaluated top-down; first match wins.
const (
	deepJournalMin        = 50
	deepAvgWords          = 150
	deepSessionMin        = 3
	establishedJournalMin = 20
	establishedAvgWords   = 100
	buildingJournalMin    = 5
)

// CalculateTrustLevel infers depth of disclosure from journaling volume,
// entry length, and session attendance.
func CalculateTrustLevel(bundle *signal.Bundle) TrustLevel {
	journalCount := bundle.EntryCount()
	avgWords := bundle.AverageWordCount(0)
	sessionCount := len(bundle.Sessions)

	switch {
	case journalCount >= deepJournalMin && avgWords > deepAvgWords && sessionCount >= deepSessionMin:
		return TrustDeep
	case journalCount >= establishedJournalMin && (avgWords > establishedAvgWords || sessionCount > 0):
		return TrustEstablished
	case journalCount >= buildingJournalMin:
		return TrustBuilding
	default:
		return TrustNew
	}
}
