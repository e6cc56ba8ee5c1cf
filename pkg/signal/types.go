// Package signal defines the raw behavioral signals the synthesis engine
// consumes and the gatherer that collects them from their source adapters.
package signal

import "time"

// Profile identifies the user at the display layer.
type Profile struct {
	DisplayName string
	FirstUseAt  time.Time
	ExternalID  string
}

// Entry is a single journal entry, most-recent-first in any slice.
type Entry struct {
	ID        string
	Text      string
	WordCount int
	Mood      string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ShortEntry is a brief capture (a check-in) with an optional mood.
type ShortEntry struct {
	ID        string
	Text      string
	Mood      string
	CreatedAt time.Time
}

// SessionSummary summarizes one prior support session.
type SessionSummary struct {
	ID            string
	Summary       string
	Techniques    []string
	CrisisFlagged bool
	CreatedAt     time.Time
}

// StreakTrack holds current/longest counts for one streak.
type StreakTrack struct {
	Current int
	Longest int
}

// StreakStatus covers both independent streak tracks: journaling and
// daily check-ins.
type StreakStatus struct {
	Journal StreakTrack
	CheckIn StreakTrack
}

// PreferencesSnapshot carries the preference flags synthesis cares about.
type PreferencesSnapshot struct {
	OnboardingCompleted bool
	LastIntroShownAt    time.Time
}

// Bundle is the ephemeral collection of raw signals for one synthesis
// cycle. It is built fresh per cycle and discarded afterwards.
type Bundle struct {
	Profile     *Profile
	Journal     []Entry
	ShortForm   []ShortEntry
	Sessions    []SessionSummary
	Streaks     StreakStatus
	Preferences PreferencesSnapshot
	FirstUseAt  time.Time
	GatheredAt  time.Time

	// TotalEntries is the lifetime journal entry count, which can exceed
	// the bounded Journal window. Zero when the count read degraded.
	TotalEntries int
}

// EntryCount returns the lifetime journal entry count. Falls back to the
// windowed slice length when the count read degraded.
func (b *Bundle) EntryCount() int {
	if b == nil {
		return 0
	}
	if b.TotalEntries > len(b.Journal) {
		return b.TotalEntries
	}
	return len(b.Journal)
}

// DaysSinceFirstUse reports whole days since first use, floored at 1 so a
// brand-new account counts as day one.
func (b *Bundle) DaysSinceFirstUse(now time.Time) int {
	if b == nil || b.FirstUseAt.IsZero() {
		return 1
	}
	days := int(now.Sub(b.FirstUseAt).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// DaysSinceLastEntry reports whole days since the newest journal entry.
// Returns -1 when there are no entries.
func (b *Bundle) DaysSinceLastEntry(now time.Time) int {
	if b == nil || len(b.Journal) == 0 {
		return -1
	}
	days := int(now.Sub(b.Journal[0].CreatedAt).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// AverageWordCount averages word counts over the n most recent entries.
// n <= 0 averages over all entries. Returns 0 with no entries.
func (b *Bundle) AverageWordCount(n int) float64 {
	if b == nil || len(b.Journal) == 0 {
		return 0
	}
	entries := b.Journal
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	total := 0
	for _, e := range entries {
		total += e.WordCount
	}
	return float64(total) / float64(len(entries))
}
