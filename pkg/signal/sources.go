package signal

import (
	"context"
	"time"
)

// Source adapters are the read-only boundaries this engine depends on.
// Implementations live elsewhere (SQLite stores, remote services); the
// gatherer only sees these interfaces.

// ProfileSource exposes the user profile and account age.
type ProfileSource interface {
	UserProfile(ctx context.Context) (*Profile, error)
	FirstUseAt(ctx context.Context) (time.Time, error)
}

// JournalSource exposes recent journal entries, most-recent-first, and the
// lifetime entry count. The count is read separately because the recent
// window is bounded while trust tiers care about total volume.
type JournalSource interface {
	RecentEntries(ctx context.Context, limit int) ([]Entry, error)
	CountEntries(ctx context.Context) (int, error)
}

// ShortFormSource exposes recent short-form check-ins, most-recent-first.
type ShortFormSource interface {
	RecentShortEntries(ctx context.Context, limit int) ([]ShortEntry, error)
}

// SessionSource exposes recent support-session summaries, most-recent-first.
type SessionSource interface {
	RecentSessions(ctx context.Context, userID string, limit int) ([]SessionSummary, error)
}

// StreakSource exposes both streak tracks.
type StreakSource interface {
	StreakStatus(ctx context.Context) (StreakStatus, error)
}

// PreferenceSource exposes the preference flags synthesis reads.
type PreferenceSource interface {
	OnboardingCompleted(ctx context.Context) (bool, error)
	LastIntroShownAt(ctx context.Context) (time.Time, error)
}

// Sources groups every adapter the gatherer fans out across.
type Sources struct {
	Profile     ProfileSource
	Journal     JournalSource
	ShortForm   ShortFormSource
	Sessions    SessionSource
	Streaks     StreakSource
	Preferences PreferenceSource
}
