package storage

import (
	"context"
	"time"

	"github.com/odvcencio/ember/pkg/signal"
)

// UserSources binds the store to one user and satisfies every signal
// source interface the gatherer fans out across.
type UserSources struct {
	store  *Store
	userID string
	now    func() time.Time
}

// SourcesFor returns the signal adapters for one user.
func (s *Store) SourcesFor(userID string) *UserSources {
	return &UserSources{store: s, userID: userID, now: time.Now}
}

// Sources bundles the adapters in the shape the gatherer expects.
func (u *UserSources) Sources() signal.Sources {
	return signal.Sources{
		Profile:     u,
		Journal:     u,
		ShortForm:   u,
		Sessions:    u,
		Streaks:     u,
		Preferences: u,
	}
}

// UserProfile implements signal.ProfileSource.
func (u *UserSources) UserProfile(ctx context.Context) (*signal.Profile, error) {
	p, err := u.store.GetProfile(u.userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return &signal.Profile{
		DisplayName: p.DisplayName,
		FirstUseAt:  p.FirstUseAt,
		ExternalID:  p.UserID,
	}, nil
}

// FirstUseAt implements signal.ProfileSource.
func (u *UserSources) FirstUseAt(ctx context.Context) (time.Time, error) {
	p, err := u.store.GetProfile(u.userID)
	if err != nil {
		return time.Time{}, err
	}
	if p == nil {
		return time.Time{}, nil
	}
	return p.FirstUseAt, nil
}

// RecentEntries implements signal.JournalSource.
func (u *UserSources) RecentEntries(ctx context.Context, limit int) ([]signal.Entry, error) {
	return u.store.RecentEntries(u.userID, limit)
}

// CountEntries implements signal.JournalSource.
func (u *UserSources) CountEntries(ctx context.Context) (int, error) {
	return u.store.CountEntries(u.userID)
}

// RecentShortEntries implements signal.ShortFormSource.
func (u *UserSources) RecentShortEntries(ctx context.Context, limit int) ([]signal.ShortEntry, error) {
	return u.store.RecentShortEntries(u.userID, limit)
}

// RecentSessions implements signal.SessionSource.
func (u *UserSources) RecentSessions(ctx context.Context, userID string, limit int) ([]signal.SessionSummary, error) {
	if userID == "" {
		userID = u.userID
	}
	return u.store.RecentSessions(userID, limit)
}

// StreakStatus implements signal.StreakSource.
func (u *UserSources) StreakStatus(ctx context.Context) (signal.StreakStatus, error) {
	return u.store.GetStreaks(u.userID, u.now())
}

// OnboardingCompleted implements signal.PreferenceSource.
func (u *UserSources) OnboardingCompleted(ctx context.Context) (bool, error) {
	p, err := u.store.GetProfile(u.userID)
	if err != nil {
		return false, err
	}
	return p != nil && p.OnboardingCompleted, nil
}

// LastIntroShownAt implements signal.PreferenceSource.
func (u *UserSources) LastIntroShownAt(ctx context.Context) (time.Time, error) {
	p, err := u.store.GetProfile(u.userID)
	if err != nil {
		return time.Time{}, err
	}
	if p == nil {
		return time.Time{}, nil
	}
	return p.LastIntroShownAt, nil
}
