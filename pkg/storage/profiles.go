package storage

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Profile is a stored user profile.
type Profile struct {
	UserID              string    `json:"userId"`
	DisplayName         string    `json:"displayName"`
	FirstUseAt          time.Time `json:"firstUseAt"`
	OnboardingCompleted bool      `json:"onboardingCompleted"`
	LastIntroShownAt    time.Time `json:"lastIntroShownAt,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// CreateProfile creates a new profile and returns its user ID.
func (s *Store) CreateProfile(displayName string) (string, error) {
	if s == nil || s.db == nil {
		return "", ErrStoreClosed
	}
	displayName = strings.TrimSpace(displayName)

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := s.db.Exec(`
		INSERT INTO profiles (user_id, display_name, first_use_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, displayName, now, now, now)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetProfile retrieves a profile by user ID. Returns nil when not found.
func (s *Store) GetProfile(userID string) (*Profile, error) {
	if s == nil || s.db == nil {
		return nil, ErrStoreClosed
	}

	row := s.db.QueryRow(`
		SELECT user_id, display_name, first_use_at, onboarding_completed,
		       last_intro_shown_at, created_at, updated_at
		FROM profiles WHERE user_id = ?
	`, userID)

	var p Profile
	var lastIntro sql.NullTime
	err := row.Scan(&p.UserID, &p.DisplayName, &p.FirstUseAt, &p.OnboardingCompleted,
		&lastIntro, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if lastIntro.Valid {
		p.LastIntroShownAt = lastIntro.Time
	}
	return &p, nil
}

// UpdateDisplayName renames a profile.
func (s *Store) UpdateDisplayName(userID, displayName string) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}
	_, err := s.db.Exec(`
		UPDATE profiles SET display_name = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?
	`, strings.TrimSpace(displayName), userID)
	return err
}

// SetOnboardingCompleted flips the onboarding flag.
func (s *Store) SetOnboardingCompleted(userID string, completed bool) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}
	_, err := s.db.Exec(`
		UPDATE profiles SET onboarding_completed = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?
	`, completed, userID)
	return err
}

// MarkIntroShown records that the first-week intro was shown.
func (s *Store) MarkIntroShown(userID string, at time.Time) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}
	_, err := s.db.Exec(`
		UPDATE profiles SET last_intro_shown_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?
	`, at.UTC(), userID)
	return err
}
