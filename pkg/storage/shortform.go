package storage

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/odvcencio/ember/pkg/signal"
)

// CreateShortEntry stores a quick check-in and returns its ID.
func (s *Store) CreateShortEntry(userID string, entry *signal.ShortEntry) (string, error) {
	if s == nil || s.db == nil {
		return "", ErrStoreClosed
	}

	id := entry.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO short_entries (id, user_id, text, mood, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, userID, entry.Text, entry.Mood, createdAt.UTC())
	if err != nil {
		return "", err
	}

	s.notify(newEvent(EventCheckInCreated, userID, id, nil))
	return id, nil
}

// RecentShortEntries returns the newest check-ins, most-recent-first.
func (s *Store) RecentShortEntries(userID string, limit int) ([]signal.ShortEntry, error) {
	if s == nil || s.db == nil {
		return nil, ErrStoreClosed
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, text, mood, created_at
		FROM short_entries WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []signal.ShortEntry
	for rows.Next() {
		var e signal.ShortEntry
		var mood sql.NullString
		if err := rows.Scan(&e.ID, &e.Text, &mood, &e.CreatedAt); err != nil {
			return nil, err
		}
		if mood.Valid {
			e.Mood = mood.String
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// HasShortEntryOn reports whether any check-in landed on the given local day.
func (s *Store) HasShortEntryOn(userID string, day time.Time) (bool, error) {
	if s == nil || s.db == nil {
		return false, ErrStoreClosed
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM short_entries
		WHERE user_id = ? AND created_at >= ? AND created_at < ?
	`, userID, start.UTC(), end.UTC()).Scan(&count)
	return count > 0, err
}
