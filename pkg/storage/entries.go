package storage

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/odvcencio/ember/pkg/signal"
)

// CreateEntry stores a new journal entry and returns its ID. Word count is
// computed from the text when the caller leaves it zero.
func (s *Store) CreateEntry(userID string, entry *signal.Entry) (string, error) {
	if s == nil || s.db == nil {
		return "", ErrStoreClosed
	}

	id := entry.ID
	if id == "" {
		id = uuid.NewString()
	}
	wordCount := entry.WordCount
	if wordCount == 0 {
		wordCount = len(strings.Fields(entry.Text))
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO entries (id, user_id, text, word_count, mood, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, userID, entry.Text, wordCount, entry.Mood, marshalStrings(entry.Tags),
		createdAt.UTC(), createdAt.UTC())
	if err != nil {
		return "", err
	}

	s.notify(newEvent(EventEntryCreated, userID, id, nil))
	return id, nil
}

// UpdateEntry replaces the text, mood and tags of an existing entry.
func (s *Store) UpdateEntry(userID string, entry *signal.Entry) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}

	wordCount := entry.WordCount
	if wordCount == 0 {
		wordCount = len(strings.Fields(entry.Text))
	}

	result, err := s.db.Exec(`
		UPDATE entries SET text = ?, word_count = ?, mood = ?, tags = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, entry.Text, wordCount, entry.Mood, marshalStrings(entry.Tags),
		time.Now().UTC(), entry.ID, userID)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}

	s.notify(newEvent(EventEntryUpdated, userID, entry.ID, nil))
	return nil
}

// DeleteEntry removes a journal entry.
func (s *Store) DeleteEntry(userID, entryID string) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}
	_, err := s.db.Exec(`DELETE FROM entries WHERE id = ? AND user_id = ?`, entryID, userID)
	if err != nil {
		return err
	}
	s.notify(newEvent(EventEntryDeleted, userID, entryID, nil))
	return nil
}

// RecentEntries returns the newest entries for a user, most-recent-first.
func (s *Store) RecentEntries(userID string, limit int) ([]signal.Entry, error) {
	if s == nil || s.db == nil {
		return nil, ErrStoreClosed
	}
	if limit <= 0 {
		limit = 30
	}

	rows, err := s.db.Query(`
		SELECT id, text, word_count, mood, tags, created_at, updated_at
		FROM entries WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []signal.Entry
	for rows.Next() {
		var e signal.Entry
		var mood, tags sql.NullString
		if err := rows.Scan(&e.ID, &e.Text, &e.WordCount, &mood, &tags, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		if mood.Valid {
			e.Mood = mood.String
		}
		if tags.Valid {
			e.Tags = unmarshalStrings(tags.String)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountEntries returns the total number of entries for a user.
func (s *Store) CountEntries(userID string) (int, error) {
	if s == nil || s.db == nil {
		return 0, ErrStoreClosed
	}
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM entries WHERE user_id = ?`, userID).Scan(&count)
	return count, err
}

// HasEntryOn reports whether any entry was written on the given local day.
func (s *Store) HasEntryOn(userID string, day time.Time) (bool, error) {
	if s == nil || s.db == nil {
		return false, ErrStoreClosed
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM entries
		WHERE user_id = ? AND created_at >= ? AND created_at < ?
	`, userID, start.UTC(), end.UTC()).Scan(&count)
	return count > 0, err
}

func marshalStrings(values []string) string {
	if len(values) == 0 {
		return ""
	}
	buf, err := json.Marshal(values)
	if err != nil {
		return ""
	}
	return string(buf)
}

func unmarshalStrings(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	return values
}
