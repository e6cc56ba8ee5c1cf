package storage

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/odvcencio/ember/pkg/signal"
)

// RecordSession stores a support-session summary and returns its ID.
func (s *Store) RecordSession(userID string, session *signal.SessionSummary) (string, error) {
	if s == nil || s.db == nil {
		return "", ErrStoreClosed
	}

	id := session.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := session.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO support_sessions (id, user_id, summary, techniques, crisis_flagged, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, userID, session.Summary, marshalStrings(session.Techniques),
		session.CrisisFlagged, createdAt.UTC())
	if err != nil {
		return "", err
	}

	s.notify(newEvent(EventSessionRecorded, userID, id, nil))
	return id, nil
}

// RecentSessions returns the newest session summaries, most-recent-first.
func (s *Store) RecentSessions(userID string, limit int) ([]signal.SessionSummary, error) {
	if s == nil || s.db == nil {
		return nil, ErrStoreClosed
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(`
		SELECT id, summary, techniques, crisis_flagged, created_at
		FROM support_sessions WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []signal.SessionSummary
	for rows.Next() {
		var sess signal.SessionSummary
		var techniques sql.NullString
		if err := rows.Scan(&sess.ID, &sess.Summary, &techniques, &sess.CrisisFlagged, &sess.CreatedAt); err != nil {
			return nil, err
		}
		if techniques.Valid {
			sess.Techniques = unmarshalStrings(techniques.String)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// CountSessions returns the total number of sessions for a user.
func (s *Store) CountSessions(userID string) (int, error) {
	if s == nil || s.db == nil {
		return 0, ErrStoreClosed
	}
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM support_sessions WHERE user_id = ?`, userID).Scan(&count)
	return count, err
}
