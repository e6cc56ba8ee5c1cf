package storage

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// NotificationRecord is one delivered notification.
type NotificationRecord struct {
	ID       string     `json:"id"`
	UserID   string     `json:"userId"`
	Title    string     `json:"title"`
	Body     string     `json:"body"`
	SentAt   time.Time  `json:"sentAt"`
	OpenedAt *time.Time `json:"openedAt,omitempty"`
}

// RecordNotification logs a sent notification and returns its ID.
func (s *Store) RecordNotification(userID, title, body string, sentAt time.Time) (string, error) {
	if s == nil || s.db == nil {
		return "", ErrStoreClosed
	}
	if sentAt.IsZero() {
		sentAt = time.Now()
	}

	id := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO notification_log (id, user_id, title, body, sent_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, userID, title, body, sentAt.UTC())
	if err != nil {
		return "", err
	}

	s.notify(newEvent(EventNotificationSent, userID, id, nil))
	return id, nil
}

// MarkNotificationOpened records that the user opened a notification.
func (s *Store) MarkNotificationOpened(id string, openedAt time.Time) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}
	if openedAt.IsZero() {
		openedAt = time.Now()
	}

	result, err := s.db.Exec(`
		UPDATE notification_log SET opened_at = ? WHERE id = ? AND opened_at IS NULL
	`, openedAt.UTC(), id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil
	}

	s.notify(newEvent(EventNotificationOpened, "", id, nil))
	return nil
}

// NotificationsSentOn counts notifications sent on the given local day.
func (s *Store) NotificationsSentOn(userID string, day time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, ErrStoreClosed
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM notification_log
		WHERE user_id = ? AND sent_at >= ? AND sent_at < ?
	`, userID, start.UTC(), end.UTC()).Scan(&count)
	return count, err
}

// LastNotificationAt returns when the most recent notification went out.
// Zero time when none were ever sent.
func (s *Store) LastNotificationAt(userID string) (time.Time, error) {
	if s == nil || s.db == nil {
		return time.Time{}, ErrStoreClosed
	}

	var sentAt time.Time
	err := s.db.QueryRow(`
		SELECT sent_at FROM notification_log
		WHERE user_id = ?
		ORDER BY sent_at DESC LIMIT 1
	`, userID).Scan(&sentAt)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	return sentAt, err
}

// NotificationOpenRate reports the fraction of notifications opened within
// the trailing window. Returns 0 when none were sent.
func (s *Store) NotificationOpenRate(userID string, since time.Time) (float64, error) {
	if s == nil || s.db == nil {
		return 0, ErrStoreClosed
	}

	var sent, opened int
	err := s.db.QueryRow(`
		SELECT COUNT(*), COUNT(opened_at) FROM notification_log
		WHERE user_id = ? AND sent_at >= ?
	`, userID, since.UTC()).Scan(&sent, &opened)
	if err != nil {
		return 0, err
	}
	if sent == 0 {
		return 0, nil
	}
	return float64(opened) / float64(sent), nil
}
