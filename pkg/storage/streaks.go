package storage

import (
	"database/sql"
	"time"

	"github.com/odvcencio/ember/pkg/signal"
)

// Streak track names.
const (
	TrackJournal = "journal"
	TrackCheckIn = "checkin"
)

const dayFormat = "2006-01-02"

// RecordActivity advances the streak for a track on the given local day.
// Consecutive days extend the streak; a gap resets it to one. Repeat
// activity on the same day is a no-op.
func (s *Store) RecordActivity(userID, track string, day time.Time) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}

	today := day.Format(dayFormat)
	yesterday := day.AddDate(0, 0, -1).Format(dayFormat)

	var current, longest int
	var lastActive sql.NullString
	err := s.db.QueryRow(`
		SELECT current, longest, last_active_on FROM streaks
		WHERE user_id = ? AND track = ?
	`, userID, track).Scan(&current, &longest, &lastActive)
	if err != nil && err != sql.ErrNoRows {
		return err
	}

	broken := false
	switch {
	case lastActive.Valid && lastActive.String == today:
		return nil
	case lastActive.Valid && lastActive.String == yesterday:
		current++
	default:
		broken = lastActive.Valid && current > 0
		current = 1
	}
	if current > longest {
		longest = current
	}

	_, err = s.db.Exec(`
		INSERT INTO streaks (user_id, track, current, longest, last_active_on)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, track) DO UPDATE SET
			current = excluded.current,
			longest = excluded.longest,
			last_active_on = excluded.last_active_on
	`, userID, track, current, longest, today)
	if err != nil {
		return err
	}

	if broken {
		s.notify(newEvent(EventStreakBroken, userID, track, nil))
	}
	s.notify(newEvent(EventStreakAdvanced, userID, track, current))
	return nil
}

// GetStreaks loads both streak tracks. A track with no activity on the
// given day or the day before reads as a zero current streak.
func (s *Store) GetStreaks(userID string, asOf time.Time) (signal.StreakStatus, error) {
	var status signal.StreakStatus
	if s == nil || s.db == nil {
		return status, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT track, current, longest, last_active_on FROM streaks
		WHERE user_id = ?
	`, userID)
	if err != nil {
		return status, err
	}
	defer rows.Close()

	today := asOf.Format(dayFormat)
	yesterday := asOf.AddDate(0, 0, -1).Format(dayFormat)

	for rows.Next() {
		var track string
		var current, longest int
		var lastActive sql.NullString
		if err := rows.Scan(&track, &current, &longest, &lastActive); err != nil {
			return status, err
		}
		// A lapsed streak still shows its longest run but no current one.
		if !lastActive.Valid || (lastActive.String != today && lastActive.String != yesterday) {
			current = 0
		}
		switch track {
		case TrackJournal:
			status.Journal = signal.StreakTrack{Current: current, Longest: longest}
		case TrackCheckIn:
			status.CheckIn = signal.StreakTrack{Current: current, Longest: longest}
		}
	}
	return status, rows.Err()
}
