package storage

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PushSubscription represents a Web Push subscription.
type PushSubscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Endpoint  string    `json:"endpoint"`
	P256dh    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	UserAgent string    `json:"userAgent,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// SavePushSubscription creates or updates a push subscription keyed by
// endpoint.
func (s *Store) SavePushSubscription(sub *PushSubscription) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}

	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh, auth, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(endpoint) DO UPDATE SET
			p256dh = excluded.p256dh,
			auth = excluded.auth,
			user_id = excluded.user_id,
			user_agent = excluded.user_agent
	`, sub.ID, sub.UserID, sub.Endpoint, sub.P256dh, sub.Auth, sub.UserAgent, sub.CreatedAt.UTC())

	return err
}

// GetPushSubscriptionsByUser retrieves all subscriptions for a user.
func (s *Store) GetPushSubscriptionsByUser(userID string) ([]*PushSubscription, error) {
	if s == nil || s.db == nil {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT id, user_id, endpoint, p256dh, auth, user_agent, created_at
		FROM push_subscriptions WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPushSubscriptions(rows)
}

// GetPushSubscriptionByEndpoint retrieves a subscription by endpoint.
// Returns nil when not found.
func (s *Store) GetPushSubscriptionByEndpoint(endpoint string) (*PushSubscription, error) {
	if s == nil || s.db == nil {
		return nil, ErrStoreClosed
	}

	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, nil
	}

	row := s.db.QueryRow(`
		SELECT id, user_id, endpoint, p256dh, auth, user_agent, created_at
		FROM push_subscriptions WHERE endpoint = ?
	`, endpoint)

	var sub PushSubscription
	var userAgent sql.NullString
	err := row.Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256dh, &sub.Auth, &userAgent, &sub.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if userAgent.Valid {
		sub.UserAgent = userAgent.String
	}
	return &sub, nil
}

// DeletePushSubscriptionByEndpoint removes a subscription by endpoint.
func (s *Store) DeletePushSubscriptionByEndpoint(endpoint string) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}
	_, err := s.db.Exec(`DELETE FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	return err
}

func scanPushSubscriptions(rows *sql.Rows) ([]*PushSubscription, error) {
	var subs []*PushSubscription
	for rows.Next() {
		var sub PushSubscription
		var userAgent sql.NullString
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256dh, &sub.Auth, &userAgent, &sub.CreatedAt); err != nil {
			return nil, err
		}
		if userAgent.Valid {
			sub.UserAgent = userAgent.String
		}
		subs = append(subs, &sub)
	}
	return subs, rows.Err()
}

// VAPIDKeys represents the VAPID key pair for Web Push.
type VAPIDKeys struct {
	PublicKey  string    `json:"publicKey"`
	PrivateKey string    `json:"privateKey"`
	CreatedAt  time.Time `json:"createdAt"`
}

// GetVAPIDKeys retrieves the VAPID keys. Returns nil before first save.
func (s *Store) GetVAPIDKeys() (*VAPIDKeys, error) {
	if s == nil || s.db == nil {
		return nil, ErrStoreClosed
	}

	row := s.db.QueryRow(`SELECT public_key, private_key, created_at FROM vapid_keys WHERE id = 1`)

	var keys VAPIDKeys
	err := row.Scan(&keys.PublicKey, &keys.PrivateKey, &keys.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &keys, nil
}

// SaveVAPIDKeys saves the VAPID key pair (single row, replaces if exists).
func (s *Store) SaveVAPIDKeys(publicKey, privateKey string) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO vapid_keys (id, public_key, private_key, created_at)
		VALUES (1, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			public_key = excluded.public_key,
			private_key = excluded.private_key,
			created_at = excluded.created_at
	`, publicKey, privateKey)

	return err
}
