package storage

import (
	"fmt"
	"time"
)

// EventType represents the type of storage event emitted.
type EventType string

// Storage event type constants.
const (
	EventEntryCreated EventType = "entry.created"
	EventEntryUpdated EventType = "entry.updated"
	EventEntryDeleted EventType = "entry.deleted"

	EventCheckInCreated EventType = "checkin.created"

	EventSessionRecorded EventType = "session.recorded"

	EventStreakAdvanced EventType = "streak.advanced"
	EventStreakBroken   EventType = "streak.broken"

	EventNotificationSent   EventType = "notification.sent"
	EventNotificationOpened EventType = "notification.opened"
)

// Event represents a change inside the storage layer that other subsystems
// can react to.
type Event struct {
	Type      EventType `json:"type"`
	UserID    string    `json:"userId,omitempty"`
	EntityID  string    `json:"entityId,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Observer reacts to storage events.
type Observer interface {
	HandleStorageEvent(Event)
}

// ObserverFunc is a helper to turn a function into an Observer.
type ObserverFunc func(Event)

// HandleStorageEvent implements the Observer interface.
func (f ObserverFunc) HandleStorageEvent(e Event) {
	f(e)
}

// newEvent is a helper to build a storage event.
func newEvent(eventType EventType, userID string, entityID any, data any) Event {
	entity := ""
	if entityID != nil {
		entity = fmt.Sprintf("%v", entityID)
	}
	return Event{
		Type:      eventType,
		UserID:    userID,
		EntityID:  entity,
		Data:      data,
		Timestamp: time.Now(),
	}
}
