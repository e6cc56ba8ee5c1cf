package views

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/odvcencio/ember/pkg/signal"
	"github.com/odvcencio/ember/pkg/storage"
	"github.com/odvcencio/ember/pkg/synthesis"
)

func newComposerFixture(t *testing.T) (*Composer, *storage.Store, string) {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "ember.db"))
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	userID, err := store.CreateProfile("Sam")
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	return NewComposer(store), store, userID
}

func TestComposerNotificationPolicy(t *testing.T) {
	composer, store, userID := newComposerFixture(t)

	now := time.Date(2026, 8, 20, 15, 0, 0, 0, time.UTC)
	composer.SetClock(func() time.Time { return now })

	if _, err := store.CreateEntry(userID, &signal.Entry{
		Text: "morning pages", CreatedAt: now.Add(-6 * time.Hour),
	}); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if _, err := store.RecordNotification(userID, "t", "b", now.Add(-5*time.Hour)); err != nil {
		t.Fatalf("RecordNotification: %v", err)
	}

	ctx := synthesis.EmptyContext("Sam", now)
	view, err := composer.NotificationPolicy(userID, ctx)
	if err != nil {
		t.Fatalf("NotificationPolicy: %v", err)
	}

	if view.SentToday != 1 {
		t.Errorf("SentToday = %d, want 1", view.SentToday)
	}
	if view.LastNotificationAt.IsZero() {
		t.Error("LastNotificationAt is zero")
	}
	if view.LastAppOpenAt.IsZero() {
		t.Error("LastAppOpenAt is zero")
	}
	if len(view.PreferredHours) != 1 || view.PreferredHours[0] != 9 {
		t.Errorf("PreferredHours = %v, want [9]", view.PreferredHours)
	}
}

func TestComposerHome(t *testing.T) {
	composer, store, userID := newComposerFixture(t)

	now := time.Date(2026, 8, 20, 15, 0, 0, 0, time.UTC)
	composer.SetClock(func() time.Time { return now })
	composer.SetRand(func() float64 { return 0.99 })

	if _, err := store.CreateEntry(userID, &signal.Entry{Text: "done", CreatedAt: now}); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if err := store.RecordActivity(userID, storage.TrackJournal, now); err != nil {
		t.Fatalf("RecordActivity: %v", err)
	}

	ctx := synthesis.EmptyContext("Sam", now)
	view, err := composer.Home(userID, ctx)
	if err != nil {
		t.Fatalf("Home: %v", err)
	}

	if view.SurfaceMemory {
		t.Error("SurfaceMemory = true with high roll")
	}
	// Wrote today, has a streak, no check-in yet.
	if view.SuggestedAction != ActionKeepStreak {
		t.Errorf("SuggestedAction = %q, want %q", view.SuggestedAction, ActionKeepStreak)
	}
	if view.DayTheme != ThemeForDay(now.Weekday()) {
		t.Errorf("DayTheme = %+v", view.DayTheme)
	}
}

func TestComposerConversationLastInteraction(t *testing.T) {
	composer, store, userID := newComposerFixture(t)

	entryAt := time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC)
	checkinAt := time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC)
	if _, err := store.CreateEntry(userID, &signal.Entry{Text: "hello", CreatedAt: entryAt}); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if _, err := store.CreateShortEntry(userID, &signal.ShortEntry{Text: "ok", CreatedAt: checkinAt}); err != nil {
		t.Fatalf("CreateShortEntry: %v", err)
	}

	ctx := synthesis.EmptyContext("Sam", time.Now())
	view, err := composer.Conversation(userID, ctx)
	if err != nil {
		t.Fatalf("Conversation: %v", err)
	}
	if !view.LastInteractionAt.Equal(checkinAt) {
		t.Errorf("LastInteractionAt = %v, want %v (newer check-in)", view.LastInteractionAt, checkinAt)
	}
}
