package views

import (
	"math/rand"
	"time"

	"github.com/odvcencio/ember/pkg/signal"
	"github.com/odvcencio/ember/pkg/storage"
	"github.com/odvcencio/ember/pkg/synthesis"
)

// openRateWindow is the trailing window the notification open rate covers.
const openRateWindow = 14 * 24 * time.Hour

// Composer builds view extras from storage and runs the projectors. The
// projectors themselves stay pure; everything stateful lives here.
type Composer struct {
	store *storage.Store
	clock func() time.Time
	rand  func() float64
}

// NewComposer creates a view composer over the given store.
func NewComposer(store *storage.Store) *Composer {
	return &Composer{
		store: store,
		clock: time.Now,
		rand:  rand.Float64,
	}
}

// SetClock overrides the composer's clock.
func (c *Composer) SetClock(clock func() time.Time) {
	if clock != nil {
		c.clock = clock
	}
}

// SetRand overrides the random source the home view uses.
func (c *Composer) SetRand(random func() float64) {
	if random != nil {
		c.rand = random
	}
}

// Conversation builds the conversation view for a user.
func (c *Composer) Conversation(userID string, ctx *synthesis.Context) (ConversationView, error) {
	entries, err := c.store.RecentEntries(userID, 30)
	if err != nil {
		return ConversationView{}, err
	}
	last, err := c.lastInteraction(userID, entries)
	if err != nil {
		return ConversationView{}, err
	}
	return ProjectConversation(ctx, ConversationExtras{
		RecentEntries:     entries,
		LastInteractionAt: last,
	}), nil
}

// Therapy builds the therapy-session view for a user.
func (c *Composer) Therapy(userID string, ctx *synthesis.Context) (TherapyView, error) {
	entries, err := c.store.RecentEntries(userID, 30)
	if err != nil {
		return TherapyView{}, err
	}
	sessions, err := c.store.RecentSessions(userID, 10)
	if err != nil {
		return TherapyView{}, err
	}
	return ProjectTherapy(ctx, TherapyExtras{
		RecentEntries: entries,
		Sessions:      sessions,
	}), nil
}

// NotificationPolicy builds the notification-policy view for a user.
func (c *Composer) NotificationPolicy(userID string, ctx *synthesis.Context) (NotificationPolicyView, error) {
	now := c.clock()

	entries, err := c.store.RecentEntries(userID, 30)
	if err != nil {
		return NotificationPolicyView{}, err
	}
	lastNotification, err := c.store.LastNotificationAt(userID)
	if err != nil {
		return NotificationPolicyView{}, err
	}
	sentToday, err := c.store.NotificationsSentOn(userID, now)
	if err != nil {
		return NotificationPolicyView{}, err
	}
	openRate, err := c.store.NotificationOpenRate(userID, now.Add(-openRateWindow))
	if err != nil {
		return NotificationPolicyView{}, err
	}
	lastOpen, err := c.lastInteraction(userID, entries)
	if err != nil {
		return NotificationPolicyView{}, err
	}

	return ProjectNotificationPolicy(ctx, NotificationExtras{
		LastNotificationAt: lastNotification,
		SentToday:          sentToday,
		OpenRate:           openRate,
		LastAppOpenAt:      lastOpen,
		RecentEntries:      entries,
	}), nil
}

// Home builds the home-personalization view for a user.
func (c *Composer) Home(userID string, ctx *synthesis.Context) (HomeView, error) {
	now := c.clock()

	wroteToday, err := c.store.HasEntryOn(userID, now)
	if err != nil {
		return HomeView{}, err
	}
	checkedIn, err := c.store.HasShortEntryOn(userID, now)
	if err != nil {
		return HomeView{}, err
	}
	sessionCount, err := c.store.CountSessions(userID)
	if err != nil {
		return HomeView{}, err
	}
	streaks, err := c.store.GetStreaks(userID, now)
	if err != nil {
		return HomeView{}, err
	}

	return ProjectHome(ctx, HomeExtras{
		WroteToday:     wroteToday,
		CheckedInToday: checkedIn,
		SessionCount:   sessionCount,
		JournalStreak:  streaks.Journal.Current,
		Rand:           c.rand,
	}), nil
}

// lastInteraction is the newest entry or check-in timestamp, zero when the
// user has never written anything.
func (c *Composer) lastInteraction(userID string, entries []signal.Entry) (time.Time, error) {
	var last time.Time
	if len(entries) > 0 {
		last = entries[0].CreatedAt
	}
	shorts, err := c.store.RecentShortEntries(userID, 1)
	if err != nil {
		return time.Time{}, err
	}
	if len(shorts) > 0 && shorts[0].CreatedAt.After(last) {
		last = shorts[0].CreatedAt
	}
	return last, nil
}
