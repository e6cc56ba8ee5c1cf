// Package push implements Web Push notification delivery, gated by the
// per-user notification policy view.
package push

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/odvcencio/ember/pkg/bus"
	"github.com/odvcencio/ember/pkg/storage"
	"github.com/odvcencio/ember/pkg/views"
)

// Kind classifies a push notification.
type Kind string

const (
	// KindReminder nudges the user toward a journal entry or check-in.
	KindReminder Kind = "reminder"
	// KindCelebration marks a streak milestone or other win.
	KindCelebration Kind = "celebration"
	// KindUpdate covers everything else.
	KindUpdate Kind = "update"
)

// Payload represents the data sent in a push notification.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Kind  Kind   `json:"kind"`
	Tag   string `json:"tag,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Job is one queued delivery.
type Job struct {
	UserID  string  `json:"userId"`
	Payload Payload `json:"payload"`
}

// celebrationMilestones are the streak lengths worth a push.
var celebrationMilestones = map[int]bool{7: true, 14: true, 30: true, 60: true, 100: true}

// VAPIDKeyPair holds the VAPID key pair for Web Push.
type VAPIDKeyPair struct {
	PublicKey  string
	PrivateKey string
}

// PolicySource yields the notification-policy view for a user.
type PolicySource interface {
	PolicyFor(ctx context.Context, userID string) (views.NotificationPolicyView, error)
}

// Worker sends push notifications to subscribed browsers. Deliveries flow
// through the bus task queue so a burst of milestone events cannot pile
// straight onto the push service.
type Worker struct {
	store    *storage.Store
	queue    bus.TaskQueue
	policy   PolicySource
	mu       sync.RWMutex
	vapidKey *VAPIDKeyPair
	subject  string // mailto: or https:// URL
	running  bool
	done     chan struct{}
	sendFn   func(context.Context, *storage.PushSubscription, []byte) error
	clock    func() time.Time
}

// Config holds configuration for the push worker.
type Config struct {
	// Subject is the mailto: or https:// URL for VAPID.
	Subject string
}

// NewWorker creates a new push notification worker.
func NewWorker(store *storage.Store, queue bus.TaskQueue, policy PolicySource, cfg *Config) (*Worker, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	subject := cfg.Subject
	if subject == "" {
		subject = "mailto:hello@ember.app"
	}

	w := &Worker{
		store:   store,
		queue:   queue,
		policy:  policy,
		subject: subject,
		done:    make(chan struct{}),
		clock:   time.Now,
	}

	if err := w.ensureVAPIDKeys(); err != nil {
		return nil, fmt.Errorf("vapid keys: %w", err)
	}

	return w, nil
}

// ensureVAPIDKeys loads existing keys or generates new ones.
func (w *Worker) ensureVAPIDKeys() error {
	keys, err := w.store.GetVAPIDKeys()
	if err != nil {
		return fmt.Errorf("get vapid keys: %w", err)
	}

	if keys != nil && keys.PrivateKey != "" && keys.PublicKey != "" {
		w.vapidKey = &VAPIDKeyPair{
			PrivateKey: keys.PrivateKey,
			PublicKey:  keys.PublicKey,
		}
		return nil
	}

	privKey, pubKey, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		return fmt.Errorf("generate vapid keys: %w", err)
	}

	if err := w.store.SaveVAPIDKeys(pubKey, privKey); err != nil {
		return fmt.Errorf("save vapid keys: %w", err)
	}

	w.vapidKey = &VAPIDKeyPair{
		PrivateKey: privKey,
		PublicKey:  pubKey,
	}

	log.Printf("[push] Generated new VAPID keys")
	return nil
}

// PublicKey returns the VAPID public key for client subscription.
func (w *Worker) PublicKey() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.vapidKey == nil {
		return ""
	}
	return w.vapidKey.PublicKey
}

// Start begins consuming the delivery queue and watching storage events
// for milestone celebrations.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.store.AddObserver(storage.ObserverFunc(func(event storage.Event) {
		w.handleEvent(ctx, event)
	}))

	go w.consume(ctx)

	go func() {
		select {
		case <-ctx.Done():
		case <-w.done:
		}
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	return nil
}

// Stop stops the push worker.
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.running {
		close(w.done)
	}
	w.mu.Unlock()
}

// Enqueue queues a notification for delivery.
func (w *Worker) Enqueue(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return w.queue.Push(ctx, data)
}

// consume pulls queued jobs and delivers them until the context ends.
func (w *Worker) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		default:
		}

		task, err := w.queue.Pull(ctx)
		if err != nil {
			if ctx.Err() != nil || err == bus.ErrClosed {
				return
			}
			if err != bus.ErrQueueEmpty {
				log.Printf("[push] queue pull: %v", err)
			}
			continue
		}

		var job Job
		if err := json.Unmarshal(task.Data, &job); err != nil {
			log.Printf("[push] malformed job dropped: %v", err)
			_ = w.queue.Ack(ctx, task.ID)
			continue
		}

		if err := w.Deliver(ctx, job); err != nil {
			log.Printf("[push] deliver to %s: %v", job.UserID, err)
		}
		_ = w.queue.Ack(ctx, task.ID)
	}
}

// handleEvent turns storage events into queued celebrations.
func (w *Worker) handleEvent(ctx context.Context, event storage.Event) {
	if event.Type != storage.EventStreakAdvanced {
		return
	}
	current, ok := event.Data.(int)
	if !ok || !celebrationMilestones[current] {
		return
	}

	track := "journaling"
	if event.EntityID == storage.TrackCheckIn {
		track = "check-in"
	}

	job := Job{
		UserID: event.UserID,
		Payload: Payload{
			Title: fmt.Sprintf("%d days strong", current),
			Body:  fmt.Sprintf("Your %s streak just hit %d days.", track, current),
			Kind:  KindCelebration,
			Tag:   fmt.Sprintf("streak-%s-%d", event.EntityID, current),
		},
	}
	if err := w.Enqueue(ctx, job); err != nil {
		log.Printf("[push] enqueue celebration: %v", err)
	}
}

// Deliver sends one job, honoring the notification policy. Blocked sends
// are dropped, not retried; the next synthesis cycle may queue a new one.
func (w *Worker) Deliver(ctx context.Context, job Job) error {
	now := w.clock()

	if w.policy != nil {
		view, err := w.policy.PolicyFor(ctx, job.UserID)
		if err != nil {
			return fmt.Errorf("policy for %s: %w", job.UserID, err)
		}
		if ok, reason := ShouldSend(view, now); !ok {
			log.Printf("[push] held notification for %s: %s", job.UserID, reason)
			return nil
		}
	}

	if err := w.SendToUser(ctx, job.UserID, &job.Payload); err != nil {
		return err
	}

	if _, err := w.store.RecordNotification(job.UserID, job.Payload.Title, job.Payload.Body, now); err != nil {
		return fmt.Errorf("record notification: %w", err)
	}
	return nil
}

// SendToUser sends a notification to every browser the user subscribed.
func (w *Worker) SendToUser(ctx context.Context, userID string, payload *Payload) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil
	}

	subs, err := w.store.GetPushSubscriptionsByUser(userID)
	if err != nil {
		return fmt.Errorf("list subscriptions: %w", err)
	}
	return w.sendToSubscriptions(ctx, subs, payload)
}

func (w *Worker) sendToSubscriptions(ctx context.Context, subs []*storage.PushSubscription, payload *Payload) error {
	if len(subs) == 0 {
		return nil
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	sendFn := w.sendFn
	if sendFn == nil {
		sendFn = w.send
	}

	var wg sync.WaitGroup
	var failures int
	var failureMu sync.Mutex

	for _, sub := range subs {
		wg.Add(1)
		go func(sub *storage.PushSubscription) {
			defer wg.Done()

			if err := sendFn(ctx, sub, payloadBytes); err != nil {
				preview := sub.Endpoint
				if len(preview) > 50 {
					preview = preview[:50]
				}
				log.Printf("[push] Failed to send to %s: %v", preview, err)
				failureMu.Lock()
				failures++
				failureMu.Unlock()

				// Remove invalid subscriptions
				if isGone(err) {
					_ = w.store.DeletePushSubscriptionByEndpoint(sub.Endpoint)
				}
			}
		}(sub)
	}

	wg.Wait()

	if failures == len(subs) {
		return fmt.Errorf("all %d notifications failed", failures)
	}

	return nil
}

// send delivers a push notification to a single subscription.
func (w *Worker) send(ctx context.Context, sub *storage.PushSubscription, payload []byte) error {
	w.mu.RLock()
	vapidKey := w.vapidKey
	subject := w.subject
	w.mu.RUnlock()

	if vapidKey == nil {
		return fmt.Errorf("no VAPID keys configured")
	}

	subscription := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}

	options := &webpush.Options{
		Subscriber:      subject,
		VAPIDPublicKey:  vapidKey.PublicKey,
		VAPIDPrivateKey: vapidKey.PrivateKey,
		TTL:             3600, // 1 hour
		Urgency:         webpush.UrgencyNormal,
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, subscription, options)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("push failed with status %d", resp.StatusCode)
	}

	return nil
}

// isGone checks if the error indicates the subscription is no longer valid.
func isGone(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "410") || strings.Contains(errStr, "404") ||
		strings.Contains(errStr, "gone")
}
