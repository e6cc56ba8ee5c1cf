package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	ctx := context.Background()
	received := make(chan *Message, 1)

	sub, err := bus.Subscribe(ctx, SubjectContextUpdated, func(msg *Message) {
		received <- msg
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Unsubscribe()

	payload, _ := json.Marshal(ContextUpdated{UserID: "user-1", Version: 3})
	if err := bus.Publish(ctx, SubjectContextUpdated, payload); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case msg := <-received:
		if msg.Subject != SubjectContextUpdated {
			t.Errorf("Expected subject %q, got %q", SubjectContextUpdated, msg.Subject)
		}
		var event ContextUpdated
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if event.UserID != "user-1" || event.Version != 3 {
			t.Errorf("Unexpected event: %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for message")
	}
}

func TestMemoryBus_Wildcard(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	ctx := context.Background()
	var received atomic.Int32

	sub, err := bus.Subscribe(ctx, "ember.context.*", func(msg *Message) {
		received.Add(1)
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Unsubscribe()

	bus.Publish(ctx, "ember.context.updated", []byte("1"))
	bus.Publish(ctx, "ember.context.invalidated", []byte("2"))
	bus.Publish(ctx, "ember.notify.sent", []byte("3")) // Should not match

	time.Sleep(100 * time.Millisecond)

	if received.Load() != 2 {
		t.Errorf("Expected 2 messages, got %d", received.Load())
	}
}

func TestMemoryBus_WildcardGreaterThan(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	ctx := context.Background()
	var received atomic.Int32

	// ">" matches the whole remaining tail
	sub, err := bus.Subscribe(ctx, "ember.>", func(msg *Message) {
		received.Add(1)
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Unsubscribe()

	bus.Publish(ctx, "ember.context.updated", []byte("1"))
	bus.Publish(ctx, "ember.notify.user-9.sent", []byte("2"))
	bus.Publish(ctx, "elsewhere.thing", []byte("3")) // Should not match

	time.Sleep(100 * time.Millisecond)

	if received.Load() != 2 {
		t.Errorf("Expected 2 messages, got %d", received.Load())
	}
}

func TestMemoryBus_FanoutToSurfaces(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	ctx := context.Background()
	var count atomic.Int32

	// Each feature surface holds its own subscription to context updates.
	for i := 0; i < 3; i++ {
		sub, err := bus.Subscribe(ctx, SubjectContextUpdated, func(msg *Message) {
			count.Add(1)
		})
		if err != nil {
			t.Fatalf("Subscribe failed: %v", err)
		}
		defer sub.Unsubscribe()
	}

	bus.Publish(ctx, SubjectContextUpdated, []byte(`{"userId":"user-1"}`))
	time.Sleep(100 * time.Millisecond)

	if count.Load() != 3 {
		t.Errorf("Expected 3 surfaces to receive the update, got %d", count.Load())
	}
}

func TestMemoryBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	ctx := context.Background()
	var received atomic.Int32

	sub, _ := bus.Subscribe(ctx, SubjectContextUpdated, func(msg *Message) {
		received.Add(1)
	})

	bus.Publish(ctx, SubjectContextUpdated, []byte("1"))
	time.Sleep(50 * time.Millisecond)

	sub.Unsubscribe()

	bus.Publish(ctx, SubjectContextUpdated, []byte("2"))
	time.Sleep(50 * time.Millisecond)

	if received.Load() != 1 {
		t.Errorf("Expected 1 message after unsubscribe, got %d", received.Load())
	}
}

func TestMemoryQueue_PushPull(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	ctx := context.Background()
	queue := bus.Queue(QueueNotifications)

	for i := 0; i < 5; i++ {
		err := queue.Push(ctx, []byte(fmt.Sprintf("delivery-%d", i)))
		if err != nil {
			t.Fatalf("Push failed: %v", err)
		}
	}

	length, _ := queue.Len(ctx)
	if length != 5 {
		t.Errorf("Expected queue length 5, got %d", length)
	}

	for i := 0; i < 5; i++ {
		task, err := queue.Pull(ctx)
		if err != nil {
			t.Fatalf("Pull failed: %v", err)
		}
		want := fmt.Sprintf("delivery-%d", i)
		if string(task.Data) != want {
			t.Errorf("Expected task data %q, got %q", want, string(task.Data))
		}
		queue.Ack(ctx, task.ID)
	}
}

func TestMemoryQueue_NackRequeues(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	ctx := context.Background()
	queue := bus.Queue(QueueNotifications)

	queue.Push(ctx, []byte("delivery-1"))

	task, _ := queue.Pull(ctx)
	queue.Nack(ctx, task.ID)

	task2, err := queue.Pull(ctx)
	if err != nil {
		t.Fatalf("Second pull failed: %v", err)
	}
	if string(task2.Data) != "delivery-1" {
		t.Errorf("Expected same task after nack, got %q", string(task2.Data))
	}
}

func TestMemoryQueue_ConcurrentWorkers(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	ctx := context.Background()
	queue := bus.Queue(QueueNotifications)

	taskCount := 100
	for i := 0; i < taskCount; i++ {
		queue.Push(ctx, []byte{byte(i)})
	}

	var processed atomic.Int32
	var wg sync.WaitGroup

	workerCount := 5
	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				task, err := queue.Pull(ctx)
				cancel()
				if err != nil {
					return
				}
				processed.Add(1)
				queue.Ack(ctx, task.ID)
			}
		}()
	}

	wg.Wait()

	if processed.Load() != int32(taskCount) {
		t.Errorf("Expected %d processed tasks, got %d", taskCount, processed.Load())
	}
}

func TestMatchSubject(t *testing.T) {
	tests := []struct {
		pattern string
		subject string
		want    bool
	}{
		{"ember.context.updated", "ember.context.updated", true},
		{"ember.context.updated", "ember.notify.sent", false},
		{"ember.context.*", "ember.context.updated", true},
		{"ember.context.*", "ember.context", false},
		{"ember.context.*", "ember.context.updated.extra", false},
		{"ember.>", "ember.context.updated", true},
		{"ember.>", "ember.notify.user-9.sent", true},
		{"ember.>", "elsewhere.thing", false},
		{"*.context.updated", "ember.context.updated", true},
		{"*.context.updated", "ember.notify.sent", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.subject, func(t *testing.T) {
			got := matchSubject(tt.pattern, tt.subject)
			if got != tt.want {
				t.Errorf("matchSubject(%q, %q) = %v, want %v", tt.pattern, tt.subject, got, tt.want)
			}
		})
	}
}

func TestMemoryBus_ClosedOperations(t *testing.T) {
	bus := NewMemoryBus()
	bus.Close()

	ctx := context.Background()

	if err := bus.Publish(ctx, SubjectContextUpdated, []byte("data")); err != ErrClosed {
		t.Errorf("Expected ErrClosed on publish, got %v", err)
	}

	if _, err := bus.Subscribe(ctx, SubjectContextUpdated, nil); err != ErrClosed {
		t.Errorf("Expected ErrClosed on subscribe, got %v", err)
	}

	if err := bus.Close(); err != ErrClosed {
		t.Errorf("Expected ErrClosed on second close, got %v", err)
	}
}
