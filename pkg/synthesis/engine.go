package synthesis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/singleflight"

	emberrors "github.com/odvcencio/ember/pkg/errors"
	"github.com/odvcencio/ember/pkg/logging"
	"github.com/odvcencio/ember/pkg/signal"
)

// DefaultStaleness is how old a cached context may get before a request
// triggers a refresh. Staleness is checked lazily at request time; there is
// no background timer.
const DefaultStaleness = 5 * time.Minute

// refreshKey is the singleflight key: one user model, one in-flight gather.
const refreshKey = "refresh"

// EngineMetrics observes cache behavior. Implemented by the metrics
// package; all call sites tolerate nil.
type EngineMetrics interface {
	CacheHit()
	CacheMiss()
	RefreshDone(d time.Duration, ok bool)
	WaiterCoalesced()
}

// Subscriber receives each newly published context.
type Subscriber func(ctx *Context, producedAt time.Time)

// Engine owns the single cache slot for the canonical context. It refreshes
// lazily on stale reads, coalesces overlapping refreshes into one gather,
// and replaces the slot atomically so no reader ever observes a partial
// context.
type Engine struct {
	gatherer  *signal.Gatherer
	assembler *Assembler
	userID    string
	staleness time.Duration
	clock     func() time.Time

	logger  *logging.Logger
	metrics EngineMetrics

	mu         sync.RWMutex
	current    *Context
	producedAt time.Time
	version    uint64

	flight singleflight.Group

	subMu sync.RWMutex
	subs  map[string]Subscriber
}

// NewEngine creates a synthesis engine for one user.
func NewEngine(gatherer *signal.Gatherer, assembler *Assembler, userID string, logger *logging.Logger) *Engine {
	return &Engine{
		gatherer:  gatherer,
		assembler: assembler,
		userID:    userID,
		staleness: DefaultStaleness,
		clock:     time.Now,
		logger:    logger,
		subs:      make(map[string]Subscriber),
	}
}

// SetStaleness overrides the staleness threshold.
func (e *Engine) SetStaleness(d time.Duration) {
	if d > 0 {
		e.staleness = d
	}
}

// SetClock overrides the time source for tests.
func (e *Engine) SetClock(clock func() time.Time) {
	if clock != nil {
		e.clock = clock
	}
}

// SetMetrics wires the metrics sink.
func (e *Engine) SetMetrics(m EngineMetrics) {
	e.metrics = m
}

// CurrentContext returns the canonical context, refreshing first when the
// cached one is stale. The wait is bounded by ctx: a cancelled caller gets
// the last-known-good context (or the empty default) immediately while the
// in-flight refresh completes and publishes in the background.
func (e *Engine) CurrentContext(ctx context.Context) *Context {
	e.mu.RLock()
	current := e.current
	producedAt := e.producedAt
	e.mu.RUnlock()

	if current != nil && e.clock().Sub(producedAt) <= e.staleness {
		if e.metrics != nil {
			e.metrics.CacheHit()
		}
		return current
	}
	if e.metrics != nil {
		e.metrics.CacheMiss()
	}

	fresh, err := e.refresh(ctx)
	if err == nil {
		return fresh
	}

	// Soft failure: serve last-known-good, or the neutral default on a
	// cold start.
	if current != nil {
		return current
	}
	return EmptyContext("", e.clock())
}

// Refresh forces a synthesis cycle regardless of staleness and returns the
// published context.
func (e *Engine) Refresh(ctx context.Context) (*Context, error) {
	return e.refresh(ctx)
}

// CachedContext returns the cached context without triggering a refresh,
// or the empty default when no synthesis has completed yet.
func (e *Engine) CachedContext() *Context {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.current == nil {
		return EmptyContext("", e.clock())
	}
	return e.current
}

// ProducedAt returns when the cached context was published. Zero before
// the first synthesis.
func (e *Engine) ProducedAt() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.producedAt
}

// Version returns a counter that increments on every publish, for pollers
// that prefer not to subscribe.
func (e *Engine) Version() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.version
}

// Subscribe registers a callback for every newly published context and
// returns a cancel function. Callbacks run on the publishing goroutine and
// should return quickly.
func (e *Engine) Subscribe(fn Subscriber) (cancel func()) {
	id := ulid.Make().String()
	e.subMu.Lock()
	e.subs[id] = fn
	e.subMu.Unlock()

	return func() {
		e.subMu.Lock()
		delete(e.subs, id)
		e.subMu.Unlock()
	}
}

// refresh coalesces overlapping callers into a single synthesis cycle. The
// cycle itself runs detached from any one caller's context so an abandoned
// request still warms the cache.
func (e *Engine) refresh(ctx context.Context) (*Context, error) {
	ch := e.flight.DoChan(refreshKey, func() (any, error) {
		return e.synthesize(context.Background())
	})

	select {
	case result := <-ch:
		if result.Err != nil {
			return nil, result.Err
		}
		if result.Shared && e.metrics != nil {
			e.metrics.WaiterCoalesced()
		}
		return result.Val.(*Context), nil
	case <-ctx.Done():
		return nil, emberrors.Wrap(ctx.Err(), emberrors.ErrCodeContextStale, "refresh wait abandoned").
			WithRetryable(true)
	}
}

// synthesize runs one full cycle: gather, classify, publish. A panicking
// classifier is converted into a SynthesisFailure and the cache keeps the
// last-known-good context.
func (e *Engine) synthesize(ctx context.Context) (result *Context, err error) {
	start := e.clock()
	cycleID := ulid.Make().String()
	if e.logger != nil {
		e.logger.SetCycleID(cycleID)
	}

	defer func() {
		if r := recover(); r != nil {
			err = emberrors.New(emberrors.ErrCodeSynthesisFailure, fmt.Sprintf("classifier panic: %v", r)).
				WithContext("cycle_id", cycleID)
			result = nil
			if e.logger != nil {
				e.logger.Error(logging.CategorySynthesis, "synthesis_panic", err.Error(), nil)
			}
		}
		if e.metrics != nil {
			e.metrics.RefreshDone(e.clock().Sub(start), err == nil)
		}
	}()

	bundle := e.gatherer.Gather(ctx, e.userID)
	fresh := e.assembler.Assemble(bundle, e.clock())

	producedAt := e.publish(fresh)

	if e.logger != nil {
		e.logger.Info(logging.CategorySynthesis, "context_built", "published fresh context", map[string]any{
			"archetype":  string(fresh.Archetype),
			"engagement": string(fresh.Engagement),
			"trust":      string(fresh.Trust),
			"entries":    bundle.EntryCount(),
		})
	}

	e.notify(fresh, producedAt)
	return fresh, nil
}

// publish atomically replaces the cache slot. producedAt strictly
// increases across replacements even under clock skew.
func (e *Engine) publish(fresh *Context) time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()

	producedAt := e.clock()
	if !producedAt.After(e.producedAt) {
		producedAt = e.producedAt.Add(time.Nanosecond)
	}
	e.current = fresh
	e.producedAt = producedAt
	e.version++
	return producedAt
}

func (e *Engine) notify(fresh *Context, producedAt time.Time) {
	e.subMu.RLock()
	subs := make([]Subscriber, 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	e.subMu.RUnlock()

	for _, fn := range subs {
		fn(fresh, producedAt)
	}
}
