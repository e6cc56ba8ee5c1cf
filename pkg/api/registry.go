package api

import (
	"fmt"
	"sync"
	"time"

	"github.com/odvcencio/ember/pkg/analytics"
	"github.com/odvcencio/ember/pkg/logging"
	"github.com/odvcencio/ember/pkg/metrics"
	"github.com/odvcencio/ember/pkg/signal"
	"github.com/odvcencio/ember/pkg/storage"
	"github.com/odvcencio/ember/pkg/synthesis"
)

// PublishFunc receives every newly published context from any engine the
// registry owns.
type PublishFunc func(userID string, ctx *synthesis.Context, producedAt time.Time, version uint64)

// Registry lazily builds and caches one synthesis engine per user. All
// engines share the store, logger and metrics collectors.
type Registry struct {
	store         *storage.Store
	logger        *logging.Logger
	metrics       *metrics.Metrics
	staleness     time.Duration
	sourceTimeout time.Duration
	onPublish     PublishFunc

	mu      sync.Mutex
	engines map[string]*synthesis.Engine
}

// NewRegistry creates an engine registry over the store.
func NewRegistry(store *storage.Store, logger *logging.Logger) *Registry {
	return &Registry{
		store:   store,
		logger:  logger,
		engines: make(map[string]*synthesis.Engine),
	}
}

// SetMetrics attaches Prometheus collectors to every engine built from now on.
func (r *Registry) SetMetrics(m *metrics.Metrics) { r.metrics = m }

// SetStaleness overrides the cache staleness bound for new engines.
func (r *Registry) SetStaleness(d time.Duration) { r.staleness = d }

// SetSourceTimeout overrides the per-source read timeout for new engines.
func (r *Registry) SetSourceTimeout(d time.Duration) { r.sourceTimeout = d }

// OnPublish registers a callback invoked for every context any engine
// publishes. Must be set before the first EngineFor call.
func (r *Registry) OnPublish(fn PublishFunc) { r.onPublish = fn }

// EngineFor returns the engine for a user, building it on first use.
// Unknown users get an error rather than an engine.
func (r *Registry) EngineFor(userID string) (*synthesis.Engine, error) {
	r.mu.Lock()
	if engine, ok := r.engines[userID]; ok {
		r.mu.Unlock()
		return engine, nil
	}
	r.mu.Unlock()

	profile, err := r.store.GetProfile(userID)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	if profile == nil {
		return nil, fmt.Errorf("unknown user %s", userID)
	}

	engine := r.build(userID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.engines[userID]; ok {
		return existing, nil
	}
	r.engines[userID] = engine
	return engine, nil
}

func (r *Registry) build(userID string) *synthesis.Engine {
	gatherer := signal.NewGatherer(r.store.SourcesFor(userID).Sources(), r.logger)
	if r.sourceTimeout > 0 {
		gatherer.SetTimeout(r.sourceTimeout)
	}
	if r.metrics != nil {
		gatherer.SetFailureRecorder(r.metrics)
	}

	assembler := synthesis.NewAssembler(analytics.NewMoodAnalyzer())
	engine := synthesis.NewEngine(gatherer, assembler, userID, r.logger)
	if r.staleness > 0 {
		engine.SetStaleness(r.staleness)
	}
	if r.metrics != nil {
		engine.SetMetrics(r.metrics)
	}
	if r.onPublish != nil {
		fn := r.onPublish
		engine.Subscribe(func(ctx *synthesis.Context, producedAt time.Time) {
			fn(userID, ctx, producedAt, engine.Version())
		})
	}
	return engine
}
