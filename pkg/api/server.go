// Package api hosts the JSON/HTTP surface: the synthesized context, the
// four feature views, journal writes, and push subscription management.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odvcencio/ember/pkg/push"
	"github.com/odvcencio/ember/pkg/storage"
	"github.com/odvcencio/ember/pkg/synthesis"
	"github.com/odvcencio/ember/pkg/views"
)

// EngineProvider yields the synthesis engine for a user.
type EngineProvider interface {
	EngineFor(userID string) (*synthesis.Engine, error)
}

// Config controls the API server behavior.
type Config struct {
	BindAddress string
	// MetricsHandler, when set, is mounted at /metrics.
	MetricsHandler http.Handler
}

// Server hosts the HTTP API.
type Server struct {
	cfg        Config
	store      *storage.Store
	engines    EngineProvider
	composer   *views.Composer
	worker     *push.Worker
	httpServer *http.Server
	logger     *log.Logger
}

// NewServer constructs a server bound to the provided store and engines.
func NewServer(cfg Config, store *storage.Store, engines EngineProvider, composer *views.Composer, worker *push.Worker) *Server {
	if cfg.BindAddress == "" {
		cfg.BindAddress = "127.0.0.1:4490"
	}
	return &Server{
		cfg:      cfg,
		store:    store,
		engines:  engines,
		composer: composer,
		worker:   worker,
		logger:   log.New(os.Stderr, "[api] ", log.LstdFlags),
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()

	router.Get("/healthz", s.handleHealthz)
	if s.cfg.MetricsHandler != nil {
		router.Method(http.MethodGet, "/metrics", s.cfg.MetricsHandler)
	}

	router.Route("/api", func(r chi.Router) {
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/context", s.handleContext)
			r.Post("/context/refresh", s.handleContextRefresh)

			r.Get("/views/conversation", s.handleConversationView)
			r.Get("/views/therapy", s.handleTherapyView)
			r.Get("/views/notifications", s.handleNotificationView)
			r.Get("/views/home", s.handleHomeView)

			r.Get("/entries", s.handleListEntries)
			r.Post("/entries", s.handleCreateEntry)
			r.Post("/checkins", s.handleCreateCheckIn)
			r.Post("/sessions", s.handleRecordSession)
		})

		r.Post("/users", s.handleCreateProfile)

		r.Route("/push", func(r chi.Router) {
			r.Get("/vapid-public-key", s.handleVAPIDPublicKey)
			r.Post("/subscribe", s.handlePushSubscribe)
			r.Delete("/subscribe", s.handlePushUnsubscribe)
		})

		r.Post("/notifications/{notificationID}/opened", s.handleNotificationOpened)
	})

	return router
}

// Start begins serving until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.BindAddress,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Printf("listening on %s", s.cfg.BindAddress)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.store != nil && s.store.DB() != nil {
		if err := s.store.DB().PingContext(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, errors.New("database unavailable"))
			return
		}
	}
	respondJSON(w, map[string]string{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

// userContext resolves the engine and current context for a request.
func (s *Server) userContext(w http.ResponseWriter, r *http.Request) (string, *synthesis.Context, bool) {
	userID := chi.URLParam(r, "userID")
	engine, err := s.engines.EngineFor(userID)
	if err != nil {
		respondError(w, http.StatusNotFound, err)
		return "", nil, false
	}
	return userID, engine.CurrentContext(r.Context()), true
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	engine, err := s.engines.EngineFor(userID)
	if err != nil {
		respondError(w, http.StatusNotFound, err)
		return
	}

	ctx := engine.CurrentContext(r.Context())
	respondJSON(w, map[string]any{
		"context":    ctx,
		"producedAt": engine.ProducedAt(),
		"version":    engine.Version(),
	})
}

func (s *Server) handleContextRefresh(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	engine, err := s.engines.EngineFor(userID)
	if err != nil {
		respondError(w, http.StatusNotFound, err)
		return
	}

	ctx, err := engine.Refresh(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, err)
		return
	}
	respondJSON(w, map[string]any{
		"context":    ctx,
		"producedAt": engine.ProducedAt(),
		"version":    engine.Version(),
	})
}

func (s *Server) handleConversationView(w http.ResponseWriter, r *http.Request) {
	userID, ctx, ok := s.userContext(w, r)
	if !ok {
		return
	}
	view, err := s.composer.Conversation(userID, ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, view)
}

func (s *Server) handleTherapyView(w http.ResponseWriter, r *http.Request) {
	userID, ctx, ok := s.userContext(w, r)
	if !ok {
		return
	}
	view, err := s.composer.Therapy(userID, ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, view)
}

func (s *Server) handleNotificationView(w http.ResponseWriter, r *http.Request) {
	userID, ctx, ok := s.userContext(w, r)
	if !ok {
		return
	}
	view, err := s.composer.NotificationPolicy(userID, ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, view)
}

func (s *Server) handleHomeView(w http.ResponseWriter, r *http.Request) {
	userID, ctx, ok := s.userContext(w, r)
	if !ok {
		return
	}
	view, err := s.composer.Home(userID, ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, view)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	limit := parseIntDefault(r.URL.Query().Get("limit"), 30)

	entries, err := s.store.RecentEntries(userID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, map[string]any{"entries": entries})
}

func respondJSON(w http.ResponseWriter, payload any) {
	respondStatus(w, http.StatusOK, payload)
}

func respondStatus(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	message := "internal error"
	if err != nil {
		message = err.Error()
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func parseIntDefault(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
