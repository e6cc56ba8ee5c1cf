package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odvcencio/ember/pkg/storage"
)

func (s *Server) handleVAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	if s.worker == nil {
		respondError(w, http.StatusServiceUnavailable, errors.New("push not configured"))
		return
	}
	respondJSON(w, map[string]string{"publicKey": s.worker.PublicKey()})
}

type subscribeRequest struct {
	UserID   string `json:"userId"`
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

func (s *Server) handlePushSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Endpoint) == "" ||
		req.Keys.P256dh == "" || req.Keys.Auth == "" {
		respondError(w, http.StatusBadRequest, errors.New("userId, endpoint and keys are required"))
		return
	}

	sub := &storage.PushSubscription{
		UserID:    req.UserID,
		Endpoint:  req.Endpoint,
		P256dh:    req.Keys.P256dh,
		Auth:      req.Keys.Auth,
		UserAgent: r.UserAgent(),
	}
	if err := s.store.SavePushSubscription(sub); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondStatus(w, http.StatusCreated, map[string]string{"id": sub.ID})
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

func (s *Server) handlePushUnsubscribe(w http.ResponseWriter, r *http.Request) {
	var req unsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Endpoint) == "" {
		respondError(w, http.StatusBadRequest, errors.New("endpoint is required"))
		return
	}

	if err := s.store.DeletePushSubscriptionByEndpoint(req.Endpoint); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, map[string]string{"status": "unsubscribed"})
}

func (s *Server) handleNotificationOpened(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "notificationID")
	if err := s.store.MarkNotificationOpened(id, time.Now()); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, map[string]string{"status": "recorded"})
}
