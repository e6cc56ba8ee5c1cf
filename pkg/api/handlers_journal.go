package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odvcencio/ember/pkg/signal"
	"github.com/odvcencio/ember/pkg/storage"
)

type createProfileRequest struct {
	DisplayName string `json:"displayName"`
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		respondError(w, http.StatusBadRequest, errors.New("displayName is required"))
		return
	}

	userID, err := s.store.CreateProfile(req.DisplayName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondStatus(w, http.StatusCreated, map[string]string{"userId": userID})
}

type createEntryRequest struct {
	Text string   `json:"text"`
	Mood string   `json:"mood,omitempty"`
	Tags []string `json:"tags,omitempty"`
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, errors.New("text is required"))
		return
	}

	id, err := s.store.CreateEntry(userID, &signal.Entry{
		Text: req.Text,
		Mood: req.Mood,
		Tags: req.Tags,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.store.RecordActivity(userID, storage.TrackJournal, time.Now()); err != nil {
		s.logger.Printf("record journal activity: %v", err)
	}

	respondStatus(w, http.StatusCreated, map[string]string{"id": id})
}

type createCheckInRequest struct {
	Text string `json:"text"`
	Mood string `json:"mood,omitempty"`
}

func (s *Server) handleCreateCheckIn(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req createCheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" && strings.TrimSpace(req.Mood) == "" {
		respondError(w, http.StatusBadRequest, errors.New("text or mood is required"))
		return
	}

	id, err := s.store.CreateShortEntry(userID, &signal.ShortEntry{
		Text: req.Text,
		Mood: req.Mood,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.store.RecordActivity(userID, storage.TrackCheckIn, time.Now()); err != nil {
		s.logger.Printf("record check-in activity: %v", err)
	}

	respondStatus(w, http.StatusCreated, map[string]string{"id": id})
}

type recordSessionRequest struct {
	Summary       string   `json:"summary"`
	Techniques    []string `json:"techniques,omitempty"`
	CrisisFlagged bool     `json:"crisisFlagged,omitempty"`
}

func (s *Server) handleRecordSession(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req recordSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Summary) == "" {
		respondError(w, http.StatusBadRequest, errors.New("summary is required"))
		return
	}

	id, err := s.store.RecordSession(userID, &signal.SessionSummary{
		Summary:       req.Summary,
		Techniques:    req.Techniques,
		CrisisFlagged: req.CrisisFlagged,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondStatus(w, http.StatusCreated, map[string]string{"id": id})
}
