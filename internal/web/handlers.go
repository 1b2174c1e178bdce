package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/valo-customs/internal/matchdetect"
)

const defaultMatchLimit = 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	limit := defaultMatchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	matches, err := s.store.ListMatches(r.Context(), limit)
	if err != nil {
		s.log.WithError(err).Error("Failed to list matches")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	detail, err := s.store.GetMatchDetail(r.Context(), matchID)
	if err != nil {
		s.log.WithError(err).Error("Failed to load match")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if detail == nil {
		http.Error(w, "Match not found", http.StatusNotFound)
		return
	}

	s.writeJSON(w, http.StatusOK, detail)
}

// handleAnnouncement accepts a result announcement from the message
// relay and queues it for detection. The detection cycle itself runs
// asynchronously; delivery gets a 202 either way the cycle ends.
func (s *Server) handleAnnouncement(w http.ResponseWriter, r *http.Request) {
	var ann matchdetect.Announcement
	if err := json.NewDecoder(r.Body).Decode(&ann); err != nil {
		http.Error(w, "Invalid announcement payload", http.StatusBadRequest)
		return
	}

	if !s.detector.Submit(ann) {
		http.Error(w, "Announcement queue full", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Error("Failed to encode response")
	}
}
