package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"streakpeaked-service/internal/app"
	"streakpeaked-service/internal/domain"
)

// APIHandler serves the small JSON surface next to the websockets:
// matchmaking join/leave and score history for the performance tracker.
type APIHandler struct {
	service *app.QuizService
}

func NewAPIHandler(service *app.QuizService) *APIHandler {
	return &APIHandler{service: service}
}

type matchRequest struct {
	UserID string `json:"userId"`
	Mode   string `json:"mode"`
}

type matchResponse struct {
	Matched bool          `json:"matched"`
	Match   *domain.Match `json:"match,omitempty"`
}

// JoinMatch pairs the caller with a waiting opponent or enqueues them.
func (h *APIHandler) JoinMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" || req.Mode == "" {
		http.Error(w, "invalid join payload", http.StatusBadRequest)
		return
	}

	match, matched, err := h.service.Matchmaking().TryMatch(r.Context(), req.UserID, req.Mode)
	if errors.Is(err, domain.ErrAlreadyQueued) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		log.Printf("matchmaking join failed: %v", err)
		http.Error(w, "matchmaking unavailable", http.StatusInternalServerError)
		return
	}

	resp := matchResponse{Matched: matched}
	if matched {
		resp.Match = &match
	}
	writeJSON(w, resp)
}

// LeaveMatch removes the caller from a mode's waiting queue.
func (h *APIHandler) LeaveMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" || req.Mode == "" {
		http.Error(w, "invalid leave payload", http.StatusBadRequest)
		return
	}

	err := h.service.Matchmaking().Leave(r.Context(), req.UserID, req.Mode)
	if errors.Is(err, domain.ErrNotQueued) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("matchmaking leave failed: %v", err)
		http.Error(w, "matchmaking unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]bool{"left": true})
}

// Scores returns a user's run history plus their best streak.
func (h *APIHandler) Scores(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}
	exam := r.URL.Query().Get("exam")

	summary, err := h.service.Scores(r.Context(), userID, exam)
	if err != nil {
		log.Printf("score listing failed for %s: %v", userID, err)
		http.Error(w, "score history unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, summary)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
