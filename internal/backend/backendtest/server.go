// Package backendtest provides an in-memory tracker backend for tests.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mswatii/cs2-tracker/internal/models"
)

// Server is a fake backend speaking the tracker REST API
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	trackers []models.Tracker
	users    map[string]*models.User
	// Images maps listing URLs to image URLs served by /steam-image
	Images map[string]string
	// Search is returned by /search-skins for any query
	Search models.SearchResult
	// Fail makes every request to a path with this prefix answer 500
	Fail string
	// Requests counts requests per path
	Requests map[string]int
}

// NewServer starts a fake backend; close it with Close
func NewServer() *Server {
	s := &Server{
		users:    make(map[string]*models.User),
		Images:   make(map[string]string),
		Requests: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// AddUser registers an account directly
func (s *Server) AddUser(id, webhook string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = &models.User{ID: id, DiscordWebhook: webhook}
}

// User returns a copy of the stored account
func (s *Server) User(id string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, false
	}
	return *u, true
}

// AddTracker stores t as-is, assigning an id when empty
func (s *Server) AddTracker(t models.Tracker) models.Tracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.trackers = append(s.trackers, t)
	return t
}

// Trackers returns a copy of all stored trackers
func (s *Server) Trackers() []models.Tracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Tracker(nil), s.trackers...)
}

// RequestCount returns how many requests hit path
func (s *Server) RequestCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Requests[path]
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := r.URL.Path
	s.Requests[path]++
	if s.Fail != "" && strings.HasPrefix(path, s.Fail) {
		writeMessage(w, http.StatusInternalServerError, "")
		return
	}

	switch {
	case path == "/track":
		s.handleTrackCollection(w, r)
	case strings.HasPrefix(path, "/track/"):
		s.handleTrack(w, r, strings.TrimPrefix(path, "/track/"))
	case path == "/user" && r.Method == http.MethodPost:
		var body models.UserSettings
		_ = json.NewDecoder(r.Body).Decode(&body)
		id := uuid.NewString()
		s.users[id] = &models.User{ID: id, DiscordWebhook: body.DiscordWebhook}
		writeJSON(w, http.StatusCreated, models.UserRef{UserID: id})
	case path == "/user/recover" && r.Method == http.MethodPost:
		s.handleRecover(w, r)
	case strings.HasPrefix(path, "/user/"):
		s.handleUser(w, r, strings.TrimPrefix(path, "/user/"))
	case path == "/search-skins":
		writeJSON(w, http.StatusOK, s.Search)
	case path == "/steam-image":
		img, ok := s.Images[r.URL.Query().Get("url")]
		if !ok {
			writeMessage(w, http.StatusNotFound, "image not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"imageUrl": img})
	default:
		writeMessage(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleTrackCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		userID := r.URL.Query().Get("userId")
		out := []models.Tracker{}
		for _, t := range s.trackers {
			if t.UserID == userID {
				out = append(out, t)
			}
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodPost:
		var body models.NewTracker
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid body")
			return
		}
		if body.SkinName == "" {
			writeMessage(w, http.StatusBadRequest, "skinName is required")
			return
		}
		now := time.Now().UTC()
		t := models.Tracker{
			ID:         uuid.NewString(),
			UserID:     body.UserID,
			SkinName:   body.SkinName,
			Interest:   body.Interest,
			TargetDown: body.TargetDown,
			TargetUp:   body.TargetUp,
			CreatedAt:  &now,
		}
		s.trackers = append(s.trackers, t)
		writeJSON(w, http.StatusCreated, t)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request, id string) {
	userID := r.URL.Query().Get("userId")
	idx := -1
	for i, t := range s.trackers {
		if t.ID == id && t.UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		writeMessage(w, http.StatusNotFound, "tracker not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var body models.TrackerUpdate
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid body")
			return
		}
		t := &s.trackers[idx]
		t.Interest = body.Interest
		t.TargetDown = body.TargetDown
		t.TargetUp = body.TargetUp
		writeJSON(w, http.StatusOK, *t)
	case http.MethodDelete:
		s.trackers = append(s.trackers[:idx], s.trackers[idx+1:]...)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request, id string) {
	u, ok := s.users[id]
	if !ok {
		writeMessage(w, http.StatusNotFound, "user not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, u)
	case http.MethodPut:
		var body models.UserSettings
		_ = json.NewDecoder(r.Body).Decode(&body)
		u.DiscordWebhook = body.DiscordWebhook
		writeJSON(w, http.StatusOK, u)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRecover(w http.ResponseWriter, r *http.Request) {
	var body models.RecoverRequest
	_ = json.NewDecoder(r.Body).Decode(&body)
	for id, u := range s.users {
		if (body.UserID != "" && id == body.UserID) ||
			(body.UserID == "" && body.DiscordWebhook != "" && u.DiscordWebhook == body.DiscordWebhook) {
			writeJSON(w, http.StatusOK, models.UserRef{UserID: id})
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "no account found")
}
