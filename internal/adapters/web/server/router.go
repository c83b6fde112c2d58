package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lcalzada-xor/nearby/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/nearby/internal/core/domain"
)

func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	if s.RequestsPerMinute > 0 {
		api.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(s.RequestsPerMinute, time.Minute)))
	}
	api.HandleFunc("/topology", s.handleTopology).Methods(http.MethodGet)
	api.HandleFunc("/topology/{bssid}", s.handleAccessPoint).Methods(http.MethodGet)
	api.HandleFunc("/people", s.handlePeople).Methods(http.MethodGet)
	api.HandleFunc("/session", s.handleSession).Methods(http.MethodGet)

	r.HandleFunc("/ws", s.WSManager.HandleWebSocket)
	r.Handle("/metrics", promhttp.Handler())

	if s.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.StaticDir)))
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// latest returns the current snapshot, or an empty one before the first
// publish so clients always get a well-formed document.
func (s *Server) latest() domain.Snapshot {
	snap, _ := s.Store.Latest()
	return snap
}

func (s *Server) handleTopology(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.NewNetworkCollection(s.latest().Collections))
}

func (s *Server) handleAccessPoint(w http.ResponseWriter, r *http.Request) {
	bssid, ok := domain.NormalizeMAC(mux.Vars(r)["bssid"])
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid bssid")
		return
	}
	snap := s.latest()
	c, ok := snap.Collection(bssid)
	if !ok {
		writeError(w, http.StatusNotFound, "access point not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handlePeople(w http.ResponseWriter, r *http.Request) {
	people := s.latest().People
	if people == nil {
		people = []domain.Person{}
	}
	writeJSON(w, http.StatusOK, people)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.Store.Latest()
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":    snap.SessionID,
		"started":       ok,
		"taken_at":      snap.TakenAt,
		"people_mode":   snap.PeopleMode,
		"frames":        snap.Frames,
		"dropped":       snap.Dropped,
		"access_points": len(snap.Collections),
		"people":        len(snap.People),
	})
}
