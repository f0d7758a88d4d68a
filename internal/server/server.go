// Package server provides the HTTP and WebSocket surface for the Signado
// recognition games.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/carmina/signado/internal/capture"
	"github.com/carmina/signado/internal/classify"
	"github.com/carmina/signado/internal/server/api"
	"github.com/carmina/signado/internal/session"
	"github.com/carmina/signado/internal/store"
)

// Config holds the server configuration. Hub, when set, must already be
// wired to a room.Manager via SetRooms.
type Config struct {
	StaticDir  string
	Store      *store.Store
	Camera     capture.Camera
	Session    *session.Session
	Classifier *classify.Classifier
	Hub        *Hub
}

// Server represents the HTTP server for the Signado application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	// Register word and learning material APIs if Store is configured
	if s.config.Store != nil {
		wordsHandler := api.NewWordsHandler(s.config.Store)
		s.mux.Handle("/api/words", wordsHandler)
		s.mux.Handle("/api/words/", wordsHandler)

		materialsHandler := api.NewMaterialsHandler(s.config.Store)
		s.mux.Handle("/api/materials/", materialsHandler)
	}

	// Register camera stream endpoint if Camera is configured
	if s.config.Camera != nil {
		streamHandler := NewStreamHandler(s.config.Camera)
		s.mux.Handle("/api/stream", streamHandler)
	}

	// Register the local practice prediction socket if a session exists
	if s.config.Session != nil && s.config.Classifier != nil {
		practiceHandler := NewPracticeHandler(s.config.Session, s.config.Classifier)
		if s.config.Store != nil {
			settings := s.config.Store.Settings()
			practiceHandler.OnModelChange(func(modelType classify.ModelType) {
				if err := settings.Set(store.SettingActiveModel, string(modelType)); err != nil {
					log.Printf("Error persisting model selection: %v", err)
				}
			})
		}
		s.mux.Handle("/api/predictions", practiceHandler)
	}

	// Register the room socket if a hub is configured
	if s.config.Hub != nil {
		s.mux.Handle("/ws", s.config.Hub)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
