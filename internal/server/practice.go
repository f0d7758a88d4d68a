package server

import (
	"log"
	"net/http"
	"sync"

	"github.com/carmina/signado/internal/classify"
	"github.com/carmina/signado/internal/session"
	"github.com/gorilla/websocket"
)

// PracticeHandler streams live classifier predictions to practice clients
// over WebSocket. The recognition loop runs while at least one client is
// connected.
type PracticeHandler struct {
	session    *session.Session
	classifier *classify.Classifier

	mu            sync.RWMutex
	clients       map[*websocket.Conn]bool
	onModelChange func(classify.ModelType)
}

// NewPracticeHandler creates a PracticeHandler over the given session and
// classifier and subscribes to the session's prediction stream.
func NewPracticeHandler(s *session.Session, c *classify.Classifier) *PracticeHandler {
	h := &PracticeHandler{
		session:    s,
		classifier: c,
		clients:    make(map[*websocket.Conn]bool),
	}
	s.OnPrediction(h.broadcast)
	return h
}

// OnModelChange registers the callback invoked after a client-requested
// model switch succeeds.
func (h *PracticeHandler) OnModelChange(fn func(classify.ModelType)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onModelChange = fn
}

// ServeHTTP handles WebSocket upgrade requests. The "model" query parameter
// selects which model to practice against ("alphabet" or "number").
func (h *PracticeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if model := r.URL.Query().Get("model"); model != "" {
		if err := h.classifier.LoadModel(classify.ModelType(model)); err != nil {
			http.Error(w, "Model unavailable", http.StatusServiceUnavailable)
			return
		}
		h.mu.RLock()
		notify := h.onModelChange
		h.mu.RUnlock()
		if notify != nil {
			notify(classify.ModelType(model))
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	first := len(h.clients) == 1
	h.mu.Unlock()

	if first {
		if err := h.session.StartCamera(); err != nil {
			log.Printf("Error starting camera: %v", err)
		} else if err := h.session.StartProcessing(); err != nil {
			log.Printf("Error starting recognition loop: %v", err)
		}
	}

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		last := len(h.clients) == 0
		h.mu.Unlock()
		if last {
			h.session.StopProcessing()
		}
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast fans one prediction out to every connected client.
func (h *PracticeHandler) broadcast(p classify.Prediction) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(p); err != nil {
			log.Printf("Error writing prediction: %v", err)
		}
	}
}
