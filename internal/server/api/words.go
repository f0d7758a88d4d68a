// Package api provides HTTP API handlers for the Signado application.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/carmina/signado/internal/store"
)

// WordsHandler handles HTTP requests for word-list resources.
type WordsHandler struct {
	store *store.Store
}

// NewWordsHandler creates a new WordsHandler with the given store.
func NewWordsHandler(s *store.Store) *WordsHandler {
	return &WordsHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *WordsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/words or /api/words/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/words")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		// Collection endpoint: /api/words
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	// Item endpoint: /api/words/{id}
	id := path
	switch r.Method {
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type createWordRequest struct {
	Text     string `json:"text"`
	Emoji    string `json:"emoji"`
	Category string `json:"category"`
}

type wordResponse struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Emoji    string `json:"emoji"`
	Category string `json:"category"`
}

type listWordsResponse struct {
	Words []wordResponse `json:"words"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toWordResponse(w *store.WordEntry) wordResponse {
	return wordResponse{
		ID:       w.ID,
		Text:     w.Text,
		Emoji:    w.Emoji,
		Category: w.Category,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/words, optionally filtered by ?category=.
func (h *WordsHandler) list(w http.ResponseWriter, r *http.Request) {
	var words []*store.WordEntry
	var err error

	if category := r.URL.Query().Get("category"); category != "" {
		words, err = h.store.Words().ListByCategory(category)
	} else {
		words, err = h.store.Words().List()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list words")
		return
	}

	response := listWordsResponse{Words: make([]wordResponse, 0, len(words))}
	for _, entry := range words {
		response.Words = append(response.Words, toWordResponse(entry))
	}

	writeJSON(w, http.StatusOK, response)
}

// create handles POST /api/words and adds a word to the list.
func (h *WordsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createWordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if len(req.Text) < 2 {
		writeError(w, http.StatusBadRequest, "Word must be at least 2 letters")
		return
	}

	entry := &store.WordEntry{
		Text:     strings.ToLower(req.Text),
		Emoji:    req.Emoji,
		Category: req.Category,
	}
	if err := h.store.Words().Create(entry); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create word")
		return
	}

	writeJSON(w, http.StatusCreated, toWordResponse(entry))
}

// delete handles DELETE /api/words/{id}.
func (h *WordsHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Words().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Word not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete word")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
