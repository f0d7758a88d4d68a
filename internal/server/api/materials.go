package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/carmina/signado/internal/store"
)

// MaterialsHandler serves the learning material cards for the learn pages.
type MaterialsHandler struct {
	store *store.Store
}

// NewMaterialsHandler creates a new MaterialsHandler with the given store.
func NewMaterialsHandler(s *store.Store) *MaterialsHandler {
	return &MaterialsHandler{store: s}
}

type materialResponse struct {
	Class       string `json:"class"`
	Instruction string `json:"instruction"`
	ImagePath   string `json:"image_path"`
	Subcategory string `json:"subcategory,omitempty"`
}

type listMaterialsResponse struct {
	Category  string             `json:"category"`
	Materials []materialResponse `json:"materials"`
}

// ServeHTTP handles GET /api/materials/{category}.
func (h *MaterialsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	category := strings.TrimPrefix(r.URL.Path, "/api/materials")
	category = strings.Trim(category, "/")
	if category == "" {
		writeError(w, http.StatusBadRequest, "Category is required")
		return
	}

	materials, err := h.store.Materials().ListByCategory(category)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Unknown category")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to list materials")
		return
	}

	response := listMaterialsResponse{
		Category:  category,
		Materials: make([]materialResponse, 0, len(materials)),
	}
	for _, m := range materials {
		response.Materials = append(response.Materials, materialResponse{
			Class:       m.Class,
			Instruction: m.Instruction,
			ImagePath:   m.ImagePath,
			Subcategory: m.Subcategory,
		})
	}

	writeJSON(w, http.StatusOK, response)
}
