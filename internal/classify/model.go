package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ModelType selects which trained model bundle to load.
type ModelType string

const (
	// ModelAlphabet recognizes the sign alphabet handshapes.
	ModelAlphabet ModelType = "alphabet"
	// ModelNumber recognizes number handshapes.
	ModelNumber ModelType = "number"
)

// ErrModelLoad is returned when a model document cannot be fetched or parsed.
// The classifier keeps its previous working model when this happens.
var ErrModelLoad = errors.New("model load failed")

// Model is an immutable bundle of a trained forest plus the scaling
// parameters and class labels it was trained with. A loaded Model is never
// mutated; swapping models replaces the whole bundle.
type Model struct {
	Type        ModelType         `json:"model_type"`
	Trees       []DecisionTree    `json:"trees"`
	ScalerMean  []float64         `json:"scaler_mean"`
	ScalerScale []float64         `json:"scaler_scale"`
	Classes     []string          `json:"classes"`
	ClassNames  map[string]string `json:"class_names"`
}

// Label maps a raw class identifier to its human-readable label, falling
// back to the raw identifier when unmapped.
func (m *Model) Label(raw string) string {
	if name, ok := m.ClassNames[raw]; ok {
		return name
	}
	return raw
}

// Labels returns the display labels of all classes in model order.
func (m *Model) Labels() []string {
	labels := make([]string, len(m.Classes))
	for i, raw := range m.Classes {
		labels[i] = m.Label(raw)
	}
	return labels
}

// validate checks the model bundle for internal consistency.
func (m *Model) validate() error {
	if len(m.Trees) == 0 {
		return fmt.Errorf("model has no trees")
	}
	if len(m.Classes) == 0 {
		return fmt.Errorf("model has no classes")
	}
	if len(m.ScalerMean) != FeatureLength || len(m.ScalerScale) != FeatureLength {
		return fmt.Errorf("scaler length %d/%d, expected %d",
			len(m.ScalerMean), len(m.ScalerScale), FeatureLength)
	}
	for i := range m.Trees {
		if err := m.Trees[i].validate(FeatureLength, len(m.Classes)); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

// Source fetches model bundles by type.
type Source interface {
	Fetch(modelType ModelType) (*Model, error)
}

// FileSource loads model documents from JSON files in a directory,
// one file per model type named "<type>.json".
type FileSource struct {
	dir string
}

// NewFileSource creates a FileSource rooted at the given directory.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Fetch reads and validates the model document for the given type.
// Any read, parse, or validation failure is reported as ErrModelLoad.
func (s *FileSource) Fetch(modelType ModelType) (*Model, error) {
	path := filepath.Join(s.dir, string(modelType)+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrModelLoad, path, err)
	}

	var model Model
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrModelLoad, path, err)
	}

	model.Type = modelType
	if err := model.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrModelLoad, path, err)
	}

	return &model, nil
}
