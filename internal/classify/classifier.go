package classify

import (
	"fmt"
	"log"
	"sync"

	"github.com/carmina/signado/internal/detector"
)

// Sentinel prediction labels.
const (
	// NoGestureLabel is emitted when no hands were detected or no features
	// could be extracted.
	NoGestureLabel = "No gesture"
	// ModelLoadingLabel is emitted while no model is active. Callers must
	// treat it as a valid low-confidence non-match, not an error.
	ModelLoadingLabel = "Model loading"
)

// Prediction is the classifier output for one frame.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classifier runs majority-vote inference over the active model's forest.
// The active model is swapped atomically: a Predict call in progress always
// finishes against the model snapshot it started with.
type Classifier struct {
	source Source

	mu    sync.RWMutex
	model *Model
}

// NewClassifier creates a Classifier that fetches models from the given
// source. No model is active until LoadModel succeeds.
func NewClassifier(source Source) *Classifier {
	return &Classifier{source: source}
}

// LoadModel fetches and activates the model for the given type. Loading the
// type that is already active is a no-op. On failure the previous working
// model is retained and the error is returned to the caller.
func (c *Classifier) LoadModel(modelType ModelType) error {
	c.mu.RLock()
	current := c.model
	c.mu.RUnlock()

	if current != nil && current.Type == modelType {
		return nil
	}

	model, err := c.source.Fetch(modelType)
	if err != nil {
		return fmt.Errorf("load model %q: %w", modelType, err)
	}

	c.mu.Lock()
	c.model = model
	c.mu.Unlock()

	log.Printf("Model %q loaded: %d trees, %d classes", modelType, len(model.Trees), len(model.Classes))
	return nil
}

// ActiveModel returns the current model snapshot, or nil if none is loaded.
func (c *Classifier) ActiveModel() *Model {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// Predict classifies the given hands against the active model snapshot.
// With no hands it returns the "No gesture" sentinel; with no active model
// it returns the "Model loading" sentinel. Ties between classes with equal
// vote counts are broken deterministically toward the lowest class index.
func (c *Classifier) Predict(hands []detector.HandLandmarks) Prediction {
	if len(hands) == 0 {
		return Prediction{Label: NoGestureLabel, Confidence: 0}
	}

	model := c.ActiveModel()
	if model == nil {
		return Prediction{Label: ModelLoadingLabel, Confidence: 0}
	}

	features, err := Extract(hands)
	if err != nil {
		return Prediction{Label: NoGestureLabel, Confidence: 0}
	}

	scaled := make([]float64, len(features))
	for i, f := range features {
		scale := model.ScalerScale[i]
		if scale == 0 {
			scale = 1
		}
		scaled[i] = (f - model.ScalerMean[i]) / scale
	}

	votes := make([]int, len(model.Classes))
	for i := range model.Trees {
		votes[model.Trees[i].Predict(scaled)]++
	}

	// Lowest class index wins ties: only a strictly greater count displaces
	// the current winner.
	winner := 0
	for i, v := range votes {
		if v > votes[winner] {
			winner = i
		}
	}

	confidence := float64(votes[winner]) / float64(len(model.Trees))
	return Prediction{
		Label:      model.Label(model.Classes[winner]),
		Confidence: confidence,
	}
}
