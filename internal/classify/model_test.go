package classify

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSource_Fetch(t *testing.T) {
	source := NewFileSource("testdata")

	model, err := source.Fetch(ModelAlphabet)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if model.Type != ModelAlphabet {
		t.Errorf("type = %q, want %q", model.Type, ModelAlphabet)
	}
	if len(model.Trees) != 3 {
		t.Errorf("trees = %d, want 3", len(model.Trees))
	}
	if len(model.Classes) != 3 {
		t.Errorf("classes = %d, want 3", len(model.Classes))
	}
	if got := model.Label("0"); got != "A" {
		t.Errorf("Label(0) = %q, want A", got)
	}
	if got := model.Label("99"); got != "99" {
		t.Errorf("Label(99) = %q, want raw fallback", got)
	}

	labels := model.Labels()
	want := []string{"A", "B", "C"}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("labels[%d] = %q, want %q", i, labels[i], want[i])
		}
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	source := NewFileSource(t.TempDir())

	_, err := source.Fetch(ModelNumber)
	if !errors.Is(err, ErrModelLoad) {
		t.Errorf("expected ErrModelLoad, got %v", err)
	}
}

func TestFileSource_CorruptDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "number.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := NewFileSource(dir).Fetch(ModelNumber)
	if !errors.Is(err, ErrModelLoad) {
		t.Errorf("expected ErrModelLoad, got %v", err)
	}
}

func TestFileSource_InvalidScalerLength(t *testing.T) {
	dir := t.TempDir()
	doc := `{"trees":[{"children_left":[-1],"children_right":[-1],"feature":[0],"threshold":[0],"node_class":[0]}],` +
		`"scaler_mean":[0],"scaler_scale":[1],"classes":["0"]}`
	path := filepath.Join(dir, "number.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := NewFileSource(dir).Fetch(ModelNumber)
	if !errors.Is(err, ErrModelLoad) {
		t.Errorf("expected ErrModelLoad for wrong scaler length, got %v", err)
	}
}

func TestDecisionTree_Validate(t *testing.T) {
	bad := DecisionTree{
		ChildrenLeft:  []int{1, -1, -1},
		ChildrenRight: []int{2, -1, -1},
		Feature:       []int{999, 0, 0},
		Threshold:     []float64{0, 0, 0},
		NodeClass:     []int{0, 0, 1},
	}

	if err := bad.validate(FeatureLength, 2); err == nil {
		t.Error("expected validation error for out-of-range feature index")
	}

	good := DecisionTree{
		ChildrenLeft:  []int{-1},
		ChildrenRight: []int{-1},
		Feature:       []int{0},
		Threshold:     []float64{0},
		NodeClass:     []int{0},
	}
	if err := good.validate(FeatureLength, 1); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}
