package classify

import "fmt"

// DecisionTree is one tree of the forest in the flat-array encoding the
// training pipeline exports: node i is internal when ChildrenLeft[i] >= 0,
// in which case Feature[i] and Threshold[i] describe its split; otherwise
// it is a leaf predicting NodeClass[i], an index into the model's ordered
// class list. Immutable after load.
type DecisionTree struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	NodeClass     []int     `json:"node_class"`
}

// Predict descends from the root to a leaf, going left when
// features[Feature[node]] <= Threshold[node], and returns the leaf's class
// index.
func (t *DecisionTree) Predict(features []float64) int {
	node := 0
	for t.ChildrenLeft[node] >= 0 {
		if features[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.NodeClass[node]
}

// validate checks that the flat arrays are consistent and that every index
// the tree can touch stays in bounds for the given feature and class counts.
func (t *DecisionTree) validate(numFeatures, numClasses int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.NodeClass) != n {
		return fmt.Errorf("tree arrays have inconsistent lengths")
	}

	for i := 0; i < n; i++ {
		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]
		if left >= 0 {
			if left >= n || right < 0 || right >= n {
				return fmt.Errorf("node %d has child out of range", i)
			}
			if t.Feature[i] < 0 || t.Feature[i] >= numFeatures {
				return fmt.Errorf("node %d splits on feature %d, model has %d", i, t.Feature[i], numFeatures)
			}
		} else {
			if t.NodeClass[i] < 0 || t.NodeClass[i] >= numClasses {
				return fmt.Errorf("leaf %d predicts class %d, model has %d", i, t.NodeClass[i], numClasses)
			}
		}
	}

	return nil
}
