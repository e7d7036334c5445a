package nn

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// Estimator kinds
const (
	KindLinear = "linear"
	KindTree   = "tree"
)

// ErrInputWidth is returned when a model is called with the wrong row length
var ErrInputWidth = errors.New("input width does not match model")

// Estimator is one member of a voting ensemble
type Estimator struct {
	Kind      string    `json:"kind"`
	Coef      []float64 `json:"coef,omitempty"`
	Intercept float64   `json:"intercept,omitempty"`
	Tree      *Tree     `json:"tree,omitempty"`
}

func (e *Estimator) predict(x []float64) float64 {
	if e.Kind == KindTree {
		return e.Tree.Eval(x)
	}

	sum := e.Intercept
	for i, c := range e.Coef {
		sum += c * x[i]
	}
	return sum
}

func (e *Estimator) validate(width int) error {
	switch e.Kind {
	case KindLinear:
		if len(e.Coef) != width {
			return fmt.Errorf("linear estimator has %d coefficients, expected %d", len(e.Coef), width)
		}
	case KindTree:
		if e.Tree == nil {
			return fmt.Errorf("tree estimator has no tree")
		}
		return e.Tree.validate(width)
	default:
		return fmt.Errorf("unknown estimator kind %q", e.Kind)
	}
	return nil
}

// YieldRegressor is a voting ensemble predicting crop yield in tons/hectare.
// It is read-only after loading and safe for concurrent use.
type YieldRegressor struct {
	Width      int         `json:"input_width"`
	Estimators []Estimator `json:"estimators"`
	Weights    []float64   `json:"weights,omitempty"`
}

// InputWidth returns the row length the regressor was trained on
func (m *YieldRegressor) InputWidth() int {
	return m.Width
}

// Predict returns the weighted mean of all member predictions
func (m *YieldRegressor) Predict(x []float64) (float64, error) {
	if len(x) != m.Width {
		return 0, fmt.Errorf("%w: got %d, expected %d", ErrInputWidth, len(x), m.Width)
	}

	var sum, total float64
	for i := range m.Estimators {
		w := 1.0
		if len(m.Weights) > 0 {
			w = m.Weights[i]
		}
		sum += w * m.Estimators[i].predict(x)
		total += w
	}
	return sum / total, nil
}

// Validate checks the regressor is structurally usable
func (m *YieldRegressor) Validate() error {
	if m.Width <= 0 {
		return fmt.Errorf("input width must be positive, got %d", m.Width)
	}
	if len(m.Estimators) == 0 {
		return fmt.Errorf("ensemble has no estimators")
	}
	if len(m.Weights) > 0 {
		if len(m.Weights) != len(m.Estimators) {
			return fmt.Errorf("%d weights for %d estimators", len(m.Weights), len(m.Estimators))
		}
		var total float64
		for _, w := range m.Weights {
			if w < 0 {
				return fmt.Errorf("negative estimator weight %v", w)
			}
			total += w
		}
		if total == 0 {
			return fmt.Errorf("estimator weights sum to zero")
		}
	}
	for i := range m.Estimators {
		if err := m.Estimators[i].validate(m.Width); err != nil {
			return fmt.Errorf("estimator %d: %w", i, err)
		}
	}
	return nil
}

// GetConfig returns a summary of the regressor
func (m *YieldRegressor) GetConfig() map[string]interface{} {
	return map[string]interface{}{
		"input_width": m.Width,
		"estimators":  len(m.Estimators),
	}
}

// Save writes the regressor to path (.gob or .json)
func (m *YieldRegressor) Save(path string) error {
	return saveArtifact(path, m)
}

// LoadYieldRegressor reads and validates a regressor artifact
func LoadYieldRegressor(path string) (*YieldRegressor, error) {
	m := &YieldRegressor{}
	if err := loadArtifact(path, m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid yield model %s: %w", path, err)
	}
	return m, nil
}

// CropClassifier is a forest of decision trees whose leaves hold class
// indices. The majority vote wins; ties go to the lowest class index.
type CropClassifier struct {
	Width   int      `json:"input_width"`
	Classes []string `json:"classes"`
	Trees   []Tree   `json:"trees"`
}

// InputWidth returns the row length the classifier was trained on
func (m *CropClassifier) InputWidth() int {
	return m.Width
}

// Classify returns the winning class label for x
func (m *CropClassifier) Classify(x []float64) (string, error) {
	if len(x) != m.Width {
		return "", fmt.Errorf("%w: got %d, expected %d", ErrInputWidth, len(x), m.Width)
	}

	votes := make([]int, len(m.Classes))
	for i := range m.Trees {
		class := int(m.Trees[i].Eval(x))
		votes[class]++
	}

	best := 0
	for i := 1; i < len(votes); i++ {
		if votes[i] > votes[best] {
			best = i
		}
	}
	return m.Classes[best], nil
}

// Validate checks the classifier is structurally usable
func (m *CropClassifier) Validate() error {
	if m.Width <= 0 {
		return fmt.Errorf("input width must be positive, got %d", m.Width)
	}
	if len(m.Classes) == 0 {
		return fmt.Errorf("classifier has no classes")
	}
	if len(m.Trees) == 0 {
		return fmt.Errorf("classifier has no trees")
	}
	for i := range m.Trees {
		if err := m.Trees[i].validate(m.Width); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
		for node, v := range m.Trees[i].Value {
			if m.Trees[i].Left[node] != leafNode {
				continue
			}
			if v != float64(int(v)) || int(v) < 0 || int(v) >= len(m.Classes) {
				return fmt.Errorf("tree %d node %d: leaf class %v out of range", i, node, v)
			}
		}
	}
	return nil
}

// GetConfig returns a summary of the classifier
func (m *CropClassifier) GetConfig() map[string]interface{} {
	return map[string]interface{}{
		"input_width": m.Width,
		"classes":     len(m.Classes),
		"trees":       len(m.Trees),
	}
}

// Save writes the classifier to path (.gob or .json)
func (m *CropClassifier) Save(path string) error {
	return saveArtifact(path, m)
}

// LoadCropClassifier reads and validates a classifier artifact
func LoadCropClassifier(path string) (*CropClassifier, error) {
	m := &CropClassifier{}
	if err := loadArtifact(path, m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid crop model %s: %w", path, err)
	}
	return m, nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// saveArtifact encodes v as JSON or gob depending on the file extension
func saveArtifact(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if isJSON(path) {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return gob.NewEncoder(f).Encode(v)
}

// loadArtifact decodes path into v
func loadArtifact(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open model %s: %w", path, err)
	}
	defer f.Close()

	if isJSON(path) {
		err = json.NewDecoder(f).Decode(v)
	} else {
		err = gob.NewDecoder(f).Decode(v)
	}
	if err != nil {
		return fmt.Errorf("failed to decode model %s: %w", path, err)
	}
	return nil
}
