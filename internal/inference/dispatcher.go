package inference

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/fasalvikas/fasal-vikas/internal/features"
	"github.com/fasalvikas/fasal-vikas/internal/metrics"
)

// ErrShapeMismatch is matched by every ShapeMismatchError
var ErrShapeMismatch = errors.New("feature shape mismatch")

// ShapeMismatchError reports a feature vector whose length differs from the
// model's trained input width.
type ShapeMismatchError struct {
	Expected int
	Got      int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("Feature shape mismatch, expected: %d, got: %d", e.Expected, e.Got)
}

// Is lets errors.Is(err, ErrShapeMismatch) match
func (e *ShapeMismatchError) Is(target error) bool {
	return target == ErrShapeMismatch
}

// ErrNonFiniteOutput is returned when the model produces NaN or an infinity
var ErrNonFiniteOutput = errors.New("model output is not a finite number")

// Regressor is the capability the dispatcher needs from a loaded model
type Regressor interface {
	InputWidth() int
	Predict(x []float64) (float64, error)
}

// Dispatcher validates vector shape and invokes the model exactly once
type Dispatcher struct {
	model Regressor
	name  string
}

// NewDispatcher creates a dispatcher for model. name labels metrics.
func NewDispatcher(name string, model Regressor) *Dispatcher {
	return &Dispatcher{model: model, name: name}
}

// NewYieldDispatcher binds model to encoder and fails if the encoder width
// differs from the width the model was trained on.
func NewYieldDispatcher(model Regressor, encoder *features.Encoder) (*Dispatcher, error) {
	if model.InputWidth() != encoder.Width() {
		return nil, &ShapeMismatchError{Expected: model.InputWidth(), Got: encoder.Width()}
	}
	return NewDispatcher("yield", model), nil
}

// ExpectedWidth returns the model's input width
func (d *Dispatcher) ExpectedWidth() int {
	return d.model.InputWidth()
}

// Predict returns the model output for vec unmodified. A wrong-length
// vector is rejected with *ShapeMismatchError before the model is called,
// and a NaN or infinite output with ErrNonFiniteOutput.
func (d *Dispatcher) Predict(ctx context.Context, vec features.Vector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	expected := d.model.InputWidth()
	if len(vec) != expected {
		metrics.RecordPrediction(d.name, metrics.OutcomeShapeMismatch, 0)
		return 0, &ShapeMismatchError{Expected: expected, Got: len(vec)}
	}

	start := time.Now()
	y, err := d.model.Predict(vec)
	if err != nil {
		metrics.RecordPrediction(d.name, metrics.OutcomeModelError, 0)
		return 0, fmt.Errorf("%s model prediction failed: %w", d.name, err)
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		metrics.RecordPrediction(d.name, metrics.OutcomeModelError, 0)
		return 0, fmt.Errorf("%s model prediction failed: %w (%v)", d.name, ErrNonFiniteOutput, y)
	}
	metrics.RecordPrediction(d.name, metrics.OutcomeSuccess, time.Since(start))

	return y, nil
}
