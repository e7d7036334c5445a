package features

import (
	"errors"
	"fmt"

	"github.com/fasalvikas/fasal-vikas/internal/catalog"
)

// NumericFields lists the trailing numeric columns in encoding order
var NumericFields = []string{"ph", "rainfall", "temperature", "area", "production"}

// ErrUnknownCategory is matched by every UnknownCategoryError
var ErrUnknownCategory = errors.New("unknown category")

// UnknownCategoryError reports a categorical value that matches no registry entry
type UnknownCategoryError struct {
	Field string
	Value string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Field, e.Value)
}

// Is lets errors.Is(err, ErrUnknownCategory) match
func (e *UnknownCategoryError) Is(target error) bool {
	return target == ErrUnknownCategory
}

// Vector is an encoded model input row
type Vector []float64

// YieldInput holds the raw fields of a yield prediction request
type YieldInput struct {
	State       string
	Crop        string
	Season      string
	PH          float64
	Rainfall    float64
	Temperature float64
	Area        float64
	Production  float64
}

// Encoder turns a YieldInput into the drop-first one-hot row the yield
// regressor was trained on.
type Encoder struct {
	states  *catalog.Registry
	crops   *catalog.Registry
	seasons *catalog.Registry
}

// NewEncoder creates an encoder over the given registries
func NewEncoder(states, crops, seasons *catalog.Registry) *Encoder {
	return &Encoder{
		states:  states,
		crops:   crops,
		seasons: seasons,
	}
}

// DefaultEncoder returns an encoder over the built-in registries
func DefaultEncoder() *Encoder {
	return NewEncoder(catalog.States, catalog.Crops, catalog.Seasons)
}

// Width returns the length of every vector produced by Encode
func (e *Encoder) Width() int {
	return (e.states.Len() - 1) + (e.crops.Len() - 1) + (e.seasons.Len() - 1) + len(NumericFields)
}

// Encode builds the feature vector for in. Categorical segments come first
// (state, crop, season) followed by pH, rainfall, temperature, area and
// production.
func (e *Encoder) Encode(in YieldInput) (Vector, error) {
	vec := make(Vector, 0, e.Width())

	var err error
	if vec, err = appendOneHot(vec, e.states, in.State); err != nil {
		return nil, err
	}
	if vec, err = appendOneHot(vec, e.crops, in.Crop); err != nil {
		return nil, err
	}
	if vec, err = appendOneHot(vec, e.seasons, in.Season); err != nil {
		return nil, err
	}

	vec = append(vec, in.PH, in.Rainfall, in.Temperature, in.Area, in.Production)
	return vec, nil
}

// ColumnNames returns a descriptive name for every column of an encoded vector
func (e *Encoder) ColumnNames() []string {
	names := make([]string, 0, e.Width())
	for _, r := range []*catalog.Registry{e.states, e.crops, e.seasons} {
		for _, label := range r.Labels()[1:] {
			names = append(names, r.Name()+"_"+label)
		}
	}
	return append(names, NumericFields...)
}

// appendOneHot appends len(r)-1 columns for value. The reference category
// yields all zeros.
func appendOneHot(vec Vector, r *catalog.Registry, value string) (Vector, error) {
	idx, ok := r.Index(value)
	if !ok {
		return nil, &UnknownCategoryError{Field: r.Name(), Value: value}
	}

	start := len(vec)
	for i := 1; i < r.Len(); i++ {
		vec = append(vec, 0)
	}
	if idx > 0 {
		vec[start+idx-1] = 1
	}
	return vec, nil
}
