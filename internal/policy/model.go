package policy

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Regressor is the opaque inference runtime ModelPolicy calls at suggest
// time. It stands in for spec.md §4.3's "externally trained regressor" —
// the original Python implementation (original_source/controller/ml_policy.py)
// loads a joblib-pickled sklearn estimator; this Go binary has no Python
// runtime to unpickle that file from, so the one concrete implementation,
// LinearRegressor, loads a small JSON coefficient vector instead. Any other
// inference runtime can be plugged in behind this interface without
// touching the controller.
type Regressor interface {
	Predict(vector []float64) (float64, error)
}

// LinearRegressor is a plain weighted-sum regressor: predicted = bias +
// sum(weights[i] * vector[i]). It is serialized as JSON:
//
//	{"weights": [w0, w1, ...], "bias": b}
type LinearRegressor struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// LoadLinearRegressor reads a LinearRegressor from a JSON file.
func LoadLinearRegressor(path string) (*LinearRegressor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r LinearRegressor
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}
	return &r, nil
}

// Predict implements Regressor.
func (r *LinearRegressor) Predict(vector []float64) (float64, error) {
	if len(vector) != len(r.Weights) {
		return 0, fmt.Errorf("model expects %d features, got %d", len(r.Weights), len(vector))
	}
	out := r.Bias
	for i, w := range r.Weights {
		out += w * vector[i]
	}
	return out, nil
}

// ModelPolicy wraps a Regressor loaded once at startup (spec.md §4.3:
// "reload requires a restart").
type ModelPolicy struct {
	regressor Regressor
}

// NewModelPolicy wraps an already-loaded Regressor.
func NewModelPolicy(r Regressor) *ModelPolicy {
	return &ModelPolicy{regressor: r}
}

// Suggest builds the fixed-order feature vector, invokes the regressor, and
// applies spec.md §4.3's acceptance rule: the predicted value is rounded up
// to the nearest byte/us before comparison, so the invariant current_soft <
// newSoft <= hard_cap holds even when predicted truncates down to
// current_soft; the suggestion is used only if the rounded value is still
// strictly greater than current_soft, and is clamped to hard_cap.
func (m *ModelPolicy) Suggest(features Features, hardCap, currentSoft int64) (int64, bool) {
	vector := features.Vector(currentSoft, hardCap)
	predicted, err := m.regressor.Predict(vector)
	if err != nil {
		return 0, false
	}
	newSoft := int64(math.Ceil(predicted))
	if newSoft <= currentSoft {
		return 0, false
	}
	if newSoft > hardCap {
		newSoft = hardCap
	}
	return newSoft, true
}

// Load returns a ModelPolicy backed by the regressor at modelPath, or
// HeuristicPolicy with ok=false if modelPath is empty or the file does not
// exist (spec.md §4.3: "the controller logs a fallback notice and uses
// HeuristicPolicy").
func Load(modelPath string) (Policy, bool) {
	if modelPath == "" {
		return HeuristicPolicy{}, false
	}
	if _, err := os.Stat(modelPath); err != nil {
		return HeuristicPolicy{}, false
	}
	r, err := LoadLinearRegressor(modelPath)
	if err != nil {
		return HeuristicPolicy{}, false
	}
	return NewModelPolicy(r), true
}
