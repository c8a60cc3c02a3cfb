package policy

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeaturesVectorOrder(t *testing.T) {
	f := Features{UsageRatio: 0.1, ThrottleRatio: 0.2, MemoryRatio: 0.3, Rbps: 4, Wbps: 5}
	got := f.Vector(6, 7)
	want := []float64{0.1, 0.2, 0.3, 4, 5, 6, 7}
	assert.Equal(t, want, got)
}

func TestHeuristicPolicyNeverSuggests(t *testing.T) {
	p := HeuristicPolicy{}
	_, ok := p.Suggest(Features{UsageRatio: 0.9, ThrottleRatio: 0.9}, 100000, 50000)
	assert.False(t, ok)
}

func TestLinearRegressorPredict(t *testing.T) {
	r := &LinearRegressor{Weights: []float64{1, 2, 3}, Bias: 10}
	v, err := r.Predict([]float64{1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, float64(16), v)
}

func TestLinearRegressorPredictWrongLength(t *testing.T) {
	r := &LinearRegressor{Weights: []float64{1, 2, 3}}
	_, err := r.Predict([]float64{1, 1})
	assert.Error(t, err)
}

func TestLoadLinearRegressor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	data, err := json.Marshal(LinearRegressor{Weights: []float64{0.5, 0.5, 0, 0, 0, 1, 0}, Bias: 1000})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	r, err := LoadLinearRegressor(path)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, r.Bias)
	assert.Len(t, r.Weights, 7)
}

func TestModelPolicySuggestAcceptanceRule(t *testing.T) {
	// weights pick out current_soft (index 5) and add a fixed increment via bias.
	r := &LinearRegressor{Weights: []float64{0, 0, 0, 0, 0, 1, 0}, Bias: 20000}
	p := NewModelPolicy(r)

	newSoft, ok := p.Suggest(Features{}, 100000, 50000)
	require.True(t, ok)
	assert.Equal(t, int64(70000), newSoft)
}

func TestModelPolicySuggestClampsToHardCap(t *testing.T) {
	r := &LinearRegressor{Weights: []float64{0, 0, 0, 0, 0, 1, 0}, Bias: 1_000_000}
	p := NewModelPolicy(r)

	newSoft, ok := p.Suggest(Features{}, 100000, 50000)
	require.True(t, ok)
	assert.Equal(t, int64(100000), newSoft)
}

func TestModelPolicySuggestDeclinesNonImprovement(t *testing.T) {
	// predicted == current_soft, should not be accepted (must be strictly greater).
	r := &LinearRegressor{Weights: []float64{0, 0, 0, 0, 0, 1, 0}, Bias: 0}
	p := NewModelPolicy(r)

	_, ok := p.Suggest(Features{}, 100000, 50000)
	assert.False(t, ok)
}

func TestModelPolicySuggestRoundsUpFractionalImprovement(t *testing.T) {
	// predicted = current_soft + 0.5: truncating toward zero would collapse
	// this to current_soft and wrongly decline it. It must round up and be
	// accepted, preserving current_soft < newSoft <= hard_cap.
	r := &LinearRegressor{Weights: []float64{0, 0, 0, 0, 0, 1, 0}, Bias: 0.5}
	p := NewModelPolicy(r)

	newSoft, ok := p.Suggest(Features{}, 100000, 50000)
	require.True(t, ok)
	assert.Equal(t, int64(50001), newSoft)
	assert.Greater(t, newSoft, int64(50000))
}

func TestLoadFallsBackToHeuristicWhenModelPathEmpty(t *testing.T) {
	p, ok := Load("")
	assert.False(t, ok)
	_, isHeuristic := p.(HeuristicPolicy)
	assert.True(t, isHeuristic)
}

func TestLoadFallsBackToHeuristicWhenModelMissing(t *testing.T) {
	p, ok := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	assert.False(t, ok)
	_, isHeuristic := p.(HeuristicPolicy)
	assert.True(t, isHeuristic)
}

func TestLoadModelPolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	data, _ := json.Marshal(LinearRegressor{Weights: []float64{0, 0, 0, 0, 0, 1, 0}, Bias: 5000})
	require.NoError(t, os.WriteFile(path, data, 0o644))

	p, ok := Load(path)
	require.True(t, ok)
	_, isModel := p.(*ModelPolicy)
	assert.True(t, isModel)
}
