package ml

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kr1s57/urlsentinel/internal/domain/features"
)

func writeArtifact(t *testing.T, model Model) string {
	t.Helper()

	data, err := json.Marshal(model)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeArtifact(t, Model{
		Version:      "2024-07",
		FeatureNames: []string{"url_length", "has_https"},
		Weights:      []float64{0.02, -1.5},
		Bias:         -1.0,
		Threshold:    0.6,
	})

	clf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "2024-07", clf.Version())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read model artifact")
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse model artifact")
}

func TestLoadRejectsMismatchedWeights(t *testing.T) {
	path := writeArtifact(t, Model{
		Version:      "v1",
		FeatureNames: []string{"a", "b"},
		Weights:      []float64{0.1},
	})

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatch")
}

func TestLoadDefaultsThreshold(t *testing.T) {
	path := writeArtifact(t, Model{
		Version:      "v1",
		FeatureNames: []string{"url_entropy"},
		Weights:      []float64{10},
	})

	clf, err := Load(path)
	require.NoError(t, err)

	// Threshold 0.5: strong positive signal lands malicious, none benign.
	hot := clf.Predict(features.Vector{"url_entropy": 5})
	cold := clf.Predict(features.Vector{"url_entropy": -5})
	assert.Equal(t, LabelMalicious, hot.Label)
	assert.Equal(t, LabelBenign, cold.Label)
}

func TestPredict(t *testing.T) {
	path := writeArtifact(t, Model{
		Version:      "2024-07",
		FeatureNames: []string{"suspicious_keyword_count", "has_https"},
		Weights:      []float64{2.0, -3.0},
		Bias:         -1.0,
		Threshold:    0.5,
	})

	clf, err := Load(path)
	require.NoError(t, err)

	tests := []struct {
		name      string
		vector    features.Vector
		wantLabel string
	}{
		{
			name:      "keyword heavy http url",
			vector:    features.Vector{"suspicious_keyword_count": 3, "has_https": 0},
			wantLabel: LabelMalicious, // sigmoid(5) ~ 0.993
		},
		{
			name:      "clean https url",
			vector:    features.Vector{"suspicious_keyword_count": 0, "has_https": 1},
			wantLabel: LabelBenign, // sigmoid(-4) ~ 0.018
		},
		{
			name:      "missing features contribute zero",
			vector:    features.Vector{},
			wantLabel: LabelBenign, // sigmoid(-1) ~ 0.269
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clf.Predict(tt.vector)

			assert.Equal(t, tt.wantLabel, got.Label)
			assert.Equal(t, "2024-07", got.ModelVersion)
			assert.GreaterOrEqual(t, got.Probability, 0.0)
			assert.LessOrEqual(t, got.Probability, 1.0)
		})
	}
}

func TestPredictProbabilityRounded(t *testing.T) {
	path := writeArtifact(t, Model{
		Version:      "v1",
		FeatureNames: []string{"x"},
		Weights:      []float64{1},
		Threshold:    0.5,
	})

	clf, err := Load(path)
	require.NoError(t, err)

	got := clf.Predict(features.Vector{"x": 0})
	assert.Equal(t, 0.5, got.Probability) // sigmoid(0)
}
