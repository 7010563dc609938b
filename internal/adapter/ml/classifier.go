// Package ml loads an optional pre-trained URL classifier artifact and
// scores feature vectors with it. The artifact is a JSON file holding a
// logistic model over the fixed feature order; its absence is a normal,
// fully supported state — lexical scoring works without it.
package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/kr1s57/urlsentinel/internal/domain/features"
)

// Prediction labels.
const (
	LabelMalicious = "malicious"
	LabelBenign    = "benign"
)

// Model is the serialized artifact layout.
type Model struct {
	Version      string    `json:"version"`
	FeatureNames []string  `json:"feature_names"`
	Weights      []float64 `json:"weights"`
	Bias         float64   `json:"bias"`
	Threshold    float64   `json:"threshold"`
}

// Prediction is the classifier verdict for one feature vector.
type Prediction struct {
	Label        string
	Probability  float64
	ModelVersion string
}

// Classifier scores feature vectors against a loaded model.
type Classifier struct {
	model Model
}

// Load reads and validates a model artifact from disk.
func Load(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var model Model
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}

	if len(model.FeatureNames) == 0 {
		return nil, fmt.Errorf("model artifact has no feature names")
	}
	if len(model.FeatureNames) != len(model.Weights) {
		return nil, fmt.Errorf("model artifact mismatch: %d feature names, %d weights",
			len(model.FeatureNames), len(model.Weights))
	}
	if model.Threshold == 0 {
		model.Threshold = 0.5
	}

	return &Classifier{model: model}, nil
}

// Predict scores a feature vector. Features the model does not know are
// ignored; features it expects but the vector lacks contribute zero.
func (c *Classifier) Predict(v features.Vector) Prediction {
	z := c.model.Bias
	for i, name := range c.model.FeatureNames {
		z += c.model.Weights[i] * v[name]
	}

	p := 1.0 / (1.0 + math.Exp(-z))

	label := LabelBenign
	if p >= c.model.Threshold {
		label = LabelMalicious
	}

	return Prediction{
		Label:        label,
		Probability:  math.Round(p*10000) / 10000,
		ModelVersion: c.model.Version,
	}
}

// Version returns the loaded model version.
func (c *Classifier) Version() string {
	return c.model.Version
}
