package model

import (
	"errors"
	"fmt"
	"math"
)

// Supported estimator kinds
const (
	KindLinear = "linear"
	KindForest = "forest"
)

var (
	// ErrShapeMismatch indicates a vector whose width differs from the model input
	ErrShapeMismatch = errors.New("feature vector shape mismatch")

	// ErrNonFiniteOutput indicates the estimator produced NaN or Inf
	ErrNonFiniteOutput = errors.New("model produced a non-finite value")

	// ErrInvalidParams indicates model parameters that cannot be used
	ErrInvalidParams = errors.New("invalid model parameters")
)

// Model is a fitted regression estimator
type Model interface {
	// Predict returns one scalar for one vector
	Predict(vector []float64) (float64, error)

	// Features is the expected input width
	Features() int

	Kind() string
	Version() string
}

// Params is the model artifact as exported by the training job
type Params struct {
	Version      string    `yaml:"version" json:"version"`
	Kind         string    `yaml:"kind" json:"kind"`
	NFeatures    int       `yaml:"n_features" json:"n_features"`
	Coefficients []float64 `yaml:"coefficients,omitempty" json:"coefficients,omitempty"`
	Intercept    float64   `yaml:"intercept,omitempty" json:"intercept,omitempty"`
	Trees        []Tree    `yaml:"trees,omitempty" json:"trees,omitempty"`
}

func checkShape(vector []float64, want int) error {
	if len(vector) != want {
		return fmt.Errorf("%w: expected %d features, got %d", ErrShapeMismatch, want, len(vector))
	}
	return nil
}

func checkOutput(y float64) (float64, error) {
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, ErrNonFiniteOutput
	}
	return y, nil
}
