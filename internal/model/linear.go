package model

import (
	"fmt"
	"math"
)

// Linear is an ordinary least squares estimator: y = w·x + b
type Linear struct {
	version      string
	coefficients []float64
	intercept    float64
}

// NewLinear validates linear parameters
func NewLinear(p Params) (*Linear, error) {
	if len(p.Coefficients) == 0 {
		return nil, fmt.Errorf("%w: linear model has no coefficients", ErrInvalidParams)
	}
	if p.NFeatures != 0 && p.NFeatures != len(p.Coefficients) {
		return nil, fmt.Errorf("%w: n_features=%d but %d coefficients", ErrInvalidParams, p.NFeatures, len(p.Coefficients))
	}
	for i, w := range p.Coefficients {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: coefficient %d is not finite", ErrInvalidParams, i)
		}
	}
	if math.IsNaN(p.Intercept) || math.IsInf(p.Intercept, 0) {
		return nil, fmt.Errorf("%w: intercept is not finite", ErrInvalidParams)
	}

	return &Linear{
		version:      p.Version,
		coefficients: append([]float64(nil), p.Coefficients...),
		intercept:    p.Intercept,
	}, nil
}

func (m *Linear) Predict(vector []float64) (float64, error) {
	if err := checkShape(vector, len(m.coefficients)); err != nil {
		return 0, err
	}
	y := m.intercept
	for i, x := range vector {
		y += m.coefficients[i] * x
	}
	return checkOutput(y)
}

func (m *Linear) Features() int   { return len(m.coefficients) }
func (m *Linear) Kind() string    { return KindLinear }
func (m *Linear) Version() string { return m.version }
