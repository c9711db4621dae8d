package features

import (
	"fmt"
	"math"

	apperrors "go-housing-estimator/internal/errors"
)

// Definition is the frozen preprocessing artifact produced at training time
type Definition struct {
	Version     string            `yaml:"version" json:"version"`
	Numeric     []NumericColumn   `yaml:"numeric" json:"numeric"`
	Derived     []DerivedColumn   `yaml:"derived,omitempty" json:"derived,omitempty"`
	Categorical CategoricalColumn `yaml:"categorical" json:"categorical"`
}

// NumericColumn imputes then standardises one request field
type NumericColumn struct {
	Name   string  `yaml:"name" json:"name"`
	Impute float64 `yaml:"impute" json:"impute"`
	Center float64 `yaml:"center" json:"center"`
	Scale  float64 `yaml:"scale" json:"scale"`
}

// DerivedColumn is a ratio of two request fields, standardised like a numeric column
type DerivedColumn struct {
	Name        string  `yaml:"name" json:"name"`
	Numerator   string  `yaml:"numerator" json:"numerator"`
	Denominator string  `yaml:"denominator" json:"denominator"`
	Impute      float64 `yaml:"impute" json:"impute"`
	Center      float64 `yaml:"center" json:"center"`
	Scale       float64 `yaml:"scale" json:"scale"`
}

// CategoricalColumn one-hot encodes ocean_proximity in the listed order
type CategoricalColumn struct {
	Name       string   `yaml:"name" json:"name"`
	Categories []string `yaml:"categories" json:"categories"`
}

// CategoryPolicy maps a category missing from the frozen set to a one-hot
// position, or -1 for the all-zero encoding.
type CategoryPolicy interface {
	Resolve(value string, categories []string) int
	Name() string
}

type numericStep struct {
	field                 string
	impute, center, scale float64
}

type derivedStep struct {
	numerator, denominator string
	impute, center, scale  float64
}

// Transformer applies a compiled Definition. It holds no mutable state and
// is safe for concurrent use.
type Transformer struct {
	version    string
	numeric    []numericStep
	derived    []derivedStep
	categories []string
	index      map[string]int
	names      []string
	policy     CategoryPolicy
}

// Compile checks a definition against the record schema and freezes it.
// A nil policy encodes unknown categories as all zeros.
func Compile(def Definition, policy CategoryPolicy) (*Transformer, error) {
	if len(def.Numeric) == 0 {
		return nil, apperrors.NewArtifactError("transformer definition has no numeric columns", nil)
	}

	t := &Transformer{
		version: def.Version,
		index:   make(map[string]int, len(def.Categorical.Categories)),
		policy:  policy,
	}

	seen := make(map[string]bool)
	for _, col := range def.Numeric {
		if _, ok := (Record{}).Value(col.Name); !ok {
			return nil, apperrors.NewArtifactError(fmt.Sprintf("unknown numeric column %q", col.Name), nil)
		}
		if seen[col.Name] {
			return nil, apperrors.NewArtifactError(fmt.Sprintf("duplicate numeric column %q", col.Name), nil)
		}
		seen[col.Name] = true
		if err := checkStats(col.Name, col.Impute, col.Center, col.Scale); err != nil {
			return nil, err
		}
		t.numeric = append(t.numeric, numericStep{field: col.Name, impute: col.Impute, center: col.Center, scale: col.Scale})
		t.names = append(t.names, col.Name)
	}

	for _, col := range def.Derived {
		for _, field := range []string{col.Numerator, col.Denominator} {
			if _, ok := (Record{}).Value(field); !ok {
				return nil, apperrors.NewArtifactError(fmt.Sprintf("derived column %q references unknown field %q", col.Name, field), nil)
			}
		}
		if err := checkStats(col.Name, col.Impute, col.Center, col.Scale); err != nil {
			return nil, err
		}
		t.derived = append(t.derived, derivedStep{
			numerator:   col.Numerator,
			denominator: col.Denominator,
			impute:      col.Impute,
			center:      col.Center,
			scale:       col.Scale,
		})
		t.names = append(t.names, col.Name)
	}

	if def.Categorical.Name != FieldOceanProximity {
		return nil, apperrors.NewArtifactError(fmt.Sprintf("categorical column must be %q, got %q", FieldOceanProximity, def.Categorical.Name), nil)
	}
	if len(def.Categorical.Categories) == 0 {
		return nil, apperrors.NewArtifactError("categorical column has no categories", nil)
	}
	for i, category := range def.Categorical.Categories {
		if _, dup := t.index[category]; dup {
			return nil, apperrors.NewArtifactError(fmt.Sprintf("duplicate category %q", category), nil)
		}
		t.index[category] = i
		t.categories = append(t.categories, category)
		t.names = append(t.names, FieldOceanProximity+"_"+category)
	}

	return t, nil
}

func checkStats(name string, impute, center, scale float64) error {
	for _, v := range []float64{impute, center, scale} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return apperrors.NewArtifactError(fmt.Sprintf("column %q has non-finite statistics", name), nil)
		}
	}
	if scale == 0 {
		return apperrors.NewArtifactError(fmt.Sprintf("column %q has zero scale", name), nil)
	}
	return nil
}

// Width is the length of every vector this transformer produces
func (t *Transformer) Width() int {
	return len(t.names)
}

// Names returns the output column names in vector order
func (t *Transformer) Names() []string {
	return append([]string(nil), t.names...)
}

// Categories returns the frozen category order
func (t *Transformer) Categories() []string {
	return append([]string(nil), t.categories...)
}

// Version of the definition this transformer was compiled from
func (t *Transformer) Version() string {
	return t.version
}

// Known reports whether category is part of the frozen set
func (t *Transformer) Known(category string) bool {
	_, ok := t.index[category]
	return ok
}

// Transform maps a record to its model input vector
func (t *Transformer) Transform(rec Record) ([]float64, error) {
	if t == nil || len(t.names) == 0 {
		return nil, apperrors.NewTransformationError("transformer is not initialised", nil)
	}

	out := make([]float64, 0, len(t.names))
	for _, step := range t.numeric {
		v, ok := rec.Value(step.field)
		if !ok {
			return nil, apperrors.NewTransformationError(fmt.Sprintf("record has no field %q", step.field), nil)
		}
		out = append(out, standardise(v, step.impute, step.center, step.scale))
	}

	for _, step := range t.derived {
		num, ok1 := rec.Value(step.numerator)
		den, ok2 := rec.Value(step.denominator)
		if !ok1 || !ok2 {
			return nil, apperrors.NewTransformationError("record is missing a ratio input", nil)
		}
		ratio := math.NaN()
		if isFinite(num) && isFinite(den) && den != 0 {
			ratio = num / den
		}
		out = append(out, standardise(ratio, step.impute, step.center, step.scale))
	}

	onehot := make([]float64, len(t.categories))
	pos, ok := t.index[rec.OceanProximity]
	if !ok {
		pos = -1
		if t.policy != nil {
			pos = t.policy.Resolve(rec.OceanProximity, t.categories)
		}
	}
	if pos >= len(onehot) {
		return nil, apperrors.NewTransformationError(fmt.Sprintf("category position %d out of range", pos), nil)
	}
	if pos >= 0 {
		onehot[pos] = 1
	}
	out = append(out, onehot...)

	for i, v := range out {
		if !isFinite(v) {
			return nil, apperrors.NewTransformationError(fmt.Sprintf("column %q is not finite after transformation", t.names[i]), nil)
		}
	}
	return out, nil
}

func standardise(v, impute, center, scale float64) float64 {
	if !isFinite(v) {
		v = impute
	}
	return (v - center) / scale
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
