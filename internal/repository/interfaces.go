package repository

import (
	"context"
	"fmt"
	"time"

	apperrors "go-housing-estimator/internal/errors"
	"go-housing-estimator/internal/features"
	"go-housing-estimator/internal/model"
)

// ArtifactRepository loads the transformer and model artifacts
type ArtifactRepository interface {
	// Load reads both artifacts and returns a ready, immutable bundle
	Load(ctx context.Context) (*Bundle, error)
}

// FeatureTransformer is the compiled preprocessing step of a bundle
type FeatureTransformer interface {
	Transform(rec features.Record) ([]float64, error)
	Width() int
	Names() []string
	Categories() []string
	Version() string
	Known(category string) bool
}

// Bundle pairs a transformer with the model it was trained for. A bundle is
// never modified after construction; reloads build a new one.
type Bundle struct {
	Transformer FeatureTransformer
	Model       model.Model
	LoadedAt    time.Time
}

// NewBundle checks that the transformer output fits the model input
func NewBundle(t FeatureTransformer, m model.Model) (*Bundle, error) {
	if t.Width() != m.Features() {
		return nil, apperrors.NewArtifactError("transformer and model artifacts are incompatible",
			fmt.Errorf("%w: %d vs %d", ErrWidthMismatch, t.Width(), m.Features()))
	}
	return &Bundle{Transformer: t, Model: m, LoadedAt: time.Now().UTC()}, nil
}

// Version identifies the artifact pair
func (b *Bundle) Version() string {
	return b.Transformer.Version() + "+" + b.Model.Version()
}
