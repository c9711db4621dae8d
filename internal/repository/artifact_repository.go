package repository

import (
	"context"
	"errors"
	"fmt"
	"io"

	apperrors "go-housing-estimator/internal/errors"
	"go-housing-estimator/internal/factory"
	"go-housing-estimator/internal/features"
	"go-housing-estimator/internal/model"
	"go-housing-estimator/internal/storage"

	"gopkg.in/yaml.v3"
)

// artifactRepository implements ArtifactRepository on top of an ArtifactSource
type artifactRepository struct {
	source          storage.ArtifactSource
	transformerName string
	modelName       string
	policy          features.CategoryPolicy
	models          factory.ModelFactory
}

// NewArtifactRepository creates a repository reading the two named artifacts.
// Artifacts may be YAML or JSON.
func NewArtifactRepository(
	source storage.ArtifactSource,
	transformerName, modelName string,
	policy features.CategoryPolicy,
	models factory.ModelFactory,
) ArtifactRepository {
	return &artifactRepository{
		source:          source,
		transformerName: transformerName,
		modelName:       modelName,
		policy:          policy,
		models:          models,
	}
}

// Load reads, decodes and cross-checks both artifacts
func (r *artifactRepository) Load(ctx context.Context) (*Bundle, error) {
	var def features.Definition
	if err := r.decode(ctx, "transformer", r.transformerName, &def); err != nil {
		return nil, err
	}
	transformer, err := features.Compile(def, r.policy)
	if err != nil {
		return nil, err
	}

	var params model.Params
	if err := r.decode(ctx, "model", r.modelName, &params); err != nil {
		return nil, err
	}
	m, err := r.models.CreateModel(params)
	if err != nil {
		return nil, apperrors.NewArtifactError("model parameters were rejected", err)
	}

	return NewBundle(transformer, m)
}

func (r *artifactRepository) decode(ctx context.Context, kind, name string, out interface{}) error {
	rc, err := r.source.Open(ctx, name)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrArtifactNotFound):
			return apperrors.NewNotFoundError(kind+" artifact not found", err)
		case errors.Is(err, context.DeadlineExceeded):
			return apperrors.NewTimeoutError(kind+" artifact fetch timed out", err)
		default:
			return apperrors.NewArtifactError("failed to read "+kind+" artifact", err)
		}
	}
	defer rc.Close()

	dec := yaml.NewDecoder(rc)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			err = ErrEmptyArtifact
		}
		return apperrors.NewArtifactError("failed to decode "+kind+" artifact", fmt.Errorf("%s: %w", name, err))
	}
	return nil
}
