package factory

import (
	"fmt"

	"go-housing-estimator/internal/config"
	"go-housing-estimator/internal/model"
	"go-housing-estimator/internal/storage"
	"go-housing-estimator/internal/strategy"
)

// SourceType represents different artifact storage backends
type SourceType string

const (
	// FileSource for a local artifact directory
	FileSource SourceType = "file"
	// HTTPSource for an HTTP model registry
	HTTPSource SourceType = "http"
	// AzureSource for Azure blob storage
	AzureSource SourceType = "azure"
)

// ModelFactory creates estimators from their exported parameters
type ModelFactory interface {
	CreateModel(params model.Params) (model.Model, error)
}

// SourceFactory creates artifact sources
type SourceFactory interface {
	CreateSource(cfg *config.Config) (storage.ArtifactSource, error)
}

// StrategyFactory creates unknown-category strategies
type StrategyFactory interface {
	CreateStrategy(name string, maxDistance int) (strategy.CategoryStrategy, error)
}

type modelFactory struct{}

// NewModelFactory creates a new model factory
func NewModelFactory() ModelFactory {
	return &modelFactory{}
}

// CreateModel creates an estimator based on params.Kind
func (f *modelFactory) CreateModel(params model.Params) (model.Model, error) {
	switch params.Kind {
	case model.KindLinear:
		return model.NewLinear(params)
	case model.KindForest:
		return model.NewForest(params)
	default:
		return nil, fmt.Errorf("%w: unsupported model kind %q", model.ErrInvalidParams, params.Kind)
	}
}

type sourceFactory struct{}

// NewSourceFactory creates a new source factory
func NewSourceFactory() SourceFactory {
	return &sourceFactory{}
}

// CreateSource creates a source based on cfg.ArtifactSource
func (f *sourceFactory) CreateSource(cfg *config.Config) (storage.ArtifactSource, error) {
	switch SourceType(cfg.ArtifactSource) {
	case FileSource:
		return storage.NewFileSource(cfg.ArtifactDir), nil
	case HTTPSource:
		return storage.NewHTTPSource(cfg.ArtifactBaseURL, cfg.ArtifactFetchTimeout, 0), nil
	case AzureSource:
		return storage.NewAzureStorage(cfg.AzureAccount, cfg.AzureKey, cfg.AzureContainer)
	default:
		return nil, fmt.Errorf("unsupported artifact source: %s", cfg.ArtifactSource)
	}
}

type strategyFactory struct{}

// NewStrategyFactory creates a new strategy factory
func NewStrategyFactory() StrategyFactory {
	return &strategyFactory{}
}

// CreateStrategy creates a strategy from its configured name
func (f *strategyFactory) CreateStrategy(name string, maxDistance int) (strategy.CategoryStrategy, error) {
	return strategy.New(name, maxDistance)
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	ModelFactory    ModelFactory
	SourceFactory   SourceFactory
	StrategyFactory StrategyFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory() *ComponentFactory {
	return &ComponentFactory{
		ModelFactory:    NewModelFactory(),
		SourceFactory:   NewSourceFactory(),
		StrategyFactory: NewStrategyFactory(),
	}
}
