package container

import (
	"context"
	"fmt"
	"net/http"

	"go-housing-estimator/internal/config"
	"go-housing-estimator/internal/factory"
	"go-housing-estimator/internal/logger"
	"go-housing-estimator/internal/observer"
	"go-housing-estimator/internal/reload"
	"go-housing-estimator/internal/repository"
	"go-housing-estimator/internal/service"
	"go-housing-estimator/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config     *config.Config
	repository repository.ArtifactRepository
	service    service.InferenceService
	publisher  *observer.EventPublisher
	metrics    *observer.MetricsObserver
	reloader   *reload.Reloader
	watcher    *reload.Watcher
	handler    http.Handler
}

// NewContainer builds the dependency graph and loads the initial artifacts.
// It fails when the artifacts cannot be loaded.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	components := factory.NewComponentFactory()

	source, err := components.SourceFactory.CreateSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact source: %w", err)
	}
	policy, err := components.StrategyFactory.CreateStrategy(cfg.CategoryFallback, cfg.NearestMaxDistance)
	if err != nil {
		return nil, fmt.Errorf("failed to create category fallback: %w", err)
	}
	repo := repository.NewArtifactRepository(source, cfg.TransformerArtifact, cfg.ModelArtifact, policy, components.ModelFactory)

	loadCtx, cancel := context.WithTimeout(ctx, cfg.ArtifactFetchTimeout)
	defer cancel()
	bundle, err := repo.Load(loadCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to load artifacts from %s source: %w", source.Kind(), err)
	}

	metrics := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher(0)
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	svc, err := service.NewInferenceService(bundle, service.DefaultOptions().
		WithCache(cfg.PredictionCacheSize).
		WithPublisher(publisher))
	if err != nil {
		publisher.Close()
		return nil, err
	}

	reloader := reload.NewReloader(repo, svc, cfg.ArtifactFetchTimeout, publisher, logger.Logger)

	var watcher *reload.Watcher
	if cfg.ArtifactWatch {
		watcher, err = reload.NewWatcher(reloader, cfg.ArtifactDir,
			[]string{cfg.TransformerArtifact, cfg.ModelArtifact}, reload.DefaultDebounce, logger.Logger)
		if err != nil {
			publisher.Close()
			return nil, err
		}
	}

	return &Container{
		config:     cfg,
		repository: repo,
		service:    svc,
		publisher:  publisher,
		metrics:    metrics,
		reloader:   reloader,
		watcher:    watcher,
		handler:    transport.NewHandler(svc, reloader, metrics, cfg),
	}, nil
}

// Start runs background workers until ctx is done
func (c *Container) Start(ctx context.Context) {
	if c.watcher != nil {
		go c.watcher.Run(ctx)
	}
}

// Close flushes pending prediction events
func (c *Container) Close() {
	c.publisher.Close()
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Service returns the inference pipeline
func (c *Container) Service() service.InferenceService {
	return c.service
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}
