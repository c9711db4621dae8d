package reload

import (
	"context"
	"sync"
	"time"

	"go-housing-estimator/internal/observer"
	"go-housing-estimator/internal/repository"

	"github.com/sirupsen/logrus"
)

// Swapper installs a freshly loaded bundle
type Swapper interface {
	Swap(bundle *repository.Bundle) *repository.Bundle
	Bundle() *repository.Bundle
}

// Result describes a completed reload
type Result struct {
	PreviousVersion string
	Version         string
}

// Reloader loads artifacts and swaps them in. A failed load leaves the
// current bundle untouched.
type Reloader struct {
	mu        sync.Mutex
	repo      repository.ArtifactRepository
	target    Swapper
	timeout   time.Duration
	publisher observer.Subject
	logger    *logrus.Logger
}

// NewReloader creates a reloader. timeout bounds each artifact load; zero
// means no bound beyond the caller's context.
func NewReloader(repo repository.ArtifactRepository, target Swapper, timeout time.Duration, publisher observer.Subject, logger *logrus.Logger) *Reloader {
	return &Reloader{
		repo:      repo,
		target:    target,
		timeout:   timeout,
		publisher: publisher,
		logger:    logger,
	}
}

// Reload loads both artifacts and swaps them in. Concurrent calls are
// serialised so two loads never race to install.
func (r *Reloader) Reload(ctx context.Context) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	var result Result
	if current := r.target.Bundle(); current != nil {
		result.PreviousVersion = current.Version()
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	bundle, err := r.repo.Load(ctx)
	if err != nil {
		r.logger.WithError(err).WithField("artifact_version", result.PreviousVersion).
			Error("Artifact reload failed, keeping previous artifacts")
		r.publish(ctx, observer.PredictionEvent{
			EventType:       observer.ArtifactReloadFailed,
			Timestamp:       time.Now(),
			Duration:        time.Since(start),
			ErrorMessage:    err.Error(),
			ArtifactVersion: result.PreviousVersion,
		})
		return result, err
	}

	r.target.Swap(bundle)
	result.Version = bundle.Version()

	r.logger.WithFields(logrus.Fields{
		"previous_version": result.PreviousVersion,
		"artifact_version": result.Version,
		"duration":         time.Since(start),
	}).Info("Artifacts reloaded")
	r.publish(ctx, observer.PredictionEvent{
		EventType:       observer.ArtifactsReloaded,
		Timestamp:       time.Now(),
		Duration:        time.Since(start),
		Success:         true,
		ArtifactVersion: result.Version,
	})
	return result, nil
}

func (r *Reloader) publish(ctx context.Context, event observer.PredictionEvent) {
	if r.publisher != nil {
		r.publisher.NotifyObservers(ctx, event)
	}
}
