package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
	"time"

	apperrors "go-housing-estimator/internal/errors"
	"go-housing-estimator/internal/features"
	"go-housing-estimator/internal/observer"
	"go-housing-estimator/internal/repository"
	"go-housing-estimator/pkg/models"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

// InferenceService turns one raw field map into one price or one error
type InferenceService interface {
	// Handle never panics and never returns both a price and an error
	Handle(ctx context.Context, raw map[string]any) models.PredictionResult

	// Vector returns the model input for raw without predicting
	Vector(ctx context.Context, raw map[string]any) ([]float64, error)

	// Swap installs a new bundle and returns the previous one. Requests
	// already running finish with the bundle they started with.
	Swap(bundle *repository.Bundle) *repository.Bundle

	Bundle() *repository.Bundle
	Schema() models.SchemaResponse
}

// loaded ties a bundle to the generation used in cache keys
type loaded struct {
	bundle     *repository.Bundle
	generation uint64
}

type inferenceService struct {
	current    atomic.Pointer[loaded]
	generation atomic.Uint64
	cache      *lru.Cache[string, float64]
	publisher  observer.Subject
	logger     *logrus.Logger
}

// NewInferenceService creates the pipeline around an initial bundle. A nil
// bundle is allowed; requests fail with a prediction error until Swap.
func NewInferenceService(bundle *repository.Bundle, opts Options) (InferenceService, error) {
	s := &inferenceService{
		publisher: opts.Publisher,
		logger:    opts.Logger,
	}
	if s.logger == nil {
		s.logger = DefaultOptions().Logger
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, float64](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create prediction cache: %w", err)
		}
		s.cache = cache
	}
	if bundle != nil {
		s.Swap(bundle)
	}
	return s, nil
}

func (s *inferenceService) Handle(ctx context.Context, raw map[string]any) (result models.PredictionResult) {
	start := time.Now()
	requestID := RequestIDFromContext(ctx)
	s.publish(ctx, observer.PredictionEvent{
		EventType: observer.PredictionStarted,
		Timestamp: start,
		RequestID: requestID,
	})

	defer func() {
		if r := recover(); r != nil {
			err := apperrors.NewPredictionError("prediction failed unexpectedly", fmt.Errorf("panic: %v", r))
			result = s.fail(ctx, start, "", err)
		}
	}()

	current := s.current.Load()
	if current == nil {
		return s.fail(ctx, start, "", apperrors.NewPredictionError("no model artifacts are loaded", nil))
	}
	version := current.bundle.Version()

	price, cached, err := s.predict(ctx, current, raw)
	if err != nil {
		return s.fail(ctx, start, version, err)
	}

	s.publish(ctx, observer.PredictionEvent{
		EventType:       observer.PredictionCompleted,
		Timestamp:       time.Now(),
		RequestID:       requestID,
		Duration:        time.Since(start),
		Success:         true,
		Cached:          cached,
		ArtifactVersion: version,
	})
	return models.PriceResult(price)
}

func (s *inferenceService) predict(ctx context.Context, current *loaded, raw map[string]any) (float64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, apperrors.NewPredictionError("request was cancelled", err)
	}

	rec, err := features.ParseRecord(raw)
	if err != nil {
		return 0, false, err
	}

	key := strconv.FormatUint(current.generation, 10) + "|" + rec.Key()
	if s.cache != nil {
		if price, ok := s.cache.Get(key); ok {
			return price, true, nil
		}
	}

	vector, err := s.transform(ctx, current.bundle, rec)
	if err != nil {
		return 0, false, err
	}

	y, err := current.bundle.Model.Predict(vector)
	if err != nil {
		return 0, false, apperrors.NewModelError("model failed to produce a prediction", err)
	}
	price := RoundPrice(y)
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, false, apperrors.NewModelError("model produced a value that cannot be reported as a price", nil)
	}

	if s.cache != nil {
		s.cache.Add(key, price)
	}
	return price, false, nil
}

func (s *inferenceService) transform(ctx context.Context, bundle *repository.Bundle, rec features.Record) ([]float64, error) {
	if !bundle.Transformer.Known(rec.OceanProximity) {
		s.logger.WithFields(logrus.Fields{
			"request_id":      RequestIDFromContext(ctx),
			"ocean_proximity": rec.OceanProximity,
		}).Warn("Unknown ocean_proximity category, applying fallback encoding")
	}

	vector, err := bundle.Transformer.Transform(rec)
	if err != nil {
		if _, ok := apperrors.As(err); ok {
			return nil, err
		}
		return nil, apperrors.NewTransformationError("failed to transform record", err)
	}
	return vector, nil
}

func (s *inferenceService) fail(ctx context.Context, start time.Time, version string, err error) models.PredictionResult {
	appErr := classify(err)

	entry := s.logger.WithFields(logrus.Fields{
		"request_id": RequestIDFromContext(ctx),
		"error_type": appErr.Type,
	}).WithError(err)
	if appErr.Type == apperrors.ErrorTypeMalformedInput {
		entry.Debug("Rejected prediction request")
	} else {
		entry.Error("Prediction failed")
	}

	s.publish(ctx, observer.PredictionEvent{
		EventType:       observer.PredictionFailed,
		Timestamp:       time.Now(),
		RequestID:       RequestIDFromContext(ctx),
		Duration:        time.Since(start),
		ErrorType:       string(appErr.Type),
		ErrorMessage:    appErr.UserMessage(),
		ArtifactVersion: version,
	})
	return models.ErrorResult(string(appErr.Type), appErr.UserMessage())
}

// classify maps any error to one of the four pipeline error kinds
func classify(err error) *apperrors.AppError {
	if appErr, ok := apperrors.As(err); ok {
		switch appErr.Type {
		case apperrors.ErrorTypeMalformedInput,
			apperrors.ErrorTypeTransformation,
			apperrors.ErrorTypeModel,
			apperrors.ErrorTypePrediction:
			return appErr
		}
	}
	return apperrors.NewPredictionError("prediction failed", err)
}

func (s *inferenceService) Vector(ctx context.Context, raw map[string]any) ([]float64, error) {
	current := s.current.Load()
	if current == nil {
		return nil, apperrors.NewPredictionError("no model artifacts are loaded", nil)
	}
	rec, err := features.ParseRecord(raw)
	if err != nil {
		return nil, err
	}
	return s.transform(ctx, current.bundle, rec)
}

func (s *inferenceService) Swap(bundle *repository.Bundle) *repository.Bundle {
	if bundle == nil {
		return s.Bundle()
	}
	next := &loaded{bundle: bundle, generation: s.generation.Add(1)}
	previous := s.current.Swap(next)
	if s.cache != nil {
		s.cache.Purge()
	}

	s.logger.WithFields(logrus.Fields{
		"artifact_version": bundle.Version(),
		"model_kind":       bundle.Model.Kind(),
		"features":         bundle.Model.Features(),
	}).Info("Artifacts installed")

	if previous == nil {
		return nil
	}
	return previous.bundle
}

func (s *inferenceService) Bundle() *repository.Bundle {
	if current := s.current.Load(); current != nil {
		return current.bundle
	}
	return nil
}

func (s *inferenceService) Schema() models.SchemaResponse {
	schema := models.SchemaResponse{
		NumericFields: append([]string(nil), features.NumericFields...),
		CategoryField: features.FieldOceanProximity,
		Categories:    append([]string(nil), features.Categories...),
	}
	if bundle := s.Bundle(); bundle != nil {
		schema.Categories = bundle.Transformer.Categories()
		schema.FeatureColumns = bundle.Transformer.Names()
		schema.Version = bundle.Version()
	}
	return schema
}

func (s *inferenceService) publish(ctx context.Context, event observer.PredictionEvent) {
	if s.publisher != nil {
		s.publisher.NotifyObservers(ctx, event)
	}
}

// RoundPrice rounds to two decimals, halves away from zero. This differs
// from banker's rounding on exact binary halves (0.125 gives 0.13, not 0.12).
func RoundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}
