package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// PredictionEvent describes one step of a prediction or an artifact reload
type PredictionEvent struct {
	EventType       EventType              `json:"event_type"`
	Timestamp       time.Time              `json:"timestamp"`
	RequestID       string                 `json:"request_id,omitempty"`
	Duration        time.Duration          `json:"duration"`
	Success         bool                   `json:"success"`
	Cached          bool                   `json:"cached,omitempty"`
	ErrorType       string                 `json:"error_type,omitempty"`
	ErrorMessage    string                 `json:"error_message,omitempty"`
	ArtifactVersion string                 `json:"artifact_version,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of prediction event
type EventType string

const (
	// PredictionStarted when a request enters the pipeline
	PredictionStarted EventType = "prediction_started"
	// PredictionCompleted when a price was produced
	PredictionCompleted EventType = "prediction_completed"
	// PredictionFailed when the request ended with an error result
	PredictionFailed EventType = "prediction_failed"
	// ArtifactsReloaded when a new bundle was swapped in
	ArtifactsReloaded EventType = "artifacts_reloaded"
	// ArtifactReloadFailed when a reload was rejected and the old bundle kept
	ArtifactReloadFailed EventType = "artifact_reload_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event PredictionEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event PredictionEvent)
}

// LoggingObserver logs prediction events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles prediction events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event PredictionEvent) {
	fields := logrus.Fields{
		"event_type": event.EventType,
		"duration":   event.Duration,
		"success":    event.Success,
	}
	if event.RequestID != "" {
		fields["request_id"] = event.RequestID
	}
	if event.ArtifactVersion != "" {
		fields["artifact_version"] = event.ArtifactVersion
	}
	if event.ErrorType != "" {
		fields["error_type"] = event.ErrorType
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case PredictionStarted:
		entry.Debug("Prediction started")
	case PredictionCompleted:
		entry.WithField("cached", event.Cached).Info("Prediction completed")
	case PredictionFailed:
		entry.Warn("Prediction failed")
	case ArtifactsReloaded:
		entry.Info("Artifacts reloaded")
	case ArtifactReloadFailed:
		entry.Error("Artifact reload failed, keeping previous artifacts")
	default:
		entry.Info("Prediction event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from prediction events
type MetricsObserver struct {
	mu                    sync.RWMutex
	totalPredictions      int64
	successfulPredictions int64
	failedPredictions     int64
	cachedPredictions     int64
	failuresByType        map[string]int64
	reloads               int64
	failedReloads         int64
	totalProcessingTime   time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{failuresByType: make(map[string]int64)}
}

// OnEvent handles prediction events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event PredictionEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case PredictionStarted:
		o.totalPredictions++
	case PredictionCompleted:
		o.successfulPredictions++
		o.totalProcessingTime += event.Duration
		if event.Cached {
			o.cachedPredictions++
		}
	case PredictionFailed:
		o.failedPredictions++
		o.failuresByType[event.ErrorType]++
	case ArtifactsReloaded:
		o.reloads++
	case ArtifactReloadFailed:
		o.failedReloads++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.successfulPredictions > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.successfulPredictions)
	}

	byType := make(map[string]int64, len(o.failuresByType))
	for k, v := range o.failuresByType {
		byType[k] = v
	}

	return map[string]interface{}{
		"total_predictions":       o.totalPredictions,
		"successful_predictions":  o.successfulPredictions,
		"failed_predictions":      o.failedPredictions,
		"cached_predictions":      o.cachedPredictions,
		"failures_by_type":        byType,
		"artifact_reloads":        o.reloads,
		"failed_artifact_reloads": o.failedReloads,
		"avg_processing_time":     avgProcessingTime.String(),
	}
}

// EventPublisher implements the Subject interface. Observers run on a
// bounded dispatcher so a slow observer never blocks a prediction.
type EventPublisher struct {
	mu         sync.RWMutex
	observers  []Observer
	dispatcher *dispatcher
}

// NewEventPublisher creates a publisher with the given number of dispatch
// workers. Zero uses one worker per CPU.
func NewEventPublisher(workers int) *EventPublisher {
	return &EventPublisher{
		observers:  make([]Observer, 0),
		dispatcher: newDispatcher(workers),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers queues the event for every observer. Events are dropped
// when the queue is full or the publisher is closed.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event PredictionEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	// Observers must not see the request's cancellation
	ctx = context.WithoutCancel(ctx)

	for _, observer := range observers {
		obs := observer
		queued := p.dispatcher.submit(func() {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		})
		if !queued {
			logrus.WithField("observer", obs.GetObserverName()).
				WithField("event_type", event.EventType).
				Debug("Dropped prediction event")
		}
	}
}

// Dropped returns how many observer callbacks were not queued
func (p *EventPublisher) Dropped() int64 {
	return p.dispatcher.dropped.Load()
}

// Close stops accepting events and waits for queued ones to finish
func (p *EventPublisher) Close() {
	p.dispatcher.close()
}
