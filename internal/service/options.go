package service

import (
	"go-housing-estimator/internal/logger"
	"go-housing-estimator/internal/observer"

	"github.com/sirupsen/logrus"
)

// Options configures an InferenceService
type Options struct {
	// CacheSize bounds the prediction memo cache. Zero disables it.
	CacheSize int

	// Publisher receives prediction events. Nil disables events.
	Publisher observer.Subject

	Logger *logrus.Logger
}

// DefaultOptions returns options with caching and events disabled
func DefaultOptions() Options {
	return Options{
		CacheSize: 0,
		Logger:    logger.Logger,
	}
}

// WithCache enables the memo cache with the given size
func (opts Options) WithCache(size int) Options {
	opts.CacheSize = size
	return opts
}

// WithPublisher sends prediction events to p
func (opts Options) WithPublisher(p observer.Subject) Options {
	opts.Publisher = p
	return opts
}

// WithLogger replaces the shared logger
func (opts Options) WithLogger(l *logrus.Logger) Options {
	opts.Logger = l
	return opts
}
