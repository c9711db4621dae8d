package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	apperrors "go-housing-estimator/internal/errors"
	"go-housing-estimator/internal/logger"
	"go-housing-estimator/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// decodeFields reads one JSON object of raw field values. Numbers are kept
// as json.Number so no precision is lost before validation.
func decodeFields(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, err
		}
		return nil, apperrors.NewMalformedInputError("", "request body must be a JSON object of field values", err)
	}
	if raw == nil {
		return nil, apperrors.NewMalformedInputError("", "request body must be a JSON object of field values", nil)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, err
		}
		return nil, apperrors.NewMalformedInputError("", "request body must contain a single JSON object", err)
	}
	return raw, nil
}

func (h *handler) predict(c *gin.Context) {
	startTime := time.Now()
	ctx, cancel := h.requestContext(c)
	defer cancel()

	raw, err := decodeFields(c.Request.Body)
	if err != nil {
		appErr, ok := apperrors.As(err)
		if !ok {
			respondError(c, determineStatusCode(err), "invalid request body", err)
			return
		}
		c.JSON(appErr.StatusCode, models.ErrorResult(string(appErr.Type), appErr.UserMessage()))
		return
	}

	result := h.svc.Handle(ctx, raw)

	logger.WithFields(logrus.Fields{
		"request_id":         c.GetString(requestIDKey),
		"success":            result.Success(),
		"error_type":         result.ErrorType,
		"processing_time_ms": time.Since(startTime).Milliseconds(),
	}).Info("Prediction request completed")

	c.JSON(apperrors.StatusCodeFor(apperrors.ErrorType(result.ErrorType)), result)
}

func (h *handler) schema(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Schema())
}

func (h *handler) healthCheck(c *gin.Context) {
	resp := models.HealthResponse{
		Status:    "available",
		Timestamp: time.Now().UTC(),
	}
	bundle := h.svc.Bundle()
	if bundle == nil {
		resp.Status = "unavailable"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	resp.ArtifactVersion = bundle.Version()
	resp.ModelKind = bundle.Model.Kind()
	resp.ArtifactLoadedAt = bundle.LoadedAt
	c.JSON(http.StatusOK, resp)
}

func (h *handler) metricsSnapshot(c *gin.Context) {
	if h.metrics == nil {
		respondError(c, http.StatusNotFound, "metrics are disabled", nil)
		return
	}
	c.JSON(http.StatusOK, h.metrics.GetMetrics())
}

func (h *handler) reloadArtifacts(c *gin.Context) {
	if h.reloader == nil {
		respondError(c, http.StatusNotFound, "artifact reload is disabled", nil)
		return
	}

	// Artifact loading is bounded by its own fetch timeout, not the request's
	result, err := h.reloader.Reload(c.Request.Context())
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "artifact reload failed", err)
		return
	}
	c.JSON(http.StatusOK, models.ReloadResponse{
		PreviousVersion: result.PreviousVersion,
		Version:         result.Version,
	})
}
