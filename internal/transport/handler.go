package transport

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"go-housing-estimator/internal/config"
	apperrors "go-housing-estimator/internal/errors"
	"go-housing-estimator/internal/logger"
	"go-housing-estimator/internal/reload"
	"go-housing-estimator/internal/service"
	"go-housing-estimator/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// Reloader reloads artifacts on demand
type Reloader interface {
	Reload(ctx context.Context) (reload.Result, error)
}

// MetricsProvider exposes prediction counters
type MetricsProvider interface {
	GetMetrics() map[string]interface{}
}

type handler struct {
	svc      service.InferenceService
	reloader Reloader
	metrics  MetricsProvider
	cfg      *config.Config
}

// NewHandler builds the router for both request surfaces. reloader and
// metrics may be nil, which disables their endpoints.
func NewHandler(svc service.InferenceService, reloader Reloader, metrics MetricsProvider, cfg *config.Config) http.Handler {
	h := &handler{svc: svc, reloader: reloader, metrics: metrics, cfg: cfg}

	r := gin.Default()
	r.SetHTMLTemplate(template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")))

	// Add middleware
	r.Use(
		requestID(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Web page surface
	r.GET("/", h.showForm)
	r.POST("/", h.submitForm)

	// Interactive surface
	api := r.Group("/api")
	api.POST("/predict", h.predict)
	api.GET("/schema", h.schema)
	r.GET("/ws", h.liveForm)

	r.GET("/health", h.healthCheck)
	r.GET("/metrics", h.metricsSnapshot)
	r.POST("/admin/reload", h.reloadArtifacts)

	return r
}

// requestContext bounds the request and tags it with its id
func (h *handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	return service.WithRequestID(ctx, c.GetString(requestIDKey)), cancel
}

// Middleware and helper functions
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err.Err), "request processing failed", err.Err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	if appErr, ok := apperrors.As(err); ok {
		return appErr.StatusCode
	}

	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes an ErrorResponse. Only the user-facing part of an
// AppError is sent; causes stay in the log.
func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
		"request_id":  c.GetString(requestIDKey),
	}).Error("Request failed")

	detail := http.StatusText(code)
	if appErr, ok := apperrors.As(err); ok {
		detail = appErr.UserMessage()
	}
	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: message + ": " + detail,
	})
}
