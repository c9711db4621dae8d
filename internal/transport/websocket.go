package transport

import (
	"bytes"
	"strconv"
	"time"

	apperrors "go-housing-estimator/internal/errors"
	"go-housing-estimator/internal/logger"
	"go-housing-estimator/internal/service"
	"go-housing-estimator/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	wsWriteWait   = 10 * time.Second
	wsIdleTimeout = 5 * time.Minute
)

// Same-origin check is gorilla's default when CheckOrigin is nil
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// liveForm serves the interactive surface. Each text message is one JSON
// object of field values; each reply is one PredictionResult.
func (h *handler) liveForm(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		logger.WithError(err).WithField("request_id", c.GetString(requestIDKey)).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	connID := c.GetString(requestIDKey)
	conn.SetReadLimit(h.cfg.MaxRequestBodySize)
	log := logger.WithFields(logrus.Fields{"request_id": connID, "ip": c.ClientIP()})
	log.Info("Live form connected")

	for seq := 1; ; seq++ {
		_ = conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("Live form connection closed unexpectedly")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var result models.PredictionResult
		raw, err := decodeFields(bytes.NewReader(data))
		if err != nil {
			appErr, ok := apperrors.As(err)
			if !ok {
				appErr = apperrors.NewMalformedInputError("", "message must be a JSON object of field values", err)
			}
			result = models.ErrorResult(string(appErr.Type), appErr.UserMessage())
		} else {
			ctx, cancel := h.requestContext(c)
			result = h.svc.Handle(service.WithRequestID(ctx, connID+"-"+strconv.Itoa(seq)), raw)
			cancel()
		}

		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(result); err != nil {
			log.WithError(err).Warn("Failed to write prediction to live form")
			return
		}
	}
}

