package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/infrastructure/logger"
)

// RequestIDHeader is the header the request ID is read from and echoed on
const RequestIDHeader = "X-Request-ID"

// requestIDKey is the gin context key for the request ID
const requestIDKey = "request_id"

// RequestID assigns every request an ID, honoring one supplied by the
// caller, and threads it through the request context so downstream log
// lines carry it.
func RequestID(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)

		ctx, _ := logger.WithRequestID(c.Request.Context(), log, requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetRequestID returns the request ID assigned by the RequestID middleware
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
