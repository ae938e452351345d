package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	HeaderRequestID  = "X-Request-ID"
	ContextRequestID = "request_id"
)

// RequestID tags every request with an id, reusing the one sent by the
// client when present, and stores a child logger in the request context
// so handlers can log through zerolog.Ctx.
func RequestID(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(HeaderRequestID, requestID)
		c.Set(ContextRequestID, requestID)

		reqLogger := logger.With().Str("request_id", requestID).Logger()
		c.Request = c.Request.WithContext(reqLogger.WithContext(c.Request.Context()))

		c.Next()

		duration := time.Since(start)
		event := reqLogger.Info()
		if c.Writer.Status() >= 500 {
			event = reqLogger.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", c.FullPath()).
			Int("status", c.Writer.Status()).
			Str("client_ip", c.ClientIP()).
			Int64("duration_ms", duration.Milliseconds()).
			Msg("request completed")
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextRequestID)
}
