package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	HeaderRequestID = "X-Request-ID"

	ContextKeyRequestID = "request_id"
	loggerKey           = "logger"
)

// maxRequestIDLength bounds client-supplied ids before they reach logs.
const maxRequestIDLength = 128

// RequestID reuses the caller's X-Request-ID or generates one, echoes it in
// the response and stores a logger tagged with it for the rest of the chain.
func RequestID(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}

		c.Header(HeaderRequestID, requestID)
		c.Set(ContextKeyRequestID, requestID)
		c.Set(loggerKey, logger.With(zap.String("request_id", requestID)))

		c.Next()
	}
}

// Logger returns the request-scoped logger, or a no-op logger when
// RequestID did not run.
func Logger(c *gin.Context) *zap.Logger {
	if val, ok := c.Get(loggerKey); ok {
		if l, ok := val.(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}
