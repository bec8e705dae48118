package server

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nimburion/remotestore/pkg/observability/logger"
	"github.com/nimburion/remotestore/pkg/observability/metrics"
)

// RequestIDHeader is the HTTP header name for request ID.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID keeps an incoming X-Request-ID or generates a UUID, echoes it in
// the response and stores it on the request context for logging.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), requestID))

		c.Next()
	}
}

// Recovery turns a handler panic into a 500 response and logs the stack.
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.WithContext(c.Request.Context()).Error("panic recovered",
					"panic", r,
					"stack", string(debug.Stack()),
				)
				if !c.Writer.Written() {
					writeError(c, http.StatusInternalServerError, "internal_server_error", "an unexpected error occurred")
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}

// Logging writes one line per completed request.
func Logging(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithContext(c.Request.Context()).Info("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// Metrics records request count, latency and in-flight requests. The route
// template is used as the path label.
func Metrics(reg *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		reg.IncrementInFlight()
		defer reg.DecrementInFlight()

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		reg.RecordHTTPMetrics(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
