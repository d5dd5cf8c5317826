package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"compliflow/pkg/utils/contextkey"
)

const (
	// TraceIDHeader is the HTTP header for trace ID propagation
	TraceIDHeader = "X-Trace-Id"
	// RequestIDHeader is the HTTP header for request ID
	RequestIDHeader = "X-Request-Id"
)

// Trace extracts or generates trace and request identifiers, stores them in
// the request context, and echoes them back in the response headers.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.New().String()
		}
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(c.Request.Context(), contextkey.TraceID, traceID)
		ctx = context.WithValue(ctx, contextkey.RequestID, requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Set(string(contextkey.TraceID), traceID)
		c.Set(string(contextkey.RequestID), requestID)

		c.Header(TraceIDHeader, traceID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}
