package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
	headerSessionID = "X-Session-Id"
)

// AttachRequestContext stamps correlation ids and records caller metadata for
// the activity log. Auth copies the result and adds the staff principal.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := &ctxutil.RequestData{
			RequestID: headerOr(c, headerRequestID, 128, uuid.NewString),
			TraceID:   headerOr(c, headerTraceID, 128, func() string { return spanTraceID(c) }),
			IPAddress: c.ClientIP(),
			UserAgent: truncate(c.Request.UserAgent(), 512),
			SessionID: truncate(strings.TrimSpace(c.GetHeader(headerSessionID)), 128),
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Writer.Header().Set(headerTraceID, rd.TraceID)
		c.Writer.Header().Set(headerRequestID, rd.RequestID)
		c.Next()
	}
}

func headerOr(c *gin.Context, name string, max int, fallback func() string) string {
	if v := truncate(strings.TrimSpace(c.GetHeader(name)), max); v != "" {
		return v
	}
	return fallback()
}

// spanTraceID prefers the otelgin span so logs and exported traces line up.
func spanTraceID(c *gin.Context) string {
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return uuid.NewString()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
