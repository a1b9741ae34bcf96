package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/services"
)

// AuditResourceKey lets a create handler report the id it produced.
const AuditResourceKey = "audit_resource_id"

// Audit records one activity entry per request once the handler finishes.
// The resource id is the :id path param, or what the handler stored under
// AuditResourceKey.
func Audit(audit services.AuditService, action, resource string) gin.HandlerFunc {
	return AuditParam(audit, action, resource, "id")
}

// AuditParam is Audit for nested routes whose resource id is the named path
// param. The enclosing rule id is kept in the entry details.
func AuditParam(audit services.AuditService, action, resource, param string) gin.HandlerFunc {
	if audit == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		meta := services.TrackMeta{
			ActionType:   action,
			ResourceType: resource,
			ResourceID:   c.Param(param),
		}
		if parent := c.Param("id"); param != "id" && parent != "" {
			meta.Details = map[string]any{"rule_id": parent}
		}
		_, _ = services.Tracked(c.Request.Context(), audit, meta, func(context.Context) (string, error) {
			c.Next()
			return c.GetString(AuditResourceKey), outcome(c)
		}, func(id string) string { return id })
	}
}

// outcome turns the written status into the error the activity log stores.
func outcome(c *gin.Context) error {
	if c.Writer.Status() < http.StatusBadRequest {
		return nil
	}
	if last := c.Errors.Last(); last != nil {
		return last.Err
	}
	return errors.New(http.StatusText(c.Writer.Status()))
}
