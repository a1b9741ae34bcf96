package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/http/middleware"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/http/response"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/apierr"
)


func principal(c *gin.Context) (workflow.Principal, bool) {
	p, ok := middleware.Principal(c)
	if !ok {
		response.RespondDomainError(c, nil, apierr.Unauthorized("missing or invalid token"))
	}
	return p, ok
}

func pathID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apierr.InvalidParam(name, "%s must be a uuid", name)
	}
	return id, nil
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apierr.InvalidBody(err)
	}
	return nil
}

// bindOptionalJSON accepts an empty body, as review endpoints do.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return bindJSON(c, dst)
}

func queryUUID(c *gin.Context, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apierr.InvalidParam(key, "%s must be a uuid", key)
	}
	return &id, nil
}

func queryTime(c *gin.Context, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apierr.InvalidParam(key, "%s must be RFC3339", key)
	}
	return &t, nil
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierr.InvalidParam(key, "%s must be an integer", key)
	}
	return n, nil
}

func queryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return err == nil && v
}

// auditResource reports a created id to the activity middleware.
func auditResource(c *gin.Context, id uuid.UUID) {
	c.Set(middleware.AuditResourceKey, id.String())
}
