package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/http/response"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/services"
)

type ActivityHandler struct {
	log   *logger.Logger
	audit services.AuditService
}

func NewActivityHandler(log *logger.Logger, audit services.AuditService) *ActivityHandler {
	return &ActivityHandler{log: log.With("handler", "ActivityHandler"), audit: audit}
}

// GET /api/v1/activity
func (h *ActivityHandler) List(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	req, err := activityQuery(c)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	page, err := h.audit.Query(c.Request.Context(), actor, req)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{
		"activity": page.Entries,
		"total":    page.Total,
		"limit":    page.Limit,
		"offset":   page.Offset,
	})
}

// GET /api/v1/activity/summary
func (h *ActivityHandler) Summary(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	staffID, err := queryUUID(c, "staff_user_id")
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	days, err := queryInt(c, "days")
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	rows, err := h.audit.Summarize(c.Request.Context(), actor, services.ActivitySummaryRequest{
		StaffUserID: staffID,
		WindowDays:  days,
	})
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"summary": rows})
}

func activityQuery(c *gin.Context) (services.ActivityQueryRequest, error) {
	var (
		req services.ActivityQueryRequest
		err error
	)
	if req.StaffUserID, err = queryUUID(c, "staff_user_id"); err != nil {
		return req, err
	}
	if req.From, err = queryTime(c, "from"); err != nil {
		return req, err
	}
	if req.To, err = queryTime(c, "to"); err != nil {
		return req, err
	}
	if req.Limit, err = queryInt(c, "limit"); err != nil {
		return req, err
	}
	if req.Offset, err = queryInt(c, "offset"); err != nil {
		return req, err
	}
	req.ActionType = c.Query("action_type")
	req.ResourceType = c.Query("resource_type")
	return req, nil
}
