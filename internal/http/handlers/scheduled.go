package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/http/response"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/services"
)

type ScheduledAnnouncementHandler struct {
	log       *logger.Logger
	scheduled services.ScheduledAnnouncementService
}

func NewScheduledAnnouncementHandler(log *logger.Logger, scheduled services.ScheduledAnnouncementService) *ScheduledAnnouncementHandler {
	return &ScheduledAnnouncementHandler{log: log.With("handler", "ScheduledAnnouncementHandler"), scheduled: scheduled}
}

// GET /api/v1/scheduled-announcements
func (h *ScheduledAnnouncementHandler) List(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	rows, err := h.scheduled.List(c.Request.Context(), actor, services.ListScheduledRequest{
		IncludePublished: queryBool(c, "include_published"),
	})
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"scheduled_announcements": rows})
}

// POST /api/v1/scheduled-announcements
func (h *ScheduledAnnouncementHandler) Schedule(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req services.ScheduleAnnouncementRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	row, err := h.scheduled.Schedule(c.Request.Context(), actor, req)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	auditResource(c, row.ID)
	response.RespondCreated(c, gin.H{"scheduled_announcement": row})
}

// DELETE /api/v1/scheduled-announcements/:id
func (h *ScheduledAnnouncementHandler) Cancel(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	if err := h.scheduled.Cancel(c.Request.Context(), actor, id); err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/v1/scheduled-announcements/:id/publish
func (h *ScheduledAnnouncementHandler) Publish(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	res, err := h.scheduled.Publish(c.Request.Context(), actor, id)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{
		"scheduled_announcement": res.Scheduled,
		"announcement":           res.Announcement,
	})
}
