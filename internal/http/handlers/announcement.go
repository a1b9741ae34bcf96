package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/http/response"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/services"
)

type AnnouncementHandler struct {
	log           *logger.Logger
	announcements services.AnnouncementService
}

func NewAnnouncementHandler(log *logger.Logger, announcements services.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{log: log.With("handler", "AnnouncementHandler"), announcements: announcements}
}

// GET /api/v1/announcements
func (h *AnnouncementHandler) List(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	rows, err := h.announcements.List(c.Request.Context(), actor, services.ListAnnouncementsRequest{
		IncludeExpired: queryBool(c, "include_expired"),
	})
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"announcements": rows})
}

// POST /api/v1/announcements
func (h *AnnouncementHandler) Create(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req services.CreateAnnouncementRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	a, err := h.announcements.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	auditResource(c, a.ID)
	response.RespondCreated(c, gin.H{"announcement": a})
}

// PUT /api/v1/announcements/:id
func (h *AnnouncementHandler) Update(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	var req services.UpdateAnnouncementRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	a, err := h.announcements.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"announcement": a})
}

// POST /api/v1/announcements/:id/approve
func (h *AnnouncementHandler) Approve(c *gin.Context) {
	h.review(c, h.announcements.Approve)
}

// POST /api/v1/announcements/:id/reject
func (h *AnnouncementHandler) Reject(c *gin.Context) {
	h.review(c, h.announcements.Reject)
}

func (h *AnnouncementHandler) review(c *gin.Context, fn reviewFunc[*types.Announcement]) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	var req services.ReviewRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	a, err := fn(c.Request.Context(), actor, id, req)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"announcement": a})
}

// DELETE /api/v1/announcements/:id
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	if err := h.announcements.Delete(c.Request.Context(), actor, id); err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
