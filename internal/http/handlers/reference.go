package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/http/response"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/services"
)

type ReferenceHandler struct {
	log  *logger.Logger
	refs services.CrossReferenceService
}

func NewReferenceHandler(log *logger.Logger, refs services.CrossReferenceService) *ReferenceHandler {
	return &ReferenceHandler{log: log.With("handler", "ReferenceHandler"), refs: refs}
}

// GET /api/v1/rules/:id/references
func (h *ReferenceHandler) List(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	ruleID, err := pathID(c, "id")
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	groups, err := h.refs.ListEdges(c.Request.Context(), actor, ruleID)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"cross_references": groups})
}

// POST /api/v1/rules/:id/references
func (h *ReferenceHandler) Create(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	ruleID, err := pathID(c, "id")
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	var req services.CreateReferenceRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	edge, err := h.refs.AddEdge(c.Request.Context(), actor, ruleID, req)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	auditResource(c, edge.ID)
	response.RespondCreated(c, gin.H{"cross_reference": edge})
}

// DELETE /api/v1/rules/:id/references/:refId
func (h *ReferenceHandler) Delete(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	ruleID, err := pathID(c, "id")
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	edgeID, err := pathID(c, "refId")
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	if err := h.refs.RemoveEdge(c.Request.Context(), actor, ruleID, edgeID); err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
