package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/http/response"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/services"
)

type RuleHandler struct {
	log   *logger.Logger
	rules services.RuleService
}

func NewRuleHandler(log *logger.Logger, rules services.RuleService) *RuleHandler {
	return &RuleHandler{log: log.With("handler", "RuleHandler"), rules: rules}
}

// GET /api/v1/rules
func (h *RuleHandler) List(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	categoryID, err := queryUUID(c, "category_id")
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	rules, err := h.rules.List(c.Request.Context(), actor, services.ListRulesRequest{
		CategoryID: categoryID,
		Status:     c.Query("status"),
	})
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"rules": rules})
}

// GET /api/v1/rules/search
func (h *RuleHandler) Search(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	rules, err := h.rules.Search(c.Request.Context(), actor, services.SearchRulesRequest{
		Query: c.Query("q"),
		Limit: limit,
	})
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"rules": rules})
}

// GET /api/v1/rules/:id
func (h *RuleHandler) Get(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	rule, err := h.rules.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"rule": rule})
}

// POST /api/v1/rules
func (h *RuleHandler) Create(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req services.CreateRuleRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	rule, err := h.rules.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	auditResource(c, rule.ID)
	response.RespondCreated(c, gin.H{"rule": rule})
}

// PUT /api/v1/rules/:id
func (h *RuleHandler) Update(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	var req services.UpdateRuleRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	rule, err := h.rules.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"rule": rule})
}

// POST /api/v1/rules/:id/approve
func (h *RuleHandler) Approve(c *gin.Context) {
	h.review(c, h.rules.Approve)
}

// POST /api/v1/rules/:id/reject
func (h *RuleHandler) Reject(c *gin.Context) {
	h.review(c, h.rules.Reject)
}

func (h *RuleHandler) review(c *gin.Context, fn reviewFunc[*services.RuleView]) {
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
	rule, err := fn(c.Request.Context(), actor, id, req)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"rule": rule})
}

// DELETE /api/v1/rules/:id
func (h *RuleHandler) Delete(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	res, err := h.rules.Delete(c.Request.Context(), actor, id)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": res.RuleID, "cascaded": res.Cascaded})
}

// POST /api/v1/rules/:id/restore
func (h *RuleHandler) Restore(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	rule, err := h.rules.Restore(c.Request.Context(), actor, id)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"rule": rule})
}
