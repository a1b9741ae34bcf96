package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/http/response"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/services"
)

type CategoryHandler struct {
	log        *logger.Logger
	categories services.CategoryService
}

func NewCategoryHandler(log *logger.Logger, categories services.CategoryService) *CategoryHandler {
	return &CategoryHandler{log: log.With("handler", "CategoryHandler"), categories: categories}
}

// GET /api/v1/categories
func (h *CategoryHandler) List(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	rows, err := h.categories.List(c.Request.Context(), actor)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"categories": rows})
}

// POST /api/v1/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req services.CreateCategoryRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	cat, err := h.categories.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	auditResource(c, cat.ID)
	response.RespondCreated(c, gin.H{"category": cat})
}

// PUT /api/v1/categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	var req services.UpdateCategoryRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	cat, err := h.categories.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"category": cat})
}

// DELETE /api/v1/categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	if err := h.categories.Delete(c.Request.Context(), actor, id); err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/v1/categories/reorder
func (h *CategoryHandler) Reorder(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req services.ReorderCategoriesRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	res, err := h.categories.Reorder(c.Request.Context(), actor, req)
	if err != nil {
		response.RespondDomainError(c, h.log, err)
		return
	}
	body := gin.H{"categories": res.Categories}
	if res.Warning != "" {
		body["warning"] = res.Warning
		body["moved"] = res.Moved
	}
	response.RespondOK(c, body)
}
