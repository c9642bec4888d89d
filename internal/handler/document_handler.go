package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AstralMortem/go-microservice-template/internal/dto"
	"github.com/AstralMortem/go-microservice-template/internal/service"
	"github.com/AstralMortem/go-microservice-template/pkg/apperror"
	"github.com/AstralMortem/go-microservice-template/pkg/middleware"
)

// DocumentHandler exposes the document module over HTTP
type DocumentHandler struct {
	documents service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documents service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Get handles GET /documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.documents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// List handles GET /documents
func (h *DocumentHandler) List(c *gin.Context) {
	var query dto.ListDocumentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		_ = c.Error(apperror.New(http.StatusBadRequest, "Invalid query", err.Error()))
		return
	}

	items, page, err := h.documents.List(c.Request.Context(), &query)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if page != nil {
		c.JSON(http.StatusOK, page)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Create handles POST /documents
func (h *DocumentHandler) Create(c *gin.Context) {
	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.New(http.StatusBadRequest, "Invalid payload", err.Error()))
		return
	}

	claims := middleware.Claims(c)
	if claims == nil {
		_ = c.Error(apperror.Unauthorized("Authorization header is expected"))
		return
	}

	doc, err := h.documents.Create(c.Request.Context(), claims.Subject, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// Update handles PUT /documents/:id
func (h *DocumentHandler) Update(c *gin.Context) {
	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.New(http.StatusBadRequest, "Invalid payload", err.Error()))
		return
	}

	doc, err := h.documents.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Delete handles DELETE /documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
