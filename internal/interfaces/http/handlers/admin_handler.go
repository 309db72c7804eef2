package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finid.backend/internal/domain/entities"
	"finid.backend/internal/interfaces/http/response"
)

// AdminHandler serves the staff listings
type AdminHandler struct {
	admin AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// ListProfiles returns profiles matching search and language
// GET /api/v1/admin/profiles
func (h *AdminHandler) ListProfiles(c *gin.Context) {
	items, meta, err := h.admin.ListProfiles(c.Request.Context(), entities.ProfileListFilter{
		Search:   c.Query("search"),
		Language: c.Query("language"),
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items, "meta": meta})
}

// ListDocuments returns documents matching search and document_type
// GET /api/v1/admin/documents
func (h *AdminHandler) ListDocuments(c *gin.Context) {
	items, meta, err := h.admin.ListDocuments(c.Request.Context(), entities.DocumentListFilter{
		Search:       c.Query("search"),
		DocumentType: c.Query("document_type"),
		Page:         queryInt(c, "page"),
		Limit:        queryInt(c, "limit"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items, "meta": meta})
}
