package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"finid.backend/internal/domain/entities"
	domainerrors "finid.backend/internal/domain/errors"
	"finid.backend/internal/interfaces/http/response"
)

// KYCHandler serves the caller's KYC documents
type KYCHandler struct {
	documents DocumentService
}

// NewKYCHandler creates a new KYC document handler
func NewKYCHandler(documents DocumentService) *KYCHandler {
	return &KYCHandler{documents: documents}
}

// ListDocuments returns the caller's documents, newest first
// GET /api/v1/profile/kyc
func (h *KYCHandler) ListDocuments(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		response.Error(c, domainerrors.ErrUnauthorized)
		return
	}

	items, err := h.documents.ListDocuments(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items})
}

// UploadDocument stores a new document from a multipart form
// POST /api/v1/profile/kyc
func (h *KYCHandler) UploadDocument(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		response.Error(c, domainerrors.ErrUnauthorized)
		return
	}

	var input entities.UploadDocumentInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	file, closer, err := FormFile(c, "document_file")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closer.Close()
	input.File = file

	doc, err := h.documents.UploadDocument(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, doc)
}

// DeleteDocument removes one of the caller's documents.
// Ids that do not exist or belong to someone else are reported as not found.
// DELETE /api/v1/profile/kyc/:id
func (h *KYCHandler) DeleteDocument(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		response.Error(c, domainerrors.ErrUnauthorized)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.NotFound("Not found."))
		return
	}

	if err := h.documents.DeleteDocument(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
