package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finid.backend/internal/domain/entities"
	domainerrors "finid.backend/internal/domain/errors"
	"finid.backend/internal/interfaces/http/response"
)

// ProfileHandler serves the caller's own profile
type ProfileHandler struct {
	profiles ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GetProfile returns the caller's profile, creating it on first access
// GET /api/v1/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		response.Error(c, domainerrors.ErrUnauthorized)
		return
	}

	view, err := h.profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// UpdateProfile applies a partial update from JSON or a multipart form.
// A multipart request may carry profile_photo.
// PUT|PATCH /api/v1/profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		response.Error(c, domainerrors.ErrUnauthorized)
		return
	}

	var input entities.UpdateProfileInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	photo, closer, err := FormFile(c, "profile_photo")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closer.Close()
	input.Photo = photo

	view, err := h.profiles.UpdateProfile(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}
