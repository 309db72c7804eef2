package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"finid.backend/internal/domain/entities"
	domainerrors "finid.backend/internal/domain/errors"
	"finid.backend/internal/interfaces/http/response"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	auth AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Signup creates an account and returns a token pair for it
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var input entities.SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	resp, err := h.auth.Signup(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// Token exchanges username and password for a token pair
// POST /api/v1/auth/token
func (h *AuthHandler) Token(c *gin.Context) {
	var input entities.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), &input)
	if err != nil {
		if errors.Is(err, domainerrors.ErrInvalidCredentials) {
			response.Error(c, domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeInvalidCredentials,
				"No active account found with the given credentials", err))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// RefreshToken issues a new token pair from a refresh token
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var input struct {
		Refresh string `json:"refresh" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	pair, err := h.auth.RefreshToken(c.Request.Context(), input.Refresh)
	if err != nil {
		switch {
		case errors.Is(err, domainerrors.ErrTokenExpired):
			response.Error(c, domainerrors.Unauthorized("Token has expired"))
		case errors.Is(err, domainerrors.ErrUnauthorized):
			response.Error(c, domainerrors.Unauthorized("Token is invalid or expired"))
		default:
			response.Error(c, err)
		}
		return
	}

	response.Success(c, http.StatusOK, pair)
}
