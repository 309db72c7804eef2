package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerrors "finid.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends an error response
func Error(c *gin.Context, err error) {
	if v, ok := domainerrors.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    domainerrors.CodeValidation,
			"message": "Please correct the errors below.",
			"fields":  v.Fields,
		})
		return
	}

	var appErr *domainerrors.AppError
	if !errors.As(err, &appErr) {
		switch {
		case errors.Is(err, domainerrors.ErrNotFound):
			appErr = domainerrors.NotFound("Not found.")
		case errors.Is(err, domainerrors.ErrUnauthorized):
			appErr = domainerrors.Unauthorized("Authentication credentials were not provided.")
		case errors.Is(err, domainerrors.ErrForbidden):
			appErr = domainerrors.Forbidden("You do not have permission to perform this action.")
		default:
			appErr = domainerrors.InternalError(err)
		}
	}

	c.JSON(appErr.Status, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}

// ErrorWithError sends an error response with a specific status and message
func ErrorWithError(c *gin.Context, status int, code string, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}
