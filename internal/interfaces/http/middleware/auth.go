package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainerrors "finid.backend/internal/domain/errors"
	"finid.backend/internal/interfaces/http/response"
	"finid.backend/pkg/jwt"
	"finid.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// UserIDKey is the context key for user ID
	UserIDKey = "userId"
	// UsernameKey is the context key for the username
	UsernameKey = "username"
	// IsStaffKey is the context key for the staff flag
	IsStaffKey = "isStaff"
	// LoginPath is where unauthenticated page requests are sent
	LoginPath = "/login"
)

// AuthRequired accepts a Bearer access token or the session cookie and
// rejects the request with 401 otherwise.
func AuthRequired(jwtService *jwt.JWTService, sessions *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader != "" {
			if !strings.HasPrefix(authHeader, BearerPrefix) {
				abortUnauthorized(c, "Invalid authorization format. Use: Bearer <token>")
				return
			}

			claims, err := jwtService.ValidateTyped(strings.TrimPrefix(authHeader, BearerPrefix), jwt.TokenTypeAccess)
			if err != nil {
				logger.Debug(c.Request.Context(), "Bearer token rejected")
				if errors.Is(err, jwt.ErrExpiredToken) {
					abortUnauthorized(c, "Token has expired")
					return
				}
				abortUnauthorized(c, "Invalid token")
				return
			}

			setIdentity(c, claims.UserID, claims.Username, claims.IsStaff)
			c.Next()
			return
		}

		if sessions != nil {
			if data, ok := sessions.Load(c); ok {
				setIdentity(c, data.UserID, data.Username, data.IsStaff)
				c.Next()
				return
			}
		}

		abortUnauthorized(c, "Authentication credentials were not provided.")
	}
}

// PageAuthRequired redirects requests without a session to the login page
func PageAuthRequired(sessions *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, ok := sessions.Load(c)
		if !ok {
			target := LoginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		setIdentity(c, data.UserID, data.Username, data.IsStaff)
		c.Next()
	}
}

// OptionalSession attaches the session identity when one is present
func OptionalSession(sessions *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if data, ok := sessions.Load(c); ok {
			setIdentity(c, data.UserID, data.Username, data.IsStaff)
		}
		c.Next()
	}
}

// RequireStaff rejects authenticated non-staff users with 403
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserID(c); !ok {
			abortUnauthorized(c, "Authentication credentials were not provided.")
			return
		}
		if !IsStaff(c) {
			response.Error(c, domainerrors.Forbidden("You do not have permission to perform this action."))
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID gets the user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

// GetUsername gets the username from context
func GetUsername(c *gin.Context) string {
	return c.GetString(UsernameKey)
}

// IsStaff reports whether the caller is a staff user
func IsStaff(c *gin.Context) bool {
	return c.GetBool(IsStaffKey)
}

func setIdentity(c *gin.Context, userID uuid.UUID, username string, isStaff bool) {
	c.Set(UserIDKey, userID)
	c.Set(UsernameKey, username)
	c.Set(IsStaffKey, isStaff)

	ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, userID)
	c.Request = c.Request.WithContext(ctx)
}

func abortUnauthorized(c *gin.Context, message string) {
	response.Error(c, domainerrors.Unauthorized(message))
	c.Abort()
}
