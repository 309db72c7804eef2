package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"finid.backend/internal/domain/entities"
	"finid.backend/pkg/crypto"
	"finid.backend/pkg/redis"
)

// SessionBackend persists browser sessions
type SessionBackend interface {
	CreateSession(ctx context.Context, sessionID string, data *redis.SessionData, expiration time.Duration) error
	GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error)
	TouchSession(ctx context.Context, sessionID string, expiration time.Duration) error
	DeleteSession(ctx context.Context, sessionID string) error
}

// Sessions issues and resolves the browser session cookie
type Sessions struct {
	backend    SessionBackend
	cookieName string
	ttl        time.Duration
	secure     bool
}

var newSessionID = crypto.GenerateSessionID

// NewSessions creates a session manager for the given cookie
func NewSessions(backend SessionBackend, cookieName string, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{backend: backend, cookieName: cookieName, ttl: ttl, secure: secure}
}

// CookieName returns the name of the session cookie
func (s *Sessions) CookieName() string {
	return s.cookieName
}

// Start logs the user in by creating a session and setting its cookie.
// An existing session cookie is dropped first.
func (s *Sessions) Start(c *gin.Context, user *entities.User) error {
	s.End(c)

	id, err := newSessionID()
	if err != nil {
		return err
	}
	data := &redis.SessionData{
		UserID:    user.ID,
		Username:  user.Username,
		IsStaff:   user.IsStaff,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.backend.CreateSession(c.Request.Context(), id, data, s.ttl); err != nil {
		return err
	}

	s.setCookie(c, id, int(s.ttl.Seconds()))
	return nil
}

// Load resolves the session cookie, extending its lifetime on success
func (s *Sessions) Load(c *gin.Context) (*redis.SessionData, bool) {
	id, err := c.Cookie(s.cookieName)
	if err != nil || id == "" {
		return nil, false
	}
	data, err := s.backend.GetSession(c.Request.Context(), id)
	if err != nil || data == nil {
		return nil, false
	}
	_ = s.backend.TouchSession(c.Request.Context(), id, s.ttl)
	return data, true
}

// End deletes the current session and clears its cookie
func (s *Sessions) End(c *gin.Context) {
	id, err := c.Cookie(s.cookieName)
	if err != nil || id == "" {
		return
	}
	_ = s.backend.DeleteSession(c.Request.Context(), id)
	s.setCookie(c, "", -1)
}

func (s *Sessions) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookieName, value, maxAge, "/", "", s.secure, true)
}
