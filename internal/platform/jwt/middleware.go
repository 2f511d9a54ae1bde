package jwtmw

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// ContextAuth is the gin context key holding the AuthResult.
	ContextAuth = "auth"

	MethodSession = "session"
	MethodBearer  = "bearer"
)

// AuthResult is the caller identity, whichever credential proved it.
type AuthResult struct {
	UserID uint
	Email  string
	Method string
}

// SessionValidator resolves a session cookie value to the identity it was issued for.
type SessionValidator interface {
	ValidateSession(ctx context.Context, id string) (userID uint, email string, err error)
}

// Authenticator checks the session cookie first and then the bearer token.
type Authenticator struct {
	secret     []byte
	sessions   SessionValidator
	cookieName string
}

func NewAuthenticator(secret string, sessions SessionValidator, cookieName string) *Authenticator {
	return &Authenticator{secret: []byte(secret), sessions: sessions, cookieName: cookieName}
}

// authenticate returns the caller identity. ok is false when no credential proved one.
func (a *Authenticator) authenticate(c *gin.Context) (AuthResult, bool) {
	if a.sessions != nil && a.cookieName != "" {
		if sid, err := c.Cookie(a.cookieName); err == nil && sid != "" {
			userID, email, err := a.sessions.ValidateSession(c.Request.Context(), sid)
			if err == nil {
				return AuthResult{UserID: userID, Email: email, Method: MethodSession}, true
			}
			slog.Debug("session cookie rejected", "error", err)
		}
	}

	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return AuthResult{}, false
	}
	res, err := ParseToken(a.secret, strings.TrimPrefix(auth, "Bearer "))
	if err != nil {
		slog.Debug("bearer token rejected", "error", err)
		return AuthResult{}, false
	}
	return res, true
}

// Required rejects requests without a valid session cookie or bearer token.
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(a.secret) == 0 {
			// Server misconfiguration (JWT secret not set)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
			return
		}
		res, ok := a.authenticate(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		c.Set(ContextAuth, res)
		c.Next()
	}
}

// Optional records the caller identity when one is presented and never rejects.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if res, ok := a.authenticate(c); ok {
			c.Set(ContextAuth, res)
		}
		c.Next()
	}
}

// FromContext returns the AuthResult stored by Required or Optional.
func FromContext(c *gin.Context) (AuthResult, bool) {
	v, ok := c.Get(ContextAuth)
	if !ok {
		return AuthResult{}, false
	}
	res, ok := v.(AuthResult)
	return res, ok
}
