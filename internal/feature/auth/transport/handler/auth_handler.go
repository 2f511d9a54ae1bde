// Package handler provides the HTTP handlers for the auth feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"stock_watchlist/internal/api"
	"stock_watchlist/internal/feature/auth/domain"
	"stock_watchlist/internal/feature/auth/domain/entity"
	"stock_watchlist/internal/feature/auth/usecase"
)

// AuthUsecase defines the account and session operations.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type AuthUsecase interface {
	Signup(ctx context.Context, name, email, password string) error
	VerifyOTP(ctx context.Context, email, code string) (*entity.User, error)
	Login(ctx context.Context, email, password string, client usecase.ClientInfo) (*usecase.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
}

// CookieConfig controls the session cookie written at login.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler handles the /auth endpoints.
type AuthHandler struct {
	auth   AuthUsecase
	cookie CookieConfig
}

func NewAuthHandler(auth AuthUsecase, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "sid"
	}
	return &AuthHandler{auth: auth, cookie: cookie}
}

// authFailure maps usecase errors to a status and client message.
func authFailure(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrEmailAlreadyRegistered):
		return http.StatusBadRequest, "Email already registered"
	case errors.Is(err, domain.ErrWeakPassword):
		return http.StatusBadRequest, "Password must be at least 8 characters long"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusBadRequest, "User not found"
	case errors.Is(err, domain.ErrOTPExpired):
		return http.StatusBadRequest, "OTP has expired"
	case errors.Is(err, domain.ErrInvalidOTP):
		return http.StatusBadRequest, "Invalid OTP"
	case errors.Is(err, domain.ErrNotVerified):
		return http.StatusBadRequest, "Verify email before logging in"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, "Invalid credentials"
	}
	return http.StatusInternalServerError, "Internal server error"
}

func (h *AuthHandler) fail(c *gin.Context, op, email string, err error) {
	status, msg := authFailure(err)
	if status >= http.StatusInternalServerError {
		slog.Error(op+" failed", "error", err, "email", email, "remote_addr", c.ClientIP())
	} else {
		slog.Warn(op+" rejected", "reason", msg, "email", email, "remote_addr", c.ClientIP())
	}
	c.JSON(status, api.ErrorResponse{Error: msg})
}

// Signup starts registration and emails an OTP.
//
// POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req api.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("signup validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}
	email := string(req.Email)
	if err := h.auth.Signup(c.Request.Context(), req.Name, email, req.Password); err != nil {
		h.fail(c, "signup", email, err)
		return
	}
	slog.Info("signup pending verification", "email", email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.MessageResponse{Message: "OTP sent. Please verify your email."})
}

// VerifyOTP completes registration.
//
// POST /auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req api.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("otp validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}
	email := string(req.Email)
	user, err := h.auth.VerifyOTP(c.Request.Context(), email, req.Otp)
	if err != nil {
		h.fail(c, "otp verification", email, err)
		return
	}
	slog.Info("user verified", "user_id", user.ID, "email", user.Email)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Account successfully verified. You can now log in."})
}

// Login issues a bearer token and sets the session cookie.
//
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}
	email := string(req.Email)
	res, err := h.auth.Login(c.Request.Context(), email, req.Password, usecase.ClientInfo{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		h.fail(c, "login", email, err)
		return
	}

	maxAge := int(time.Until(res.Session.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, res.Session.ID, maxAge, "/", "", h.cookie.Secure, true)

	slog.Info("user login successful", "user_id", res.User.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.LoginResponse{
		Message: "Login successful",
		Token:   res.Token,
		User: api.AuthUser{
			Id:    int64(res.User.ID),
			Name:  res.User.Name,
			Email: openapi_types.Email(res.User.Email),
		},
	})
}

// Logout revokes the session behind the cookie and clears it.
// A bearer token from the same login keeps working until it expires.
//
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sid, _ := c.Cookie(h.cookie.Name)
	if err := h.auth.Logout(c.Request.Context(), sid); err != nil {
		slog.Error("logout failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Logout successful"})
}
