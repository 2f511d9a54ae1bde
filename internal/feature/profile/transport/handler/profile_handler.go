// Package handler provides the HTTP handlers for user profiles.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"stock_watchlist/internal/api"
	authdomain "stock_watchlist/internal/feature/auth/domain"
	authentity "stock_watchlist/internal/feature/auth/domain/entity"
	"stock_watchlist/internal/feature/profile/domain"
	jwtmw "stock_watchlist/internal/platform/jwt"
)

// ProfileUsecase defines the profile operations.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type ProfileUsecase interface {
	Get(ctx context.Context, userID uint) (*authentity.User, error)
	UpdateName(ctx context.Context, userID uint, name string) (*authentity.User, error)
	UpdatePreferences(ctx context.Context, userID uint, categories []string) (*authentity.User, error)
}

type ProfileHandler struct {
	uc ProfileUsecase
}

func NewProfileHandler(uc ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

func profileResponse(u *authentity.User) api.ProfileResponse {
	return api.ProfileResponse{
		Id:         int64(u.ID),
		Name:       u.Name,
		Email:      openapi_types.Email(u.Email),
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		Preferences: api.Preferences{
			StockCategories: u.Categories(),
			UpdatedAt:       u.PreferencesUpdatedAt,
		},
	}
}

func (h *ProfileHandler) fail(c *gin.Context, userID uint, err error) {
	switch {
	case errors.Is(err, authdomain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "User not found"})
	case errors.Is(err, domain.ErrInvalidName):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Name must be between 1 and 100 characters"})
	case errors.Is(err, domain.ErrInvalidCategory):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Unknown stock category"})
	default:
		slog.Error("profile request failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
	}
}

// caller returns the authenticated user id or writes a 401.
func caller(c *gin.Context) (uint, bool) {
	auth, ok := jwtmw.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return 0, false
	}
	return auth.UserID, true
}

// Get returns the caller's profile.
//
// GET /user/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	u, err := h.uc.Get(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, userID, err)
		return
	}
	c.JSON(http.StatusOK, profileResponse(u))
}

// UpdateProfile changes the display name.
//
// PUT /user/profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	var req api.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}
	u, err := h.uc.UpdateName(c.Request.Context(), userID, req.Name)
	if err != nil {
		h.fail(c, userID, err)
		return
	}
	slog.Info("profile updated", "user_id", userID)
	c.JSON(http.StatusOK, profileResponse(u))
}

// UpdatePreferences replaces the followed stock categories.
//
// PUT /user/preferences
func (h *ProfileHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	var req api.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}
	u, err := h.uc.UpdatePreferences(c.Request.Context(), userID, req.StockCategories)
	if err != nil {
		h.fail(c, userID, err)
		return
	}
	c.JSON(http.StatusOK, api.Preferences{
		StockCategories: u.Categories(),
		UpdatedAt:       u.PreferencesUpdatedAt,
	})
}
