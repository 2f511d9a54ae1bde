// Package handler provides the HTTP handlers for the watchlist.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"stock_watchlist/internal/api"
	marketdomain "stock_watchlist/internal/feature/marketdata/domain"
	"stock_watchlist/internal/feature/watchlist/domain"
	"stock_watchlist/internal/feature/watchlist/domain/entity"
	"stock_watchlist/internal/feature/watchlist/usecase"
	jwtmw "stock_watchlist/internal/platform/jwt"
)

// WatchlistUsecase defines the watchlist operations.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type WatchlistUsecase interface {
	List(ctx context.Context, userID uint) ([]usecase.Item, error)
	Add(ctx context.Context, userID uint, symbol string) (entity.Entry, error)
	Remove(ctx context.Context, userID uint, symbol string) error
}

type WatchlistHandler struct {
	uc WatchlistUsecase
}

func NewWatchlistHandler(uc WatchlistUsecase) *WatchlistHandler {
	return &WatchlistHandler{uc: uc}
}

func caller(c *gin.Context) (uint, bool) {
	auth, ok := jwtmw.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return 0, false
	}
	return auth.UserID, true
}

func watchlistItem(it usecase.Item) api.WatchlistItem {
	out := api.WatchlistItem{
		Symbol:  it.Entry.Symbol,
		Name:    it.Name,
		AddedAt: it.Entry.AddedAt,
	}
	if q := it.Quote; q != nil {
		price, change, pct, at := q.Price, q.Change, q.ChangePercent, q.UpdatedAt
		out.Price = &price
		out.Change = &change
		out.ChangePercent = &pct
		out.LastUpdated = &at
	}
	return out
}

// List returns the caller's watchlist in insertion order.
//
// GET /watchlist
func (h *WatchlistHandler) List(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	items, err := h.uc.List(c.Request.Context(), userID)
	if err != nil {
		slog.Error("failed to list watchlist", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
		return
	}
	out := make([]api.WatchlistItem, 0, len(items))
	for _, it := range items {
		out = append(out, watchlistItem(it))
	}
	c.JSON(http.StatusOK, out)
}

// Add puts a stock on the caller's watchlist.
//
// POST /watchlist
func (h *WatchlistHandler) Add(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	var req api.AddWatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Symbol is required"})
		return
	}

	e, err := h.uc.Add(c.Request.Context(), userID, req.Symbol)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyInWatchlist):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Stock already in watchlist"})
		case errors.Is(err, domain.ErrUnknownSymbol):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Stock not found"})
		case errors.Is(err, marketdomain.ErrProviderUnavailable), errors.Is(err, marketdomain.ErrNoProvider):
			slog.Warn("could not verify symbol", "symbol", req.Symbol, "error", err)
			c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "Market data is temporarily unavailable"})
		default:
			slog.Error("failed to add to watchlist", "user_id", userID, "symbol", req.Symbol, "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
		}
		return
	}
	slog.Info("watchlist entry added", "user_id", userID, "symbol", e.Symbol)
	c.JSON(http.StatusCreated, api.MessageResponse{Message: "Stock added to watchlist"})
}

// Remove takes a stock off the caller's watchlist.
//
// DELETE /watchlist/:symbol
func (h *WatchlistHandler) Remove(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	symbol, err := api.BindSymbol(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.uc.Remove(c.Request.Context(), userID, symbol); err != nil {
		if errors.Is(err, domain.ErrNotInWatchlist) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Stock not found in watchlist"})
			return
		}
		slog.Error("failed to remove from watchlist", "user_id", userID, "symbol", symbol, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Stock removed from watchlist"})
}
