// Package handler provides the HTTP handlers for the series feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"stock_watchlist/internal/api"
	marketdomain "stock_watchlist/internal/feature/marketdata/domain"
	"stock_watchlist/internal/feature/series/domain/entity"
)

// SeriesUsecase is declared here, next to its only consumer.
type SeriesUsecase interface {
	History(ctx context.Context, symbol string, limit int) ([]entity.Bar, string, error)
}

type SeriesHandler struct {
	uc SeriesUsecase
}

func NewSeriesHandler(uc SeriesUsecase) *SeriesHandler {
	return &SeriesHandler{uc: uc}
}

// BarItems converts bars to wire items, keeping their order.
func BarItems(bars []entity.Bar) []api.BarItem {
	out := make([]api.BarItem, 0, len(bars))
	for _, b := range bars {
		out = append(out, api.BarItem{
			Date:   openapi_types.Date{Time: b.Date.UTC()},
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	return out
}

// GetHistory returns daily bars for a symbol, newest first.
//
// GET /stocks/:symbol/history?limit=200
func (h *SeriesHandler) GetHistory(c *gin.Context) {
	symbol, err := api.BindSymbol(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	params, err := api.BindGetStockHistoryParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	limit := 0
	if params.Limit != nil {
		limit = *params.Limit
	}

	bars, source, err := h.uc.History(c.Request.Context(), symbol, limit)
	if err != nil {
		switch {
		case errors.Is(err, marketdomain.ErrSymbolNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Stock not found"})
		case errors.Is(err, marketdomain.ErrProviderUnavailable), errors.Is(err, marketdomain.ErrNoProvider):
			slog.Warn("history provider unavailable", "symbol", symbol, "error", err)
			c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "Market data is temporarily unavailable"})
		default:
			slog.Error("failed to load history", "symbol", symbol, "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, api.HistoryResponse{
		Symbol: symbol,
		Source: source,
		Bars:   BarItems(bars),
	})
}
