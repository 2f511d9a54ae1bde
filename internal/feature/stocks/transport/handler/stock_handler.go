// Package handler provides the HTTP handlers for the stock directory.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"stock_watchlist/internal/api"
	marketdomain "stock_watchlist/internal/feature/marketdata/domain"
	marketentity "stock_watchlist/internal/feature/marketdata/domain/entity"
	serieshandler "stock_watchlist/internal/feature/series/transport/handler"
	"stock_watchlist/internal/feature/stocks/domain"
	"stock_watchlist/internal/feature/stocks/usecase"
)

// StockUsecase is the directory behaviour the handler needs.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type StockUsecase interface {
	List(ctx context.Context) ([]usecase.Listing, error)
	Search(ctx context.Context, query string, limit int) ([]marketentity.SearchResult, error)
	Detail(ctx context.Context, symbol string) (usecase.Detail, error)
}

type StockHandler struct {
	uc StockUsecase
}

func NewStockHandler(uc StockUsecase) *StockHandler {
	return &StockHandler{uc: uc}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func quoteItem(q marketentity.Quote) api.QuoteItem {
	return api.QuoteItem{
		Price:         q.Price,
		Open:          q.Open,
		High:          q.High,
		Low:           q.Low,
		PreviousClose: q.PreviousClose,
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		Volume:        q.Volume,
		Currency:      optional(q.Currency),
		UpdatedAt:     q.UpdatedAt,
		Placeholder:   q.Placeholder,
	}
}

// List returns the active catalog with live prices.
//
// GET /stocks
func (h *StockHandler) List(c *gin.Context) {
	listings, err := h.uc.List(c.Request.Context())
	if err != nil {
		slog.Error("failed to list stocks", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
		return
	}

	out := make([]api.StockItem, 0, len(listings))
	for _, l := range listings {
		item := api.StockItem{
			Symbol:        l.Stock.Symbol,
			Name:          l.Stock.Name,
			Exchange:      optional(l.Stock.Exchange),
			Industry:      optional(l.Stock.Industry),
			Price:         l.Quote.Price,
			Change:        l.Quote.Change,
			ChangePercent: l.Quote.ChangePercent,
			Placeholder:   l.Quote.Placeholder,
		}
		if l.Stock.HasLatest() {
			lastClose := l.Stock.LatestPrice
			item.LastClose = &lastClose
			item.LastUpdated = l.Stock.LastUpdated
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, out)
}

// Search looks up stocks by symbol or name.
//
// GET /stocks/search?query=app
func (h *StockHandler) Search(c *gin.Context) {
	params, err := api.BindSearchStocksParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Search query is required"})
		return
	}

	results, err := h.uc.Search(c.Request.Context(), params.Query, 0)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Search query is required"})
			return
		}
		slog.Error("stock search failed", "query", params.Query, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
		return
	}

	out := make([]api.SearchResultItem, 0, len(results))
	for _, r := range results {
		out = append(out, api.SearchResultItem{
			Symbol:   r.Symbol,
			Name:     r.Name,
			Exchange: optional(r.Exchange),
			Type:     optional(r.Type),
			Source:   r.Source,
		})
	}
	c.JSON(http.StatusOK, out)
}

// Detail returns one stock with its live quote and recent stored history.
//
// GET /stocks/:symbol
func (h *StockHandler) Detail(c *gin.Context) {
	symbol, err := api.BindSymbol(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	d, err := h.uc.Detail(c.Request.Context(), symbol)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStockNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Stock not found"})
		case errors.Is(err, marketdomain.ErrProviderUnavailable), errors.Is(err, marketdomain.ErrNoProvider):
			slog.Warn("stock detail provider unavailable", "symbol", symbol, "error", err)
			c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "Market data is temporarily unavailable"})
		default:
			slog.Error("failed to load stock detail", "symbol", symbol, "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, api.StockDetailResponse{
		Symbol:   d.Stock.Symbol,
		Name:     d.Stock.Name,
		Exchange: optional(d.Stock.Exchange),
		Industry: optional(d.Stock.Industry),
		Quote:    quoteItem(d.Quote),
		History:  serieshandler.BarItems(d.History),
	})
}
