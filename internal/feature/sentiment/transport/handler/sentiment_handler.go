// Package handler provides the HTTP handler for sentiment readings.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"stock_watchlist/internal/api"
	"stock_watchlist/internal/feature/sentiment/domain/entity"
	jwtmw "stock_watchlist/internal/platform/jwt"
)

// SentimentUsecase defines the sentiment operation.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type SentimentUsecase interface {
	Analyze(ctx context.Context, symbol string, portfolio []string, userID uint) (entity.Sentiment, error)
}

type SentimentHandler struct {
	uc SentimentUsecase
}

func NewSentimentHandler(uc SentimentUsecase) *SentimentHandler {
	return &SentimentHandler{uc: uc}
}

// Get returns the sentiment for a symbol. Signed-in callers without a portfolio parameter are
// scored against their watchlist.
//
// GET /stocks/:symbol/sentiment?portfolio=INFY,TCS
func (h *SentimentHandler) Get(c *gin.Context) {
	symbol, err := api.BindSymbol(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	params, err := api.BindGetStockSentimentParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	var portfolio []string
	if params.Portfolio != nil {
		portfolio = api.SplitSymbols(*params.Portfolio)
	}

	var userID uint
	if auth, ok := jwtmw.FromContext(c); ok {
		userID = auth.UserID
	}

	s, err := h.uc.Analyze(c.Request.Context(), symbol, portfolio, userID)
	if err != nil {
		slog.Error("sentiment analysis failed", "symbol", symbol, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, api.SentimentResponse{
		Symbol:     s.Symbol,
		Score:      s.Score,
		Label:      s.Label,
		Summary:    s.Summary,
		Portfolio:  s.Portfolio,
		Source:     s.Source,
		AnalyzedAt: s.AnalyzedAt,
	})
}
