// Package handler provides the HTTP handlers for stock insights and risk analysis.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stock_watchlist/internal/api"
	"stock_watchlist/internal/feature/analytics/domain/insight"
	"stock_watchlist/internal/feature/analytics/domain/risk"
	marketdomain "stock_watchlist/internal/feature/marketdata/domain"
)

type AnalyticsUsecase interface {
	Insights(ctx context.Context, symbol string) (insight.Summary, error)
	Risk(ctx context.Context, symbol string) (risk.Summary, error)
	Now() time.Time
}

type AnalyticsHandler struct {
	uc AnalyticsUsecase
}

func NewAnalyticsHandler(uc AnalyticsUsecase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

// GetInsights returns moving averages and a Buy/Hold hint.
//
// GET /stocks/:symbol/insights
func (h *AnalyticsHandler) GetInsights(c *gin.Context) {
	symbol, err := api.BindSymbol(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	s, err := h.uc.Insights(c.Request.Context(), symbol)
	if err != nil {
		if errors.Is(err, marketdomain.ErrSymbolNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Stock not found"})
			return
		}
		slog.Error("failed to compute insights", "symbol", symbol, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
		return
	}

	resp := api.InsightResponse{Symbol: s.Symbol, Trends: make([]api.InsightTrend, 0, len(s.Trends))}
	for _, t := range s.Trends {
		resp.Trends = append(resp.Trends, api.InsightTrend{Type: t.Type, Value: t.Value})
	}
	if s.Recommendation != nil {
		resp.Recommendation = &api.InsightRecommendation{Action: s.Recommendation.Action, Reason: s.Recommendation.Reason}
	}
	c.JSON(http.StatusOK, resp)
}

// GetRiskAnalysis returns the risk summary. Missing or unreachable data is reported with
// 200 and an error payload.
//
// GET /stocks/:symbol/risk-analysis
func (h *AnalyticsHandler) GetRiskAnalysis(c *gin.Context) {
	symbol, err := api.BindSymbol(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	s, err := h.uc.Risk(c.Request.Context(), symbol)
	if err != nil {
		switch {
		case errors.Is(err, marketdomain.ErrSymbolNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Stock not found"})
		case errors.Is(err, risk.ErrInsufficientData):
			c.JSON(http.StatusOK, api.RiskAnalysisErrorResponse{Symbol: symbol, Error: err.Error(), AnalysisTimestamp: h.uc.Now()})
		case errors.Is(err, marketdomain.ErrProviderUnavailable), errors.Is(err, marketdomain.ErrNoProvider):
			slog.Warn("risk analysis data unavailable", "symbol", symbol, "error", err)
			c.JSON(http.StatusOK, api.RiskAnalysisErrorResponse{
				Symbol:            symbol,
				Error:             "Market data is temporarily unavailable",
				AnalysisTimestamp: h.uc.Now(),
			})
		default:
			slog.Error("failed to compute risk analysis", "symbol", symbol, "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, api.RiskAnalysisResponse{
		Symbol:            s.Symbol,
		RiskLevel:         s.RiskLevel,
		Volatility:        s.Volatility,
		ConfidenceScore:   s.ConfidenceScore,
		Trend:             s.Trend,
		Rsi:               api.RsiIndicator{Value: s.RSI.Value, Status: s.RSI.Status},
		MacdSignal:        s.MACDSignal,
		MacdCrossover:     s.MACDCrossover,
		PricePosition:     api.PricePosition{Label: s.PricePosition.Label, Percentile: s.PricePosition.Percentile},
		Sma20:             s.SMA20,
		Sma50:             s.SMA50,
		PeriodChange:      s.PeriodChange,
		LatestClose:       s.LatestClose,
		DataPoints:        s.DataPoints,
		Recommendations:   s.Recommendations,
		AnalysisTimestamp: s.AnalysisTimestamp,
	})
}
