package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"stock_watchlist/internal/feature/analytics/domain/insight"
	"stock_watchlist/internal/feature/analytics/domain/risk"
	"stock_watchlist/internal/feature/analytics/transport/handler"
	marketdomain "stock_watchlist/internal/feature/marketdata/domain"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type mockAnalyticsUsecase struct {
	InsightsFunc func(ctx context.Context, symbol string) (insight.Summary, error)
	RiskFunc     func(ctx context.Context, symbol string) (risk.Summary, error)
}

func (m *mockAnalyticsUsecase) Insights(ctx context.Context, symbol string) (insight.Summary, error) {
	return m.InsightsFunc(ctx, symbol)
}

func (m *mockAnalyticsUsecase) Risk(ctx context.Context, symbol string) (risk.Summary, error) {
	return m.RiskFunc(ctx, symbol)
}

func (m *mockAnalyticsUsecase) Now() time.Time { return fixedNow }

func serve(uc *mockAnalyticsUsecase, url string) *httptest.ResponseRecorder {
	h := handler.NewAnalyticsHandler(uc)
	r := gin.New()
	r.GET("/stocks/:symbol/insights", h.GetInsights)
	r.GET("/stocks/:symbol/risk-analysis", h.GetRiskAnalysis)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	return w
}

func TestAnalyticsHandler_GetInsights(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		insights       func(ctx context.Context, symbol string) (insight.Summary, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "with recommendation",
			insights: func(_ context.Context, symbol string) (insight.Summary, error) {
				assert.Equal(t, "TCS", symbol)
				return insight.Summary{
					Symbol: "TCS",
					Trends: []insight.Trend{{Type: insight.TypeAvg7, Value: "105.00"}},
					Recommendation: &insight.Recommendation{
						Action: insight.ActionHold,
						Reason: "Stock has gained 10.00% in the last 10 trading days.",
					},
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"symbol":"TCS","trends":[{"type":"7-day average","value":"105.00"}],
				"recommendation":{"action":"Hold","reason":"Stock has gained 10.00% in the last 10 trading days."}}`,
		},
		{
			name: "empty summary",
			insights: func(context.Context, string) (insight.Summary, error) {
				return insight.Summary{Symbol: "TCS"}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"symbol":"TCS","trends":[]}`,
		},
		{
			name: "unknown symbol",
			insights: func(context.Context, string) (insight.Summary, error) {
				return insight.Summary{}, marketdomain.ErrSymbolNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Stock not found"}`,
		},
		{
			name: "internal error",
			insights: func(context.Context, string) (insight.Summary, error) {
				return insight.Summary{}, errors.New("db down")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Internal server error"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(&mockAnalyticsUsecase{InsightsFunc: tt.insights}, "/stocks/tcs/insights")
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestAnalyticsHandler_GetRiskAnalysis(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		risk           func(ctx context.Context, symbol string) (risk.Summary, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			risk: func(context.Context, string) (risk.Summary, error) {
				return risk.Summary{
					Symbol:            "TCS",
					RiskLevel:         risk.LevelLow,
					Volatility:        0,
					ConfidenceScore:   1,
					Trend:             risk.Neutral,
					RSI:               risk.RSI{Value: 50, Status: risk.Neutral},
					MACDSignal:        risk.Neutral,
					PricePosition:     risk.PricePosition{Label: risk.MidRange, Percentile: 50},
					SMA20:             10,
					SMA50:             10,
					LatestClose:       10,
					DataPoints:        60,
					Recommendations:   []string{risk.RecLowVolatility},
					AnalysisTimestamp: fixedNow,
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"symbol":"TCS","risk_level":"Low","volatility":0,"confidence_score":1,"trend":"Neutral",
				"rsi":{"value":50,"status":"Neutral"},"macd_signal":"Neutral","macd_crossover":false,
				"price_position":{"label":"Mid Range","percentile":50},"sma20":10,"sma50":10,"period_change":0,
				"latest_close":10,"data_points":60,"recommendations":["` + risk.RecLowVolatility + `"],
				"analysis_timestamp":"2024-06-01T12:00:00Z"}`,
		},
		{
			name: "insufficient data is 200 with error payload",
			risk: func(context.Context, string) (risk.Summary, error) {
				return risk.Summary{}, risk.ErrInsufficientData
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"symbol":"TCS","error":"` + risk.ErrInsufficientData.Error() + `",
				"analysis_timestamp":"2024-06-01T12:00:00Z"}`,
		},
		{
			name: "provider outage is 200 with error payload",
			risk: func(context.Context, string) (risk.Summary, error) {
				return risk.Summary{}, marketdomain.ErrProviderUnavailable
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"symbol":"TCS","error":"Market data is temporarily unavailable","analysis_timestamp":"2024-06-01T12:00:00Z"}`,
		},
		{
			name: "unknown symbol",
			risk: func(context.Context, string) (risk.Summary, error) {
				return risk.Summary{}, marketdomain.ErrSymbolNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Stock not found"}`,
		},
		{
			name: "internal error",
			risk: func(context.Context, string) (risk.Summary, error) {
				return risk.Summary{}, errors.New("db down")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Internal server error"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(&mockAnalyticsUsecase{RiskFunc: tt.risk}, "/stocks/TCS/risk-analysis")
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
