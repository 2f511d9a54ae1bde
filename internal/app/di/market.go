// Package di provides dependency injection factories for creating application components.
package di

import (
	"log/slog"

	"stock_watchlist/internal/feature/marketdata/usecase"
	"stock_watchlist/internal/platform/config"
	"stock_watchlist/internal/platform/externalapi/twelvedata"
	"stock_watchlist/internal/platform/externalapi/yahoo"
	infrahttp "stock_watchlist/internal/platform/http"
	"stock_watchlist/internal/platform/metrics"
)

// NewMarketGateway wires the market data providers in priority order: Twelve Data first when an
// API key is configured, Yahoo Finance always. Search and news come from Yahoo only.
func NewMarketGateway(cfg *config.Config, m *metrics.Metrics) *usecase.Gateway {
	y := yahoo.NewClient(cfg.Yahoo)

	var (
		quotes  []usecase.QuoteProvider
		history []usecase.HistoryProvider
	)
	if td := twelvedata.NewConfig(cfg.TwelveData); td.Enabled() {
		client := twelvedata.NewClient(td, infrahttp.NewProviderClient("twelvedata", td.Timeout))
		quotes = append(quotes, client)
		history = append(history, client)
	} else {
		slog.Warn("twelve data api key is not set, using yahoo finance only")
	}
	quotes = append(quotes, y)
	history = append(history, y)

	return usecase.NewGateway(quotes, history, y, y, m, usecase.Options{
		QuoteTimeout:   cfg.Market.QuoteTimeout,
		QuoteCacheTTL:  cfg.Market.QuoteCacheTTL,
		MaxConcurrency: cfg.Market.MaxConcurrency,
	})
}
