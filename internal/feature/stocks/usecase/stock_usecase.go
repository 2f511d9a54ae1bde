// Package usecase implements the stock directory: catalog listing with live quotes, search and detail.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	marketdomain "stock_watchlist/internal/feature/marketdata/domain"
	marketentity "stock_watchlist/internal/feature/marketdata/domain/entity"
	seriesentity "stock_watchlist/internal/feature/series/domain/entity"
	"stock_watchlist/internal/feature/stocks/domain"
	"stock_watchlist/internal/feature/stocks/domain/entity"
)

const (
	// DetailHistoryLimit caps the bars embedded in a detail response.
	DetailHistoryLimit = 200
	DefaultSearchLimit = 10
	SourceCatalog      = "catalog"
)

// StockRepository abstracts the catalog table.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type StockRepository interface {
	ListActive(ctx context.Context) ([]entity.Stock, error)
	ListActiveSymbols(ctx context.Context) ([]string, error)
	// FindBySymbol returns domain.ErrStockNotFound when no row matches.
	FindBySymbol(ctx context.Context, symbol string) (entity.Stock, error)
	Search(ctx context.Context, query string, limit int) ([]entity.Stock, error)
	UpsertMany(ctx context.Context, stocks []entity.Stock) error
}

type MarketGateway interface {
	Quote(ctx context.Context, symbol string) (marketentity.Quote, error)
	Quotes(ctx context.Context, symbols []string) []marketentity.Quote
	Search(ctx context.Context, query string, limit int) ([]marketentity.SearchResult, error)
}

type BarReader interface {
	Find(ctx context.Context, symbol string, limit int) ([]seriesentity.Bar, error)
}

// Listing is a catalog row with its live quote. Quote.Placeholder is false when the stored latest
// close stood in for a failed fetch.
type Listing struct {
	Stock entity.Stock
	Quote marketentity.Quote
}

type Detail struct {
	Stock   entity.Stock
	Quote   marketentity.Quote
	History []seriesentity.Bar
}

type StockUsecase struct {
	repo   StockRepository
	market MarketGateway
	bars   BarReader
	now    func() time.Time
}

func NewStockUsecase(repo StockRepository, market MarketGateway, bars BarReader) *StockUsecase {
	return &StockUsecase{repo: repo, market: market, bars: bars, now: time.Now}
}

// storedQuote builds a quote from the catalog's latest close.
func storedQuote(s entity.Stock) marketentity.Quote {
	q := marketentity.Quote{
		Symbol:    s.Symbol,
		Name:      s.Name,
		Exchange:  s.Exchange,
		Price:     s.LatestPrice,
		Change:    s.LatestChange,
		UpdatedAt: *s.LastUpdated,
		Source:    SourceCatalog,
	}
	if prev := s.LatestPrice - s.LatestChange; prev > 0 {
		q.PreviousClose = prev
		q.ChangePercent = s.LatestChange / prev * 100
	}
	return q
}

// withFallback swaps a placeholder quote for the stored latest close when there is one.
func withFallback(s entity.Stock, q marketentity.Quote) marketentity.Quote {
	if q.Placeholder && s.HasLatest() {
		return storedQuote(s)
	}
	if q.Name == "" || q.Name == q.Symbol {
		q.Name = s.Name
	}
	return q
}

// List returns the active catalog with live quotes fetched concurrently.
func (u *StockUsecase) List(ctx context.Context) ([]Listing, error) {
	stocks, err := u.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}
	symbols := make([]string, len(stocks))
	for i, s := range stocks {
		symbols[i] = s.Symbol
	}
	quotes := u.market.Quotes(ctx, symbols)

	out := make([]Listing, len(stocks))
	for i, s := range stocks {
		out[i] = Listing{Stock: s, Quote: withFallback(s, quotes[i])}
	}
	return out, nil
}

// ActiveSymbols lists catalog symbols in display order.
func (u *StockUsecase) ActiveSymbols(ctx context.Context) ([]string, error) {
	return u.repo.ListActiveSymbols(ctx)
}

// Search returns catalog matches first, then provider hits not already listed. A provider failure
// degrades to catalog-only results.
func (u *StockUsecase) Search(ctx context.Context, query string, limit int) ([]marketentity.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	stocks, err := u.repo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(stocks))
	out := make([]marketentity.SearchResult, 0, limit)
	for _, s := range stocks {
		seen[s.Symbol] = struct{}{}
		out = append(out, marketentity.SearchResult{
			Symbol:   s.Symbol,
			Name:     s.Name,
			Exchange: s.Exchange,
			Source:   SourceCatalog,
		})
	}
	if len(out) >= limit {
		return out[:limit], nil
	}

	hits, err := u.market.Search(ctx, query, limit)
	if err != nil {
		slog.Warn("provider search failed, returning catalog matches only", "query", query, "error", err)
		return out, nil
	}
	for _, h := range hits {
		if _, ok := seen[h.Symbol]; ok {
			continue
		}
		seen[h.Symbol] = struct{}{}
		out = append(out, h)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Detail returns the catalog row, a live quote and up to DetailHistoryLimit stored bars.
// Uncatalogued symbols are served from the provider quote alone.
func (u *StockUsecase) Detail(ctx context.Context, symbol string) (Detail, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	stock, err := u.repo.FindBySymbol(ctx, symbol)
	catalogued := err == nil
	if err != nil && !errors.Is(err, domain.ErrStockNotFound) {
		return Detail{}, fmt.Errorf("find stock %s: %w", symbol, err)
	}

	quote, err := u.market.Quote(ctx, symbol)
	switch {
	case err == nil:
	case !catalogued && errors.Is(err, marketdomain.ErrSymbolNotFound):
		return Detail{}, fmt.Errorf("%s: %w", symbol, domain.ErrStockNotFound)
	case !catalogued:
		return Detail{}, err
	default:
		slog.Warn("quote fetch failed for catalogued stock", "symbol", symbol, "error", err)
		quote = marketentity.Placeholder(symbol, u.now().UTC())
	}

	if catalogued {
		quote = withFallback(stock, quote)
	} else {
		stock = entity.Stock{Symbol: symbol, Name: quote.Name, Exchange: quote.Exchange}
	}

	history, err := u.bars.Find(ctx, symbol, DetailHistoryLimit)
	if err != nil {
		slog.Warn("failed to load stored history", "symbol", symbol, "error", err)
		history = nil
	}
	return Detail{Stock: stock, Quote: quote, History: history}, nil
}

// Seed upserts catalog entries in file order, which becomes their sort order.
func (u *StockUsecase) Seed(ctx context.Context, stocks []entity.Stock) (int, error) {
	clean := make([]entity.Stock, 0, len(stocks))
	seen := make(map[string]struct{}, len(stocks))
	for _, s := range stocks {
		s.Symbol = strings.ToUpper(strings.TrimSpace(s.Symbol))
		if s.Symbol == "" {
			continue
		}
		if _, ok := seen[s.Symbol]; ok {
			continue
		}
		seen[s.Symbol] = struct{}{}
		if s.Name == "" {
			s.Name = s.Symbol
		}
		s.IsActive = true
		s.SortKey = len(clean) + 1
		clean = append(clean, s)
	}
	if len(clean) == 0 {
		return 0, nil
	}
	if err := u.repo.UpsertMany(ctx, clean); err != nil {
		return 0, fmt.Errorf("seed stocks: %w", err)
	}
	return len(clean), nil
}
