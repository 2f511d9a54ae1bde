// Package usecase implements the per-user watchlist.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	marketentity "stock_watchlist/internal/feature/marketdata/domain/entity"
	stocksdomain "stock_watchlist/internal/feature/stocks/domain"
	stocksentity "stock_watchlist/internal/feature/stocks/domain/entity"
	"stock_watchlist/internal/feature/watchlist/domain"
	"stock_watchlist/internal/feature/watchlist/domain/entity"
)

// WatchlistRepository persists watchlist entries.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type WatchlistRepository interface {
	// List returns the user's entries in insertion order.
	List(ctx context.Context, userID uint) ([]entity.Entry, error)
	// Add returns domain.ErrAlreadyInWatchlist when the pair already exists.
	Add(ctx context.Context, e *entity.Entry) error
	// Remove returns domain.ErrNotInWatchlist when nothing was deleted.
	Remove(ctx context.Context, userID uint, symbol string) error
	Exists(ctx context.Context, userID uint, symbol string) (bool, error)
}

type Catalog interface {
	// FindBySymbol returns the stocks domain's ErrStockNotFound when the symbol is not catalogued.
	FindBySymbol(ctx context.Context, symbol string) (stocksentity.Stock, error)
	FindBySymbols(ctx context.Context, symbols []string) ([]stocksentity.Stock, error)
}

type MarketGateway interface {
	Quotes(ctx context.Context, symbols []string) []marketentity.Quote
	Exists(ctx context.Context, symbol string) (bool, error)
}

// Item is an entry joined with its catalog name and the best price available.
// Quote is nil when neither a live quote nor a stored close exists.
type Item struct {
	Entry entity.Entry
	Name  string
	Quote *marketentity.Quote
}

type WatchlistUsecase struct {
	repo    WatchlistRepository
	catalog Catalog
	market  MarketGateway
	now     func() time.Time
}

func NewWatchlistUsecase(repo WatchlistRepository, catalog Catalog, market MarketGateway) *WatchlistUsecase {
	return &WatchlistUsecase{repo: repo, catalog: catalog, market: market, now: time.Now}
}

func normalise(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// List returns the user's entries in insertion order with names and prices.
func (u *WatchlistUsecase) List(ctx context.Context, userID uint) ([]Item, error) {
	entries, err := u.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	if len(entries) == 0 {
		return []Item{}, nil
	}

	symbols := make([]string, len(entries))
	for i, e := range entries {
		symbols[i] = e.Symbol
	}
	stocks, err := u.catalog.FindBySymbols(ctx, symbols)
	if err != nil {
		return nil, fmt.Errorf("load watched stocks: %w", err)
	}
	bySymbol := make(map[string]stocksentity.Stock, len(stocks))
	for _, s := range stocks {
		bySymbol[s.Symbol] = s
	}
	quotes := u.market.Quotes(ctx, symbols)

	out := make([]Item, len(entries))
	for i, e := range entries {
		stock, catalogued := bySymbol[e.Symbol]
		item := Item{Entry: e, Name: e.Symbol}
		if catalogued {
			item.Name = stock.Name
		}

		q := quotes[i]
		switch {
		case !q.Placeholder:
			if !catalogued && q.Name != "" {
				item.Name = q.Name
			}
			item.Quote = &q
		case catalogued && stock.HasLatest():
			item.Quote = storedQuote(stock)
		}
		out[i] = item
	}
	return out, nil
}

func storedQuote(s stocksentity.Stock) *marketentity.Quote {
	q := &marketentity.Quote{
		Symbol:    s.Symbol,
		Name:      s.Name,
		Price:     s.LatestPrice,
		Change:    s.LatestChange,
		UpdatedAt: *s.LastUpdated,
	}
	if prev := s.LatestPrice - s.LatestChange; prev > 0 {
		q.PreviousClose = prev
		q.ChangePercent = s.LatestChange / prev * 100
	}
	return q
}

// Add puts symbol on the user's list. The symbol must be catalogued or known to a provider.
func (u *WatchlistUsecase) Add(ctx context.Context, userID uint, symbol string) (entity.Entry, error) {
	symbol = normalise(symbol)
	if symbol == "" {
		return entity.Entry{}, domain.ErrUnknownSymbol
	}

	exists, err := u.repo.Exists(ctx, userID, symbol)
	if err != nil {
		return entity.Entry{}, fmt.Errorf("check watchlist: %w", err)
	}
	if exists {
		return entity.Entry{}, domain.ErrAlreadyInWatchlist
	}

	if _, err := u.catalog.FindBySymbol(ctx, symbol); err != nil {
		if !errors.Is(err, stocksdomain.ErrStockNotFound) {
			return entity.Entry{}, fmt.Errorf("find stock %s: %w", symbol, err)
		}
		known, err := u.market.Exists(ctx, symbol)
		if err != nil {
			return entity.Entry{}, fmt.Errorf("look up %s: %w", symbol, err)
		}
		if !known {
			return entity.Entry{}, domain.ErrUnknownSymbol
		}
	}

	e := entity.Entry{UserID: userID, Symbol: symbol, AddedAt: u.now().UTC()}
	if err := u.repo.Add(ctx, &e); err != nil {
		if errors.Is(err, domain.ErrAlreadyInWatchlist) {
			return entity.Entry{}, err
		}
		return entity.Entry{}, fmt.Errorf("add to watchlist: %w", err)
	}
	return e, nil
}

func (u *WatchlistUsecase) Remove(ctx context.Context, userID uint, symbol string) error {
	symbol = normalise(symbol)
	if err := u.repo.Remove(ctx, userID, symbol); err != nil {
		if errors.Is(err, domain.ErrNotInWatchlist) {
			return err
		}
		return fmt.Errorf("remove from watchlist: %w", err)
	}
	return nil
}

// Symbols returns the watched symbols in insertion order.
func (u *WatchlistUsecase) Symbols(ctx context.Context, userID uint) ([]string, error) {
	entries, err := u.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Symbol
	}
	return out, nil
}
