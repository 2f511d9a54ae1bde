package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	marketdomain "stock_watchlist/internal/feature/marketdata/domain"
	marketentity "stock_watchlist/internal/feature/marketdata/domain/entity"
	seriesentity "stock_watchlist/internal/feature/series/domain/entity"
	"stock_watchlist/internal/feature/stocks/domain"
	"stock_watchlist/internal/feature/stocks/domain/entity"
	"stock_watchlist/internal/feature/stocks/usecase"
)

var errDB = errors.New("database error")

type mockStockRepository struct {
	ListActiveFunc   func(ctx context.Context) ([]entity.Stock, error)
	FindBySymbolFunc func(ctx context.Context, symbol string) (entity.Stock, error)
	SearchFunc       func(ctx context.Context, query string, limit int) ([]entity.Stock, error)
	UpsertManyFunc   func(ctx context.Context, stocks []entity.Stock) error
}

func (m *mockStockRepository) ListActive(ctx context.Context) ([]entity.Stock, error) {
	return m.ListActiveFunc(ctx)
}

func (m *mockStockRepository) ListActiveSymbols(ctx context.Context) ([]string, error) {
	stocks, err := m.ListActiveFunc(ctx)
	out := make([]string, len(stocks))
	for i, s := range stocks {
		out[i] = s.Symbol
	}
	return out, err
}

func (m *mockStockRepository) FindBySymbol(ctx context.Context, symbol string) (entity.Stock, error) {
	return m.FindBySymbolFunc(ctx, symbol)
}

func (m *mockStockRepository) Search(ctx context.Context, query string, limit int) ([]entity.Stock, error) {
	return m.SearchFunc(ctx, query, limit)
}

func (m *mockStockRepository) UpsertMany(ctx context.Context, stocks []entity.Stock) error {
	return m.UpsertManyFunc(ctx, stocks)
}

type mockGateway struct {
	QuoteFunc  func(ctx context.Context, symbol string) (marketentity.Quote, error)
	QuotesFunc func(ctx context.Context, symbols []string) []marketentity.Quote
	SearchFunc func(ctx context.Context, query string, limit int) ([]marketentity.SearchResult, error)
}

func (m *mockGateway) Quote(ctx context.Context, symbol string) (marketentity.Quote, error) {
	return m.QuoteFunc(ctx, symbol)
}

func (m *mockGateway) Quotes(ctx context.Context, symbols []string) []marketentity.Quote {
	return m.QuotesFunc(ctx, symbols)
}

func (m *mockGateway) Search(ctx context.Context, query string, limit int) ([]marketentity.SearchResult, error) {
	return m.SearchFunc(ctx, query, limit)
}

type mockBars struct {
	FindFunc func(ctx context.Context, symbol string, limit int) ([]seriesentity.Bar, error)
}

func (m *mockBars) Find(ctx context.Context, symbol string, limit int) ([]seriesentity.Bar, error) {
	if m.FindFunc == nil {
		return nil, nil
	}
	return m.FindFunc(ctx, symbol, limit)
}

func TestStockUsecase_List(t *testing.T) {
	t.Parallel()

	updated := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	repo := &mockStockRepository{ListActiveFunc: func(context.Context) ([]entity.Stock, error) {
		return []entity.Stock{
			{Symbol: "TCS", Name: "Tata Consultancy Services"},
			{Symbol: "INFY", Name: "Infosys", LatestPrice: 1520, LatestChange: 20, LastUpdated: &updated},
			{Symbol: "NEW", Name: "New Listing"},
		}, nil
	}}
	gw := &mockGateway{QuotesFunc: func(_ context.Context, symbols []string) []marketentity.Quote {
		assert.Equal(t, []string{"TCS", "INFY", "NEW"}, symbols)
		return []marketentity.Quote{
			{Symbol: "TCS", Name: "TCS", Price: 3900},
			marketentity.Placeholder("INFY", time.Now()),
			marketentity.Placeholder("NEW", time.Now()),
		}
	}}

	got, err := usecase.NewStockUsecase(repo, gw, &mockBars{}).List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, 3900.0, got[0].Quote.Price)
	assert.Equal(t, "Tata Consultancy Services", got[0].Quote.Name)

	assert.False(t, got[1].Quote.Placeholder, "stored latest close replaces the placeholder")
	assert.Equal(t, 1520.0, got[1].Quote.Price)
	assert.Equal(t, 1500.0, got[1].Quote.PreviousClose)
	assert.InDelta(t, 1.3333, got[1].Quote.ChangePercent, 1e-3)
	assert.Equal(t, usecase.SourceCatalog, got[1].Quote.Source)

	assert.True(t, got[2].Quote.Placeholder)
	assert.Zero(t, got[2].Quote.Price)
}

func TestStockUsecase_List_RepoError(t *testing.T) {
	t.Parallel()

	repo := &mockStockRepository{ListActiveFunc: func(context.Context) ([]entity.Stock, error) { return nil, errDB }}
	_, err := usecase.NewStockUsecase(repo, &mockGateway{}, &mockBars{}).List(context.Background())
	assert.ErrorIs(t, err, errDB)
}

func TestStockUsecase_Search(t *testing.T) {
	t.Parallel()

	catalog := func(context.Context, string, int) ([]entity.Stock, error) {
		return []entity.Stock{{Symbol: "AAPL", Name: "Apple Inc."}}, nil
	}
	hits := func(context.Context, string, int) ([]marketentity.SearchResult, error) {
		return []marketentity.SearchResult{
			{Symbol: "AAPL", Name: "Apple Inc.", Source: "yahoo"},
			{Symbol: "APLE", Name: "Apple Hospitality", Source: "yahoo"},
			{Symbol: "APPL.X", Name: "Other", Source: "yahoo"},
		}, nil
	}

	tests := []struct {
		name        string
		query       string
		limit       int
		search      func(context.Context, string, int) ([]marketentity.SearchResult, error)
		wantSymbols []string
		wantSources []string
		wantErr     error
	}{
		{
			name: "catalog first then deduplicated provider hits", query: "apple", limit: 10, search: hits,
			wantSymbols: []string{"AAPL", "APLE", "APPL.X"},
			wantSources: []string{"catalog", "yahoo", "yahoo"},
		},
		{
			name: "limit caps merged results", query: "apple", limit: 2, search: hits,
			wantSymbols: []string{"AAPL", "APLE"},
			wantSources: []string{"catalog", "yahoo"},
		},
		{
			name: "provider failure degrades to catalog", query: "apple", limit: 10,
			search: func(context.Context, string, int) ([]marketentity.SearchResult, error) {
				return nil, marketdomain.ErrProviderUnavailable
			},
			wantSymbols: []string{"AAPL"},
			wantSources: []string{"catalog"},
		},
		{name: "blank query", query: "   ", wantErr: domain.ErrEmptyQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo := &mockStockRepository{SearchFunc: catalog}
			gw := &mockGateway{SearchFunc: tt.search}
			got, err := usecase.NewStockUsecase(repo, gw, &mockBars{}).Search(context.Background(), tt.query, tt.limit)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			var symbols, sources []string
			for _, r := range got {
				symbols = append(symbols, r.Symbol)
				sources = append(sources, r.Source)
			}
			assert.Equal(t, tt.wantSymbols, symbols)
			assert.Equal(t, tt.wantSources, sources)
		})
	}
}

func TestStockUsecase_Detail(t *testing.T) {
	t.Parallel()

	updated := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	tcs := entity.Stock{Symbol: "TCS", Name: "Tata Consultancy Services", Industry: "IT", LatestPrice: 3900, LatestChange: 10, LastUpdated: &updated}
	bars := []seriesentity.Bar{{Symbol: "TCS", Date: updated, Close: 3900}}

	find := func(_ context.Context, symbol string) (entity.Stock, error) {
		if symbol == "TCS" {
			return tcs, nil
		}
		return entity.Stock{}, domain.ErrStockNotFound
	}

	tests := []struct {
		name      string
		symbol    string
		find      func(context.Context, string) (entity.Stock, error)
		quote     func(context.Context, string) (marketentity.Quote, error)
		barsErr   error
		wantErr   error
		wantName  string
		wantPrice float64
		wantBars  int
	}{
		{
			name: "catalogued with live quote", symbol: "tcs", find: find,
			quote: func(context.Context, string) (marketentity.Quote, error) {
				return marketentity.Quote{Symbol: "TCS", Price: 3950}, nil
			},
			wantName: "Tata Consultancy Services", wantPrice: 3950, wantBars: 1,
		},
		{
			name: "catalogued with provider outage uses stored close", symbol: "TCS", find: find,
			quote: func(context.Context, string) (marketentity.Quote, error) {
				return marketentity.Quote{}, marketdomain.ErrProviderUnavailable
			},
			wantName: "Tata Consultancy Services", wantPrice: 3900, wantBars: 1,
		},
		{
			name: "uncatalogued known to provider", symbol: "AAPL", find: find,
			quote: func(context.Context, string) (marketentity.Quote, error) {
				return marketentity.Quote{Symbol: "AAPL", Name: "Apple Inc.", Price: 190}, nil
			},
			wantName: "Apple Inc.", wantPrice: 190, wantBars: 1,
		},
		{
			name: "unknown everywhere", symbol: "ZZZZ", find: find,
			quote: func(context.Context, string) (marketentity.Quote, error) {
				return marketentity.Quote{}, marketdomain.ErrSymbolNotFound
			},
			wantErr: domain.ErrStockNotFound,
		},
		{
			name: "uncatalogued with provider outage", symbol: "ZZZZ", find: find,
			quote: func(context.Context, string) (marketentity.Quote, error) {
				return marketentity.Quote{}, marketdomain.ErrProviderUnavailable
			},
			wantErr: marketdomain.ErrProviderUnavailable,
		},
		{
			name: "catalog error", symbol: "TCS",
			find:    func(context.Context, string) (entity.Stock, error) { return entity.Stock{}, errDB },
			wantErr: errDB,
		},
		{
			name: "history error is tolerated", symbol: "TCS", find: find,
			quote: func(context.Context, string) (marketentity.Quote, error) {
				return marketentity.Quote{Symbol: "TCS", Price: 3950}, nil
			},
			barsErr:  errDB,
			wantName: "Tata Consultancy Services", wantPrice: 3950, wantBars: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo := &mockStockRepository{FindBySymbolFunc: tt.find}
			gw := &mockGateway{QuoteFunc: tt.quote}
			br := &mockBars{FindFunc: func(_ context.Context, symbol string, limit int) ([]seriesentity.Bar, error) {
				assert.Equal(t, usecase.DetailHistoryLimit, limit)
				return bars, tt.barsErr
			}}

			d, err := usecase.NewStockUsecase(repo, gw, br).Detail(context.Background(), tt.symbol)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, d.Stock.Name)
			assert.Equal(t, tt.wantPrice, d.Quote.Price)
			if tt.barsErr != nil {
				assert.Empty(t, d.History)
			} else {
				assert.Len(t, d.History, tt.wantBars)
			}
		})
	}
}

func TestStockUsecase_Seed(t *testing.T) {
	t.Parallel()

	var stored []entity.Stock
	repo := &mockStockRepository{UpsertManyFunc: func(_ context.Context, stocks []entity.Stock) error {
		stored = stocks
		return nil
	}}
	uc := usecase.NewStockUsecase(repo, &mockGateway{}, &mockBars{})

	n, err := uc.Seed(context.Background(), []entity.Stock{
		{Symbol: " tcs ", Name: "Tata Consultancy Services"},
		{Symbol: ""},
		{Symbol: "TCS", Name: "duplicate"},
		{Symbol: "infy"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, stored, 2)
	assert.Equal(t, "TCS", stored[0].Symbol)
	assert.Equal(t, 1, stored[0].SortKey)
	assert.Equal(t, "INFY", stored[1].Symbol)
	assert.Equal(t, "INFY", stored[1].Name)
	assert.Equal(t, 2, stored[1].SortKey)
	assert.True(t, stored[1].IsActive)

	n, err = uc.Seed(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	repo.UpsertManyFunc = func(context.Context, []entity.Stock) error { return errDB }
	_, err = uc.Seed(context.Background(), []entity.Stock{{Symbol: "X"}})
	assert.ErrorIs(t, err, errDB)
}
