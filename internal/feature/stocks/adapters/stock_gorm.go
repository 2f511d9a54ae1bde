// Package adapters provides the catalog repository for the stocks feature.
package adapters

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	seriesusecase "stock_watchlist/internal/feature/series/usecase"
	"stock_watchlist/internal/feature/stocks/domain"
	"stock_watchlist/internal/feature/stocks/domain/entity"
	"stock_watchlist/internal/feature/stocks/usecase"
	watchlistusecase "stock_watchlist/internal/feature/watchlist/usecase"
)

type stockGorm struct {
	db *gorm.DB
}

var (
	_ usecase.StockRepository  = (*stockGorm)(nil)
	_ seriesusecase.Catalog    = (*stockGorm)(nil)
	_ watchlistusecase.Catalog = (*stockGorm)(nil)
)

func NewStockRepository(db *gorm.DB) *stockGorm {
	return &stockGorm{db: db}
}

// ListActive returns all active stocks ordered by sort_key, then symbol.
func (r *stockGorm) ListActive(ctx context.Context) ([]entity.Stock, error) {
	var stocks []entity.Stock
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_key ASC").Order("symbol ASC").
		Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

func (r *stockGorm) ListActiveSymbols(ctx context.Context) ([]string, error) {
	var symbols []string
	if err := r.db.WithContext(ctx).
		Model(&entity.Stock{}).
		Where("is_active = ?", true).
		Order("sort_key ASC").Order("symbol ASC").
		Pluck("symbol", &symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

func (r *stockGorm) FindBySymbol(ctx context.Context, symbol string) (entity.Stock, error) {
	var s entity.Stock
	err := r.db.WithContext(ctx).Where("symbol = ?", strings.ToUpper(symbol)).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.Stock{}, domain.ErrStockNotFound
	}
	return s, err
}

// FindBySymbols returns the catalogued rows among symbols, in no particular order.
func (r *stockGorm) FindBySymbols(ctx context.Context, symbols []string) ([]entity.Stock, error) {
	if len(symbols) == 0 {
		return nil, nil
	}
	upper := make([]string, len(symbols))
	for i, s := range symbols {
		upper[i] = strings.ToUpper(s)
	}
	var stocks []entity.Stock
	if err := r.db.WithContext(ctx).Where("symbol IN ?", upper).Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// Search matches active stocks by symbol prefix or name substring, case-insensitively.
func (r *stockGorm) Search(ctx context.Context, query string, limit int) ([]entity.Stock, error) {
	q := strings.TrimSpace(query)
	var stocks []entity.Stock
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("symbol LIKE ? OR LOWER(name) LIKE ?", strings.ToUpper(q)+"%", "%"+strings.ToLower(q)+"%").
		Order("sort_key ASC").Order("symbol ASC").
		Limit(limit).
		Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// UpsertMany inserts new catalog rows and refreshes descriptive columns of existing ones.
// Latest price columns are left alone.
func (r *stockGorm) UpsertMany(ctx context.Context, stocks []entity.Stock) error {
	if len(stocks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "exchange", "industry", "is_active", "sort_key", "updated_at"}),
		}).
		Create(&stocks).Error
}

// RecordLatest ensures symbol is catalogued and stores its latest close. Rows created here sort
// after seeded ones. A close older than the stored one is ignored.
func (r *stockGorm) RecordLatest(ctx context.Context, symbol string, price, change float64, at time.Time) error {
	symbol = strings.ToUpper(symbol)
	at = at.UTC()
	row := entity.Stock{
		Symbol:       symbol,
		Name:         symbol,
		IsActive:     true,
		SortKey:      1 << 20,
		LatestPrice:  price,
		LatestChange: change,
		LastUpdated:  &at,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}},
			DoUpdates: clause.AssignmentColumns([]string{"latest_price", "latest_change", "last_updated", "updated_at"}),
			Where:     clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "stocks.last_updated IS NULL OR stocks.last_updated <= excluded.last_updated"},
			}},
		}).
		Create(&row).Error
}
