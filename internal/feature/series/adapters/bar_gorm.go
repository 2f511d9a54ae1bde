// Package adapters provides the gorm-backed bar store for the series feature.
package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock_watchlist/internal/feature/series/domain/entity"
	"stock_watchlist/internal/feature/series/usecase"
)

type barGorm struct {
	db *gorm.DB
}

var _ usecase.BarRepository = (*barGorm)(nil)

func NewBarRepository(db *gorm.DB) *barGorm {
	return &barGorm{db: db}
}

type BarModel struct {
	ID     uint      `gorm:"primaryKey"`
	Symbol string    `gorm:"size:32;not null;uniqueIndex:bars_symbol_date,priority:1"`
	Date   time.Time `gorm:"type:date;not null;uniqueIndex:bars_symbol_date,priority:2"`

	Open   float64 `gorm:"not null"`
	High   float64 `gorm:"not null"`
	Low    float64 `gorm:"not null"`
	Close  float64 `gorm:"not null"`
	Volume int64   `gorm:"not null;default:0"`

	PrevClose          float64
	Last               float64
	VWAP               float64 `gorm:"column:vwap"`
	Turnover           float64
	Trades             int64
	DeliverableVolume  int64
	DeliverablePercent float64
	Series             string `gorm:"size:8"`

	UpdatedAt time.Time
}

func (BarModel) TableName() string {
	return "bars"
}

func toModel(b entity.Bar) BarModel {
	return BarModel{
		Symbol:             b.Symbol,
		Date:               entity.Truncate(b.Date),
		Open:               b.Open,
		High:               b.High,
		Low:                b.Low,
		Close:              b.Close,
		Volume:             b.Volume,
		PrevClose:          b.PrevClose,
		Last:               b.Last,
		VWAP:               b.VWAP,
		Turnover:           b.Turnover,
		Trades:             b.Trades,
		DeliverableVolume:  b.DeliverableVolume,
		DeliverablePercent: b.DeliverablePercent,
		Series:             b.Series,
	}
}

func (m BarModel) toEntity() entity.Bar {
	return entity.Bar{
		Symbol:             m.Symbol,
		Date:               entity.Truncate(m.Date),
		Open:               m.Open,
		High:               m.High,
		Low:                m.Low,
		Close:              m.Close,
		Volume:             m.Volume,
		PrevClose:          m.PrevClose,
		Last:               m.Last,
		VWAP:               m.VWAP,
		Turnover:           m.Turnover,
		Trades:             m.Trades,
		DeliverableVolume:  m.DeliverableVolume,
		DeliverablePercent: m.DeliverablePercent,
		Series:             m.Series,
	}
}

// UpsertBatch inserts bars, overwriting the values of any (symbol, date) already stored.
func (r *barGorm) UpsertBatch(ctx context.Context, bars []entity.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	ms := make([]BarModel, 0, len(bars))
	for _, b := range bars {
		ms = append(ms, toModel(b))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"open", "high", "low", "close", "volume",
			"prev_close", "last", "vwap", "turnover", "trades",
			"deliverable_volume", "deliverable_percent", "series", "updated_at",
		}),
	}).CreateInBatches(&ms, 500).Error
}

// Find returns up to limit bars for symbol, newest first. limit <= 0 means all.
func (r *barGorm) Find(ctx context.Context, symbol string, limit int) ([]entity.Bar, error) {
	var rows []BarModel
	q := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Bar, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	return out, nil
}
