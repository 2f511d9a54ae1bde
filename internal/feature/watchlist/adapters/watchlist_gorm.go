// Package adapters provides the watchlist repository.
package adapters

import (
	"context"

	"gorm.io/gorm"

	"stock_watchlist/internal/feature/watchlist/domain"
	"stock_watchlist/internal/feature/watchlist/domain/entity"
	"stock_watchlist/internal/feature/watchlist/usecase"
	"stock_watchlist/internal/platform/db"
)

type watchlistGorm struct {
	db *gorm.DB
}

var _ usecase.WatchlistRepository = (*watchlistGorm)(nil)

func NewWatchlistRepository(db *gorm.DB) *watchlistGorm {
	return &watchlistGorm{db: db}
}

func (r *watchlistGorm) List(ctx context.Context, userID uint) ([]entity.Entry, error) {
	var entries []entity.Entry
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at ASC").Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Add relies on the unique (user_id, symbol) index to reject repeats.
func (r *watchlistGorm) Add(ctx context.Context, e *entity.Entry) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return domain.ErrAlreadyInWatchlist
		}
		return err
	}
	return nil
}

func (r *watchlistGorm) Remove(ctx context.Context, userID uint, symbol string) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND symbol = ?", userID, symbol).
		Delete(&entity.Entry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotInWatchlist
	}
	return nil
}

func (r *watchlistGorm) Exists(ctx context.Context, userID uint, symbol string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&entity.Entry{}).
		Where("user_id = ? AND symbol = ?", userID, symbol).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
