// Package adapters provides repository implementations for the auth feature.
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"stock_watchlist/internal/feature/auth/domain"
	"stock_watchlist/internal/feature/auth/domain/entity"
	"stock_watchlist/internal/feature/auth/usecase"
	profileusecase "stock_watchlist/internal/feature/profile/usecase"
	"stock_watchlist/internal/platform/db"
)

// userGorm is the gorm implementation of the user repository.
// It also serves the profile feature, which reads and edits the same rows.
type userGorm struct {
	db *gorm.DB
}

var (
	_ usecase.UserRepository           = (*userGorm)(nil)
	_ profileusecase.ProfileRepository = (*userGorm)(nil)
)

func NewUserRepository(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create returns usecase.ErrEmailAlreadyExists when the email is already taken.
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userGorm) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userGorm) first(ctx context.Context, query string, arg any) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdateName returns domain.ErrUserNotFound when no row matched.
func (r *userGorm) UpdateName(ctx context.Context, id uint, name string) error {
	res := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Update("name", name)
	return rowsOrNotFound(res)
}

// UpdatePreferences replaces the stored categories and stamps the update time.
func (r *userGorm) UpdatePreferences(ctx context.Context, id uint, categories []string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Updates(map[string]any{
		"preferences":            datatypes.JSONSlice[string](categories),
		"preferences_updated_at": at,
	})
	return rowsOrNotFound(res)
}

func rowsOrNotFound(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
