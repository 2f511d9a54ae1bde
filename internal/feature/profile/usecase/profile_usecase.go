// Package usecase implements profile reads and edits for signed-in users.
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	authentity "stock_watchlist/internal/feature/auth/domain/entity"
	"stock_watchlist/internal/feature/profile/domain"
)

const maxNameLength = 100

// ProfileRepository reads and edits user rows.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type ProfileRepository interface {
	// FindByID returns the auth domain's ErrUserNotFound when no row matches.
	FindByID(ctx context.Context, id uint) (*authentity.User, error)
	UpdateName(ctx context.Context, id uint, name string) error
	UpdatePreferences(ctx context.Context, id uint, categories []string, at time.Time) error
}

type ProfileUsecase struct {
	repo     ProfileRepository
	validate *validator.Validate
	tag      string
	now      func() time.Time
}

func NewProfileUsecase(repo ProfileRepository) *ProfileUsecase {
	return &ProfileUsecase{
		repo:     repo,
		validate: validator.New(),
		tag:      "dive,oneof=" + strings.Join(domain.Categories, " "),
		now:      time.Now,
	}
}

func (u *ProfileUsecase) Get(ctx context.Context, userID uint) (*authentity.User, error) {
	return u.repo.FindByID(ctx, userID)
}

// UpdateName sets the display name and returns the refreshed profile.
func (u *ProfileUsecase) UpdateName(ctx context.Context, userID uint, name string) (*authentity.User, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return nil, domain.ErrInvalidName
	}
	if err := u.repo.UpdateName(ctx, userID, name); err != nil {
		return nil, err
	}
	return u.repo.FindByID(ctx, userID)
}

// UpdatePreferences replaces the followed categories. Input is lower-cased and deduplicated
// with its order kept; an empty list clears the preferences.
func (u *ProfileUsecase) UpdatePreferences(ctx context.Context, userID uint, categories []string) (*authentity.User, error) {
	clean := make([]string, 0, len(categories))
	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		clean = append(clean, c)
	}
	if err := u.validate.Var(clean, u.tag); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCategory, err)
	}

	if err := u.repo.UpdatePreferences(ctx, userID, clean, u.now().UTC()); err != nil {
		return nil, err
	}
	return u.repo.FindByID(ctx, userID)
}
