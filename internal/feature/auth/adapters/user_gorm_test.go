package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"stock_watchlist/internal/feature/auth/domain"
	"stock_watchlist/internal/feature/auth/domain/entity"
	"stock_watchlist/internal/feature/auth/usecase"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&entity.User{}, &SessionModel{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

func createUser(t *testing.T, repo *userGorm, email string) *entity.User {
	t.Helper()

	u := &entity.User{Name: "Asha", Email: email, Password: "hashed_password", IsVerified: true}
	require.NoError(t, repo.Create(context.Background(), u), "failed to create user")
	return u
}

func TestNewUserRepository(t *testing.T) {
	db := setupTestDB(t)

	repo := NewUserRepository(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestUserGorm_Create(t *testing.T) {
	t.Run("successful user creation", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		u := createUser(t, repo, "test@example.com")

		assert.NotZero(t, u.ID, "ID is not set")
		assert.False(t, u.CreatedAt.IsZero(), "CreatedAt is not set")
		assert.False(t, u.UpdatedAt.IsZero(), "UpdatedAt is not set")
	})

	t.Run("duplicate email error", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		createUser(t, repo, "duplicate@example.com")

		err := repo.Create(context.Background(), &entity.User{Name: "Other", Email: "duplicate@example.com", Password: "x"})

		assert.ErrorIs(t, err, usecase.ErrEmailAlreadyExists)
	})
}

func TestUserGorm_Find(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	created := createUser(t, repo, "find@example.com")
	ctx := context.Background()

	byEmail, err := repo.FindByEmail(ctx, "find@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.True(t, byEmail.IsVerified)
	assert.Equal(t, []string{}, byEmail.Categories())

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "find@example.com", byID.Email)

	_, err = repo.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserGorm_UpdateProfileFields(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	u := createUser(t, repo, "profile@example.com")
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.UpdateName(ctx, u.ID, "Asha Rao"))
	require.NoError(t, repo.UpdatePreferences(ctx, u.ID, []string{"tech", "energy"}, at))

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", got.Name)
	assert.Equal(t, []string{"tech", "energy"}, got.Categories())
	require.NotNil(t, got.PreferencesUpdatedAt)
	assert.True(t, got.PreferencesUpdatedAt.Equal(at))

	assert.ErrorIs(t, repo.UpdateName(ctx, 999, "Nobody"), domain.ErrUserNotFound)
	assert.ErrorIs(t, repo.UpdatePreferences(ctx, 999, nil, at), domain.ErrUserNotFound)
}
