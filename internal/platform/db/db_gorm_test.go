package db

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"stock_watchlist/internal/platform/config"
)

func TestBuildDSN(t *testing.T) {
	t.Parallel()

	cfg := config.Database{
		Host:     "localhost",
		Port:     5432,
		User:     "app",
		Password: "pw",
		Name:     "stocks",
		SSLMode:  "disable",
		TimeZone: "UTC",
	}

	assert.Equal(t,
		"host=localhost user=app password=pw dbname=stocks port=5432 sslmode=disable TimeZone=UTC",
		BuildDSN(cfg))

	cfg.TimeZone = ""
	assert.NotContains(t, BuildDSN(cfg), "TimeZone")
}

func TestBuildURL(t *testing.T) {
	t.Parallel()

	cfg := config.Database{Host: "db", Port: 5433, User: "u", Password: "p", Name: "n", SSLMode: "require"}
	assert.Equal(t, "pgx5://u:p@db:5433/n?sslmode=require", BuildURL(cfg))
}

func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	db, err := ConnectWithRetry("dsn", time.Second, func(string) (*gorm.DB, error) {
		return mockDB, nil
	})

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
}

func TestConnectWithRetry_RetriesOnFailure(t *testing.T) {
	// Not parallel: each retry sleeps for retryInterval.
	mockDB := &gorm.DB{}
	attempts := 0

	db, err := ConnectWithRetry("dsn", 10*time.Second, func(string) (*gorm.DB, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("connection refused")
		}
		return mockDB, nil
	})

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 3, attempts)
}

func TestConnectWithRetry_GivesUp(t *testing.T) {
	t.Parallel()

	attempts := 0
	_, err := ConnectWithRetry("dsn", 10*time.Millisecond, func(string) (*gorm.DB, error) {
		attempts++
		return nil, errors.New("connection refused")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.GreaterOrEqual(t, attempts, 1)
}

func TestIsDuplicateKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, true},
		{"pg other", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite message", errors.New("UNIQUE constraint failed: users.email"), true},
		{"unrelated", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsDuplicateKey(tt.err))
		})
	}
}

func TestGormLogLevel(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, gormLogLevel("silent"), gormLogLevel("info"))
	assert.Equal(t, gormLogLevel("unknown"), gormLogLevel("warn"))
}
