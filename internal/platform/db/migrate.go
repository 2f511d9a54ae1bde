package db

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"stock_watchlist/internal/platform/config"
)

// Migration directions accepted by Migrate.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

// Migrate applies (up) or reverts one step of (down) the SQL migrations in cfg.MigrationsDir.
func Migrate(cfg config.Database, direction string) error {
	m, err := migrate.New("file://"+cfg.MigrationsDir, BuildURL(cfg))
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			slog.Warn("migration source close failed", "error", srcErr)
		}
		if dbErr != nil {
			slog.Warn("migration database close failed", "error", dbErr)
		}
	}()

	switch direction {
	case DirectionUp:
		err = m.Up()
	case DirectionDown:
		err = m.Steps(-1)
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}
	slog.Info("migrations applied", "direction", direction, "dir", cfg.MigrationsDir)
	return nil
}
