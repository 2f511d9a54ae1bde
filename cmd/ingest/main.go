package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"stock_watchlist/internal/app/di"
	seriesadapters "stock_watchlist/internal/feature/series/adapters"
	"stock_watchlist/internal/feature/series/adapters/csvfile"
	seriesusecase "stock_watchlist/internal/feature/series/usecase"
	stocksadapters "stock_watchlist/internal/feature/stocks/adapters"
	"stock_watchlist/internal/feature/stocks/adapters/catalogfile"
	stockusecase "stock_watchlist/internal/feature/stocks/usecase"
	"stock_watchlist/internal/platform/config"
	"stock_watchlist/internal/platform/db"
	"stock_watchlist/internal/platform/logger"
	"stock_watchlist/internal/platform/metrics"
	"stock_watchlist/internal/shared/ratelimiter"
)

var configPath string

// bootstrap loads config, installs the logger and opens the database.
func bootstrap() (*config.Config, *gorm.DB, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	zl, err := logger.Setup(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, nil, nil, err
	}
	gdb, err := db.Open(cfg.DB, di.Models()...)
	if err != nil {
		_ = zl.Sync()
		return nil, nil, nil, err
	}
	cleanup := func() {
		if err := db.Close(gdb); err != nil {
			slog.Error("failed to close database", "error", err)
		}
		_ = zl.Sync()
	}
	return cfg, gdb, cleanup, nil
}

func printReport(verb string, rep seriesusecase.ImportReport) {
	fmt.Printf("%s %s bars from %s symbols (%s rows skipped)\n",
		verb, humanize.Comma(int64(rep.Bars)), humanize.Comma(int64(rep.Files)), humanize.Comma(int64(rep.Skipped)))
	if len(rep.Failed) > 0 {
		fmt.Printf("failed: %v\n", rep.Failed)
	}
}

var importCmd = &cobra.Command{
	Use:   "import-csv",
	Short: "Import daily history CSV files (one <SYMBOL>.csv per stock)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, gdb, cleanup, err := bootstrap()
		if err != nil {
			return err
		}
		defer cleanup()

		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = cfg.Ingest.DataDir
		}
		uc := seriesusecase.NewImportUsecase(csvfile.NewReader(), seriesadapters.NewBarRepository(gdb),
			stocksadapters.NewStockRepository(gdb))
		rep, err := uc.ImportDir(cmd.Context(), dir)
		if err != nil {
			return err
		}
		printReport("imported", rep)
		return nil
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [SYMBOL...]",
	Short: "Fetch daily history from the market data providers (all active stocks when no symbol is given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, gdb, cleanup, err := bootstrap()
		if err != nil {
			return err
		}
		defer cleanup()

		market := di.NewMarketGateway(cfg, metrics.New())
		bars := seriesadapters.NewBarRepository(gdb)
		stockRepo := stocksadapters.NewStockRepository(gdb)

		symbols := args
		if len(symbols) == 0 {
			symbols, err = stockusecase.NewStockUsecase(stockRepo, market, bars).ActiveSymbols(cmd.Context())
			if err != nil {
				return err
			}
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Ingest.Timeout)
		defer cancel()
		uc := seriesusecase.NewIngestUsecase(market, bars, stockRepo,
			ratelimiter.NewLogged("ingest", ratelimiter.NewPerMinute(cfg.Ingest.RequestsPerMinute)))
		rep, err := uc.IngestAll(ctx, symbols, cfg.Ingest.OutputSize)
		if err != nil {
			return err
		}
		printReport("fetched", rep)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert the stock catalog from the catalog file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, gdb, cleanup, err := bootstrap()
		if err != nil {
			return err
		}
		defer cleanup()

		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			file = cfg.Ingest.CatalogFile
		}
		list, err := catalogfile.Load(file)
		if err != nil {
			return err
		}
		uc := stockusecase.NewStockUsecase(stocksadapters.NewStockRepository(gdb), nil, nil)
		n, err := uc.Seed(cmd.Context(), list)
		if err != nil {
			return err
		}
		fmt.Printf("seeded %d stocks from %s\n", n, file)
		return nil
	},
}

func migrateCmd(direction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   direction,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return db.Migrate(cfg.DB, direction)
		},
	}
}

func main() {
	root := &cobra.Command{
		Use:           "ingest",
		Short:         "Data maintenance for the stock watchlist API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default configs/config.yaml)")

	importCmd.Flags().String("dir", "", "directory holding <SYMBOL>.csv files (default ingest.data_dir)")
	seedCmd.Flags().String("file", "", "catalog YAML file (default ingest.catalog_file)")

	migrate := &cobra.Command{Use: "migrate", Short: "Apply or revert SQL migrations"}
	migrate.AddCommand(
		migrateCmd(db.DirectionUp, "Apply all available database migrations"),
		migrateCmd(db.DirectionDown, "Revert the last database migration"),
	)
	root.AddCommand(importCmd, fetchCmd, seedCmd, migrate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		log.Fatal(err)
	}
}
