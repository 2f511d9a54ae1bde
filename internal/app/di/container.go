package di

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	analyticshandler "stock_watchlist/internal/feature/analytics/transport/handler"
	analyticsusecase "stock_watchlist/internal/feature/analytics/usecase"
	authadapters "stock_watchlist/internal/feature/auth/adapters"
	authentity "stock_watchlist/internal/feature/auth/domain/entity"
	authhandler "stock_watchlist/internal/feature/auth/transport/handler"
	authusecase "stock_watchlist/internal/feature/auth/usecase"
	profilehandler "stock_watchlist/internal/feature/profile/transport/handler"
	profileusecase "stock_watchlist/internal/feature/profile/usecase"
	sentimenthandler "stock_watchlist/internal/feature/sentiment/transport/handler"
	sentimentusecase "stock_watchlist/internal/feature/sentiment/usecase"
	seriesadapters "stock_watchlist/internal/feature/series/adapters"
	serieshandler "stock_watchlist/internal/feature/series/transport/handler"
	seriesusecase "stock_watchlist/internal/feature/series/usecase"
	stocksadapters "stock_watchlist/internal/feature/stocks/adapters"
	stockentity "stock_watchlist/internal/feature/stocks/domain/entity"
	stockhandler "stock_watchlist/internal/feature/stocks/transport/handler"
	stockusecase "stock_watchlist/internal/feature/stocks/usecase"
	watchlistadapters "stock_watchlist/internal/feature/watchlist/adapters"
	watchlistentity "stock_watchlist/internal/feature/watchlist/domain/entity"
	watchlisthandler "stock_watchlist/internal/feature/watchlist/transport/handler"
	watchlistusecase "stock_watchlist/internal/feature/watchlist/usecase"
	"stock_watchlist/internal/platform/cache"
	"stock_watchlist/internal/platform/config"
	"stock_watchlist/internal/platform/externalapi/gemini"
	jwtmw "stock_watchlist/internal/platform/jwt"
	"stock_watchlist/internal/platform/mailer"
	"stock_watchlist/internal/platform/metrics"
	"stock_watchlist/internal/platform/scheduler"
	"stock_watchlist/internal/shared/ratelimiter"
)

// Models lists the gorm models created by db.auto_migrate. SQL migrations remain the source of truth.
func Models() []any {
	return []any{
		&authentity.User{},
		&authadapters.SessionModel{},
		&stockentity.Stock{},
		&seriesadapters.BarModel{},
		&watchlistentity.Entry{},
	}
}

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth      *authhandler.AuthHandler
	Profile   *profilehandler.ProfileHandler
	Watchlist *watchlisthandler.WatchlistHandler
	Stocks    *stockhandler.StockHandler
	Series    *serieshandler.SeriesHandler
	Analytics *analyticshandler.AnalyticsHandler
	Sentiment *sentimenthandler.SentimentHandler
}

// Container holds the wired application. Redis may be nil.
type Container struct {
	Handlers      Handlers
	Authenticator *jwtmw.Authenticator
	Metrics       *metrics.Metrics

	auth   scheduler.SessionPurger
	stocks *stockusecase.StockUsecase
	ingest *seriesusecase.IngestUsecase
	cfg    *config.Config
}

// NewContainer builds repositories, usecases and handlers from cfg.
func NewContainer(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, m *metrics.Metrics) (*Container, error) {
	if cfg.JWT.Secret == "" {
		return nil, errors.New("jwt secret is not set")
	}

	market := NewMarketGateway(cfg, m)

	// series
	var bars seriesusecase.BarRepository = seriesadapters.NewBarRepository(db)
	if rdb != nil {
		bars = cache.NewCachingBarRepository(rdb, cfg.Cache.BarTTL, bars, cfg.Cache.Namespace).
			ExpireBefore(cfg.Cache.RefreshHour, time.UTC)
	}
	series := seriesusecase.NewSeriesUsecase(bars, market)
	stockRepo := stocksadapters.NewStockRepository(db)
	ingest := seriesusecase.NewIngestUsecase(market, bars, stockRepo,
		ratelimiter.NewLogged("ingest", ratelimiter.NewPerMinute(cfg.Ingest.RequestsPerMinute)))

	// stocks
	stocks := stockusecase.NewStockUsecase(stockRepo, market, bars)

	// auth
	users := authadapters.NewUserRepository(db)
	sessions := NewSessionRepository(rdb, db)
	auth := authusecase.NewAuthUsecase(
		users,
		sessions,
		NewPendingStore(rdb),
		mailer.New(cfg.SMTP, cfg.OTP.TTL),
		jwtmw.NewGenerator(cfg.JWT.Secret, cfg.JWT.Expiration),
		authusecase.NewHOTPGenerator(cfg.OTP.Issuer),
		authusecase.Options{
			OTPTTL:             cfg.OTP.TTL,
			SessionTTL:         cfg.Session.TTL,
			MaxSessionsPerUser: cfg.Session.MaxPerUser,
		},
	)

	// watchlist
	watchlist := watchlistusecase.NewWatchlistUsecase(watchlistadapters.NewWatchlistRepository(db), stockRepo, market)

	// sentiment
	var provider sentimentusecase.Provider
	if g, err := gemini.NewClient(ctx, cfg.Gemini); err != nil {
		slog.Warn("gemini unavailable, sentiment will use the neutral fallback", "error", err)
	} else {
		provider = g
	}
	sentiment := sentimentusecase.NewSentimentUsecase(
		sentimentusecase.WithFallback(provider, m), market, watchlist, cfg.Gemini.NewsPerCall)

	return &Container{
		Handlers: Handlers{
			Auth: authhandler.NewAuthHandler(auth, authhandler.CookieConfig{
				Name:   cfg.Session.CookieName,
				Secure: cfg.App.IsProduction(),
			}),
			Profile:   profilehandler.NewProfileHandler(profileusecase.NewProfileUsecase(users)),
			Watchlist: watchlisthandler.NewWatchlistHandler(watchlist),
			Stocks:    stockhandler.NewStockHandler(stocks),
			Series:    serieshandler.NewSeriesHandler(series),
			Analytics: analyticshandler.NewAnalyticsHandler(analyticsusecase.NewAnalyticsUsecase(series, m)),
			Sentiment: sentimenthandler.NewSentimentHandler(sentiment),
		},
		Authenticator: jwtmw.NewAuthenticator(cfg.JWT.Secret, auth, cfg.Session.CookieName),
		Metrics:       m,
		auth:          auth,
		stocks:        stocks,
		ingest:        ingest,
		cfg:           cfg,
	}, nil
}

// NewScheduler registers the background jobs: session cleanup always, daily ingest when enabled.
func (c *Container) NewScheduler() (*scheduler.Scheduler, error) {
	s := scheduler.New()
	if err := s.Add("session-cleanup", c.cfg.Scheduler.SessionCleanupSpec, time.Minute,
		scheduler.SessionCleanup(c.auth, c.Metrics)); err != nil {
		return nil, err
	}
	if c.cfg.Scheduler.IngestEnabled {
		ingest := scheduler.IngestFunc(func(ctx context.Context, symbols []string, days int) (int, []string, error) {
			rep, err := c.ingest.IngestAll(ctx, symbols, days)
			return rep.Bars, rep.Failed, err
		})
		if err := s.Add("ingest", c.cfg.Scheduler.IngestSpec, c.cfg.Ingest.Timeout,
			scheduler.Ingest(c.stocks, ingest, c.cfg.Ingest.OutputSize, c.Metrics)); err != nil {
			return nil, err
		}
	}
	return s, nil
}
