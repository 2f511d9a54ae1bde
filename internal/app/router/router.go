package router

import (
	"github.com/gin-gonic/gin"

	"stock_watchlist/internal/app/di"
	platformhandler "stock_watchlist/internal/platform/http/handler"
	"stock_watchlist/internal/platform/http/middleware"
	jwtmw "stock_watchlist/internal/platform/jwt"
	"stock_watchlist/internal/platform/metrics"
)

// Options carries the non-handler dependencies of the router.
type Options struct {
	ClientURL     string
	Authenticator *jwtmw.Authenticator
	Health        *platformhandler.HealthHandler
	Metrics       *metrics.Metrics
}

func NewRouter(h di.Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.CORS(opts.ClientURL),
	)
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	// health check
	r.Match([]string{"GET", "HEAD", "OPTIONS"}, "/healthz", opts.Health.Health)

	// accounts (public; logout only clears what the cookie names)
	auth := r.Group("/auth")
	{
		auth.POST("/signup", h.Auth.Signup)
		auth.POST("/verify-otp", h.Auth.VerifyOTP)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
	}

	// market data (public)
	stocks := r.Group("/stocks")
	{
		stocks.GET("", h.Stocks.List)
		stocks.GET("/search", h.Stocks.Search)
		stocks.GET("/:symbol", h.Stocks.Detail)
		stocks.GET("/:symbol/history", h.Series.GetHistory)
		stocks.GET("/:symbol/insights", h.Analytics.GetInsights)
		stocks.GET("/:symbol/risk-analysis", h.Analytics.GetRiskAnalysis)
		// signed-in callers are scored against their watchlist
		stocks.GET("/:symbol/sentiment", opts.Authenticator.Optional(), h.Sentiment.Get)
	}

	// authentication required
	private := r.Group("/")
	private.Use(opts.Authenticator.Required())
	{
		private.GET("/user/profile", h.Profile.Get)
		private.PUT("/user/profile", h.Profile.UpdateProfile)
		private.PUT("/user/preferences", h.Profile.UpdatePreferences)

		private.GET("/watchlist", h.Watchlist.List)
		private.POST("/watchlist", h.Watchlist.Add)
		private.DELETE("/watchlist/:symbol", h.Watchlist.Remove)
	}

	return r
}
