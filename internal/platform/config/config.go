// Package config loads application settings from configs/config.yaml, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration object shared by cmd/server and cmd/ingest.
type Config struct {
	App        App        `mapstructure:"app"`
	Log        Logger     `mapstructure:"logger"`
	DB         Database   `mapstructure:"db"`
	Redis      Redis      `mapstructure:"redis"`
	JWT        JWT        `mapstructure:"jwt"`
	Session    Session    `mapstructure:"session"`
	OTP        OTP        `mapstructure:"otp"`
	SMTP       SMTP       `mapstructure:"smtp"`
	TwelveData TwelveData `mapstructure:"twelve_data"`
	Yahoo      Yahoo      `mapstructure:"yahoo"`
	Gemini     Gemini     `mapstructure:"gemini"`
	Market     Market     `mapstructure:"market"`
	Cache      Cache      `mapstructure:"cache"`
	Scheduler  Scheduler  `mapstructure:"scheduler"`
	Ingest     Ingest     `mapstructure:"ingest"`
}

type App struct {
	Env       string `mapstructure:"env"`
	Port      int    `mapstructure:"port"`
	ClientURL string `mapstructure:"client_url"`
}

// IsProduction reports whether the app runs with production defaults (JSON logs, secure cookies).
func (a App) IsProduction() bool {
	return a.Env == "production"
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	Name          string        `mapstructure:"name"`
	SSLMode       string        `mapstructure:"ssl_mode"`
	TimeZone      string        `mapstructure:"time_zone"`
	MaxIdleConns  int           `mapstructure:"max_idle_conns"`
	MaxOpenConns  int           `mapstructure:"max_open_conns"`
	ConnectWait   time.Duration `mapstructure:"connect_wait"`
	LogLevel      string        `mapstructure:"log_level"`
	AutoMigrate   bool          `mapstructure:"auto_migrate"`
	MigrationsDir string        `mapstructure:"migrations_dir"`
}

type Redis struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port for go-redis.
func (r Redis) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWT struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type Session struct {
	TTL        time.Duration `mapstructure:"ttl"`
	MaxPerUser int           `mapstructure:"max_per_user"`
	CookieName string        `mapstructure:"cookie_name"`
}

type OTP struct {
	TTL    time.Duration `mapstructure:"ttl"`
	Issuer string        `mapstructure:"issuer"`
}

type SMTP struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// Enabled reports whether an SMTP relay is configured. Without one, OTP mails are only logged.
func (s SMTP) Enabled() bool {
	return s.Host != ""
}

type TwelveData struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Yahoo struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

type Gemini struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	NewsPerCall int           `mapstructure:"news_per_call"`
}

type Market struct {
	QuoteTimeout   time.Duration `mapstructure:"quote_timeout"`
	QuoteCacheTTL  time.Duration `mapstructure:"quote_cache_ttl"`
	MaxConcurrency int           `mapstructure:"max_concurrency"`
}

type Cache struct {
	BarTTL    time.Duration `mapstructure:"bar_ttl"`
	Namespace string        `mapstructure:"namespace"`

	// RefreshHour (UTC) caps cached bars at the daily ingest. -1 disables the cap.
	RefreshHour int `mapstructure:"refresh_hour"`
}

type Scheduler struct {
	SessionCleanupSpec string `mapstructure:"session_cleanup_spec"`
	IngestSpec         string `mapstructure:"ingest_spec"`
	IngestEnabled      bool   `mapstructure:"ingest_enabled"`
}

type Ingest struct {
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	OutputSize        int           `mapstructure:"output_size"`
	Timeout           time.Duration `mapstructure:"timeout"`
	CatalogFile       string        `mapstructure:"catalog_file"`
	DataDir           string        `mapstructure:"data_dir"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 5000)
	v.SetDefault("app.client_url", "http://localhost:3000")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "console")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "stock_watchlist")
	v.SetDefault("db.ssl_mode", "disable")
	v.SetDefault("db.time_zone", "UTC")
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.connect_wait", "60s")
	v.SetDefault("db.log_level", "Warn")
	v.SetDefault("db.auto_migrate", false)
	v.SetDefault("db.migrations_dir", "migrations")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "24h")

	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.max_per_user", 5)
	v.SetDefault("session.cookie_name", "sid")

	v.SetDefault("otp.ttl", "15m")
	v.SetDefault("otp.issuer", "StockWatchlist")

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "no-reply@stockwatchlist.local")

	v.SetDefault("twelve_data.api_key", "")
	v.SetDefault("twelve_data.base_url", "https://api.twelvedata.com")
	v.SetDefault("twelve_data.timeout", "10s")

	v.SetDefault("yahoo.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("yahoo.timeout", "10s")
	v.SetDefault("yahoo.max_request_per_minute", 120)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.timeout", "20s")
	v.SetDefault("gemini.news_per_call", 8)

	v.SetDefault("market.quote_timeout", "5s")
	v.SetDefault("market.quote_cache_ttl", "60s")
	v.SetDefault("market.max_concurrency", 8)

	v.SetDefault("cache.bar_ttl", "5m")
	v.SetDefault("cache.namespace", "bars")
	v.SetDefault("cache.refresh_hour", 22)

	v.SetDefault("scheduler.session_cleanup_spec", "@every 1h")
	v.SetDefault("scheduler.ingest_spec", "0 22 * * 1-5")
	v.SetDefault("scheduler.ingest_enabled", false)

	v.SetDefault("ingest.requests_per_minute", 8)
	v.SetDefault("ingest.output_size", 365)
	v.SetDefault("ingest.timeout", "5m")
	v.SetDefault("ingest.catalog_file", "configs/stocks.yaml")
	v.SetDefault("ingest.data_dir", "data")
}

// Load reads configuration. path may point at a YAML file; when empty, configs/config.yaml
// and ./config.yaml are tried. A missing file is not an error: defaults and env still apply.
// Environment variables override file values with "." replaced by "_" (db.host -> DB_HOST).
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("configs")
		v.AddConfigPath(".")
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
