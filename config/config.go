package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log          Logger         `mapstructure:"logger"`
	DB           Database       `mapstructure:"database"`
	API          API            `mapstructure:"api"`
	Scheduler    Scheduler      `mapstructure:"scheduler"`
	Cache        Cache          `mapstructure:"cache"`
	Quote        Quote          `mapstructure:"quote"`
	YahooFinance YahooFinance   `mapstructure:"yahoo_finance"`
	Alert        Alert          `mapstructure:"alert"`
	Telegram     TelegramConfig `mapstructure:"telegram"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
	MigrationsPath  string `mapstructure:"migrations_path"`
}

type Scheduler struct {
	// AlertCron enables the in-process alert pass when not empty.
	AlertCron       string        `mapstructure:"alert_cron"`
	TimeoutDuration time.Duration `mapstructure:"timeout_duration"`
}

type API struct {
	Port            int       `mapstructure:"port"`
	UserEmailHeader string    `mapstructure:"user_email_header"`
	RateLimit       RateLimit `mapstructure:"rate_limit"`
}

// RateLimit applies per client IP. Rate is requests per second; zero disables it.
type RateLimit struct {
	Rate      float64       `mapstructure:"rate"`
	Burst     int           `mapstructure:"burst"`
	ExpiresIn time.Duration `mapstructure:"expires_in"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type Quote struct {
	BypassCache    bool          `mapstructure:"bypass_cache"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	MaxConcurrency int           `mapstructure:"max_concurrency"`
}

type YahooFinance struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

type Alert struct {
	CronAPIKey       string   `mapstructure:"cron_api_key"`
	ThresholdPercent float64  `mapstructure:"threshold_percent"`
	WatchlistNames   []string `mapstructure:"watchlist_names"`
}

type TelegramConfig struct {
	BotToken                  string        `mapstructure:"bot_token"`
	AdminChatID               string        `mapstructure:"admin_chat_id"`
	WebhookURL                string        `mapstructure:"webhook_url"`
	WebhookSecret             string        `mapstructure:"webhook_secret"`
	TimeoutDuration           time.Duration `mapstructure:"timeout_duration"`
	MaxGlobalRequestPerSecond int           `mapstructure:"max_global_request_per_second"`
	MaxUserRequestPerSecond   int           `mapstructure:"max_user_request_per_second"`
	RatelimitExpireDuration   time.Duration `mapstructure:"ratelimit_expire_duration"`
	RateLimitCleanupDuration  time.Duration `mapstructure:"rate_limit_cleanup_duration"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	// empty defaults register the keys so AutomaticEnv can fill them on Unmarshal
	for _, key := range []string{
		"database.host", "database.user", "database.password", "database.name", "database.time_zone",
		"alert.cron_api_key", "scheduler.alert_cron",
		"telegram.bot_token", "telegram.admin_chat_id", "telegram.webhook_url", "telegram.webhook_secret",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.log_level", "Warn")
	v.SetDefault("database.migrations_path", "file://migrations")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.user_email_header", "X-User-Email")
	v.SetDefault("api.rate_limit.rate", 10)
	v.SetDefault("api.rate_limit.burst", 30)
	v.SetDefault("api.rate_limit.expires_in", 3*time.Minute)
	v.SetDefault("cache.default_expiration", 30*time.Minute)
	v.SetDefault("cache.cleanup_interval", 10*time.Minute)
	v.SetDefault("quote.bypass_cache", false)
	v.SetDefault("quote.cache_ttl", 30*time.Minute)
	v.SetDefault("quote.max_concurrency", 0)
	v.SetDefault("yahoo_finance.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("yahoo_finance.timeout", 10*time.Second)
	v.SetDefault("yahoo_finance.max_request_per_minute", 120)
	v.SetDefault("alert.threshold_percent", 3.0)
	v.SetDefault("alert.watchlist_names", []string{"portfolio"})
	v.SetDefault("scheduler.timeout_duration", 5*time.Minute)
	v.SetDefault("telegram.timeout_duration", 10*time.Second)
	v.SetDefault("telegram.max_global_request_per_second", 30)
	v.SetDefault("telegram.max_user_request_per_second", 1)
	v.SetDefault("telegram.ratelimit_expire_duration", 10*time.Minute)
	v.SetDefault("telegram.rate_limit_cleanup_duration", 5*time.Minute)
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file loaded:", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
