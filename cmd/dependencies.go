package cmd

import (
	"context"
	"wise-investing/config"
	"wise-investing/internal/repository"
	"wise-investing/internal/service"
	"wise-investing/pkg/cache"
	"wise-investing/pkg/logger"
	"wise-investing/pkg/postgres"
	"wise-investing/pkg/telegram"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gopkg.in/telebot.v3"
)

type AppDependency struct {
	db          *postgres.DB
	cfg         *config.Config
	log         *logger.Logger
	validator   *goValidator.Validate
	echo        *echo.Echo
	cache       cache.Cache
	telegram    *telegram.TelegramRateLimiter
	telegramBot *telebot.Bot
}

func NewAppDependency(ctx context.Context) (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding,
		logger.WithTelegramAlert(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID))
	if err != nil {
		return nil, err
	}

	db, err := postgres.NewDB(cfg.DB, log)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return nil, err
	}

	// updates arrive through the webhook route, handlers run inside the request
	pref := telebot.Settings{
		Token:       cfg.Telegram.BotToken,
		Synchronous: true,
		OnError: func(err error, c telebot.Context) {
			log.Error("Telegram bot error", zap.Error(err))
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.Error("Failed to create telegram bot", zap.Error(err))
		_ = db.Close()
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	return &AppDependency{
		cfg:         cfg,
		log:         log,
		validator:   goValidator.New(),
		db:          db,
		echo:        e,
		cache:       cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval),
		telegram:    telegram.NewTelegramRateLimiter(&cfg.Telegram, log, bot),
		telegramBot: bot,
	}, nil
}

// Services wires repositories and services on top of the dependencies.
func (d *AppDependency) Services() *service.Service {
	repo := repository.NewRepository(d.cfg, d.db.DB, d.log)
	return service.NewService(d.cfg, d.log, repo, d.cache, d.telegram)
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	_ = d.log.Sync()
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
