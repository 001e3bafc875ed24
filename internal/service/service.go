package service

import (
	"wise-investing/config"
	"wise-investing/internal/contract"
	"wise-investing/internal/repository"
	"wise-investing/pkg/cache"
	"wise-investing/pkg/logger"
)

type Service struct {
	EnrichmentService  EnrichmentService
	AlertService       AlertService
	WatchlistService   WatchlistService
	TelegramBotService TelegramBotService
	SchedulerService   SchedulerService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
	notifier contract.Notifier,
) *Service {
	quoteCache := NewQuoteCache(inmemoryCache, cfg.Quote.CacheTTL)
	enrichmentService := NewEnrichmentService(&cfg.Quote, log, repo.QuoteRepo, quoteCache)
	alertService := NewAlertService(&cfg.Alert, log, repo.UserRepo, repo.WatchlistRepo, repo.StockRepo, repo.AlertRunRepo, enrichmentService, notifier)

	return &Service{
		EnrichmentService:  enrichmentService,
		AlertService:       alertService,
		WatchlistService:   NewWatchlistService(log, repo.UserRepo, repo.WatchlistRepo, repo.StockRepo, repo.UnitOfWork, enrichmentService),
		TelegramBotService: NewTelegramBotService(log, repo.UserRepo, enrichmentService),
		SchedulerService:   NewSchedulerService(&cfg.Scheduler, log, alertService),
	}
}
