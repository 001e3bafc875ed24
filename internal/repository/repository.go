package repository

import (
	"wise-investing/config"
	"wise-investing/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	UserRepo      UserRepository
	WatchlistRepo WatchlistRepository
	StockRepo     StockRepository
	AlertRunRepo  AlertRunRepository
	QuoteRepo     QuoteRepository
	UnitOfWork    UnitOfWork
}

func NewRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger) *Repository {
	return &Repository{
		UserRepo:      NewUserRepository(db),
		WatchlistRepo: NewWatchlistRepository(db),
		StockRepo:     NewStockRepository(db),
		AlertRunRepo:  NewAlertRunRepository(db),
		QuoteRepo:     NewYahooFinanceRepository(&cfg.YahooFinance, log),
		UnitOfWork:    NewUnitOfWork(db),
	}
}
