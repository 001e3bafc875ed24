package repository

import (
	"context"
	"errors"
	"fmt"
	"wise-investing/internal/dto"
	"wise-investing/internal/model"
	"wise-investing/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WatchlistRepository interface {
	Get(ctx context.Context, param model.GetWatchlistParam, opts ...utils.DBOption) ([]model.Watchlist, error)
	GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.Watchlist, error)
	Create(ctx context.Context, watchlist *model.Watchlist, opts ...utils.DBOption) error
	CreateMany(ctx context.Context, watchlists []model.Watchlist, opts ...utils.DBOption) error
	CountByUser(ctx context.Context, userID uint, opts ...utils.DBOption) (int64, error)
}

type watchlistRepository struct {
	db *gorm.DB
}

func NewWatchlistRepository(db *gorm.DB) WatchlistRepository {
	return &watchlistRepository{db: db}
}

func (r *watchlistRepository) query(ctx context.Context, param model.GetWatchlistParam, opts ...utils.DBOption) *gorm.DB {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	if len(param.IDs) > 0 {
		tx = tx.Where("id IN ?", param.IDs)
	}
	if param.UserID != nil {
		tx = tx.Where("user_id = ?", *param.UserID)
	}
	if len(param.Names) > 0 {
		tx = tx.Where("name IN ?", param.Names)
	}
	if param.PreloadStocks {
		tx = tx.Preload("Stocks", func(db *gorm.DB) *gorm.DB {
			return db.Order("stocks.id")
		})
	}
	return tx.Order("id")
}

func (r *watchlistRepository) Get(ctx context.Context, param model.GetWatchlistParam, opts ...utils.DBOption) ([]model.Watchlist, error) {
	if len(param.IDs) == 0 && param.UserID == nil {
		return nil, fmt.Errorf("no filter provided")
	}

	var watchlists []model.Watchlist
	if err := r.query(ctx, param, opts...).Find(&watchlists).Error; err != nil {
		return nil, err
	}
	return watchlists, nil
}

func (r *watchlistRepository) GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.Watchlist, error) {
	var watchlist model.Watchlist
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	if err := tx.First(&watchlist, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("watchlist %d: %w", id, dto.ErrNotFound)
		}
		return nil, err
	}
	return &watchlist, nil
}

func (r *watchlistRepository) Create(ctx context.Context, watchlist *model.Watchlist, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Create(watchlist).Error
}

// CreateMany inserts watchlists, skipping names the user already has.
func (r *watchlistRepository) CreateMany(ctx context.Context, watchlists []model.Watchlist, opts ...utils.DBOption) error {
	if len(watchlists) == 0 {
		return nil
	}
	return skipExistingNames(utils.ApplyOptions(r.db.WithContext(ctx), opts...)).Create(&watchlists).Error
}

func skipExistingNames(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "name"}},
		DoNothing: true,
	})
}

func (r *watchlistRepository) CountByUser(ctx context.Context, userID uint, opts ...utils.DBOption) (int64, error) {
	var count int64
	err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Model(&model.Watchlist{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
