package repository

import (
	"context"
	"fmt"
	"wise-investing/internal/model"
	"wise-investing/pkg/utils"

	"gorm.io/gorm"
)

type StockRepository interface {
	Get(ctx context.Context, param model.GetStockParam, opts ...utils.DBOption) ([]model.Stock, error)
	Create(ctx context.Context, stock *model.Stock, opts ...utils.DBOption) error
	Update(ctx context.Context, id uint, param model.UpdateStockParam, opts ...utils.DBOption) error
	Delete(ctx context.Context, ids []uint, opts ...utils.DBOption) (int64, error)
	MoveToWatchlist(ctx context.Context, ids []uint, watchlistID uint, opts ...utils.DBOption) (int64, error)
	UpdateLastNotifiedPercent(ctx context.Context, id uint, previous *float64, percent float64, opts ...utils.DBOption) (bool, error)
}

type stockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) query(ctx context.Context, param model.GetStockParam, opts ...utils.DBOption) *gorm.DB {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...).Model(&model.Stock{})

	if len(param.IDs) > 0 {
		tx = tx.Where("stocks.id IN ?", param.IDs)
	}
	if len(param.WatchlistIDs) > 0 {
		tx = tx.Where("stocks.watchlist_id IN ?", param.WatchlistIDs)
	}
	if param.UserID != nil {
		tx = tx.Joins("JOIN watchlists ON watchlists.id = stocks.watchlist_id").
			Where("watchlists.user_id = ?", *param.UserID)
	}
	return tx.Order("stocks.id")
}

func (r *stockRepository) Get(ctx context.Context, param model.GetStockParam, opts ...utils.DBOption) ([]model.Stock, error) {
	if len(param.IDs) == 0 && len(param.WatchlistIDs) == 0 && param.UserID == nil {
		return nil, fmt.Errorf("no filter provided")
	}

	var stocks []model.Stock
	if err := r.query(ctx, param, opts...).Select("stocks.*").Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

func (r *stockRepository) Create(ctx context.Context, stock *model.Stock, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Create(stock).Error
}

func (r *stockRepository) Update(ctx context.Context, id uint, param model.UpdateStockParam, opts ...utils.DBOption) error {
	updates := map[string]interface{}{}
	if param.Symbol != nil {
		updates["symbol"] = *param.Symbol
	}
	if param.Name != nil {
		updates["name"] = *param.Name
	}
	if param.PurchasePrice != nil {
		updates["purchase_price"] = *param.PurchasePrice
	}
	if len(updates) == 0 {
		return nil
	}

	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Model(&model.Stock{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *stockRepository) Delete(ctx context.Context, ids []uint, opts ...utils.DBOption) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := utils.ApplyOptions(r.db.WithContext(ctx), opts...).Where("id IN ?", ids).Delete(&model.Stock{})
	return result.RowsAffected, result.Error
}

func (r *stockRepository) MoveToWatchlist(ctx context.Context, ids []uint, watchlistID uint, opts ...utils.DBOption) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Model(&model.Stock{}).
		Where("id IN ?", ids).
		Update("watchlist_id", watchlistID)
	return result.RowsAffected, result.Error
}

// UpdateLastNotifiedPercent stores the alert marker only if it still holds the
// value the caller evaluated against, so overlapping passes cannot alert twice.
func (r *stockRepository) UpdateLastNotifiedPercent(ctx context.Context, id uint, previous *float64, percent float64, opts ...utils.DBOption) (bool, error) {
	result := lastNotifiedGuard(utils.ApplyOptions(r.db.WithContext(ctx), opts...).Model(&model.Stock{}), id, previous).
		Update("last_notified_percent", percent)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func lastNotifiedGuard(tx *gorm.DB, id uint, previous *float64) *gorm.DB {
	if previous == nil {
		return tx.Where("id = ? AND last_notified_percent IS NULL", id)
	}
	return tx.Where("id = ? AND last_notified_percent = ?", id, *previous)
}
