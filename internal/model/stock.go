package model

import "time"

type Stock struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	WatchlistID         uint      `gorm:"not null;index" json:"watchlist_id"`
	Symbol              string    `gorm:"not null" json:"symbol"`
	Name                string    `gorm:"not null" json:"name"`
	PurchasePrice       *float64  `json:"purchase_price"`
	LastNotifiedPercent *float64  `json:"last_notified_percent"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Stock) TableName() string {
	return "stocks"
}

// HasCostBasis reports whether a positive purchase price is recorded.
func (s Stock) HasCostBasis() bool {
	return s.PurchasePrice != nil && *s.PurchasePrice > 0
}

type GetStockParam struct {
	IDs          []uint
	UserID       *uint
	WatchlistIDs []uint
}

type UpdateStockParam struct {
	Symbol        *string
	Name          *string
	PurchasePrice *float64
}
