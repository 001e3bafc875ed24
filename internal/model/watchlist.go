package model

import "time"

// Watchlist is a user owned list of stocks. Name doubles as the category
// label ("general", "portfolio" or a custom name).
type Watchlist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Name      string    `gorm:"not null" json:"name"`
	Stocks    []Stock   `gorm:"foreignKey:WatchlistID" json:"stocks"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Watchlist) TableName() string {
	return "watchlists"
}

type GetWatchlistParam struct {
	IDs           []uint
	UserID        *uint
	Names         []string
	PreloadStocks bool
}
