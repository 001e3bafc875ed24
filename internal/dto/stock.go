package dto

import "wise-investing/internal/model"

// EnrichedStock is a stock record with live market fields attached.
// It is built fresh on every read and never persisted.
type EnrichedStock struct {
	ID                                uint     `json:"id"`
	WatchlistID                       uint     `json:"watchlist_id"`
	Symbol                            string   `json:"symbol"`
	Name                              string   `json:"name"`
	PurchasePrice                     *float64 `json:"purchase_price"`
	LastNotifiedPercent               *float64 `json:"last_notified_percent"`
	CurrentPrice                      *float64 `json:"current_price"`
	Currency                          *string  `json:"currency"`
	MarketCap                         *float64 `json:"market_cap"`
	Change                            *float64 `json:"change"`
	ChangePercent                     *float64 `json:"change_percent"`
	FiftyDayAverage                   *float64 `json:"fifty_day_average"`
	FiftyDayAverageChange             *float64 `json:"fifty_day_average_change"`
	FiftyDayAverageChangePercent      *float64 `json:"fifty_day_average_change_percent"`
	TwoHundredDayAverage              *float64 `json:"two_hundred_day_average"`
	TwoHundredDayAverageChange        *float64 `json:"two_hundred_day_average_change"`
	TwoHundredDayAverageChangePercent *float64 `json:"two_hundred_day_average_change_percent"`
}

// NewEnrichedStock copies the persisted fields of a stock; market fields stay absent.
func NewEnrichedStock(stock model.Stock) EnrichedStock {
	return EnrichedStock{
		ID:                  stock.ID,
		WatchlistID:         stock.WatchlistID,
		Symbol:              stock.Symbol,
		Name:                stock.Name,
		PurchasePrice:       CopyFloat(stock.PurchasePrice),
		LastNotifiedPercent: CopyFloat(stock.LastNotifiedPercent),
	}
}

// HasCostBasis reports whether a positive purchase price is recorded.
func (s EnrichedStock) HasCostBasis() bool {
	return s.PurchasePrice != nil && *s.PurchasePrice > 0
}

// EnrichResult is the settled outcome of enriching one stock. Err is set when
// the quote could not be resolved; Stock then carries no market fields.
type EnrichResult struct {
	Stock EnrichedStock
	Err   error
}

type EnrichedWatchlist struct {
	ID     uint            `json:"id"`
	UserID uint            `json:"user_id"`
	Name   string          `json:"name"`
	Stocks []EnrichedStock `json:"stocks"`
}

type StockSummary struct {
	PortfolioStocks int `json:"portfolio_stocks"`
	GeneralStocks   int `json:"general_stocks"`
}

type CreateWatchlistRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

type AddStockRequest struct {
	Symbol        string   `json:"symbol" validate:"required,max=32"`
	Name          string   `json:"name" validate:"required,max=255"`
	WatchlistName string   `json:"watchlist_name" validate:"required"`
	PurchasePrice *float64 `json:"purchase_price" validate:"omitempty,gt=0"`
}

type UpdateStockRequest struct {
	Symbol        *string  `json:"symbol" validate:"omitempty,min=1,max=32"`
	Name          *string  `json:"name" validate:"omitempty,min=1,max=255"`
	PurchasePrice *float64 `json:"purchase_price" validate:"omitempty,gt=0"`
}

type MoveStocksRequest struct {
	StockIDs               []uint `json:"stock_ids"`
	DestinationWatchlistID uint   `json:"destination_watchlist_id"`
}

// CopyFloat returns a pointer to a copy of *v, or nil.
func CopyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
