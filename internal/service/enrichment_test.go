package service

import (
	"context"
	"errors"
	"testing"
	"time"
	"wise-investing/config"
	"wise-investing/internal/dto"
	"wise-investing/internal/model"
	"wise-investing/pkg/cache"
	"wise-investing/pkg/logger"
	"wise-investing/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestEnrichment(cfg config.Quote, repo *mockQuoteRepo) (EnrichmentService, QuoteCache) {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = time.Minute
	}
	qc := NewQuoteCache(cache.NewCache(time.Minute, time.Minute), cfg.CacheTTL)
	return NewEnrichmentService(&cfg, logger.NewNop(), repo, qc), qc
}

func TestEnrich_ChangeFromPurchasePrice(t *testing.T) {
	repo := &mockQuoteRepo{}
	quote := priceQuote("AAPL", 105)
	quote.RegularMarketChange = utils.ToPointer(0.5)
	quote.RegularMarketChangePercent = utils.ToPointer(0.48)
	quote.MarketCap = utils.ToPointer(2.5e12)
	quote.FiftyDayAverage = utils.ToPointer(101.0)
	repo.On("GetQuote", mock.Anything, "AAPL").Return(quote, nil).Once()

	svc, _ := newTestEnrichment(config.Quote{}, repo)
	stock := model.Stock{ID: 1, Symbol: "AAPL", Name: "Apple", PurchasePrice: utils.ToPointer(100.0)}

	results := svc.Enrich(context.Background(), []model.Stock{stock})
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	got := results[0].Stock
	require.NotNil(t, got.CurrentPrice)
	assert.Equal(t, 105.0, *got.CurrentPrice)
	assert.InDelta(t, 5.0, *got.Change, 1e-9)
	assert.InDelta(t, 5.0, *got.ChangePercent, 1e-9)
	assert.Equal(t, "USD", *got.Currency)
	assert.Equal(t, 2.5e12, *got.MarketCap)
	assert.Equal(t, 101.0, *got.FiftyDayAverage)
	assert.Nil(t, got.TwoHundredDayAverage)
	repo.AssertExpectations(t)
}

func TestEnrich_PassesThroughDayChangeWithoutCostBasis(t *testing.T) {
	repo := &mockQuoteRepo{}
	quote := priceQuote("MSFT", 400)
	quote.RegularMarketChange = utils.ToPointer(-2.0)
	quote.RegularMarketChangePercent = utils.ToPointer(-0.5)
	repo.On("GetQuote", mock.Anything, "MSFT").Return(quote, nil)

	svc, _ := newTestEnrichment(config.Quote{}, repo)

	for _, purchase := range []*float64{nil, utils.ToPointer(0.0)} {
		results := svc.Enrich(context.Background(), []model.Stock{{ID: 2, Symbol: "MSFT", PurchasePrice: purchase}})
		require.NoError(t, results[0].Err)
		assert.Equal(t, -2.0, *results[0].Stock.Change)
		assert.Equal(t, -0.5, *results[0].Stock.ChangePercent)
	}
}

func TestEnrich_PartialFailureIsIsolated(t *testing.T) {
	repo := &mockQuoteRepo{}
	repo.On("GetQuote", mock.Anything, "AAA").Return(priceQuote("AAA", 10), nil)
	repo.On("GetQuote", mock.Anything, "BBB").Return(nil, dto.ErrQuoteUnavailable)
	repo.On("GetQuote", mock.Anything, "CCC").Return(priceQuote("CCC", 30), nil)

	svc, _ := newTestEnrichment(config.Quote{MaxConcurrency: 2}, repo)
	stocks := []model.Stock{
		{ID: 1, Symbol: "AAA", PurchasePrice: utils.ToPointer(5.0)},
		{ID: 2, Symbol: "BBB", PurchasePrice: utils.ToPointer(5.0)},
		{ID: 3, Symbol: "CCC", PurchasePrice: utils.ToPointer(5.0)},
	}

	results := svc.Enrich(context.Background(), stocks)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, 10.0, *results[0].Stock.CurrentPrice)

	assert.ErrorIs(t, results[1].Err, dto.ErrQuoteUnavailable)
	assert.Equal(t, uint(2), results[1].Stock.ID)
	assert.Nil(t, results[1].Stock.CurrentPrice)
	assert.Nil(t, results[1].Stock.ChangePercent)

	assert.NoError(t, results[2].Err)
	assert.Equal(t, 30.0, *results[2].Stock.CurrentPrice)
}

func TestEnrich_DoesNotMutateInput(t *testing.T) {
	repo := &mockQuoteRepo{}
	repo.On("GetQuote", mock.Anything, "AAPL").Return(priceQuote("AAPL", 120), nil)
	svc, _ := newTestEnrichment(config.Quote{}, repo)

	purchase := 100.0
	last := 5.0
	stocks := []model.Stock{{ID: 1, Symbol: "AAPL", PurchasePrice: &purchase, LastNotifiedPercent: &last}}

	results := svc.Enrich(context.Background(), stocks)
	*results[0].Stock.PurchasePrice = 1
	*results[0].Stock.LastNotifiedPercent = 1

	assert.Equal(t, 100.0, *stocks[0].PurchasePrice)
	assert.Equal(t, 5.0, *stocks[0].LastNotifiedPercent)
}

func TestEnrich_RepeatedRunsAreIdentical(t *testing.T) {
	repo := &mockQuoteRepo{}
	quote := priceQuote("AAPL", 105)
	quote.MarketCap = utils.ToPointer(2.5e12)
	quote.TwoHundredDayAverage = utils.ToPointer(98.0)
	repo.On("GetQuote", mock.Anything, "AAPL").Return(quote, nil)
	repo.On("GetQuote", mock.Anything, "MSFT").Return(nil, dto.ErrQuoteUnavailable)
	svc, _ := newTestEnrichment(config.Quote{BypassCache: true}, repo)

	stocks := []model.Stock{
		{ID: 1, Symbol: "AAPL", Name: "Apple", PurchasePrice: utils.ToPointer(100.0)},
		{ID: 2, Symbol: "MSFT", Name: "Microsoft"},
	}

	first := svc.Enrich(context.Background(), stocks)
	second := svc.Enrich(context.Background(), stocks)

	assert.Equal(t, first, second)
	repo.AssertNumberOfCalls(t, "GetQuote", 4)
}

func TestEnrich_ResultsDoNotShareCachedQuote(t *testing.T) {
	repo := &mockQuoteRepo{}
	quote := priceQuote("MSFT", 400)
	quote.MarketCap = utils.ToPointer(3e12)
	quote.RegularMarketChangePercent = utils.ToPointer(1.5)
	repo.On("GetQuote", mock.Anything, "MSFT").Return(quote, nil).Once()
	svc, qc := newTestEnrichment(config.Quote{}, repo)

	results := svc.Enrich(context.Background(), []model.Stock{{ID: 1, Symbol: "MSFT"}})
	require.NoError(t, results[0].Err)
	*results[0].Stock.MarketCap = 1
	*results[0].Stock.ChangePercent = 99

	cached, ok := qc.Get("MSFT")
	require.True(t, ok)
	assert.Equal(t, 3e12, *cached.MarketCap)
	assert.Equal(t, 1.5, *cached.RegularMarketChangePercent)
}

func TestGetQuote_UsesCache(t *testing.T) {
	repo := &mockQuoteRepo{}
	repo.On("GetQuote", mock.Anything, "AAPL").Return(priceQuote("AAPL", 100), nil).Once()
	svc, _ := newTestEnrichment(config.Quote{}, repo)

	for i := 0; i < 3; i++ {
		quote, err := svc.GetQuote(context.Background(), "aapl ")
		require.NoError(t, err)
		assert.Equal(t, 100.0, *quote.RegularMarketPrice)
	}
	repo.AssertNumberOfCalls(t, "GetQuote", 1)
}

func TestGetQuote_BypassCache(t *testing.T) {
	repo := &mockQuoteRepo{}
	repo.On("GetQuote", mock.Anything, "AAPL").Return(priceQuote("AAPL", 100), nil)
	svc, qc := newTestEnrichment(config.Quote{BypassCache: true}, repo)

	for i := 0; i < 3; i++ {
		_, err := svc.GetQuote(context.Background(), "AAPL")
		require.NoError(t, err)
	}
	repo.AssertNumberOfCalls(t, "GetQuote", 3)

	_, cached := qc.Get("AAPL")
	assert.False(t, cached)
}

func TestGetQuote_ExpiredEntryRefetches(t *testing.T) {
	repo := &mockQuoteRepo{}
	repo.On("GetQuote", mock.Anything, "AAPL").Return(priceQuote("AAPL", 100), nil)
	svc, _ := newTestEnrichment(config.Quote{CacheTTL: 50 * time.Millisecond}, repo)

	_, err := svc.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	_, err = svc.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "GetQuote", 1)

	time.Sleep(120 * time.Millisecond)

	_, err = svc.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "GetQuote", 2)
}

func TestGetQuote_EntryServedBeforeExpiry(t *testing.T) {
	repo := &mockQuoteRepo{}
	repo.On("GetQuote", mock.Anything, "AAPL").Return(priceQuote("AAPL", 100), nil)
	svc, _ := newTestEnrichment(config.Quote{CacheTTL: 2 * time.Second}, repo)

	_, err := svc.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	quote, err := svc.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 100.0, *quote.RegularMarketPrice)
	repo.AssertNumberOfCalls(t, "GetQuote", 1)
}

func TestGetQuote_MissingPriceIsNotCached(t *testing.T) {
	repo := &mockQuoteRepo{}
	repo.On("GetQuote", mock.Anything, "XYZ").Return(&dto.Quote{Symbol: "XYZ"}, nil)
	svc, _ := newTestEnrichment(config.Quote{}, repo)

	for i := 0; i < 2; i++ {
		_, err := svc.GetQuote(context.Background(), "XYZ")
		assert.True(t, errors.Is(err, dto.ErrNoMarketPrice))
	}
	repo.AssertNumberOfCalls(t, "GetQuote", 2)
}

func TestEnrichWatchlists_RegroupsByWatchlist(t *testing.T) {
	repo := &mockQuoteRepo{}
	repo.On("GetQuote", mock.Anything, "AAA").Return(priceQuote("AAA", 1), nil)
	repo.On("GetQuote", mock.Anything, "BBB").Return(priceQuote("BBB", 2), nil)
	repo.On("GetQuote", mock.Anything, "CCC").Return(nil, dto.ErrNoMarketPrice)
	svc, _ := newTestEnrichment(config.Quote{}, repo)

	watchlists := []model.Watchlist{
		{ID: 1, Name: "general", Stocks: []model.Stock{{ID: 10, Symbol: "AAA"}, {ID: 11, Symbol: "CCC"}}},
		{ID: 2, Name: "empty"},
		{ID: 3, Name: "portfolio", Stocks: []model.Stock{{ID: 12, Symbol: "BBB"}}},
	}

	got := svc.EnrichWatchlists(context.Background(), watchlists)
	require.Len(t, got, 3)

	require.Len(t, got[0].Stocks, 2)
	assert.Equal(t, 1.0, *got[0].Stocks[0].CurrentPrice)
	assert.Nil(t, got[0].Stocks[1].CurrentPrice)
	assert.Empty(t, got[1].Stocks)
	require.Len(t, got[2].Stocks, 1)
	assert.Equal(t, uint(12), got[2].Stocks[0].ID)
	assert.Equal(t, 2.0, *got[2].Stocks[0].CurrentPrice)
}
