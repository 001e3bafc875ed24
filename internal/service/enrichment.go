package service

import (
	"context"
	"errors"
	"fmt"
	"wise-investing/config"
	"wise-investing/internal/dto"
	"wise-investing/internal/helper"
	"wise-investing/internal/model"
	"wise-investing/internal/repository"
	"wise-investing/pkg/logger"
	"wise-investing/pkg/utils"

	"golang.org/x/sync/errgroup"
)

type EnrichmentService interface {
	// Enrich attaches live market fields to every stock. The returned slice is
	// index-aligned with stocks and always complete; per-stock failures are
	// reported through EnrichResult.Err.
	Enrich(ctx context.Context, stocks []model.Stock) []dto.EnrichResult
	EnrichWatchlists(ctx context.Context, watchlists []model.Watchlist) []dto.EnrichedWatchlist
	GetQuote(ctx context.Context, symbol string) (*dto.Quote, error)
}

type enrichmentService struct {
	cfg        *config.Quote
	log        *logger.Logger
	quoteRepo  repository.QuoteRepository
	quoteCache QuoteCache
}

func NewEnrichmentService(cfg *config.Quote, log *logger.Logger, quoteRepo repository.QuoteRepository, quoteCache QuoteCache) EnrichmentService {
	return &enrichmentService{
		cfg:        cfg,
		log:        log,
		quoteRepo:  quoteRepo,
		quoteCache: quoteCache,
	}
}

// GetQuote resolves a quote through the cache unless bypass is configured.
func (s *enrichmentService) GetQuote(ctx context.Context, symbol string) (*dto.Quote, error) {
	symbol = utils.NormalizeSymbol(symbol)

	if !s.cfg.BypassCache {
		if quote, ok := s.quoteCache.Get(symbol); ok {
			return quote, nil
		}
	}

	quote, err := s.quoteRepo.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if !quote.HasMarketPrice() {
		return nil, fmt.Errorf("%s: %w", symbol, dto.ErrNoMarketPrice)
	}

	if !s.cfg.BypassCache {
		s.quoteCache.Set(symbol, quote)
	}
	return quote, nil
}

func (s *enrichmentService) Enrich(ctx context.Context, stocks []model.Stock) []dto.EnrichResult {
	results := make([]dto.EnrichResult, len(stocks))

	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.MaxConcurrency > 0 {
		g.SetLimit(s.cfg.MaxConcurrency)
	}

	for i := range stocks {
		stock := stocks[i]
		g.Go(func() error {
			results[i] = s.enrichOne(gctx, stock)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *enrichmentService) enrichOne(ctx context.Context, stock model.Stock) (result dto.EnrichResult) {
	result.Stock = dto.NewEnrichedStock(stock)

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("enrich %s: panic: %v", stock.Symbol, r)
			s.log.ErrorContext(ctx, "Recovered panic while enriching stock", logger.StringField("symbol", stock.Symbol), logger.Field("panic", r))
		}
	}()

	quote, err := s.GetQuote(ctx, stock.Symbol)
	if err != nil {
		if errors.Is(err, dto.ErrNoMarketPrice) {
			s.log.WarnContext(ctx, "No market price for stock", logger.StringField("symbol", stock.Symbol), logger.IntField("stock_id", int(stock.ID)))
		} else {
			s.log.ErrorContext(ctx, "Failed to fetch quote", logger.ErrorField(err), logger.StringField("symbol", stock.Symbol), logger.IntField("stock_id", int(stock.ID)))
		}
		result.Err = err
		return result
	}

	applyQuote(&result.Stock, quote)
	return result
}

// applyQuote fills the market fields of stock from quote. Change figures are
// relative to the purchase price when one is recorded, otherwise the provider's
// day change is passed through.
func applyQuote(stock *dto.EnrichedStock, quote *dto.Quote) {
	current := *quote.RegularMarketPrice
	stock.CurrentPrice = utils.ToPointer(current)
	if quote.Currency != "" {
		stock.Currency = utils.ToPointer(quote.Currency)
	}
	// quotes may come from the shared cache, so pointer fields are copied
	stock.MarketCap = dto.CopyFloat(quote.MarketCap)
	stock.FiftyDayAverage = dto.CopyFloat(quote.FiftyDayAverage)
	stock.FiftyDayAverageChange = dto.CopyFloat(quote.FiftyDayAverageChange)
	stock.FiftyDayAverageChangePercent = dto.CopyFloat(quote.FiftyDayAverageChangePercent)
	stock.TwoHundredDayAverage = dto.CopyFloat(quote.TwoHundredDayAverage)
	stock.TwoHundredDayAverageChange = dto.CopyFloat(quote.TwoHundredDayAverageChange)
	stock.TwoHundredDayAverageChangePercent = dto.CopyFloat(quote.TwoHundredDayAverageChangePercent)

	if stock.HasCostBasis() {
		purchase := *stock.PurchasePrice
		stock.Change = utils.ToPointer(helper.CalculateChange(purchase, current))
		stock.ChangePercent = utils.ToPointer(helper.CalculateChangePercent(purchase, current))
		return
	}
	stock.Change = dto.CopyFloat(quote.RegularMarketChange)
	stock.ChangePercent = dto.CopyFloat(quote.RegularMarketChangePercent)
}

func (s *enrichmentService) EnrichWatchlists(ctx context.Context, watchlists []model.Watchlist) []dto.EnrichedWatchlist {
	var stocks []model.Stock
	for _, w := range watchlists {
		stocks = append(stocks, w.Stocks...)
	}

	results := s.Enrich(ctx, stocks)

	enriched := make([]dto.EnrichedWatchlist, 0, len(watchlists))
	offset := 0
	for _, w := range watchlists {
		ew := dto.EnrichedWatchlist{
			ID:     w.ID,
			UserID: w.UserID,
			Name:   w.Name,
			Stocks: make([]dto.EnrichedStock, 0, len(w.Stocks)),
		}
		for i := range w.Stocks {
			ew.Stocks = append(ew.Stocks, results[offset+i].Stock)
		}
		offset += len(w.Stocks)
		enriched = append(enriched, ew)
	}
	return enriched
}
