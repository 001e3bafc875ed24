package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"wise-investing/config"
	"wise-investing/internal/dto"
	"wise-investing/pkg/httpclient"
	"wise-investing/pkg/logger"

	"golang.org/x/time/rate"
)

// QuoteRepository resolves live quotes from the market data provider.
type QuoteRepository interface {
	GetQuote(ctx context.Context, symbol string) (*dto.Quote, error)
}

type yahooFinanceRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.YahooFinance
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

var yahooHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "application/json, text/plain, */*",
	"Accept-Language": "en-US,en;q=0.9",
	"Referer":         "https://finance.yahoo.com/",
}

func NewYahooFinanceRepository(cfg *config.YahooFinance, log *logger.Logger) QuoteRepository {
	limit := rate.Inf
	if cfg.MaxRequestPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.MaxRequestPerMinute))
	}

	return &yahooFinanceRepository{
		httpClient:     httpclient.New(cfg.BaseURL, cfg.Timeout, ""),
		cfg:            cfg,
		logger:         log,
		requestLimiter: rate.NewLimiter(limit, 1),
	}
}

func (r *yahooFinanceRepository) GetQuote(ctx context.Context, symbol string) (*dto.Quote, error) {
	if !r.requestLimiter.Allow() {
		r.logger.DebugContext(ctx, "Yahoo Finance request limit reached, waiting",
			logger.IntField("max_request_per_minute", r.cfg.MaxRequestPerMinute),
			logger.StringField("symbol", symbol),
		)
		if err := r.requestLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", dto.ErrQuoteUnavailable, err)
		}
	}

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	var yahooResp dto.YahooQuoteResponse
	resp, err := r.httpClient.Get(ctx, "/v7/finance/quote", map[string]string{"symbols": symbol}, yahooHeaders, &yahooResp)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", dto.ErrQuoteUnavailable, symbol, err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.WarnContext(ctx, "Yahoo Finance API returned Non-OK status",
			logger.StringField("symbol", symbol),
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fmt.Errorf("%w: %s returned status %d", dto.ErrQuoteUnavailable, symbol, resp.StatusCode)
	}

	if apiErr := yahooResp.QuoteResponse.Error; apiErr != nil {
		return nil, fmt.Errorf("%w: %s: %s", dto.ErrQuoteUnavailable, apiErr.Code, apiErr.Description)
	}

	for i := range yahooResp.QuoteResponse.Result {
		quote := yahooResp.QuoteResponse.Result[i]
		if !strings.EqualFold(quote.Symbol, symbol) {
			continue
		}
		if !quote.HasMarketPrice() {
			return nil, fmt.Errorf("%s: %w", symbol, dto.ErrNoMarketPrice)
		}
		return &quote, nil
	}

	return nil, fmt.Errorf("%s: %w", symbol, dto.ErrNoMarketPrice)
}
