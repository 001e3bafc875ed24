package service

import (
	"fmt"
	"time"
	"wise-investing/internal/dto"
	"wise-investing/pkg/cache"
	"wise-investing/pkg/common"
	"wise-investing/pkg/utils"
)

// QuoteCache keeps recently fetched quotes for a fixed time after insertion.
type QuoteCache interface {
	Get(symbol string) (*dto.Quote, bool)
	Set(symbol string, quote *dto.Quote)
}

type quoteCache struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewQuoteCache(c cache.Cache, ttl time.Duration) QuoteCache {
	return &quoteCache{
		cache: c,
		ttl:   ttl,
	}
}

func quoteKey(symbol string) string {
	return fmt.Sprintf(common.KEY_QUOTE, utils.NormalizeSymbol(symbol))
}

func (q *quoteCache) Get(symbol string) (*dto.Quote, bool) {
	return cache.GetFromCache[*dto.Quote](q.cache, quoteKey(symbol))
}

// Set stores quote unless it has no usable market price.
func (q *quoteCache) Set(symbol string, quote *dto.Quote) {
	if !quote.HasMarketPrice() {
		return
	}
	q.cache.Set(quoteKey(symbol), quote, q.ttl)
}
