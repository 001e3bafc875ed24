package dto

// Quote is a point-in-time market snapshot. Optional provider fields are pointers
// so that "absent" and zero stay distinguishable.
type Quote struct {
	Symbol                            string   `json:"symbol"`
	RegularMarketPrice                *float64 `json:"regularMarketPrice"`
	RegularMarketChange               *float64 `json:"regularMarketChange"`
	RegularMarketChangePercent        *float64 `json:"regularMarketChangePercent"`
	Currency                          string   `json:"currency"`
	MarketCap                         *float64 `json:"marketCap"`
	FiftyDayAverage                   *float64 `json:"fiftyDayAverage"`
	FiftyDayAverageChange             *float64 `json:"fiftyDayAverageChange"`
	FiftyDayAverageChangePercent      *float64 `json:"fiftyDayAverageChangePercent"`
	TwoHundredDayAverage              *float64 `json:"twoHundredDayAverage"`
	TwoHundredDayAverageChange        *float64 `json:"twoHundredDayAverageChange"`
	TwoHundredDayAverageChangePercent *float64 `json:"twoHundredDayAverageChangePercent"`
}

// HasMarketPrice reports whether the quote carries a usable price.
func (q *Quote) HasMarketPrice() bool {
	return q != nil && q.RegularMarketPrice != nil && *q.RegularMarketPrice > 0
}

// YahooQuoteResponse is the body of the v7/finance/quote endpoint.
type YahooQuoteResponse struct {
	QuoteResponse struct {
		Result []Quote `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}
