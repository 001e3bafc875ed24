package dto

// AlertCandidate is a stock whose move from purchase price crossed the alert threshold.
type AlertCandidate struct {
	Stock         EnrichedStock `json:"stock"`
	ChangePercent float64       `json:"change_percent"`
	Message       string        `json:"message"`
}

// UserAlertResult summarizes one user's share of an alert pass.
type UserAlertResult struct {
	UserID          uint     `json:"user_id"`
	StocksEvaluated int      `json:"stocks_evaluated"`
	QuoteFailures   int      `json:"quote_failures"`
	AlertsTriggered int      `json:"alerts_triggered"`
	Symbols         []string `json:"symbols,omitempty"`
	Delivered       bool     `json:"delivered"`
	Errors          []string `json:"errors,omitempty"`
}

type AlertRunResult struct {
	RunID          uint              `json:"run_id"`
	UsersProcessed int               `json:"users_processed"`
	AlertsSent     int               `json:"alerts_sent"`
	Users          []UserAlertResult `json:"users"`
}
