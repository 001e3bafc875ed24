package common

const (
	KEY_QUOTE = "quote:%s"
)

const (
	WATCHLIST_GENERAL   = "general"
	WATCHLIST_PORTFOLIO = "portfolio"
)

func GetDefaultWatchlistNames() []string {
	return []string{
		WATCHLIST_GENERAL,
		WATCHLIST_PORTFOLIO,
	}
}

const (
	KEY_LOG_HOOK_SEND_ALERT = "send_alert"
)
