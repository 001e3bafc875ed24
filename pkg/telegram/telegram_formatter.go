package telegram

import (
	"fmt"
	"strings"
)

// FormatPriceChangeAlert formats a purchase-price movement alert for one stock.
func FormatPriceChangeAlert(symbol, name string, purchasePrice, currentPrice, changePercent float64) string {
	var builder strings.Builder

	emoji := "📈"
	if changePercent < 0 {
		emoji = "📉"
	}

	if name != "" {
		builder.WriteString(fmt.Sprintf("%s %s (%s) Alert:\n", emoji, symbol, name))
	} else {
		builder.WriteString(fmt.Sprintf("%s %s Alert:\n", emoji, symbol))
	}
	builder.WriteString(fmt.Sprintf("- Purchase Price: $%.2f\n", purchasePrice))
	builder.WriteString(fmt.Sprintf("- Current Price: $%.2f\n", currentPrice))
	builder.WriteString(fmt.Sprintf("- Change: %.2f%%", changePercent))
	return builder.String()
}

// JoinAlerts aggregates several alerts into a single delivery.
func JoinAlerts(messages []string) string {
	return strings.Join(messages, "\n==========\n")
}

// FormatStockQuote formats the reply of a ticker lookup.
// Nil fields render as N/A.
func FormatStockQuote(ticker string, price float64, changePercent *float64, marketCap *float64) string {
	change := "N/A"
	if changePercent != nil {
		change = fmt.Sprintf("%.2f%%", *changePercent)
	}
	capText := "N/A"
	if marketCap != nil && *marketCap > 0 {
		capText = fmt.Sprintf("$%.2fB", *marketCap/1e9)
	}
	return fmt.Sprintf("📈 %s Stock Price:\n- Current Price: $%.2f\n- Change: %s\n- Market Cap: %s",
		ticker, price, change, capText)
}
