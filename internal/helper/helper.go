package helper

import (
	"math"
	"wise-investing/pkg/utils"
)

// CalculateChange returns current minus purchase, rounded to cents.
func CalculateChange(purchasePrice, currentPrice float64) float64 {
	return utils.RoundTo(currentPrice-purchasePrice, 2)
}

// CalculateChangePercent returns the move from purchase price as a percentage
// rounded to two decimals. purchasePrice must be positive.
func CalculateChangePercent(purchasePrice, currentPrice float64) float64 {
	return utils.RoundTo((currentPrice-purchasePrice)/purchasePrice*100, 2)
}

// AlertBucket is the integer bucket a percentage falls into. -2.5 belongs to -3.
func AlertBucket(percent float64) int {
	return int(math.Floor(percent))
}

// SameAlertBucket reports whether percent was already covered by the last
// notification. An absent marker never matches.
func SameAlertBucket(percent float64, lastNotified *float64) bool {
	if lastNotified == nil {
		return false
	}
	return AlertBucket(percent) == AlertBucket(*lastNotified)
}

// CrossesThreshold reports whether abs(percent) reached threshold.
func CrossesThreshold(percent, threshold float64) bool {
	return math.Abs(percent) >= threshold
}
