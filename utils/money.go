package utils

import (
	"fmt"
	"math"
	"time"

	"chem-purchase-assistant/models"
)

// FormatYuan formats an amount with the yuan sign and two decimals, e.g. "¥12.50"
func FormatYuan(amount float64) string {
	return "¥" + fmt.Sprintf("%.2f", amount)
}

// FormatAmount formats an order amount. Numbers get two decimals, text is
// shown as sent, and a missing amount shows as 0.00 (no currency sign).
func FormatAmount(amount *models.Amount) string {
	if amount == nil {
		return "0.00"
	}
	if amount.Number != nil {
		return fmt.Sprintf("%.2f", *amount.Number)
	}
	if amount.Text != "" {
		return amount.Text
	}
	return "0.00"
}

// RoundCents rounds to two decimals
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatOrderDate formats a date as "2006-01-02 (Monday)"
func FormatOrderDate(t time.Time) string {
	return fmt.Sprintf("%s (%s)", t.Format("2006-01-02"), t.Weekday().String())
}
