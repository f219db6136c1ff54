// Package display holds the derived display fields shared by all console
// screens: currency formatting and the fixed status label/color lookup tables.
package display

import (
	"fmt"
	"strings"
)

// FormatTL formats an amount as Turkish lira with two decimals and
// dot thousands separators (e.g. 1234567.5 -> "1.234.567,50 TL").
func FormatTL(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	s := fmt.Sprintf("%.2f", amount)
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}

	out := b.String() + "," + fracPart + " TL"
	if neg {
		return "-" + out
	}
	return out
}

// Status label tables per resource. These are fixed maps, not derived data:
// every screen renders the same enum the same way.

var marketStatusLabels = map[string]string{
	"open":     "Açık",
	"closed":   "Kapalı",
	"resolved": "Sonuçlandı",
	"paused":   "Durduruldu",
}

var paymentStatusLabels = map[string]string{
	"pending":    "Beklemede",
	"verified":   "Onaylandı",
	"approved":   "Onaylandı",
	"rejected":   "Reddedildi",
	"processing": "İşleniyor",
	"completed":  "Tamamlandı",
}

var disputeStatusLabels = map[string]string{
	"pending":      "Beklemede",
	"under_review": "İncelemede",
	"approved":     "Kabul Edildi",
	"rejected":     "Reddedildi",
	"resolved":     "Çözüldü",
}

var priorityLabels = map[string]string{
	"low":    "Düşük",
	"normal": "Normal",
	"high":   "Yüksek",
	"urgent": "Acil",
}

var marketStatusColors = map[string]string{
	"open":     "green",
	"closed":   "orange",
	"resolved": "blue",
	"paused":   "red",
}

var paymentStatusColors = map[string]string{
	"pending":    "orange",
	"verified":   "green",
	"approved":   "green",
	"rejected":   "red",
	"processing": "blue",
	"completed":  "green",
}

var disputeStatusColors = map[string]string{
	"pending":      "orange",
	"under_review": "blue",
	"approved":     "green",
	"rejected":     "red",
	"resolved":     "green",
}

var priorityColors = map[string]string{
	"low":    "gray",
	"normal": "blue",
	"high":   "orange",
	"urgent": "red",
}

func lookup(table map[string]string, key, fallback string) string {
	if v, ok := table[key]; ok {
		return v
	}
	return fallback
}

// MarketStatusLabel translates a market status enum to display text.
func MarketStatusLabel(status string) string { return lookup(marketStatusLabels, status, status) }

// MarketStatusColor returns the display color for a market status.
func MarketStatusColor(status string) string { return lookup(marketStatusColors, status, "gray") }

// PaymentStatusLabel translates a deposit/withdrawal status to display text.
func PaymentStatusLabel(status string) string { return lookup(paymentStatusLabels, status, status) }

// PaymentStatusColor returns the display color for a deposit/withdrawal status.
func PaymentStatusColor(status string) string { return lookup(paymentStatusColors, status, "gray") }

// DisputeStatusLabel translates a dispute status to display text.
func DisputeStatusLabel(status string) string { return lookup(disputeStatusLabels, status, status) }

// DisputeStatusColor returns the display color for a dispute status.
func DisputeStatusColor(status string) string { return lookup(disputeStatusColors, status, "gray") }

// PriorityLabel translates a dispute priority to display text.
func PriorityLabel(priority string) string { return lookup(priorityLabels, priority, priority) }

// PriorityColor returns the display color for a dispute priority.
func PriorityColor(priority string) string { return lookup(priorityColors, priority, "gray") }
