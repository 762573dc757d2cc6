// Package format provides shared formatting utilities.
package format

import (
	"fmt"
	"time"
)

// Percent formats an integer percentage (e.g., "50%").
func Percent(p int) string {
	return fmt.Sprintf("%d%%", p)
}

// Months formats a warranty length (e.g., "1 month", "36 months").
func Months(n int) string {
	if n == 1 {
		return "1 month"
	}
	return fmt.Sprintf("%d months", n)
}

// Duration formats a duration in human-readable form (e.g., "3h 12m", "4d 2h").
func Duration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		return fmt.Sprintf("%dh %dm", h, m)
	}
	days := int(d.Hours()) / 24
	h := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, h)
}
