package report

import (
	"fmt"
	"math"
)

// FormatDuration renders seconds as "45s", "2m 5s" or "1h 3m".
func FormatDuration(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", RoundHalfUp(seconds))
	case seconds < 3600:
		minutes := int(seconds / 60)
		return fmt.Sprintf("%dm %ds", minutes, RoundHalfUp(math.Mod(seconds, 60)))
	default:
		hours := int(seconds / 3600)
		minutes := int(math.Mod(seconds, 3600) / 60)
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
}

// Percentage returns part/total as a rounded percentage, or 0 when total is 0.
func Percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return RoundHalfUp(float64(part) / float64(total) * 100)
}
