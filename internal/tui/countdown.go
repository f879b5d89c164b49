package tui

import (
	"fmt"
	"math"
	"time"
)

const day = 24 * time.Hour

// formatCountdown renders the time left until the next scheduled fetch.
func formatCountdown(left time.Duration) string {
	switch {
	case left <= 0:
		return refreshingText
	case left >= day:
		return plural(int(left/day), "day")
	case left >= time.Hour:
		return fmt.Sprintf("%dh %dm", int(left/time.Hour), int((left%time.Hour)/time.Minute))
	default:
		minutes := int(left / time.Minute)
		if minutes < 1 {
			minutes = 1
		}
		return plural(minutes, "minute")
	}
}

// formatCooldown renders the manual refresh button label.
func formatCooldown(remaining time.Duration) string {
	if remaining <= 0 {
		return manualReadyLabel
	}
	if remaining < time.Minute {
		return fmt.Sprintf("wait %ds", int(math.Ceil(remaining.Seconds())))
	}
	minutes := int(math.Ceil(remaining.Minutes()))
	if minutes == 1 {
		return "wait 1 min"
	}
	return fmt.Sprintf("wait %d mins", minutes)
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
