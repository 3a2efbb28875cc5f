package metrics

import (
	"fmt"
	"math"
)

// Totals holds the four rolling aggregate figures shown on the dashboard.
type Totals struct {
	Sessions      int64 `json:"sessions"`
	Tokens        int64 `json:"tokens"`
	ActiveSeconds int64 `json:"active_time_seconds"`
	ToolCalls     int64 `json:"tool_calls"`
}

// Add returns the field-wise sum of t and o.
func (t Totals) Add(o Totals) Totals {
	return Totals{
		Sessions:      t.Sessions + o.Sessions,
		Tokens:        t.Tokens + o.Tokens,
		ActiveSeconds: t.ActiveSeconds + o.ActiveSeconds,
		ToolCalls:     t.ToolCalls + o.ToolCalls,
	}
}

// FormatTokenCount returns an abbreviated token count string.
// Examples: "0", "999", "1.0k", "45.2k", "1.5M"
func FormatTokenCount(tokens int64) string {
	if tokens >= 1000000 {
		return oneDecimal(float64(tokens)/1000000) + "M"
	}
	if tokens >= 1000 {
		return oneDecimal(float64(tokens)/1000) + "k"
	}
	return fmt.Sprintf("%d", tokens)
}

// oneDecimal rounds halves away from zero; %.1f alone would round 1.25 to "1.2".
func oneDecimal(v float64) string {
	return fmt.Sprintf("%.1f", math.Floor(v*10+0.5)/10)
}

// FormatDuration returns an abbreviated duration string.
// Examples: "0s", "45s", "2m 5s", "1h", "1h 2m"
func FormatDuration(seconds int64) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	minutes := seconds / 60
	secs := seconds % 60
	if minutes < 60 {
		if secs == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm %ds", minutes, secs)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}
