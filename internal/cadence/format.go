package cadence

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pdxmph/hangs-tui/internal/db"
)

var numberWords = []string{
	"one", "two", "three", "four", "five",
	"six", "seven", "eight", "nine", "ten",
}

// FormatHangFrequency renders a frequency as "two weeks" or "12 days"
func FormatHangFrequency(f db.HangFrequency) string {
	unit := string(f.Unit)
	if f.Amount != 1 {
		unit += "s"
	}
	if f.Amount >= 1 && f.Amount <= len(numberWords) {
		return numberWords[f.Amount-1] + " " + unit
	}
	return fmt.Sprintf("%d %s", f.Amount, unit)
}

// FormatTimeSinceLastHang describes a past hang relative to now. A hang late
// last night reads as "yesterday" rather than "9 hours ago".
func FormatTimeSinceLastHang(last, now time.Time) string {
	days := CalendarDaysBetween(last, now)
	switch {
	case days < 1:
		return "today"
	case now.Sub(last) < 24*time.Hour:
		return "yesterday"
	default:
		return humanize.RelTime(last, now, "ago", "from now")
	}
}
