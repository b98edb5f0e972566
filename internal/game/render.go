package game

import (
	"strings"
	"time"
	"unicode"
)

// timerBar renders a fixed-width progress bar for the round countdown.
func timerBar(elapsed, total time.Duration, width int) string {
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > total {
		elapsed = total
	}
	filled := int(float64(elapsed)/float64(total)*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	return "🕒 [" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

// normalizeAnswer lowercases and strips everything but letters and digits, so
// "Shin-Kansen!" matches "shinkansen".
func normalizeAnswer(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
