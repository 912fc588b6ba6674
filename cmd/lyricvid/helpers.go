package main

import (
	"fmt"
	"strings"
	"time"
)

func formatSeconds(seconds float64) string {
	return fmt.Sprintf("%.2fs", seconds)
}

func formatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := time.Duration(seconds * float64(time.Second)).Round(10 * time.Millisecond)
	minutes := int(total / time.Minute)
	rest := (total % time.Minute).Seconds()
	return fmt.Sprintf("%02d:%05.2f", minutes, rest)
}

func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(100 * time.Millisecond).String()
}

func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
