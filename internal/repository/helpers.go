package repository

import (
	"time"
)

// timeLayout is the RFC3339 format for storing timestamps in SQLite
const timeLayout = time.RFC3339

// dateLayout is the format for calendar-date columns (no time of day)
const dateLayout = "2006-01-02"

// parseTime parses a timestamp string in RFC3339 format
func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// parseDate parses a calendar-date string
func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// formatTime returns the current time formatted as RFC3339
func formatTime() string {
	return time.Now().Format(timeLayout)
}
