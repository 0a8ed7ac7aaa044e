package logging

import (
	"regexp"
)

const (
	// MaxValueLogLength is the maximum length of a cell value to log
	MaxValueLogLength = 64
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// Pattern to match email addresses
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	// Pattern to match long digit runs (card, account and national ID numbers),
	// optionally grouped by spaces or dashes
	digitRunPattern = regexp.MustCompile(`\d(?:[ -]?\d){8,}`)
)

// SanitizeValue truncates a cell value and masks personal data for logging.
// Use this before logging any value read from an uploaded file.
func SanitizeValue(value string) string {
	if value == "" {
		return ""
	}

	sanitized := emailPattern.ReplaceAllString(value, RedactedText)
	sanitized = digitRunPattern.ReplaceAllString(sanitized, RedactedText)

	return TruncateString(sanitized, MaxValueLogLength)
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
