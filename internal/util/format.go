package util

import (
	"time"

	"github.com/dustin/go-humanize"
)

// FormatDZD renders an amount in Algerian dinars.
// Example: 125000 -> "125,000 DA".
func FormatDZD(amount int64) string {
	return humanize.Comma(amount) + " DA"
}

// TruncateContent shortens a title for notification bodies.
func TruncateContent(title string, maxLength int) string {
	runes := []rune(title)
	if len(runes) <= maxLength {
		return title
	}
	return string(runes[:maxLength]) + "..."
}

func BoolPointer(b bool) *bool {
	return &b
}

func StringPointer(s string) *string {
	return &s
}

func Int64Pointer(i int64) *int64 {
	return &i
}

func TimePointer(t time.Time) *time.Time {
	return &t
}

// StartOfYear returns midnight of January 1st of t's year, in t's location.
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// StartOfMonth returns midnight of the first day of t's month, in t's location.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
