// Package cli provides output formatting shared by the command line and the
// terminal UI.
package cli

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/xolan/worklog/internal/entry"
	"github.com/xolan/worklog/internal/filter"
	"github.com/xolan/worklog/internal/storage"
)

// CategoryWidth is the display width category names are padded to in lists.
const CategoryWidth = 18

// FormatEntry formats an entry as "category" or "category: content".
func FormatEntry(e entry.Entry) string {
	if e.Content == "" {
		return e.Category
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Content)
}

// FormatEntryLine formats an entry for a list: timestamp, padded category, content.
// Padding uses display width so CJK category names line up.
func FormatEntryLine(e entry.Entry) string {
	if e.Content == "" {
		return fmt.Sprintf("%s  %s", e.Timestamp, e.Category)
	}
	return fmt.Sprintf("%s  %s  %s", e.Timestamp, runewidth.FillRight(e.Category, CategoryWidth), e.Content)
}

// FormatCorruptionWarning formats a ParseWarning into a human-readable string.
// Content is cut to 50 columns.
func FormatCorruptionWarning(warning storage.ParseWarning) string {
	content := runewidth.Truncate(warning.Content, 50, "...")
	return fmt.Sprintf("  Line %d: %s (error: %s)", warning.LineNumber, content, warning.Error)
}

// BuildPeriodWithFilters appends filter information to the period description.
// Example: "Mar 1 - Mar 4, 2024" -> "Mar 1 - Mar 4, 2024 (其他, "rack")"
func BuildPeriodWithFilters(period string, f *filter.Filter) string {
	if f.IsEmpty() {
		return period
	}

	parts := append([]string(nil), f.Categories...)
	if f.Keyword != "" {
		parts = append(parts, fmt.Sprintf("%q", f.Keyword))
	}
	return fmt.Sprintf("%s (%s)", period, strings.Join(parts, ", "))
}

// Pluralize returns the singular or plural form of a word based on count
func Pluralize(word string, count int) string {
	if count == 1 {
		return word
	}
	if strings.HasSuffix(word, "y") {
		return strings.TrimSuffix(word, "y") + "ies"
	}
	return word + "s"
}

// SpansMultipleDays checks if entries span multiple calendar days
func SpansMultipleDays(entries []entry.Entry) bool {
	if len(entries) < 2 {
		return false
	}
	firstDay := datePart(entries[0].Timestamp)
	for _, e := range entries[1:] {
		if datePart(e.Timestamp) != firstDay {
			return true
		}
	}
	return false
}

// datePart returns the YYYY-MM-DD prefix of a stored timestamp.
func datePart(ts string) string {
	if i := strings.IndexByte(ts, ' '); i >= 0 {
		return ts[:i]
	}
	return ts
}
