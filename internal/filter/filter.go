package filter

import (
	"strings"

	"github.com/xolan/worklog/internal/entry"
)

// Filter selects log entries by category and content keyword.
// All fields are optional; empty values match all entries.
type Filter struct {
	Keyword    string   // Case-insensitive substring of the entry content
	Categories []string // Entry category must be one of these (OR logic)
}

// NewFilter creates a Filter. Categories are normalised the way the log stores them.
func NewFilter(keyword string, categories []string) *Filter {
	normalized := make([]string, 0, len(categories))
	for _, c := range categories {
		if c = entry.NormalizeCategory(c); c != "" {
			normalized = append(normalized, c)
		}
	}
	return &Filter{
		Keyword:    strings.TrimSpace(keyword),
		Categories: normalized,
	}
}

// IsEmpty returns true if the filter matches all entries.
func (f *Filter) IsEmpty() bool {
	return f == nil || (f.Keyword == "" && len(f.Categories) == 0)
}

// FilterEntries returns the entries matching f, keeping their order.
func FilterEntries(entries []entry.Entry, f *Filter) []entry.Entry {
	if f.IsEmpty() {
		return entries
	}

	filtered := make([]entry.Entry, 0)
	for _, e := range entries {
		if f.Matches(e) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// MatchesKeyword reports whether the keyword occurs in the content or the category.
func (f *Filter) MatchesKeyword(e entry.Entry) bool {
	if f.Keyword == "" {
		return true
	}
	keyword := strings.ToLower(f.Keyword)
	return strings.Contains(strings.ToLower(e.Content), keyword) ||
		strings.Contains(strings.ToLower(e.Category), keyword)
}

// MatchesCategory reports whether the entry's category is one of the filter categories.
func (f *Filter) MatchesCategory(e entry.Entry) bool {
	if len(f.Categories) == 0 {
		return true
	}
	category := entry.NormalizeCategory(e.Category)
	for _, c := range f.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Matches reports whether the entry passes every criterion.
func (f *Filter) Matches(e entry.Entry) bool {
	if f.IsEmpty() {
		return true
	}
	return f.MatchesCategory(e) && f.MatchesKeyword(e)
}
