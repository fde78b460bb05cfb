package filter

import (
	"testing"
	"time"

	"github.com/xolan/worklog/internal/entry"
)

var ts = time.Date(2024, 3, 4, 9, 30, 0, 0, time.Local)

func sampleEntries() []entry.Entry {
	return []entry.Entry{
		entry.New(ts, "打印机维护", ""),
		entry.New(ts, entry.OtherCategory, "Move the server rack"),
		entry.New(ts, "网络设备维护", ""),
		entry.New(ts, entry.OtherCategory, "装系统"),
	}
}

func TestNewFilter(t *testing.T) {
	f := NewFilter("  rack ", []string{" 打印机维护 ", "", "网络设备维护"})

	if f.Keyword != "rack" {
		t.Errorf("Keyword = %q, expected %q", f.Keyword, "rack")
	}
	if len(f.Categories) != 2 || f.Categories[0] != "打印机维护" || f.Categories[1] != "网络设备维护" {
		t.Errorf("Categories = %v, expected trimmed non-empty categories", f.Categories)
	}
}

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		name     string
		filter   *Filter
		expected bool
	}{
		{"nil filter", nil, true},
		{"zero filter", &Filter{}, true},
		{"blank inputs", NewFilter("  ", []string{" "}), true},
		{"keyword", NewFilter("rack", nil), false},
		{"category", NewFilter("", []string{"打印机维护"}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.IsEmpty(); got != tt.expected {
				t.Errorf("IsEmpty() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	entries := sampleEntries()

	tests := []struct {
		name     string
		filter   *Filter
		expected []bool
	}{
		{"empty filter matches all", NewFilter("", nil), []bool{true, true, true, true}},
		{"keyword is case-insensitive", NewFilter("RACK", nil), []bool{false, true, false, false}},
		{"keyword matches category", NewFilter("网络", nil), []bool{false, false, true, false}},
		{"single category", NewFilter("", []string{"打印机维护"}), []bool{true, false, false, false}},
		{"categories are OR", NewFilter("", []string{"打印机维护", "网络设备维护"}), []bool{true, false, true, false}},
		{"category and keyword are AND", NewFilter("系统", []string{entry.OtherCategory}), []bool{false, false, false, true}},
		{"no match", NewFilter("nothing", nil), []bool{false, false, false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, e := range entries {
				if got := tt.filter.Matches(e); got != tt.expected[i] {
					t.Errorf("Matches(%s) = %v, expected %v", e, got, tt.expected[i])
				}
			}
		})
	}
}

func TestMatchesCategory_NormalizesEntry(t *testing.T) {
	f := NewFilter("", []string{"打印机维护"})
	if !f.MatchesCategory(entry.New(ts, " 打印机维护\t", "")) {
		t.Error("MatchesCategory() should ignore surrounding whitespace in the stored category")
	}
}

func TestFilterEntries(t *testing.T) {
	entries := sampleEntries()

	all := FilterEntries(entries, nil)
	if len(all) != len(entries) {
		t.Errorf("FilterEntries(nil) returned %d entries, expected %d", len(all), len(entries))
	}

	other := FilterEntries(entries, NewFilter("", []string{entry.OtherCategory}))
	if len(other) != 2 {
		t.Fatalf("FilterEntries(Other) returned %d entries, expected 2", len(other))
	}
	if other[0].Content != "Move the server rack" || other[1].Content != "装系统" {
		t.Errorf("FilterEntries() changed the order: %v", other)
	}

	none := FilterEntries(entries, NewFilter("nothing", nil))
	if none == nil || len(none) != 0 {
		t.Errorf("FilterEntries() with no matches = %v, expected empty non-nil slice", none)
	}
}
