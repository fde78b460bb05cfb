package stats

import (
	"strconv"
	"time"

	"github.com/xolan/worklog/internal/entry"
	"github.com/xolan/worklog/internal/timeutil"
)

// Counts is the per-category occurrence count over a day range.
type Counts struct {
	// Categories lists every reported category: the catalog in its own order,
	// followed by categories found only in the data, in first-seen order.
	Categories []string
	ByCategory map[string]int
	// Total is the number of entries that fell inside the range.
	Total int
}

// NoData reports whether no entry fell inside the range. Zero-count
// catalog categories alone do not count as data.
func (c Counts) NoData() bool {
	return c.Total == 0
}

// Count returns the count for category, zero if it is not present.
func (c Counts) Count(category string) int {
	return c.ByCategory[category]
}

// ComputeCounts counts entries per category for the inclusive day range
// [start, end]. Only the calendar date of start, end and each entry matters.
//
// Rows with an unparseable timestamp are skipped. A start after end yields an
// empty Counts with no categories at all.
func ComputeCounts(entries []entry.Entry, catalog entry.Catalog, start, end time.Time) Counts {
	from := timeutil.StartOfDay(start)
	to := timeutil.EndOfDay(end)

	if from.After(to) {
		return Counts{Categories: []string{}, ByCategory: map[string]int{}}
	}

	counts := Counts{
		Categories: make([]string, 0, len(catalog)),
		ByCategory: make(map[string]int, len(catalog)),
	}
	for _, category := range catalog {
		if _, seen := counts.ByCategory[category]; seen {
			continue
		}
		counts.Categories = append(counts.Categories, category)
		counts.ByCategory[category] = 0
	}

	for _, e := range entries {
		ts, err := e.Time()
		if err != nil {
			continue
		}
		// Compare in the range's location so a date is a date.
		if !timeutil.IsInRange(ts.In(from.Location()), from, to) {
			continue
		}

		category := entry.NormalizeCategory(e.Category)
		if _, seen := counts.ByCategory[category]; !seen {
			counts.Categories = append(counts.Categories, category)
		}
		counts.ByCategory[category]++
		counts.Total++
	}

	return counts
}

// Row is one line of the stats table.
type Row struct {
	Category string
	Count    int
	// Archive is the category and count in the summary form used in
	// filed reports, e.g. "会议3次".
	Archive string
}

// Rows returns the table rows in category order.
func (c Counts) Rows() []Row {
	rows := make([]Row, 0, len(c.Categories))
	for _, category := range c.Categories {
		count := c.ByCategory[category]
		rows = append(rows, Row{
			Category: category,
			Count:    count,
			Archive:  ArchiveText(category, count),
		})
	}
	return rows
}

// ArchiveText formats a category count for a filed report.
func ArchiveText(category string, count int) string {
	return category + strconv.Itoa(count) + "次"
}
