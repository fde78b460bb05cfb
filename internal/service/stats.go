package service

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/xolan/worklog/internal/entry"
	"github.com/xolan/worklog/internal/export"
	"github.com/xolan/worklog/internal/stats"
	"github.com/xolan/worklog/internal/storage"
	"github.com/xolan/worklog/internal/timeutil"
)

// DefaultExportName is the workbook name suggested next to the log file.
const DefaultExportName = "工作统计.xlsx"

// StatsService provides statistics operations
type StatsService struct {
	store       *storage.LogStore
	catalog     entry.Catalog
	defaultDays int
}

// NewStatsService creates a new StatsService. defaultDays is how many days
// before today DefaultRange starts.
func NewStatsService(store *storage.LogStore, catalog entry.Catalog, defaultDays int) *StatsService {
	if len(catalog) == 0 {
		catalog = entry.DefaultCatalog()
	}
	return &StatsService{
		store:       store,
		catalog:     catalog,
		defaultDays: defaultDays,
	}
}

// DefaultRange returns [today - defaultDays, today].
func (s *StatsService) DefaultRange(now time.Time) (start, end time.Time) {
	return timeutil.DaysBack(now, s.defaultDays)
}

// DefaultDays returns how many days before today the default range starts.
func (s *StatsService) DefaultDays() int {
	return s.defaultDays
}

// ForRange counts entries per category for the dates start through end,
// inclusive. A log that does not exist yet yields no data.
func (s *StatsService) ForRange(start, end time.Time) (*StatsResult, error) {
	result, err := s.store.ReadAllWithWarnings()
	if err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}

	counts := stats.ComputeCounts(result.Entries, s.catalog, start, end)
	return &StatsResult{
		Counts:   counts,
		Rows:     counts.Rows(),
		Warnings: result.Warnings,
		Period:   formatDateRangeForDisplay(start, end),
		Start:    start,
		End:      end,
	}, nil
}

// ExportXLSX writes the result table to a workbook at path.
func (s *StatsService) ExportXLSX(path string, result *StatsResult) error {
	if result == nil || len(result.Rows) == 0 {
		return fmt.Errorf("no statistics to export")
	}
	return export.WriteStatsXLSX(path, result.Rows)
}

// ExportCSV writes the result table as CSV.
func (s *StatsService) ExportCSV(w io.Writer, result *StatsResult) error {
	if result == nil {
		return fmt.Errorf("no statistics to export")
	}
	return export.WriteStatsCSV(w, result.Rows)
}

// DefaultExportPath returns the suggested workbook path next to the log file.
func (s *StatsService) DefaultExportPath() string {
	return filepath.Join(filepath.Dir(s.store.Path()), DefaultExportName)
}

// formatDateRangeForDisplay formats a date range for human-readable display
func formatDateRangeForDisplay(start, end time.Time) string {
	if timeutil.SameDay(start, end) {
		return start.Format("Mon, Jan 2, 2006")
	}
	if start.Year() == end.Year() {
		return fmt.Sprintf("%s - %s", start.Format("Jan 2"), end.Format("Jan 2, 2006"))
	}
	return fmt.Sprintf("%s - %s", start.Format("Jan 2, 2006"), end.Format("Jan 2, 2006"))
}
