package service

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xolan/worklog/internal/entry"
)

func TestStatsService_DefaultRange(t *testing.T) {
	services, _ := newTestServices(t)

	start, end := services.Stats.DefaultRange(testNow)
	expectedStart := time.Date(2024, 2, 28, 0, 0, 0, 0, time.Local) // 5 days before March 4, 2024 (leap year)
	if !start.Equal(expectedStart) {
		t.Errorf("start = %v, expected %v", start, expectedStart)
	}
	if end.Year() != 2024 || end.Month() != 3 || end.Day() != 4 || end.Hour() != 23 {
		t.Errorf("end = %v, expected end of March 4", end)
	}
	if services.Stats.DefaultDays() != 5 {
		t.Errorf("DefaultDays() = %d, expected 5", services.Stats.DefaultDays())
	}
}

func TestStatsService_ForRange(t *testing.T) {
	services, clock := newTestServices(t)

	record := func(at time.Time, category, content string) {
		t.Helper()
		clock.Set(at)
		if _, err := services.Entry.Record(category, content); err != nil {
			t.Fatalf("Record() returned unexpected error: %v", err)
		}
	}
	record(testNow.AddDate(0, 0, -10), "会议", "")
	record(testNow, "会议", "")
	record(testNow, "会议", "")
	record(testNow, entry.OtherCategory, "搬机柜")

	start, end := services.Stats.DefaultRange(testNow)
	result, err := services.Stats.ForRange(start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Counts.Total != 3 {
		t.Errorf("Total = %d, expected 3", result.Counts.Total)
	}
	if result.Counts.Count("会议") != 2 {
		t.Errorf("Count(会议) = %d, expected 2", result.Counts.Count("会议"))
	}
	if result.Counts.Count("打印机维护") != 0 {
		t.Errorf("Count(打印机维护) = %d, expected 0", result.Counts.Count("打印机维护"))
	}
	if len(result.Rows) != 4 {
		t.Errorf("expected one row per catalog category, got %d", len(result.Rows))
	}
	if result.Period != "Feb 28 - Mar 4, 2024" {
		t.Errorf("Period = %q", result.Period)
	}
}

func TestStatsService_ForRange_MissingLog(t *testing.T) {
	services, _ := newTestServices(t)

	start, end := services.Stats.DefaultRange(testNow)
	result, err := services.Stats.ForRange(start, end)
	if err != nil {
		t.Fatalf("ForRange() on a missing log returned error: %v", err)
	}
	if !result.Counts.NoData() {
		t.Error("expected NoData() for a missing log")
	}
}

func TestStatsService_ForRange_StartAfterEnd(t *testing.T) {
	services, _ := newTestServices(t)
	if _, err := services.Entry.Record("会议", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := services.Stats.ForRange(testNow, testNow.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Counts.NoData() || len(result.Rows) != 0 {
		t.Errorf("expected empty result, got %+v", result.Counts)
	}
}

func TestStatsService_Export(t *testing.T) {
	services, _ := newTestServices(t)
	if _, err := services.Entry.Record("会议", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start, end := services.Stats.DefaultRange(testNow)
	result, err := services.Stats.ForRange(start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := services.Stats.ExportCSV(&buf, result); err != nil {
		t.Fatalf("ExportCSV() returned unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "会议,1,会议1次\r\n") {
		t.Errorf("CSV export missing 会议 row: %q", buf.String())
	}

	path := filepath.Join(t.TempDir(), "stats.xlsx")
	if err := services.Stats.ExportXLSX(path, result); err != nil {
		t.Fatalf("ExportXLSX() returned unexpected error: %v", err)
	}

	if err := services.Stats.ExportXLSX(path, nil); err == nil {
		t.Error("expected error exporting a nil result")
	}
}

func TestStatsService_DefaultExportPath(t *testing.T) {
	services, _ := newTestServices(t)

	path := services.Stats.DefaultExportPath()
	if filepath.Base(path) != DefaultExportName {
		t.Errorf("DefaultExportPath() = %q, expected file %q", path, DefaultExportName)
	}
	if filepath.Dir(path) != filepath.Dir(services.Entry.LogPath()) {
		t.Errorf("DefaultExportPath() = %q, expected it next to the log", path)
	}
}

func TestFormatDateRangeForDisplay(t *testing.T) {
	tests := []struct {
		start, end time.Time
		expected   string
	}{
		{testNow, testNow, "Mon, Mar 4, 2024"},
		{testNow.AddDate(0, 0, -3), testNow, "Mar 1 - Mar 4, 2024"},
		{time.Date(2023, 12, 30, 0, 0, 0, 0, time.Local), testNow, "Dec 30, 2023 - Mar 4, 2024"},
	}

	for _, tt := range tests {
		if got := formatDateRangeForDisplay(tt.start, tt.end); got != tt.expected {
			t.Errorf("formatDateRangeForDisplay() = %q, expected %q", got, tt.expected)
		}
	}
}
