// Package service provides the business logic layer for the worklog application.
// It wraps the log store, the statistics engine, the configuration and the
// entry server, providing one API for both the CLI and the TUI.
package service

import (
	"time"

	"github.com/xolan/worklog/internal/entry"
	"github.com/xolan/worklog/internal/stats"
	"github.com/xolan/worklog/internal/storage"
)

// ListResult contains the results of listing entries
type ListResult struct {
	Entries  []entry.Entry
	Warnings []storage.ParseWarning
	Total    int // Entries in the log before limiting
}

// StatsResult contains category counts for a date range
type StatsResult struct {
	Counts   stats.Counts
	Rows     []stats.Row
	Warnings []storage.ParseWarning
	Period   string // Human-readable period description
	Start    time.Time
	End      time.Time
}

// SearchResult contains search results
type SearchResult struct {
	Entries  []entry.Entry
	Warnings []storage.ParseWarning
	Query    string // The keyword used
	Total    int    // Total matching entries
}
