package service

import (
	"fmt"
	"time"

	"github.com/xolan/worklog/internal/filter"
	"github.com/xolan/worklog/internal/storage"
	"github.com/xolan/worklog/internal/timeutil"
)

// SearchService finds entries by category and content
type SearchService struct {
	store *storage.LogStore
}

// NewSearchService creates a new SearchService
func NewSearchService(store *storage.LogStore) *SearchService {
	return &SearchService{store: store}
}

// Search returns the entries matching f, in append order. A zero start or end
// leaves that side of the date range open. Entries with an unreadable
// timestamp only match when no date range is given.
func (s *SearchService) Search(f *filter.Filter, start, end time.Time) (*SearchResult, error) {
	result, err := s.store.ReadAllWithWarnings()
	if err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}

	dated := !start.IsZero() || !end.IsZero()
	if end.IsZero() {
		end = time.Now().AddDate(100, 0, 0)
	}

	matched := filter.FilterEntries(result.Entries, f)
	if dated {
		inRange := matched[:0:0]
		for _, e := range matched {
			t, err := e.Time()
			if err != nil {
				continue
			}
			if timeutil.IsInRange(t, start, end) {
				inRange = append(inRange, e)
			}
		}
		matched = inRange
	}

	query := ""
	if f != nil {
		query = f.Keyword
	}
	return &SearchResult{
		Entries:  matched,
		Warnings: result.Warnings,
		Query:    query,
		Total:    len(matched),
	}, nil
}
