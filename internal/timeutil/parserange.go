package timeutil

import (
	"fmt"
	"time"
)

// ParseDateRangeFlags turns the --from/--to/--last flags into an inclusive day range.
//
// --last N selects the N days ending today and cannot be combined with --from or --to.
// Without any flag the range is DaysBack(now, defaultBack). A missing --from defaults
// to defaultBack days before --to; a missing --to defaults to today.
//
// A --from later than --to is not an error: the range is returned as given and
// matches nothing.
func ParseDateRangeFlags(fromStr, toStr string, lastDays, defaultBack int, now time.Time) (start, end time.Time, err error) {
	if lastDays > 0 && (fromStr != "" || toStr != "") {
		return time.Time{}, time.Time{}, fmt.Errorf("cannot use --last with --from or --to")
	}
	if lastDays < 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --last value %d: must be positive", lastDays)
	}

	if lastDays > 0 {
		start, end = LastNDays(now, lastDays)
		return start, end, nil
	}

	end = EndOfDay(now)
	if toStr != "" {
		toDate, err := ParseDate(toStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to date: %w", err)
		}
		end = EndOfDay(toDate)
	}

	if fromStr != "" {
		start, err = ParseDate(fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from date: %w", err)
		}
	} else {
		start, _ = DaysBack(end, defaultBack)
	}

	return start, end, nil
}
