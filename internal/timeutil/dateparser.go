package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// DateLayout is the canonical day format used by flags, the stats view and reports.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	"2006/01/02",
	"2006.01.02",
	"20060102",
}

var (
	yearOnlyRe  = regexp.MustCompile(`^\d{4}$`)
	yearMonthRe = regexp.MustCompile(`^\d{4}[-/.]\d{1,2}$`)
	monthDayRe  = regexp.MustCompile(`^\d{1,2}[-/.]\d{1,2}$`)
	tooManyRe   = regexp.MustCompile(`^\d+[-/.]\d+[-/.]\d+[-/.]`)
	unpaddedRe  = regexp.MustCompile(`^(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})$`)
)

// ParseDate parses a calendar date and returns midnight of that day in local time.
//
// Valid inputs:
//   - "2024-01-15"
//   - "2024/01/15", "2024.01.15"
//   - "20240115"
//   - "2024-1-5" (unpadded month and day)
func ParseDate(input string) (time.Time, error) {
	if input == "" {
		return time.Time{}, fmt.Errorf("date cannot be empty (use format YYYY-MM-DD, e.g., 2024-01-15)")
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, input, time.Local); err == nil {
			return t, nil
		}
	}

	if m := unpaddedRe.FindStringSubmatch(input); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		padded := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
		if t, err := time.ParseInLocation(DateLayout, padded, time.Local); err == nil {
			return t, nil
		}
	}

	return time.Time{}, buildDateParseError(input)
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// buildDateParseError creates a helpful error message based on the input pattern
func buildDateParseError(input string) error {
	switch {
	case yearOnlyRe.MatchString(input):
		return fmt.Errorf("incomplete date '%s': missing month and day (use format YYYY-MM-DD, e.g., %s-01-15)", input, input)
	case yearMonthRe.MatchString(input):
		return fmt.Errorf("incomplete date '%s': missing day (use format YYYY-MM-DD, e.g., %s-15)", input, input)
	case monthDayRe.MatchString(input):
		return fmt.Errorf("incomplete date '%s': missing year (use format YYYY-MM-DD, e.g., 2024-%s)", input, input)
	case tooManyRe.MatchString(input):
		return fmt.Errorf("invalid date '%s': too many date parts (use format YYYY-MM-DD)", input)
	default:
		return fmt.Errorf("invalid date format '%s' (use YYYY-MM-DD, e.g., 2024-01-15)", input)
	}
}
