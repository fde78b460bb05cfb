package entry

import (
	"fmt"
	"time"
)

// TimestampLayout is the on-disk timestamp format (second precision, local time).
const TimestampLayout = "2006-01-02 15:04:05"

// Entry represents a single work log record.
// Timestamp is kept as written so that rows survive a read/write cycle byte-for-byte,
// including rows whose timestamp no longer parses.
type Entry struct {
	Timestamp string
	Category  string
	Content   string
}

// New creates an entry stamped with t formatted in TimestampLayout.
func New(t time.Time, category, content string) Entry {
	return Entry{
		Timestamp: FormatTimestamp(t),
		Category:  category,
		Content:   content,
	}
}

// Time parses the entry timestamp in the local time zone.
func (e Entry) Time() (time.Time, error) {
	return ParseTimestamp(e.Timestamp)
}

// Record returns the entry as a CSV record in column order.
func (e Entry) Record() []string {
	return []string{e.Timestamp, e.Category, e.Content}
}

// String formats the entry for display, e.g. "2024-01-02 09:30:00 打印机维护".
func (e Entry) String() string {
	if e.Content == "" {
		return fmt.Sprintf("%s %s", e.Timestamp, e.Category)
	}
	return fmt.Sprintf("%s %s: %s", e.Timestamp, e.Category, e.Content)
}

// FormatTimestamp formats t as local time in TimestampLayout, dropping sub-second precision.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// ParseTimestamp parses a TimestampLayout string in the local time zone.
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, s, time.Local)
}
