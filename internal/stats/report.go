package stats

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/xolan/worklog/internal/timeutil"
)

const categoryColumnWidth = 20

// ReportOptions controls WriteReport.
type ReportOptions struct {
	// HideZero omits categories with no occurrences.
	HideZero bool
}

// WriteReport writes counts as a plain text table headed by the day range.
// Category names are padded by display width so CJK names line up.
func WriteReport(w io.Writer, c Counts, start, end time.Time, opts ReportOptions) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Work statistics %s to %s\n", timeutil.FormatDate(start), timeutil.FormatDate(end))
	b.WriteString(strings.Repeat("=", 48))
	b.WriteString("\n")

	if c.NoData() {
		b.WriteString("No entries in this range.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "%s %s  %s\n", runewidth.FillRight("工作类别", categoryColumnWidth), runewidth.FillLeft("次数", 6), "归档统计")
	b.WriteString(strings.Repeat("-", 48))
	b.WriteString("\n")

	for _, row := range c.Rows() {
		if opts.HideZero && row.Count == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s %6d  %s\n", runewidth.FillRight(row.Category, categoryColumnWidth), row.Count, row.Archive)
	}

	b.WriteString(strings.Repeat("-", 48))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %6d\n", runewidth.FillRight("Total", categoryColumnWidth), c.Total)

	_, err := io.WriteString(w, b.String())
	return err
}
