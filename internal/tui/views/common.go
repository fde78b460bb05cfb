package views

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/xolan/worklog/internal/entry"
	"github.com/xolan/worklog/internal/tui/ui"
)

// categoryWidth is the display width category columns are padded to.
const categoryWidth = 18

// notice is a one-line result shown under a view after an action.
type notice struct {
	text  string
	isErr bool
}

func (n notice) render(styles ui.Styles) string {
	if n.text == "" {
		return ""
	}
	if n.isErr {
		return styles.Error.Render(n.text)
	}
	return styles.Success.Render(n.text)
}

func okNotice(format string, args ...any) notice {
	return notice{text: fmt.Sprintf(format, args...)}
}

func errNotice(format string, args ...any) notice {
	return notice{text: fmt.Sprintf(format, args...), isErr: true}
}

// fill pads s with spaces to width terminal columns. CJK text counts two
// columns per rune.
func fill(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// fillLeft right-aligns s in width terminal columns.
func fillLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}

// RenderEntryLines renders entries oldest first as "time  category  content",
// cutting content to the available width.
func RenderEntryLines(entries []entry.Entry, styles ui.Styles, width int) string {
	if len(entries) == 0 {
		return ""
	}

	contentWidth := width - len(entry.TimestampLayout) - categoryWidth - 4
	if contentWidth < 10 {
		contentWidth = 10
	}

	var b strings.Builder
	for _, e := range entries {
		b.WriteString(styles.EntryTime.Render(e.Timestamp))
		b.WriteString("  ")
		b.WriteString(styles.EntryCategory.Render(fill(e.Category, categoryWidth)))
		if e.Content != "" {
			b.WriteString("  ")
			b.WriteString(styles.EntryContent.Render(runewidth.Truncate(e.Content, contentWidth, "…")))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func pluralize(word string, count int) string {
	if count == 1 {
		return word
	}
	return word + "s"
}
