package views

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/xolan/worklog/internal/cli"
	"github.com/xolan/worklog/internal/entry"
	"github.com/xolan/worklog/internal/service"
	"github.com/xolan/worklog/internal/tui/ui"
)

// recentCount is how many of the latest entries the record view lists.
const recentCount = 5

// recordMode represents the current mode of the record view
type recordMode int

const (
	recordModeNormal recordMode = iota
	recordModeFilter
	recordModeContent
)

// categoryMatch is a visible row of the category list.
type categoryMatch struct {
	name    string
	index   int   // position in the catalog
	matched []int // byte offsets of fuzzy-matched characters
}

// RecordModel is the model for the record view
type RecordModel struct {
	services *service.Services
	styles   ui.Styles
	keys     ui.KeyMap

	// UI state
	width   int
	height  int
	catalog entry.Catalog
	matches []categoryMatch
	cursor  int
	notice  notice

	// Recent entries
	recent   []entry.Entry
	total    int
	warnings int
	err      error

	mode         recordMode
	filterInput  textinput.Model
	contentInput textinput.Model
}

// NewRecordModel creates a new record view model
func NewRecordModel(services *service.Services, styles ui.Styles, keys ui.KeyMap) RecordModel {
	filterInput := textinput.New()
	filterInput.Placeholder = "Filter categories..."
	filterInput.Prompt = "/ "
	filterInput.CharLimit = 40
	filterInput.Width = 30

	contentInput := textinput.New()
	contentInput.Placeholder = "Describe the work..."
	contentInput.CharLimit = 200
	contentInput.Width = 50

	m := RecordModel{
		services:     services,
		styles:       styles,
		keys:         keys,
		catalog:      services.Entry.Catalog(),
		filterInput:  filterInput,
		contentInput: contentInput,
	}
	m.matches = m.filterCatalog("")
	return m
}

// recentLoadedMsg is sent when the latest entries are loaded
type recentLoadedMsg struct {
	entries  []entry.Entry
	total    int
	warnings int
	err      error
}

// entryRecordedMsg is sent after an append attempt
type entryRecordedMsg struct {
	entry entry.Entry
	err   error
}

// entryUndoneMsg is sent after an undo attempt
type entryUndoneMsg struct {
	entry entry.Entry
	err   error
}

// Init implements tea.Model
func (m RecordModel) Init() tea.Cmd {
	return m.loadRecent()
}

// Update implements tea.Model
func (m RecordModel) Update(msg tea.Msg) (RecordModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case recordModeFilter:
			return m.handleFilterMode(msg)
		case recordModeContent:
			return m.handleContentMode(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Up):
			m.moveCursor(-1)
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.moveCursor(1)
			return m, nil
		case key.Matches(msg, m.keys.Select):
			return m.choose()
		case key.Matches(msg, m.keys.Filter):
			m.mode = recordModeFilter
			m.filterInput.SetValue("")
			m.filterInput.Focus()
			return m, textinput.Blink
		case key.Matches(msg, m.keys.Undo):
			return m, m.undo()
		case key.Matches(msg, m.keys.Refresh):
			return m, m.loadRecent()
		}

	case recentLoadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.recent = msg.entries
			m.total = msg.total
			m.warnings = msg.warnings
		}
		return m, nil

	case entryRecordedMsg:
		if msg.err != nil {
			m.notice = errNotice("%s", describeRecordError(msg.err))
			// Keep the content input open so the text can be fixed.
			return m, nil
		}
		m.notice = okNotice("Recorded: %s", cli.FormatEntry(msg.entry))
		m.leaveInput()
		return m, tea.Batch(m.loadRecent(), entriesChanged)

	case entryUndoneMsg:
		if msg.err != nil {
			m.notice = errNotice("%s", service.DescribeUndoError(msg.err))
			return m, nil
		}
		m.notice = okNotice("Removed: %s (%s)", cli.FormatEntry(msg.entry), msg.entry.Timestamp)
		return m, tea.Batch(m.loadRecent(), entriesChanged)

	case ui.ThemeChangedMsg:
		m.styles = msg.Styles
		return m, nil
	}

	// Cursor blink and other input messages
	var cmd tea.Cmd
	switch m.mode {
	case recordModeFilter:
		m.filterInput, cmd = m.filterInput.Update(msg)
	case recordModeContent:
		m.contentInput, cmd = m.contentInput.Update(msg)
	}
	return m, cmd
}

// handleFilterMode handles key events while the fuzzy filter is focused.
// Letters go to the filter, so only the arrow keys move the cursor.
func (m RecordModel) handleFilterMode(msg tea.KeyMsg) (RecordModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		return m.choose()
	case tea.KeyEsc:
		m.leaveInput()
		return m, nil
	case tea.KeyUp:
		m.moveCursor(-1)
		return m, nil
	case tea.KeyDown:
		m.moveCursor(1)
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.matches = m.filterCatalog(m.filterInput.Value())
	m.cursor = 0
	return m, cmd
}

// handleContentMode handles key events while the Other content input is open
func (m RecordModel) handleContentMode(msg tea.KeyMsg) (RecordModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		content := m.contentInput.Value()
		if strings.TrimSpace(content) == "" {
			m.notice = errNotice("Content is required for %s", entry.OtherCategory)
			return m, nil
		}
		return m, m.record(entry.OtherCategory, content)
	case tea.KeyEsc:
		m.leaveInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.contentInput, cmd = m.contentInput.Update(msg)
	return m, cmd
}

// choose records the selected category, or opens the content input for Other.
func (m RecordModel) choose() (RecordModel, tea.Cmd) {
	category, ok := m.Selected()
	if !ok {
		return m, nil
	}

	if entry.IsOther(category) {
		m.filterInput.Blur()
		m.mode = recordModeContent
		m.contentInput.SetValue("")
		m.contentInput.Focus()
		return m, textinput.Blink
	}
	return m, m.record(category, "")
}

// leaveInput returns to the full list, keeping the cursor on the selected category.
func (m *RecordModel) leaveInput() {
	selected, _ := m.Selected()

	m.mode = recordModeNormal
	m.filterInput.Blur()
	m.filterInput.SetValue("")
	m.contentInput.Blur()
	m.contentInput.SetValue("")
	m.matches = m.filterCatalog("")

	m.cursor = 0
	for i, match := range m.matches {
		if match.name == selected {
			m.cursor = i
			break
		}
	}
}

func (m *RecordModel) moveCursor(delta int) {
	if len(m.matches) == 0 {
		return
	}
	m.cursor = (m.cursor + delta + len(m.matches)) % len(m.matches)
}

// filterCatalog returns the categories matching pattern, best match first.
// An empty pattern lists the whole catalog in order.
func (m RecordModel) filterCatalog(pattern string) []categoryMatch {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		all := make([]categoryMatch, len(m.catalog))
		for i, name := range m.catalog {
			all[i] = categoryMatch{name: name, index: i}
		}
		return all
	}

	found := fuzzy.Find(pattern, m.catalog)
	matches := make([]categoryMatch, len(found))
	for i, f := range found {
		matches[i] = categoryMatch{name: f.Str, index: f.Index, matched: f.MatchedIndexes}
	}
	return matches
}

// Selected returns the category under the cursor.
func (m RecordModel) Selected() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.matches) {
		return "", false
	}
	return m.matches[m.cursor].name, true
}

// View implements tea.Model
func (m RecordModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.ViewTitle.Render("Record Work"))
	b.WriteString("\n")

	if m.mode == recordModeFilter || m.filterInput.Value() != "" {
		b.WriteString(m.filterInput.View())
		b.WriteString("\n\n")
	}

	if len(m.matches) == 0 {
		b.WriteString(m.styles.StatLabel.Render("No category matches"))
		b.WriteString("\n")
	}
	for i, match := range m.visibleMatches() {
		b.WriteString(m.renderCategory(match, i+m.scrollOffset() == m.cursor))
		b.WriteString("\n")
	}

	if m.mode == recordModeContent {
		b.WriteString("\n")
		b.WriteString(m.styles.StatLabel.Render(fmt.Sprintf("%s, what did you do?", entry.OtherCategory)))
		b.WriteString("\n")
		b.WriteString(m.styles.InputFocused.Render(m.contentInput.View()))
		b.WriteString("\n")
		b.WriteString(m.styles.StatLabel.Render("Enter to save, Esc to cancel"))
		b.WriteString("\n")
	}

	if n := m.notice.render(m.styles); n != "" {
		b.WriteString("\n")
		b.WriteString(n)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderRecent())
	return b.String()
}

func (m RecordModel) renderCategory(match categoryMatch, selected bool) string {
	index := m.styles.ItemIndex.Render(fmt.Sprintf("%2d.", match.index+1))

	var name strings.Builder
	if len(match.matched) == 0 {
		name.WriteString(match.name)
	} else {
		hits := make(map[int]bool, len(match.matched))
		for _, i := range match.matched {
			hits[i] = true
		}
		for i, r := range match.name {
			if hits[i] {
				name.WriteString(m.styles.ItemMatch.Render(string(r)))
			} else {
				name.WriteRune(r)
			}
		}
	}

	line := fmt.Sprintf("%s %s", index, name.String())
	if selected {
		return m.styles.ItemSelected.Render("▸ " + line)
	}
	return m.styles.ItemNormal.Render("  " + line)
}

// listHeight is how many categories fit next to the recent entries.
func (m RecordModel) listHeight() int {
	h := m.height - recentCount - 10
	if m.mode != recordModeNormal {
		h -= 4
	}
	if h < 5 {
		h = 5
	}
	return h
}

func (m RecordModel) scrollOffset() int {
	h := m.listHeight()
	if m.height == 0 || len(m.matches) <= h || m.cursor < h {
		return 0
	}
	return min(m.cursor-h+1, len(m.matches)-h)
}

func (m RecordModel) visibleMatches() []categoryMatch {
	if m.height == 0 {
		return m.matches
	}
	start := m.scrollOffset()
	end := min(start+m.listHeight(), len(m.matches))
	return m.matches[start:end]
}

func (m RecordModel) renderRecent() string {
	var b strings.Builder
	b.WriteString(m.styles.StatLabel.Render(fmt.Sprintf("Latest (%d %s in log)", m.total, pluralize("entry", m.total))))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	case len(m.recent) == 0:
		b.WriteString(m.styles.StatLabel.Render("No entries recorded yet"))
		b.WriteString("\n")
	default:
		b.WriteString(RenderEntryLines(m.recent, m.styles, m.width))
	}

	if m.warnings > 0 {
		b.WriteString(m.styles.Warning.Render(fmt.Sprintf("%d corrupted %s skipped, run 'worklog validate'", m.warnings, pluralize("row", m.warnings))))
		b.WriteString("\n")
	}
	return b.String()
}

// SetSize sets the view dimensions
func (m *RecordModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// IsInputMode returns true when the view is capturing keyboard input
func (m RecordModel) IsInputMode() bool {
	return m.mode != recordModeNormal
}

// loadRecent creates a command to load the latest entries
func (m RecordModel) loadRecent() tea.Cmd {
	return func() tea.Msg {
		result, err := m.services.Entry.Recent(recentCount)
		if err != nil {
			return recentLoadedMsg{err: err}
		}
		return recentLoadedMsg{
			entries:  result.Entries,
			total:    result.Total,
			warnings: len(result.Warnings),
		}
	}
}

// record creates a command to append an entry
func (m RecordModel) record(category, content string) tea.Cmd {
	return func() tea.Msg {
		e, err := m.services.Entry.Record(category, content)
		return entryRecordedMsg{entry: e, err: err}
	}
}

// undo creates a command to remove the last entry
func (m RecordModel) undo() tea.Cmd {
	return func() tea.Msg {
		e, err := m.services.Entry.Undo()
		return entryUndoneMsg{entry: e, err: err}
	}
}

func entriesChanged() tea.Msg {
	return ui.EntriesChangedMsg{}
}

func describeRecordError(err error) string {
	var verr *entry.ValidationError
	if errors.As(err, &verr) {
		return "Not recorded: " + verr.Message
	}
	return fmt.Sprintf("Failed to record: %v", err)
}
