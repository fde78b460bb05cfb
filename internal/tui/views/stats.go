package views

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xolan/worklog/internal/service"
	"github.com/xolan/worklog/internal/timeutil"
	"github.com/xolan/worklog/internal/tui/ui"
)

// StatsModel is the model for the stats view
type StatsModel struct {
	services *service.Services
	styles   ui.Styles
	keys     ui.KeyMap
	now      func() time.Time

	// UI state
	width  int
	height int
	result *service.StatsResult
	err    error
	notice notice

	// Date range inputs
	editing    bool
	focused    int // 0 = from, 1 = to
	fromInput  textinput.Model
	toInput    textinput.Model
	start, end time.Time
}

// NewStatsModel creates a new stats view model opened on the default range
func NewStatsModel(services *service.Services, styles ui.Styles, keys ui.KeyMap) StatsModel {
	newDateInput := func(prompt string) textinput.Model {
		ti := textinput.New()
		ti.Prompt = prompt
		ti.Placeholder = "YYYY-MM-DD"
		ti.CharLimit = 10
		ti.Width = 12
		return ti
	}

	m := StatsModel{
		services:  services,
		styles:    styles,
		keys:      keys,
		now:       time.Now,
		fromInput: newDateInput("From: "),
		toInput:   newDateInput("To:   "),
	}
	m.resetRange()
	return m
}

// statsLoadedMsg is sent when stats are loaded
type statsLoadedMsg struct {
	result *service.StatsResult
	err    error
}

// statsExportedMsg is sent after an xlsx export attempt
type statsExportedMsg struct {
	path string
	err  error
}

// Init implements tea.Model
func (m StatsModel) Init() tea.Cmd {
	return m.loadStats()
}

// Update implements tea.Model
func (m StatsModel) Update(msg tea.Msg) (StatsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.handleRangeInput(msg)
		}

		switch {
		case key.Matches(msg, m.keys.EditRange):
			m.editing = true
			m.focused = 0
			m.notice = notice{}
			m.fromInput.Focus()
			m.toInput.Blur()
			return m, textinput.Blink
		case key.Matches(msg, m.keys.Refresh), key.Matches(msg, m.keys.Select):
			return m, m.loadStats()
		case key.Matches(msg, m.keys.Export):
			return m, m.export()
		}

	case statsLoadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.result = msg.result
		}
		return m, nil

	case statsExportedMsg:
		if msg.err != nil {
			m.notice = errNotice("Export failed: %v", msg.err)
		} else {
			m.notice = okNotice("Exported to %s", msg.path)
		}
		return m, nil

	case ui.EntriesChangedMsg:
		return m, m.loadStats()

	case ui.ThemeChangedMsg:
		m.styles = msg.Styles
		return m, nil
	}

	if !m.editing {
		return m, nil
	}
	var cmd tea.Cmd
	if m.focused == 0 {
		m.fromInput, cmd = m.fromInput.Update(msg)
	} else {
		m.toInput, cmd = m.toInput.Update(msg)
	}
	return m, cmd
}

// handleRangeInput handles key events while the from/to inputs are focused
func (m StatsModel) handleRangeInput(msg tea.KeyMsg) (StatsModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		start, err := timeutil.ParseDate(strings.TrimSpace(m.fromInput.Value()))
		if err != nil {
			m.notice = errNotice("From: %v", err)
			return m, nil
		}
		end, err := timeutil.ParseDate(strings.TrimSpace(m.toInput.Value()))
		if err != nil {
			m.notice = errNotice("To: %v", err)
			return m, nil
		}
		m.start, m.end = start, end
		m.notice = notice{}
		m.stopEditing()
		return m, m.loadStats()
	case tea.KeyEsc:
		m.fromInput.SetValue(timeutil.FormatDate(m.start))
		m.toInput.SetValue(timeutil.FormatDate(m.end))
		m.notice = notice{}
		m.stopEditing()
		return m, nil
	case tea.KeyTab, tea.KeyShiftTab:
		m.focused = 1 - m.focused
		if m.focused == 0 {
			m.toInput.Blur()
			m.fromInput.Focus()
		} else {
			m.fromInput.Blur()
			m.toInput.Focus()
		}
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	if m.focused == 0 {
		m.fromInput, cmd = m.fromInput.Update(msg)
	} else {
		m.toInput, cmd = m.toInput.Update(msg)
	}
	return m, cmd
}

func (m *StatsModel) stopEditing() {
	m.editing = false
	m.fromInput.Blur()
	m.toInput.Blur()
}

// resetRange sets the range to the configured default ending today
func (m *StatsModel) resetRange() {
	m.start, m.end = m.services.Stats.DefaultRange(m.now())
	m.fromInput.SetValue(timeutil.FormatDate(m.start))
	m.toInput.SetValue(timeutil.FormatDate(m.end))
}

// Range returns the date range the table is computed for.
func (m StatsModel) Range() (start, end time.Time) {
	return m.start, m.end
}

// View implements tea.Model
func (m StatsModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.ViewTitle.Render("Statistics by Category"))
	b.WriteString("\n")
	b.WriteString(m.renderRangeInputs())
	b.WriteString("\n\n")

	if n := m.notice.render(m.styles); n != "" {
		b.WriteString(n)
		b.WriteString("\n\n")
	}

	switch {
	case m.err != nil:
		b.WriteString(m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err)))
	case m.result == nil:
		b.WriteString(m.styles.StatLabel.Render("Press r to compute"))
	case m.result.Start.After(m.result.End):
		b.WriteString(m.styles.Warning.Render("The start date is after the end date"))
	default:
		b.WriteString(m.renderTable())
	}

	return b.String()
}

func (m StatsModel) renderRangeInputs() string {
	from, to := m.styles.Input, m.styles.Input
	if m.editing {
		if m.focused == 0 {
			from = m.styles.InputFocused
		} else {
			to = m.styles.InputFocused
		}
	}
	return from.Render(m.fromInput.View()) + " " + to.Render(m.toInput.View())
}

func (m StatsModel) renderTable() string {
	var b strings.Builder

	b.WriteString(m.styles.StatLabel.Render(m.result.Period))
	b.WriteString("\n")
	b.WriteString(m.styles.TableHeader.Render(fill("Category", categoryWidth) + "  " + fillLeft("Count", 5) + "  Archive"))
	b.WriteString("\n")

	for _, row := range m.result.Rows {
		count := m.styles.Count
		if row.Count == 0 {
			count = m.styles.CountZero
		}
		b.WriteString(fill(row.Category, categoryWidth))
		b.WriteString("  ")
		b.WriteString(count.Render(fillLeft(strconv.Itoa(row.Count), 5)))
		b.WriteString("  ")
		b.WriteString(m.styles.StatLabel.Render(row.Archive))
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat("─", categoryWidth+20))
	b.WriteString("\n")
	total := m.result.Counts.Total
	b.WriteString(fmt.Sprintf("Total: %d %s", total, pluralize("entry", total)))

	if m.result.Counts.NoData() {
		b.WriteString("\n")
		b.WriteString(m.styles.Warning.Render("No entries in this range"))
	}
	if n := len(m.result.Warnings); n > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.Warning.Render(fmt.Sprintf("%d corrupted %s skipped", n, pluralize("row", n))))
	}
	return b.String()
}

// SetSize sets the view dimensions
func (m *StatsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// IsInputMode returns true when the view is capturing keyboard input
func (m StatsModel) IsInputMode() bool {
	return m.editing
}

// loadStats creates a command to load stats
func (m StatsModel) loadStats() tea.Cmd {
	start, end := m.start, m.end
	return func() tea.Msg {
		result, err := m.services.Stats.ForRange(start, end)
		return statsLoadedMsg{result: result, err: err}
	}
}

// export creates a command writing the current table to the default workbook
func (m StatsModel) export() tea.Cmd {
	result := m.result
	return func() tea.Msg {
		path := m.services.Stats.DefaultExportPath()
		if err := m.services.Stats.ExportXLSX(path, result); err != nil {
			return statsExportedMsg{err: err}
		}
		return statsExportedMsg{path: path}
	}
}
