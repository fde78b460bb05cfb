// Package tui provides the Terminal User Interface for the worklog application.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xolan/worklog/internal/logging"
	"github.com/xolan/worklog/internal/service"
	"github.com/xolan/worklog/internal/tui/ui"
	"github.com/xolan/worklog/internal/tui/views"
)

// Tab represents a view tab
type Tab int

const (
	TabRecord Tab = iota
	TabStats
	TabMobile
)

var tabNames = []string{"Record", "Stats", "Mobile"}

// shutdownTimeout bounds how long quitting waits for the entry server.
const shutdownTimeout = 5 * time.Second

// Model is the root TUI model
type Model struct {
	services *service.Services
	logger   logging.Printer

	// UI state
	activeTab Tab
	width     int
	height    int
	showHelp  bool

	// View models
	recordView views.RecordModel
	statsView  views.StatsModel
	mobileView views.MobileModel

	// Theme and styles
	themeProvider *ui.ThemeProvider
	styles        ui.Styles
	keys          ui.KeyMap
}

// New creates a new TUI model
func New(services *service.Services, logger logging.Printer) Model {
	themeProvider := ui.NewThemeProvider(services.Config.Get().Theme)
	styles := themeProvider.Styles()
	keys := ui.DefaultKeyMap()

	return Model{
		services:      services,
		logger:        logging.OrNop(logger),
		activeTab:     TabRecord,
		themeProvider: themeProvider,
		styles:        styles,
		keys:          keys,
		recordView:    views.NewRecordModel(services, styles, keys),
		statsView:     views.NewStatsModel(services, styles, keys),
		mobileView:    views.NewMobileModel(services, styles, keys),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.recordView.Init(),
		m.statsView.Init(),
		m.mobileView.Init(),
		waitForServerEvent(m.services.Server),
	}

	if cfg := m.services.Config.Get(); cfg.AutoStartServer {
		m.logger.Printf("tui: entry server auto-start in %s", cfg.AutoStartDelay.Std())
		cmds = append(cmds, tea.Tick(cfg.AutoStartDelay.Std(), func(time.Time) tea.Msg {
			return ui.AutoStartMsg{}
		}))
	}
	return tea.Batch(cmds...)
}

// waitForServerEvent blocks on the next entry server notification.
func waitForServerEvent(server *service.ServerService) tea.Cmd {
	return func() tea.Msg {
		return ui.ServerEventMsg{Event: <-server.Events()}
	}
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// A view taking text input gets every key, Esc hands control back.
		if m.isInputMode() {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.Theme):
			return m.applyTheme(m.themeProvider.NextTheme())

		case key.Matches(msg, m.keys.NextTab):
			m.activeTab = Tab((int(m.activeTab) + 1) % len(tabNames))
			return m, nil

		case key.Matches(msg, m.keys.PrevTab):
			m.activeTab = Tab((int(m.activeTab) - 1 + len(tabNames)) % len(tabNames))
			return m, nil

		case key.Matches(msg, m.keys.Tab1):
			m.activeTab = TabRecord
			return m, nil

		case key.Matches(msg, m.keys.Tab2):
			m.activeTab = TabStats
			return m, nil

		case key.Matches(msg, m.keys.Tab3):
			m.activeTab = TabMobile
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		contentHeight := m.height - 4 // tabs and status bar
		m.recordView.SetSize(m.width, contentHeight)
		m.statsView.SetSize(m.width, contentHeight)
		m.mobileView.SetSize(m.width, contentHeight)
		return m, nil

	case ui.ServerEventMsg:
		m.logger.Printf("tui: entry server %s %s", msg.Event.Kind, msg.Event.URL)
		m.mobileView, cmd = m.mobileView.Update(msg)
		return m, tea.Batch(cmd, waitForServerEvent(m.services.Server))

	case ui.AutoStartMsg:
		m.mobileView, cmd = m.mobileView.Update(msg)
		return m, cmd

	case ui.EntriesChangedMsg:
		m.statsView, cmd = m.statsView.Update(msg)
		return m, cmd
	}

	return m.routeMessage(msg)
}

// routeMessage hands keys to the active view and every other message to
// the view that owns it. Views ignore messages that are not theirs.
func (m Model) routeMessage(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if _, isKey := msg.(tea.KeyMsg); isKey {
		switch m.activeTab {
		case TabRecord:
			m.recordView, cmd = m.recordView.Update(msg)
		case TabStats:
			m.statsView, cmd = m.statsView.Update(msg)
		case TabMobile:
			m.mobileView, cmd = m.mobileView.Update(msg)
		}
		return m, cmd
	}

	var cmds [3]tea.Cmd
	m.recordView, cmds[0] = m.recordView.Update(msg)
	m.statsView, cmds[1] = m.statsView.Update(msg)
	m.mobileView, cmds[2] = m.mobileView.Update(msg)
	return m, tea.Batch(cmds[:]...)
}

// applyTheme restyles every view and stores the theme in the config file
func (m Model) applyTheme(name string) (tea.Model, tea.Cmd) {
	m.styles = m.themeProvider.Styles()

	themeMsg := ui.ThemeChangedMsg{ThemeName: name, Styles: m.styles}
	m.recordView, _ = m.recordView.Update(themeMsg)
	m.statsView, _ = m.statsView.Update(themeMsg)
	m.mobileView, _ = m.mobileView.Update(themeMsg)

	return m, m.saveThemeConfig(name)
}

// saveThemeConfig saves the theme to the config file
func (m Model) saveThemeConfig(themeName string) tea.Cmd {
	services, logger := m.services, m.logger
	return func() tea.Msg {
		if err := services.Config.Set("theme", themeName); err != nil {
			logger.Printf("tui: save theme %s: %v", themeName, err)
		}
		return nil
	}
}

// View implements tea.Model
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.styles.App.Render(m.renderHelp())
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	switch m.activeTab {
	case TabRecord:
		b.WriteString(m.recordView.View())
	case TabStats:
		b.WriteString(m.statsView.View())
	case TabMobile:
		b.WriteString(m.mobileView.View())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	return m.styles.App.Render(b.String())
}

// renderTabs renders the tab bar
func (m Model) renderTabs() string {
	var tabs []string
	for i, name := range tabNames {
		if Tab(i) == m.activeTab {
			tabs = append(tabs, m.styles.TabActive.Render(name))
		} else {
			tabs = append(tabs, m.styles.TabInactive.Render(name))
		}
	}
	return m.styles.TabBar.Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

// renderStatusBar renders the status bar at the bottom
func (m Model) renderStatusBar() string {
	var parts []string

	if m.isInputMode() {
		if m.activeTab == TabStats {
			parts = append(parts, m.renderKeyHelp("Tab", "switch field"))
		}
		parts = append(parts, m.renderKeyHelp("Enter", "confirm"))
		parts = append(parts, m.renderKeyHelp("Esc", "cancel"))
	} else {
		switch m.activeTab {
		case TabRecord:
			parts = append(parts, m.renderKeyHelp("Enter", "record"))
			parts = append(parts, m.renderKeyHelp("/", "filter"))
			parts = append(parts, m.renderKeyHelp("u", "undo"))
		case TabStats:
			parts = append(parts, m.renderKeyHelp("e", "dates"))
			parts = append(parts, m.renderKeyHelp("r", "refresh"))
			parts = append(parts, m.renderKeyHelp("x", "export"))
		case TabMobile:
			parts = append(parts, m.renderKeyHelp("s", "start/stop"))
			parts = append(parts, m.renderKeyHelp("p", "password"))
			parts = append(parts, m.renderKeyHelp("c", "copy url"))
		}

		parts = append(parts, m.renderKeyHelp("1-3", "views"))
		parts = append(parts, m.renderKeyHelp("?", "help"))
		parts = append(parts, m.renderKeyHelp("q", "quit"))
	}

	content := strings.Join(parts, "  ")
	if padding := m.width - lipgloss.Width(content); padding > 0 {
		content += strings.Repeat(" ", padding)
	}
	return m.styles.StatusBar.Render(content)
}

func (m Model) renderKeyHelp(key, desc string) string {
	return fmt.Sprintf("%s %s", m.styles.StatusKey.Render(key), m.styles.StatusHelp.Render(desc))
}

// renderHelp renders the keyboard reference for the active view
func (m Model) renderHelp() string {
	var help strings.Builder

	help.WriteString(m.styles.ViewTitle.Render("Keyboard Shortcuts"))
	help.WriteString("\n\n")

	help.WriteString(m.styles.StatLabel.Render("Global:"))
	help.WriteString("\n")
	help.WriteString("  Tab/1-3    Switch views\n")
	help.WriteString("  ctrl+t     Next color theme\n")
	help.WriteString("  ?          Toggle help\n")
	help.WriteString("  q          Quit (stops the entry server)\n")
	help.WriteString("\n")

	switch m.activeTab {
	case TabRecord:
		help.WriteString(m.styles.StatLabel.Render("Record:"))
		help.WriteString("\n")
		help.WriteString("  j/k        Navigate categories\n")
		help.WriteString("  Enter      Record the selected category\n")
		help.WriteString("  /          Filter categories\n")
		help.WriteString("  u          Undo the last entry (within a minute)\n")
		help.WriteString("  r          Refresh\n")
	case TabStats:
		help.WriteString(m.styles.StatLabel.Render("Stats:"))
		help.WriteString("\n")
		help.WriteString("  e          Edit the date range\n")
		help.WriteString("  r/Enter    Recompute\n")
		help.WriteString("  x          Export to Excel\n")
	case TabMobile:
		help.WriteString(m.styles.StatLabel.Render("Mobile:"))
		help.WriteString("\n")
		help.WriteString("  s          Start or stop the entry server\n")
		help.WriteString("  p          Change the password\n")
		help.WriteString("  c          Copy the address\n")
	}

	help.WriteString("\n")
	help.WriteString(m.styles.StatLabel.Render(fmt.Sprintf("Theme: %s. Press ? to close", m.themeProvider.CurrentDisplayName())))

	return m.styles.Dialog.Render(help.String())
}

// isInputMode reports whether the active view is capturing keyboard input
func (m Model) isInputMode() bool {
	switch m.activeTab {
	case TabRecord:
		return m.recordView.IsInputMode()
	case TabStats:
		return m.statsView.IsInputMode()
	case TabMobile:
		return m.mobileView.IsInputMode()
	}
	return false
}

// Run starts the TUI application and stops the entry server once it exits.
func Run(services *service.Services, logger logging.Printer) error {
	logger = logging.OrNop(logger)
	p := tea.NewProgram(New(services, logger), tea.WithAltScreen())
	_, err := p.Run()

	if stopErr := shutdown(services.Server); stopErr != nil {
		logger.Printf("tui: stop entry server: %v", stopErr)
		if err == nil {
			err = stopErr
		}
	}
	return err
}

// shutdown stops the entry server and waits for it to finish
func shutdown(server *service.ServerService) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Stop(ctx)
}
