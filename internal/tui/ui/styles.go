package ui

import (
	"github.com/charmbracelet/lipgloss"
	tint "github.com/lrstanley/bubbletint"
)

// Styles contains all the styles used in the TUI
type Styles struct {
	// Base styles
	App lipgloss.Style

	// Tab bar
	TabBar      lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style

	ViewTitle lipgloss.Style

	// Status bar
	StatusBar  lipgloss.Style
	StatusKey  lipgloss.Style
	StatusHelp lipgloss.Style

	// Category list
	ItemSelected lipgloss.Style
	ItemNormal   lipgloss.Style
	ItemIndex    lipgloss.Style
	ItemMatch    lipgloss.Style

	// Recent entries
	EntryTime     lipgloss.Style
	EntryCategory lipgloss.Style
	EntryContent  lipgloss.Style

	// Stats table
	TableHeader lipgloss.Style
	Count       lipgloss.Style
	CountZero   lipgloss.Style

	// Entry server
	ServerRunning lipgloss.Style
	ServerStopped lipgloss.Style
	URL           lipgloss.Style

	StatLabel lipgloss.Style
	StatValue lipgloss.Style

	// Input
	Input        lipgloss.Style
	InputFocused lipgloss.Style

	Dialog lipgloss.Style

	// Errors and warnings
	Error   lipgloss.Style
	Warning lipgloss.Style
	Success lipgloss.Style
}

// palette maps semantic roles to colors.
type palette struct {
	primary   lipgloss.TerminalColor
	secondary lipgloss.TerminalColor
	accent    lipgloss.TerminalColor
	muted     lipgloss.TerminalColor
	success   lipgloss.TerminalColor
	warning   lipgloss.TerminalColor
	err       lipgloss.TerminalColor
	fg        lipgloss.TerminalColor
	bg        lipgloss.TerminalColor
	selection lipgloss.TerminalColor
}

// DefaultStyles returns the styles for a 256-color terminal without a theme
func DefaultStyles() Styles {
	return newStyles(palette{
		primary:   lipgloss.Color("99"),  // Purple
		secondary: lipgloss.Color("39"),  // Cyan
		accent:    lipgloss.Color("212"), // Pink
		muted:     lipgloss.Color("240"), // Gray
		success:   lipgloss.Color("82"),
		warning:   lipgloss.Color("214"),
		err:       lipgloss.Color("196"),
		fg:        lipgloss.Color("252"),
		bg:        lipgloss.Color("236"),
		selection: lipgloss.Color("237"),
	})
}

// NewStylesFromRegistry creates styles from the current tint of a bubbletint registry:
// Purple for titles and tabs, Cyan for keys and times, BrightPurple for counts,
// BrightBlack for muted text, Green/Yellow/Red for status.
func NewStylesFromRegistry(r *tint.Registry) Styles {
	return newStyles(palette{
		primary:   r.Purple(),
		secondary: r.Cyan(),
		accent:    r.BrightPurple(),
		muted:     r.BrightBlack(),
		success:   r.Green(),
		warning:   r.Yellow(),
		err:       r.Red(),
		fg:        r.Fg(),
		bg:        r.Bg(),
		selection: r.BrightBlack(),
	})
}

func newStyles(p palette) Styles {
	return Styles{
		App: lipgloss.NewStyle().Padding(1, 2),

		TabBar: lipgloss.NewStyle().
			MarginBottom(1).
			BorderBottom(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(p.muted),
		TabActive: lipgloss.NewStyle().
			Foreground(p.primary).
			Bold(true).
			Padding(0, 2),
		TabInactive: lipgloss.NewStyle().
			Foreground(p.muted).
			Padding(0, 2),

		ViewTitle: lipgloss.NewStyle().
			Foreground(p.primary).
			Bold(true).
			MarginBottom(1),

		StatusBar: lipgloss.NewStyle().
			Foreground(p.fg).
			Background(p.bg).
			Padding(0, 1),
		StatusKey: lipgloss.NewStyle().
			Foreground(p.secondary).
			Bold(true),
		StatusHelp: lipgloss.NewStyle().
			Foreground(p.muted),

		ItemSelected: lipgloss.NewStyle().
			Background(p.selection).
			Bold(true),
		ItemNormal: lipgloss.NewStyle(),
		ItemIndex: lipgloss.NewStyle().
			Foreground(p.muted),
		ItemMatch: lipgloss.NewStyle().
			Foreground(p.accent).
			Underline(true),

		EntryTime: lipgloss.NewStyle().
			Foreground(p.secondary),
		EntryCategory: lipgloss.NewStyle().
			Foreground(p.primary),
		EntryContent: lipgloss.NewStyle().
			Foreground(p.fg),

		TableHeader: lipgloss.NewStyle().
			Foreground(p.primary).
			Bold(true),
		Count: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true),
		CountZero: lipgloss.NewStyle().
			Foreground(p.muted),

		ServerRunning: lipgloss.NewStyle().
			Foreground(p.success).
			Bold(true),
		ServerStopped: lipgloss.NewStyle().
			Foreground(p.muted),
		URL: lipgloss.NewStyle().
			Foreground(p.secondary).
			Underline(true),

		StatLabel: lipgloss.NewStyle().
			Foreground(p.muted),
		StatValue: lipgloss.NewStyle().
			Foreground(p.fg).
			Bold(true),

		Input: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(p.muted).
			Padding(0, 1),
		InputFocused: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(p.primary).
			Padding(0, 1),

		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.primary).
			Padding(1, 2).
			Width(56),

		Error: lipgloss.NewStyle().
			Foreground(p.err),
		Warning: lipgloss.NewStyle().
			Foreground(p.warning),
		Success: lipgloss.NewStyle().
			Foreground(p.success),
	}
}
