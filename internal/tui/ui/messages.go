package ui

import "github.com/xolan/worklog/internal/entryserver"

// ThemeChangedMsg is broadcast to all views when the theme changes.
type ThemeChangedMsg struct {
	ThemeName string
	Styles    Styles
}

// EntriesChangedMsg is broadcast after the log was appended to or undone, so
// views showing derived data reload it.
type EntriesChangedMsg struct{}

// ServerEventMsg carries one entry server lifecycle notification.
type ServerEventMsg struct {
	Event entryserver.Event
}

// AutoStartMsg fires once the configured auto-start delay has passed.
type AutoStartMsg struct{}
