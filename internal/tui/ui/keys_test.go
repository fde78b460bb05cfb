package ui

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func TestDefaultKeyMap(t *testing.T) {
	keys := DefaultKeyMap()

	tests := []struct {
		name    string
		binding key.Binding
	}{
		{"Up", keys.Up},
		{"Down", keys.Down},
		{"NextTab", keys.NextTab},
		{"PrevTab", keys.PrevTab},
		{"Tab1", keys.Tab1},
		{"Tab2", keys.Tab2},
		{"Tab3", keys.Tab3},
		{"Select", keys.Select},
		{"Back", keys.Back},
		{"Quit", keys.Quit},
		{"Help", keys.Help},
		{"Refresh", keys.Refresh},
		{"Theme", keys.Theme},
		{"Undo", keys.Undo},
		{"Filter", keys.Filter},
		{"EditRange", keys.EditRange},
		{"Export", keys.Export},
		{"Toggle", keys.Toggle},
		{"Password", keys.Password},
		{"Copy", keys.Copy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.binding.Keys()) == 0 {
				t.Errorf("expected keys for binding %s", tt.name)
			}
			help := tt.binding.Help()
			if help.Key == "" {
				t.Errorf("expected help key for binding %s", tt.name)
			}
			if help.Desc == "" {
				t.Errorf("expected help description for binding %s", tt.name)
			}
		})
	}
}

func TestKeyBindingsMatch(t *testing.T) {
	keys := DefaultKeyMap()

	tests := []struct {
		name    string
		binding key.Binding
		msg     tea.KeyMsg
	}{
		{"Quit q", keys.Quit, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}},
		{"Quit ctrl+c", keys.Quit, tea.KeyMsg{Type: tea.KeyCtrlC}},
		{"Up k", keys.Up, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}},
		{"Up arrow", keys.Up, tea.KeyMsg{Type: tea.KeyUp}},
		{"Down j", keys.Down, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}},
		{"Down arrow", keys.Down, tea.KeyMsg{Type: tea.KeyDown}},
		{"Select enter", keys.Select, tea.KeyMsg{Type: tea.KeyEnter}},
		{"Back esc", keys.Back, tea.KeyMsg{Type: tea.KeyEsc}},
		{"Help ?", keys.Help, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}}},
		{"Tab1 1", keys.Tab1, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}}},
		{"Tab3 3", keys.Tab3, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}}},
		{"NextTab tab", keys.NextTab, tea.KeyMsg{Type: tea.KeyTab}},
		{"PrevTab shift+tab", keys.PrevTab, tea.KeyMsg{Type: tea.KeyShiftTab}},
		{"Theme ctrl+t", keys.Theme, tea.KeyMsg{Type: tea.KeyCtrlT}},
		{"Undo u", keys.Undo, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'u'}}},
		{"Filter /", keys.Filter, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}}},
		{"Export x", keys.Export, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}},
		{"Toggle s", keys.Toggle, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}}},
		{"Password p", keys.Password, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}}},
		{"Copy c", keys.Copy, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !key.Matches(tt.msg, tt.binding) {
				t.Errorf("expected %q to match binding %s (keys %v)", tt.msg.String(), tt.name, tt.binding.Keys())
			}
		})
	}
}

func TestViewKeysDoNotCollide(t *testing.T) {
	keys := DefaultKeyMap()

	// Keys sharing a view must be distinct.
	groups := map[string][]key.Binding{
		"record": {keys.Up, keys.Down, keys.Select, keys.Undo, keys.Filter, keys.Refresh},
		"stats":  {keys.EditRange, keys.Export, keys.Refresh, keys.Select},
		"mobile": {keys.Toggle, keys.Password, keys.Copy},
		"global": {keys.Quit, keys.Help, keys.Tab1, keys.Tab2, keys.Tab3, keys.NextTab, keys.PrevTab, keys.Theme},
	}

	for name, bindings := range groups {
		seen := make(map[string]bool)
		for _, b := range bindings {
			for _, k := range b.Keys() {
				if seen[k] {
					t.Errorf("%s view: key %q bound twice", name, k)
				}
				seen[k] = true
			}
		}
	}
}
