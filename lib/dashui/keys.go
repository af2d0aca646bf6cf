// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the dashboard.
type KeyMap struct {
	// Navigation within the scrollable tabs.
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	// Tab switching.
	TabGrid       key.Binding
	TabExecutions key.Binding
	TabStats      key.Binding

	// Execute triggers the selected exploit on the stats tab.
	Execute key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// (j/k) alongside standard arrow keys and page up/down.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("C-d", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	TabGrid: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "grid"),
	),
	TabExecutions: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "executions"),
	),
	TabStats: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "stats"),
	),
	Execute: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "execute exploit"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
