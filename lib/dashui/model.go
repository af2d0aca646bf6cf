// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/warview-project/warview/lib/roster"
	"github.com/warview-project/warview/lib/state"
)

// Tab identifies which data view is active.
type Tab int

const (
	// TabGrid shows the attack grid: one row per team, one column per
	// service, with flag and execution counts in each cell.
	TabGrid Tab = iota
	// TabExecutions shows the chronological execution log, newest
	// first.
	TabExecutions
	// TabStats shows aggregate counters: verdict histogram, per-exploit
	// totals, tick and boundary.
	TabStats
)

// stateChangedMsg is delivered through the bubbletea message loop when
// the competition state has changed since the last render.
type stateChangedMsg struct{}

// executeDoneMsg reports the outcome of a manual exploit trigger.
type executeDoneMsg struct {
	name string
	err  error
}

// executeTimeout bounds one manual exploit trigger request.
const executeTimeout = 10 * time.Second

// Config holds the data sources for creating a Model.
type Config struct {
	// State is the live competition state. Required.
	State *state.State

	// Lookup is the roster index. May be nil before the first roster
	// fetch; the grid shows a placeholder until it is available.
	Lookup *roster.Lookup

	// Connected reports whether the event stream is currently
	// established. May be nil, in which case the indicator is hidden.
	Connected func() bool

	// Executor triggers an immediate run of the named exploit against
	// all teams, bound to the x key on the stats tab. May be nil, in
	// which case the action is disabled.
	Executor func(ctx context.Context, name string) error
}

// Model is the top-level bubbletea model for the dashboard.
type Model struct {
	state     *state.State
	lookup    *roster.Lookup
	connected func() bool
	executor  func(ctx context.Context, name string) error
	changes   <-chan struct{}

	theme Theme
	keys  KeyMap

	// note is transient feedback in the status bar, set by the latest
	// manual action and replaced by the next one.
	note string

	// Terminal dimensions (set by WindowSizeMsg).
	width  int
	height int
	ready  bool

	activeTab Tab

	// Scroll state for the active tab. The executions tab additionally
	// tracks a cursor row.
	cursor       int
	scrollOffset int
}

// NewModel creates a Model over the given data sources and subscribes
// to state changes.
func NewModel(config Config) Model {
	return Model{
		state:     config.State,
		lookup:    config.Lookup,
		connected: config.Connected,
		executor:  config.Executor,
		changes:   config.State.Subscribe(),
		theme:     DefaultTheme,
		keys:      DefaultKeyMap,
	}
}

// Init implements tea.Model. Starts listening for state changes.
func (model Model) Init() tea.Cmd {
	return listenForStateChange(model.changes)
}

// listenForStateChange returns a tea.Cmd that blocks until the state
// reports a change, then delivers a stateChangedMsg.
func listenForStateChange(channel <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-channel
		return stateChangedMsg{}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.clampScroll()

	case stateChangedMsg:
		// The view reads everything from the state on render; all the
		// update has to do is keep the scroll in range and re-arm the
		// listener.
		model.clampScroll()
		return model, listenForStateChange(model.changes)

	case executeDoneMsg:
		if message.err != nil {
			model.note = fmt.Sprintf("execute %s failed: %v", message.name, message.err)
		} else {
			model.note = fmt.Sprintf("execution of %s requested", message.name)
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(message, model.keys.Quit):
			return model, tea.Quit

		case key.Matches(message, model.keys.TabGrid):
			model.switchTab(TabGrid)
		case key.Matches(message, model.keys.TabExecutions):
			model.switchTab(TabExecutions)
		case key.Matches(message, model.keys.TabStats):
			model.switchTab(TabStats)

		case key.Matches(message, model.keys.Up):
			model.moveCursor(-1)
		case key.Matches(message, model.keys.Down):
			model.moveCursor(1)
		case key.Matches(message, model.keys.PageUp):
			model.moveCursor(-model.contentHeight())
		case key.Matches(message, model.keys.PageDown):
			model.moveCursor(model.contentHeight())
		case key.Matches(message, model.keys.Home):
			model.cursor = 0
			model.scrollOffset = 0
		case key.Matches(message, model.keys.End):
			model.cursor = model.rowCount() - 1
			model.clampScroll()

		case key.Matches(message, model.keys.Execute):
			return model, model.executeSelected()
		}
	}
	return model, nil
}

// switchTab activates a tab and resets the scroll state.
func (model *Model) switchTab(tab Tab) {
	if model.activeTab == tab {
		return
	}
	model.activeTab = tab
	model.cursor = 0
	model.scrollOffset = 0
}

// moveCursor moves the selection by delta rows and scrolls to keep it
// visible.
func (model *Model) moveCursor(delta int) {
	model.cursor += delta
	model.clampScroll()
}

// rowCount returns the number of scrollable rows on the active tab. On
// the stats tab the cursor selects within the exploit list.
func (model *Model) rowCount() int {
	switch model.activeTab {
	case TabGrid:
		if model.lookup == nil {
			return 0
		}
		return len(model.lookup.Teams())
	case TabExecutions:
		return len(model.state.ExecutionEntries())
	case TabStats:
		if model.lookup == nil {
			return 0
		}
		return len(model.lookup.Exploits())
	default:
		return 0
	}
}

// executeSelected triggers the exploit under the cursor on the stats
// tab. Returns nil when the action does not apply.
func (model *Model) executeSelected() tea.Cmd {
	if model.activeTab != TabStats || model.executor == nil || model.lookup == nil {
		return nil
	}
	exploits := model.lookup.Exploits()
	if model.cursor >= len(exploits) {
		return nil
	}
	name := exploits[model.cursor].Manifest.Name
	executor := model.executor
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), executeTimeout)
		defer cancel()
		return executeDoneMsg{name: name, err: executor(ctx, name)}
	}
}

// clampScroll keeps the cursor in range and the scroll window around
// it.
func (model *Model) clampScroll() {
	rows := model.rowCount()
	if model.cursor >= rows {
		model.cursor = rows - 1
	}
	if model.cursor < 0 {
		model.cursor = 0
	}

	visible := model.contentHeight()
	if visible < 1 {
		visible = 1
	}
	if model.cursor < model.scrollOffset {
		model.scrollOffset = model.cursor
	}
	if model.cursor >= model.scrollOffset+visible {
		model.scrollOffset = model.cursor - visible + 1
	}
	if model.scrollOffset < 0 {
		model.scrollOffset = 0
	}
}

// contentHeight is the number of terminal rows available to the active
// tab's content: total height minus the tab bar, the per-tab column
// header, the separator, and the status bar.
func (model *Model) contentHeight() int {
	return model.height - 4
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, model.renderTabBar())

	switch model.activeTab {
	case TabGrid:
		sections = append(sections, model.renderGrid())
	case TabExecutions:
		sections = append(sections, model.renderExecutions())
	case TabStats:
		sections = append(sections, model.renderStats())
	}

	separator := lipgloss.NewStyle().
		Foreground(model.theme.BorderColor).
		Render(strings.Repeat("─", model.width))
	sections = append(sections, separator)
	sections = append(sections, model.renderStatusBar())

	return strings.Join(sections, "\n")
}

// renderTabBar renders the top chrome line with the tab labels.
func (model Model) renderTabBar() string {
	labels := []struct {
		tab  Tab
		name string
	}{
		{TabGrid, "1:Grid"},
		{TabExecutions, "2:Executions"},
		{TabStats, "3:Stats"},
	}

	active := lipgloss.NewStyle().Foreground(model.theme.HeaderForeground).Bold(true)
	inactive := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	var parts []string
	for _, label := range labels {
		if label.tab == model.activeTab {
			parts = append(parts, active.Render(label.name))
		} else {
			parts = append(parts, inactive.Render(label.name))
		}
	}
	return " " + strings.Join(parts, "  ")
}

// renderStatusBar renders the bottom line: tick, eviction boundary,
// feed indicator, and the quit hint.
func (model Model) renderStatusBar() string {
	faint := lipgloss.NewStyle().Foreground(model.theme.HelpText)

	tick := "tick –"
	if current := model.state.CurrentTick(); current >= 0 {
		tick = fmt.Sprintf("tick %d", current)
	}

	boundary := "window –"
	if boundaryMillis, ok := model.state.Boundary(); ok {
		boundary = "window ≥ " + time.UnixMilli(boundaryMillis).UTC().Format("15:04:05")
	}

	parts := []string{faint.Render(tick), faint.Render(boundary)}
	if model.connected != nil {
		indicator := lipgloss.NewStyle().Foreground(model.theme.Disconnected).Render("● offline")
		if model.connected() {
			indicator = lipgloss.NewStyle().Foreground(model.theme.Connected).Render("● live")
		}
		parts = append(parts, indicator)
	}
	parts = append(parts, faint.Render("q quit"))
	if model.note != "" {
		parts = append(parts, faint.Render(model.note))
	}

	return " " + strings.Join(parts, faint.Render("  │  "))
}
