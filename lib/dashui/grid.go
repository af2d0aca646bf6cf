// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/warview-project/warview/lib/roster"
	"github.com/warview-project/warview/lib/state"
	"github.com/warview-project/warview/lib/wire"
)

// Grid column widths. The team column holds the team name; each
// service column holds the cell markers.
const (
	teamColumnWidth    = 22
	serviceColumnWidth = 14
)

// renderGrid renders the attack grid tab: one row per team, one column
// per service. Each cell shows accepted flags, flags awaiting a
// verdict, and executions still in flight against that team's service.
func (model Model) renderGrid() string {
	visible := model.contentHeight() + 1 // header row plus content rows
	if model.lookup == nil || len(model.lookup.Teams()) == 0 {
		placeholder := lipgloss.NewStyle().Foreground(model.theme.FaintText).
			Render("waiting for roster...")
		return model.padRows([]string{placeholder}, visible)
	}

	aggregate := model.state.FlagAggregate()
	inFlight := model.state.PendingByTeamService()
	teams := model.lookup.Teams()
	services := model.lookup.Services()

	headerStyle := lipgloss.NewStyle().Foreground(model.theme.HeaderForeground).Bold(true)
	var header strings.Builder
	header.WriteString(headerStyle.Render(pad("team", teamColumnWidth)))
	for _, service := range services {
		header.WriteString(headerStyle.Render(pad(service.Name, serviceColumnWidth)))
	}

	rows := []string{header.String()}
	contentRows := visible - 1
	for index := model.scrollOffset; index < model.scrollOffset+contentRows && index < len(teams); index++ {
		rows = append(rows, model.renderGridRow(teams[index], services, aggregate, inFlight, index == model.cursor))
	}
	return model.padRows(rows, visible)
}

// renderGridRow renders one team's row across all service columns.
func (model Model) renderGridRow(team roster.TeamEntry, services []roster.Service, aggregate state.FlagAggregate, inFlight map[string]map[string]int, selected bool) string {
	nameStyle := lipgloss.NewStyle().Foreground(model.theme.NormalText)
	if selected {
		nameStyle = nameStyle.
			Background(model.theme.SelectedBackground).
			Foreground(model.theme.SelectedForeground)
	}

	var row strings.Builder
	row.WriteString(nameStyle.Render(pad(team.Name, teamColumnWidth)))

	for _, service := range services {
		cell := aggregate.ByCell[state.CellKey{TeamID: team.ID, Service: service.Name}]

		accepted := cell[wire.FlagOk]
		pending := cell[wire.FlagPending]
		running := inFlight[team.ID][service.Name]
		rejected := 0
		for code, count := range cell {
			if code != wire.FlagOk && code != wire.FlagPending {
				rejected += count
			}
		}

		var markers []string
		if accepted > 0 {
			markers = append(markers, lipgloss.NewStyle().Foreground(model.theme.Accepted).
				Render(fmt.Sprintf("✓%d", accepted)))
		}
		if pending > 0 {
			markers = append(markers, lipgloss.NewStyle().Foreground(model.theme.Pending).
				Render(fmt.Sprintf("◌%d", pending)))
		}
		if rejected > 0 {
			markers = append(markers, lipgloss.NewStyle().Foreground(model.theme.Rejected).
				Render(fmt.Sprintf("✗%d", rejected)))
		}
		if running > 0 {
			markers = append(markers, lipgloss.NewStyle().Foreground(model.theme.InFlight).
				Render(fmt.Sprintf("▸%d", running)))
		}
		if len(markers) == 0 {
			markers = append(markers, lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("·"))
		}

		content := strings.Join(markers, " ")
		width := ansi.StringWidth(content)
		if width > serviceColumnWidth-1 {
			content = ansi.Truncate(content, serviceColumnWidth-1, "…")
			width = serviceColumnWidth - 1
		}
		row.WriteString(content)
		row.WriteString(strings.Repeat(" ", serviceColumnWidth-width))
	}
	return row.String()
}

// padRows pads the rendered rows to the tab's full height so the
// separator and status bar stay anchored at the bottom.
func (model Model) padRows(rows []string, visible int) string {
	for len(rows) < visible {
		rows = append(rows, "")
	}
	return strings.Join(rows, "\n")
}

// pad truncates or right-pads a plain string to the given width.
func pad(text string, width int) string {
	if ansi.StringWidth(text) > width-1 {
		text = ansi.Truncate(text, width-1, "…")
	}
	return text + strings.Repeat(" ", width-ansi.StringWidth(text))
}
