// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/warview-project/warview/lib/state"
)

// Execution log column widths.
const (
	timeColumnWidth     = 10
	exploitColumnWidth  = 20
	targetColumnWidth   = 18
	statusColumnWidth   = 10
	durationColumnWidth = 9
)

// renderExecutions renders the execution log tab, newest first.
func (model Model) renderExecutions() string {
	visible := model.contentHeight() + 1 // header row plus content rows
	entries := model.state.ExecutionEntries()

	headerStyle := lipgloss.NewStyle().Foreground(model.theme.HeaderForeground).Bold(true)
	header := headerStyle.Render(
		pad("time", timeColumnWidth) +
			pad("exploit", exploitColumnWidth) +
			pad("target", targetColumnWidth) +
			pad("status", statusColumnWidth) +
			pad("duration", durationColumnWidth) +
			"attempt")

	if len(entries) == 0 {
		placeholder := lipgloss.NewStyle().Foreground(model.theme.FaintText).
			Render("no executions in the current window")
		return model.padRows([]string{header, placeholder}, visible)
	}

	rows := []string{header}
	contentRows := visible - 1
	for index := model.scrollOffset; index < model.scrollOffset+contentRows && index < len(entries); index++ {
		rows = append(rows, model.renderExecutionRow(entries[index], index == model.cursor))
	}
	return model.padRows(rows, visible)
}

// renderExecutionRow renders one execution log entry.
func (model Model) renderExecutionRow(entry *state.ExecutionEntry, selected bool) string {
	rowStyle := lipgloss.NewStyle().Foreground(model.theme.NormalText)
	if selected {
		rowStyle = rowStyle.
			Background(model.theme.SelectedBackground).
			Foreground(model.theme.SelectedForeground)
	}

	timestamp := time.UnixMilli(entry.Published).UTC().Format("15:04:05")

	target := entry.TeamID
	if entry.IPAddress != "" {
		target = fmt.Sprintf("%s %s", entry.TeamID, entry.IPAddress)
	}

	status := "running"
	statusColor := model.theme.InFlight
	duration := ""
	attempt := ""
	if entry.HasResult {
		status = entry.Status.String()
		statusColor = model.theme.ExecutionStatusColor(entry.Status)
		duration = fmt.Sprintf("%dms", entry.TimeTakenMS)
		if entry.Attempt != nil {
			attempt = fmt.Sprintf("#%d", *entry.Attempt)
		}
	}

	row := rowStyle.Render(
		pad(timestamp, timeColumnWidth)+
			pad(entry.ExploitName, exploitColumnWidth)+
			pad(target, targetColumnWidth)) +
		lipgloss.NewStyle().Foreground(statusColor).Render(pad(status, statusColumnWidth)) +
		rowStyle.Render(pad(duration, durationColumnWidth)+attempt)

	if width := ansi.StringWidth(row); width > model.width {
		row = ansi.Truncate(row, model.width, "…")
	}
	return row
}
