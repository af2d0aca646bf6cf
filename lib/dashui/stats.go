// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/warview-project/warview/lib/wire"
)

// histogramBarWidth is the width of the largest verdict bar.
const histogramBarWidth = 30

// renderStats renders the aggregate statistics tab.
func (model Model) renderStats() string {
	visible := model.contentHeight() + 1
	flags := model.state.FlagAggregate()
	executions := model.state.ExecutionAggregate()

	headerStyle := lipgloss.NewStyle().Foreground(model.theme.HeaderForeground).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	valueStyle := lipgloss.NewStyle().Foreground(model.theme.NormalText)

	var rows []string
	rows = append(rows, headerStyle.Render("flags"))
	rows = append(rows, fmt.Sprintf("  %s %s",
		labelStyle.Render(pad("total", 14)),
		valueStyle.Render(fmt.Sprintf("%d", flags.Count))))
	rows = append(rows, model.renderVerdictHistogram(flags.ByStatus)...)

	rows = append(rows, "")
	rows = append(rows, headerStyle.Render("executions"))
	rows = append(rows, fmt.Sprintf("  %s %s",
		labelStyle.Render(pad("total", 14)),
		valueStyle.Render(fmt.Sprintf("%d", executions.Count))))
	rows = append(rows, fmt.Sprintf("  %s %s",
		labelStyle.Render(pad("in flight", 14)),
		lipgloss.NewStyle().Foreground(model.theme.InFlight).Render(fmt.Sprintf("%d", executions.Pending))))

	if model.lookup != nil && len(model.lookup.Exploits()) > 0 {
		header := "exploits"
		if model.executor != nil {
			header = "exploits (x to execute)"
		}
		rows = append(rows, "")
		rows = append(rows, headerStyle.Render(header))
		rows = append(rows, model.renderExploitList(flags.ByExploit)...)
	} else if len(flags.ByExploit) > 0 {
		rows = append(rows, "")
		rows = append(rows, headerStyle.Render("flags by exploit"))
		rows = append(rows, model.renderExploitCounts(flags.ByExploit)...)
	}

	return model.padRows(rows, visible)
}

// renderExploitList renders the registered exploits with their flag
// totals. The cursor selects the exploit the x key triggers.
func (model Model) renderExploitList(byExploit map[string]int) []string {
	var rows []string
	for index, exploit := range model.lookup.Exploits() {
		name := exploit.Manifest.Name

		style := lipgloss.NewStyle().Foreground(model.theme.NormalText)
		if index == model.cursor {
			style = style.
				Background(model.theme.SelectedBackground).
				Foreground(model.theme.SelectedForeground)
		}

		enabled := "disabled"
		if exploit.Manifest.Enabled {
			enabled = "enabled"
		}

		rows = append(rows, "  "+style.Render(fmt.Sprintf("%s%s%s%d flags",
			pad(name, 20),
			pad(exploit.Manifest.Service, 14),
			pad(enabled, 10),
			byExploit[name])))
	}
	return rows
}

// renderVerdictHistogram renders one bar per observed flag verdict, in
// precedence order, scaled to the largest bucket.
func (model Model) renderVerdictHistogram(byStatus map[wire.FlagCode]int) []string {
	codes := make([]wire.FlagCode, 0, len(byStatus))
	largest := 0
	for code, count := range byStatus {
		codes = append(codes, code)
		if count > largest {
			largest = count
		}
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	labelStyle := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	var rows []string
	for _, code := range codes {
		count := byStatus[code]
		bar := strings.Repeat("█", count*histogramBarWidth/largest)
		if bar == "" && count > 0 {
			bar = "▏"
		}
		rows = append(rows, fmt.Sprintf("  %s %s %d",
			labelStyle.Render(pad(code.String(), 14)),
			lipgloss.NewStyle().Foreground(model.theme.FlagCodeColor(code)).Render(pad(bar, histogramBarWidth+1)),
			count))
	}
	return rows
}

// renderExploitCounts renders per-exploit flag totals, largest first.
func (model Model) renderExploitCounts(byExploit map[string]int) []string {
	names := make([]string, 0, len(byExploit))
	for name := range byExploit {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if byExploit[names[i]] != byExploit[names[j]] {
			return byExploit[names[i]] > byExploit[names[j]]
		}
		return names[i] < names[j]
	})

	labelStyle := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	valueStyle := lipgloss.NewStyle().Foreground(model.theme.NormalText)
	var rows []string
	for _, name := range names {
		rows = append(rows, fmt.Sprintf("  %s %s",
			labelStyle.Render(pad(name, 20)),
			valueStyle.Render(fmt.Sprintf("%d", byExploit[name]))))
	}
	return rows
}
