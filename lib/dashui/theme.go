// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/warview-project/warview/lib/wire"
)

// Theme defines the color palette for the dashboard. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Grid cell accents.
	Accepted lipgloss.Color // Flags the game server accepted.
	Pending  lipgloss.Color // Flags awaiting a verdict.
	Rejected lipgloss.Color // Flags with a non-accepting verdict.
	InFlight lipgloss.Color // Executions still running.

	// Feed connection indicator.
	Connected    lipgloss.Color
	Disconnected lipgloss.Color
}

// FlagCodeColor returns the color for a flag verdict.
func (theme Theme) FlagCodeColor(code wire.FlagCode) lipgloss.Color {
	switch code {
	case wire.FlagOk:
		return theme.Accepted
	case wire.FlagPending:
		return theme.Pending
	case wire.FlagDuplicate, wire.FlagOwn, wire.FlagNop, wire.FlagOld, wire.FlagResubmit:
		return theme.FaintText
	default:
		return theme.Rejected
	}
}

// ExecutionStatusColor returns the color for an execution outcome.
func (theme Theme) ExecutionStatusColor(status wire.ExecutionStatus) lipgloss.Color {
	switch status {
	case wire.ExecutionSuccess:
		return theme.Accepted
	case wire.ExecutionTimeout:
		return theme.Pending
	default:
		return theme.Rejected
	}
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	Accepted: lipgloss.Color("114"), // green
	Pending:  lipgloss.Color("220"), // yellow/amber
	Rejected: lipgloss.Color("196"), // red
	InFlight: lipgloss.Color("75"),  // blue

	Connected:    lipgloss.Color("114"),
	Disconnected: lipgloss.Color("196"),
}
