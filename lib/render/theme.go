// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

// Package render turns a processor.Result into human-facing output:
// a markdown change report rendered for the terminal, and YAML
// document dumps with default-field elision. The terminal markdown
// renderer only handles the subset of markdown this package's own
// report generator ever produces.
package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hubsync/habitude/lib/change"
)

// Theme defines the color palette used when rendering a change report
// for the terminal.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color

	StateApplied lipgloss.Color
	StateFailed  lipgloss.Color
	StateSkipped lipgloss.Color
	StatePending lipgloss.Color
}

// StateColor returns the color for a change.State.
func (theme Theme) StateColor(state change.State) lipgloss.Color {
	switch state {
	case change.StateApplied:
		return theme.StateApplied
	case change.StateFailed:
		return theme.StateFailed
	case change.StateSkipped:
		return theme.StateSkipped
	default:
		return theme.StatePending
	}
}

// ReportStateColor returns the color for a change.ReportState.
func (theme Theme) ReportStateColor(state change.ReportState) lipgloss.Color {
	switch state {
	case change.ReportApplied:
		return theme.StateApplied
	case change.ReportFailed:
		return theme.StateFailed
	default:
		return theme.StatePending
	}
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),

	StateApplied: lipgloss.Color("114"), // green
	StateFailed:  lipgloss.Color("196"), // red
	StateSkipped: lipgloss.Color("245"), // gray
	StatePending: lipgloss.Color("220"), // amber
}
