// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui implements a bubbletea progress viewer that subscribes
// to a processor.Run's phase-transition events and renders live tier
// and chunk progress for an interactive terminal session.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hubsync/habitude/lib/change"
	"github.com/hubsync/habitude/lib/processor"
	"github.com/hubsync/habitude/lib/render"
)

// spinnerFrames is the tick animation shown while a run is in flight.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 100 * time.Millisecond

// maxLogLines bounds the scrolling log of recent events kept for
// display; older lines are dropped.
const maxLogLines = 200

type eventMsg struct {
	event processor.Event
	ok    bool
}

type tickMsg struct{}

// Model is the top-level bubbletea model for the progress viewer.
type Model struct {
	events <-chan processor.Event
	keys   KeyMap
	theme  render.Theme

	width, height int

	tier      int
	tierCount int

	applied int
	failed  int
	skipped int
	pending int

	lines []string

	spinnerFrame int
	done         bool
	finalMessage string
}

// NewModel creates a Model that reads processor events from events
// until it is closed, which marks the run as done.
func NewModel(events <-chan processor.Event) Model {
	return Model{
		events: events,
		keys:   DefaultKeyMap,
		theme:  render.DefaultTheme,
	}
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return tea.Batch(listenForEvent(model.events), tickSpinner())
}

func listenForEvent(channel <-chan processor.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-channel
		return eventMsg{event: event, ok: ok}
	}
}

func tickSpinner() tea.Cmd {
	return tea.Tick(spinnerInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		if key.Matches(message, model.keys.Quit) {
			return model, tea.Quit
		}

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height

	case tickMsg:
		if model.done {
			return model, nil
		}
		model.spinnerFrame = (model.spinnerFrame + 1) % len(spinnerFrames)
		return model, tickSpinner()

	case eventMsg:
		if !message.ok {
			model.done = true
			return model, nil
		}
		model.applyEvent(message.event)
		return model, listenForEvent(model.events)
	}

	return model, nil
}

func (model *Model) applyEvent(event processor.Event) {
	switch event.Kind {
	case processor.EventTierStarted:
		model.tier = event.Tier
		model.tierCount = event.TierCount
		model.pushLine(fmt.Sprintf("tier %d/%d started", event.Tier+1, event.TierCount))

	case processor.EventChunkRead:
		model.pushLine(fmt.Sprintf("tier %d: read %d object(s)", event.Tier+1, event.ChunkSize))

	case processor.EventChunkCompared:
		model.pushLine(fmt.Sprintf("tier %d: %d object(s) need changes", event.Tier+1, event.ChunkSize))

	case processor.EventChunkApplied:
		model.pushLine(fmt.Sprintf("tier %d: applied %d object(s)", event.Tier+1, event.ChunkSize))

	case processor.EventReportResolved:
		switch event.State {
		case change.ReportApplied:
			model.applied++
		case change.ReportFailed:
			model.failed++
		default:
			model.pending++
		}
		model.pushLine(fmt.Sprintf("%s: %s", event.Key.String(), event.State))

	case processor.EventRunFinished:
		model.done = true
		model.finalMessage = event.Message
		model.pushLine("run finished: " + event.Message)
	}
}

func (model *Model) pushLine(line string) {
	model.lines = append(model.lines, line)
	if len(model.lines) > maxLogLines {
		model.lines = model.lines[len(model.lines)-maxLogLines:]
	}
}

// View implements tea.Model.
func (model Model) View() string {
	theme := model.theme
	header := lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground)

	status := spinnerFrames[model.spinnerFrame] + " running"
	if model.done {
		status = "done"
	}

	summary := lipgloss.NewStyle().Foreground(theme.NormalText).Render(
		fmt.Sprintf("tier %d/%d — applied %d, failed %d, pending %d",
			model.tier+1, model.tierCount, model.applied, model.failed, model.pending),
	)

	var body string
	start := 0
	visible := model.height - 4
	if visible < 1 {
		visible = len(model.lines)
	}
	if len(model.lines) > visible {
		start = len(model.lines) - visible
	}
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)
	for _, line := range model.lines[start:] {
		body += faint.Render(line) + "\n"
	}

	failedStyle := lipgloss.NewStyle().Foreground(theme.StateFailed)
	statusLine := status
	if model.failed > 0 {
		statusLine += " " + failedStyle.Render(fmt.Sprintf("(%d failed)", model.failed))
	}

	return header.Render("habitude") + "  " + statusLine + "\n" + summary + "\n\n" + body
}

// Run starts the progress viewer as a standalone bubbletea program,
// blocking until the run finishes and the user quits.
func Run(events <-chan processor.Event) error {
	program := tea.NewProgram(NewModel(events))
	_, err := program.Run()
	return err
}
