// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hubsync/habitude/lib/change"
	"github.com/hubsync/habitude/lib/hubkey"
	"github.com/hubsync/habitude/lib/processor"
)

func TestModelAppliesTierStartedEvent(t *testing.T) {
	t.Parallel()

	model := NewModel(nil)
	model.applyEvent(processor.Event{Kind: processor.EventTierStarted, Tier: 1, TierCount: 3})

	if model.tier != 1 || model.tierCount != 3 {
		t.Errorf("tier/tierCount = %d/%d, want 1/3", model.tier, model.tierCount)
	}
	if len(model.lines) != 1 {
		t.Fatalf("expected one log line, got %v", model.lines)
	}
}

func TestModelTallysReportOutcomes(t *testing.T) {
	t.Parallel()

	model := NewModel(nil)
	key := hubkey.Key{Kind: "tag", Name: "build"}
	model.applyEvent(processor.Event{Kind: processor.EventReportResolved, Key: key, State: change.ReportApplied})
	model.applyEvent(processor.Event{Kind: processor.EventReportResolved, Key: key, State: change.ReportFailed})
	model.applyEvent(processor.Event{Kind: processor.EventReportResolved, Key: key, State: change.ReportCompared})

	if model.applied != 1 || model.failed != 1 || model.pending != 1 {
		t.Errorf("applied/failed/pending = %d/%d/%d, want 1/1/1", model.applied, model.failed, model.pending)
	}
}

func TestModelRunFinishedMarksDone(t *testing.T) {
	t.Parallel()

	model := NewModel(nil)
	model.applyEvent(processor.Event{Kind: processor.EventRunFinished, Message: "3 report(s)"})

	if !model.done {
		t.Errorf("expected done after EventRunFinished")
	}
	if model.finalMessage != "3 report(s)" {
		t.Errorf("finalMessage = %q, want %q", model.finalMessage, "3 report(s)")
	}
}

func TestModelPushLineTrimsToMaxLogLines(t *testing.T) {
	t.Parallel()

	model := NewModel(nil)
	for i := 0; i < maxLogLines+10; i++ {
		model.pushLine("line")
	}

	if len(model.lines) != maxLogLines {
		t.Errorf("len(lines) = %d, want %d", len(model.lines), maxLogLines)
	}
}

func TestModelUpdateQuitsOnQuitKey(t *testing.T) {
	t.Parallel()

	model := NewModel(nil)
	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	if cmd == nil {
		t.Fatalf("expected a quit command")
	}
}

func TestModelViewIncludesSummary(t *testing.T) {
	t.Parallel()

	model := NewModel(nil)
	model.applyEvent(processor.Event{Kind: processor.EventTierStarted, Tier: 0, TierCount: 2})

	view := model.View()

	if !strings.Contains(view, "habitude") {
		t.Errorf("view missing header, got %q", view)
	}
	if !strings.Contains(view, "tier 1/2") {
		t.Errorf("view missing tier summary, got %q", view)
	}
}
