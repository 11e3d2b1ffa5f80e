// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hubsync/habitude/lib/change"
	"github.com/hubsync/habitude/lib/herrors"
	"github.com/hubsync/habitude/lib/hubkey"
	"github.com/hubsync/habitude/lib/objectkind"
	"github.com/hubsync/habitude/lib/remote"
	"github.com/hubsync/habitude/lib/remote/fake"
	"github.com/hubsync/habitude/lib/resolver"
	"github.com/hubsync/habitude/lib/solver"
)

func buildTag(t *testing.T, name string, fields map[string]any) objectkind.Entity {
	t.Helper()
	constructor, ok := objectkind.Lookup("tag")
	if !ok {
		t.Fatalf("no constructor for tag")
	}
	entity, err := constructor(name, fields, herrors.Origin{File: "test.yaml"})
	if err != nil {
		t.Fatalf("building tag %q: %v", name, err)
	}
	return entity
}

func registerTagHandlers(session *fake.Session) {
	session.Handlers["getTag"] = func(s *fake.Session, d remote.CallDescriptor) (any, error) {
		name := d.PositionalArgs[0].(string)
		rec := s.Lookup("tag", name)
		if !rec.Exists {
			return nil, nil
		}
		return rec.Fields, nil
	}
	session.Handlers["getTagGroups"] = func(*fake.Session, remote.CallDescriptor) (any, error) { return []any{}, nil }
	session.Handlers["getInheritanceData"] = func(*fake.Session, remote.CallDescriptor) (any, error) { return []any{}, nil }
	session.Handlers["getTagExternalRepos"] = func(*fake.Session, remote.CallDescriptor) (any, error) { return []any{}, nil }
	session.Handlers["createTag"] = func(s *fake.Session, d remote.CallDescriptor) (any, error) {
		name := d.PositionalArgs[0].(string)
		s.Seed("tag", name, map[string]any{
			"locked": d.NamedArgs["locked"], "perm_id": nil, "arches": d.NamedArgs["arches"], "maven_support": d.NamedArgs["maven"],
		})
		return nil, nil
	}
	session.Handlers["setInheritanceData"] = func(*fake.Session, remote.CallDescriptor) (any, error) { return nil, nil }
}

func TestRunAppliesSimpleChain(t *testing.T) {
	t.Parallel()

	a := buildTag(t, "a", map[string]any{})
	b := buildTag(t, "b", map[string]any{
		"inheritance": []any{map[string]any{"parent-name": "a", "priority": 0}},
	})
	expanded := map[hubkey.Key]objectkind.Entity{a.Key(): a, b.Key(): b}

	res := resolver.New(expanded, nil)
	sv := solver.New(res, expanded)

	session := fake.New()
	registerTagHandlers(session)

	p := New(Config{Mode: ModeApply}, session, res)
	result, err := p.Run(context.Background(), sv)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Reports) != 2 {
		t.Fatalf("len(Reports) = %d, want 2", len(result.Reports))
	}
	for _, report := range result.Reports {
		if report.State() != change.ReportApplied {
			t.Errorf("report %s state = %s, want applied", report.Key, report.State())
		}
	}
	if result.Failed(ModeApply, false) {
		t.Errorf("Failed() = true, want false")
	}
}

func TestRunShortCircuitsDependentsOnFailure(t *testing.T) {
	t.Parallel()

	a := buildTag(t, "a", map[string]any{})
	b := buildTag(t, "b", map[string]any{
		"inheritance": []any{map[string]any{"parent-name": "a", "priority": 0}},
	})
	expanded := map[hubkey.Key]objectkind.Entity{a.Key(): a, b.Key(): b}

	res := resolver.New(expanded, nil)
	sv := solver.New(res, expanded)

	session := fake.New()
	registerTagHandlers(session)
	session.FailMethods["createTag"] = errors.New("simulated createTag failure")

	p := New(Config{Mode: ModeApply}, session, res)
	result, err := p.Run(context.Background(), sv)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var aReport, bReport *change.Report
	for _, report := range result.Reports {
		switch report.Key.Name {
		case "a":
			aReport = report
		case "b":
			bReport = report
		}
	}
	if aReport.State() != change.ReportFailed {
		t.Errorf("a state = %s, want failed", aReport.State())
	}
	if bReport.State() != change.ReportFailed {
		t.Errorf("b state = %s, want failed", bReport.State())
	}
	if bReport.UpstreamFailureReason() == "" {
		t.Errorf("expected b to carry an upstream failure reason")
	}
	if !result.Failed(ModeApply, false) {
		t.Errorf("Failed() = false, want true")
	}
}

func TestRunCompareOnlyNeverApplies(t *testing.T) {
	t.Parallel()

	a := buildTag(t, "a", map[string]any{})
	expanded := map[hubkey.Key]objectkind.Entity{a.Key(): a}

	res := resolver.New(expanded, nil)
	sv := solver.New(res, expanded)

	session := fake.New()
	registerTagHandlers(session)

	p := New(Config{Mode: ModeCompare}, session, res)
	result, err := p.Run(context.Background(), sv)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Reports) != 1 {
		t.Fatalf("len(Reports) = %d, want 1", len(result.Reports))
	}
	if result.Reports[0].State() != change.ReportCompared {
		t.Errorf("state = %s, want compared", result.Reports[0].State())
	}
	for _, call := range session.Calls() {
		if call.Method == "createTag" {
			t.Errorf("compare-only mode issued a createTag call")
		}
	}
}

func TestRunAbortsOnPhantomInApplyMode(t *testing.T) {
	t.Parallel()

	b := buildTag(t, "b", map[string]any{
		"inheritance": []any{map[string]any{"parent-name": "missing", "priority": 0}},
	})
	expanded := map[hubkey.Key]objectkind.Entity{b.Key(): b}

	res := resolver.New(expanded, nil)
	res.Lookup(hubkey.Key{Kind: "tag", Name: "missing"}, herrors.Origin{File: "test.yaml"})
	sv := solver.New(res, expanded)

	session := fake.New()
	registerTagHandlers(session)

	p := New(Config{Mode: ModeApply}, session, res)
	_, err := p.Run(context.Background(), sv)
	if err == nil {
		t.Fatalf("expected a PhantomError, got nil")
	}
	if _, ok := err.(*herrors.PhantomError); !ok {
		t.Fatalf("expected *herrors.PhantomError, got %T: %v", err, err)
	}
}

func TestRunSkipsPhantomDependentsWhenPolicySet(t *testing.T) {
	t.Parallel()

	b := buildTag(t, "b", map[string]any{
		"inheritance": []any{map[string]any{"parent-name": "missing", "priority": 0}},
	})
	expanded := map[hubkey.Key]objectkind.Entity{b.Key(): b}

	res := resolver.New(expanded, nil)
	sv := solver.New(res, expanded)

	session := fake.New()
	registerTagHandlers(session)

	p := New(Config{Mode: ModeApply, SkipPhantoms: true}, session, res)
	result, err := p.Run(context.Background(), sv)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Diagnostics) == 0 {
		t.Errorf("expected a skip diagnostic for tag:b")
	}
	if len(result.Reports) != 0 {
		t.Errorf("len(Reports) = %d, want 0 (b dropped entirely)", len(result.Reports))
	}
}

func TestRunEmitsTierAndReportEvents(t *testing.T) {
	t.Parallel()

	a := buildTag(t, "a", map[string]any{})
	expanded := map[hubkey.Key]objectkind.Entity{a.Key(): a}

	res := resolver.New(expanded, nil)
	sv := solver.New(res, expanded)

	session := fake.New()
	registerTagHandlers(session)

	events := make(chan Event, 16)
	p := New(Config{Mode: ModeApply, Events: events}, session, res)
	result, err := p.Run(context.Background(), sv)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	close(events)

	var kinds []EventKind
	for event := range events {
		kinds = append(kinds, event.Kind)
	}

	if len(kinds) == 0 || kinds[0] != EventTierStarted {
		t.Fatalf("expected the first event to be EventTierStarted, got %v", kinds)
	}
	if kinds[len(kinds)-1] != EventRunFinished {
		t.Fatalf("expected the last event to be EventRunFinished, got %v", kinds)
	}
	foundResolved := false
	for _, kind := range kinds {
		if kind == EventReportResolved {
			foundResolved = true
		}
	}
	if !foundResolved {
		t.Errorf("expected an EventReportResolved for tag:a, got %v", kinds)
	}
	if len(result.Reports) != 1 {
		t.Fatalf("len(Reports) = %d, want 1", len(result.Reports))
	}
}

func TestRunEventsDoesNotBlockOnFullChannel(t *testing.T) {
	t.Parallel()

	a := buildTag(t, "a", map[string]any{})
	expanded := map[hubkey.Key]objectkind.Entity{a.Key(): a}

	res := resolver.New(expanded, nil)
	sv := solver.New(res, expanded)

	session := fake.New()
	registerTagHandlers(session)

	events := make(chan Event) // unbuffered, never drained
	p := New(Config{Mode: ModeApply, Events: events}, session, res)

	done := make(chan struct{})
	go func() {
		if _, err := p.Run(context.Background(), sv); err != nil {
			t.Errorf("Run: %v", err)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Run blocked on an undrained Events channel")
	}
}
