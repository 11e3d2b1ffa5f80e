// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package solver

import (
	"testing"

	"github.com/hubsync/habitude/lib/herrors"
	"github.com/hubsync/habitude/lib/hubkey"
	"github.com/hubsync/habitude/lib/objectkind"
	"github.com/hubsync/habitude/lib/resolver"
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

func TestSimpleChain(t *testing.T) {
	t.Parallel()

	a := buildTag(t, "a", map[string]any{})
	b := buildTag(t, "b", map[string]any{
		"inheritance": []any{map[string]any{"parent-name": "a", "priority": 0}},
	})

	expanded := map[hubkey.Key]objectkind.Entity{a.Key(): a, b.Key(): b}
	res := resolver.New(expanded, nil)
	sv := New(res, expanded)

	tiers, err := sv.Tiers()
	if err != nil {
		t.Fatalf("Tiers: %v", err)
	}
	if len(tiers) != 2 {
		t.Fatalf("len(tiers) = %d, want 2", len(tiers))
	}
	if len(tiers[0].Entities) != 1 || tiers[0].Entities[0].Key() != a.Key() {
		t.Errorf("tier 0 = %v, want [tag:a]", keysOf(tiers[0]))
	}
	if len(tiers[1].Entities) != 1 || tiers[1].Entities[0].Key() != b.Key() {
		t.Errorf("tier 1 = %v, want [tag:b]", keysOf(tiers[1]))
	}
}

func TestMissingDependencyIsPhantomNoOrderingObligation(t *testing.T) {
	t.Parallel()

	b := buildTag(t, "b", map[string]any{
		"inheritance": []any{map[string]any{"parent-name": "missing", "priority": 0}},
	})

	expanded := map[hubkey.Key]objectkind.Entity{b.Key(): b}
	res := resolver.New(expanded, nil)
	sv := New(res, expanded)

	tiers, err := sv.Tiers()
	if err != nil {
		t.Fatalf("Tiers: %v", err)
	}
	if len(tiers) != 1 {
		t.Fatalf("len(tiers) = %d, want 1", len(tiers))
	}
	if !res.HasPhantoms() {
		t.Errorf("expected a phantom to have been synthesized for tag:missing")
	}
}

func TestMutualCycleSplitsIntoDeferredTier(t *testing.T) {
	t.Parallel()

	a1 := buildTag(t, "a_1", map[string]any{
		"inheritance": []any{map[string]any{"parent-name": "a_2", "priority": 0}},
	})
	a2 := buildTag(t, "a_2", map[string]any{
		"inheritance": []any{map[string]any{"parent-name": "a_1", "priority": 0}},
	})

	expanded := map[hubkey.Key]objectkind.Entity{a1.Key(): a1, a2.Key(): a2}
	res := resolver.New(expanded, nil)
	sv := New(res, expanded)

	tiers, err := sv.Tiers()
	if err != nil {
		t.Fatalf("Tiers: %v", err)
	}
	if len(tiers) != 2 {
		t.Fatalf("len(tiers) = %d, want 2: %v", len(tiers), tiersToStrings(tiers))
	}
	if len(tiers[0].Entities) != 2 {
		t.Fatalf("tier 0 = %v, want 2 entities", keysOf(tiers[0]))
	}
	if len(tiers[1].Entities) != 2 {
		t.Fatalf("tier 1 = %v, want 2 deferred shadows", keysOf(tiers[1]))
	}
	for _, e := range tiers[1].Entities {
		if e.Key().Kind != "deferred-tag" {
			t.Errorf("tier 1 entity kind = %q, want %q", e.Key().Kind, "deferred-tag")
		}
	}
}

func keysOf(tier Tier) []hubkey.Key {
	out := make([]hubkey.Key, len(tier.Entities))
	for i, e := range tier.Entities {
		out[i] = e.Key()
	}
	return out
}

func tiersToStrings(tiers []Tier) [][]hubkey.Key {
	out := make([][]hubkey.Key, len(tiers))
	for i, tier := range tiers {
		out[i] = keysOf(tier)
	}
	return out
}
