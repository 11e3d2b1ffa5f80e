// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

// Package solver builds a dependency graph from the resolver's view
// of the namespace and emits an ordered stream of tiers, splitting
// intra-tier cycles by delegating to each entity's Split method and
// scheduling the resulting deferred-update shadows into a later tier.
package solver

import (
	"fmt"
	"sort"

	"github.com/hubsync/habitude/lib/hubkey"
	"github.com/hubsync/habitude/lib/objectkind"
	"github.com/hubsync/habitude/lib/resolver"
)

// Tier is an ordered, cycle-free slice of entities the processor can
// safely read/compare/apply without any entity in the slice depending
// on another entity also in the slice.
type Tier struct {
	Entities []objectkind.Entity
}

// CycleError reports a strongly connected set of entities that could
// not be made acyclic: every entity in the set either declares no
// deferrable slots, or dropping every deferrable slot it does declare
// still leaves an edge into another member of the set.
type CycleError struct {
	Keys []hubkey.Key
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("solver: unresolvable cyclic dependency among %v", e.Keys)
}

// Solver computes tiers over a fixed resolver/expanded-entity view.
// It is single-use: call Tiers once per run.
type Solver struct {
	resolver *resolver.Resolver
	expanded map[hubkey.Key]objectkind.Entity
}

// New builds a Solver over expanded (the namespace's post-expansion
// entity map) and a resolver built from the same map, used to
// classify each entity's dependency targets.
func New(res *resolver.Resolver, expanded map[hubkey.Key]objectkind.Entity) *Solver {
	return &Solver{resolver: res, expanded: expanded}
}

// Tiers runs the full tiering algorithm and returns the resulting
// tier stream in emission order.
func (s *Solver) Tiers() ([]Tier, error) {
	remaining := make(map[hubkey.Key]objectkind.Entity, len(s.expanded))
	for k, e := range s.expanded {
		remaining[k] = e
	}

	var tiers []Tier
	for len(remaining) > 0 {
		keys := indegreeZeroKeys(remaining, s.resolver)
		if len(keys) == 0 {
			if err := s.breakCycle(remaining); err != nil {
				return nil, err
			}
			continue
		}

		sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

		tier := Tier{Entities: make([]objectkind.Entity, len(keys))}
		for i, k := range keys {
			tier.Entities[i] = remaining[k]
			delete(remaining, k)
		}
		tiers = append(tiers, tier)
	}

	return tiers, nil
}

// indegreeZeroKeys returns every remaining key whose dependency
// targets are all either absent from remaining (already emitted),
// phantom, or discovered — none of which impose an ordering
// obligation.
func indegreeZeroKeys(remaining map[hubkey.Key]objectkind.Entity, res *resolver.Resolver) []hubkey.Key {
	var out []hubkey.Key
	for key, entity := range remaining {
		if indegree(entity, remaining, res) == 0 {
			out = append(out, key)
		}
	}
	return out
}

func indegree(entity objectkind.Entity, remaining map[hubkey.Key]objectkind.Entity, res *resolver.Resolver) int {
	count := 0
	for _, slot := range entity.DependencyKeys() {
		if res.Lookup(slot.Target, entity.Origin()) != resolver.Present {
			continue
		}
		if _, stillRemaining := remaining[slot.Target]; !stillRemaining {
			continue
		}
		count++
	}
	return count
}

// breakCycle identifies the minimal strongly connected set remaining
// in the graph, splits every entity in it that admits splitting, and
// installs the resulting primaries and deferred-update shadows back
// into remaining. Returns a *CycleError if the set cannot be made
// acyclic.
func (s *Solver) breakCycle(remaining map[hubkey.Key]objectkind.Entity) error {
	sccs := stronglyConnectedComponents(remaining, s.resolver)

	var cycles [][]hubkey.Key
	for _, scc := range sccs {
		if len(scc) > 1 || selfLoop(scc, remaining, s.resolver) {
			cycles = append(cycles, scc)
		}
	}
	if len(cycles) == 0 {
		return fmt.Errorf("solver: no indegree-zero node remains but no cycle was found (internal inconsistency)")
	}

	sort.Slice(cycles, func(i, j int) bool { return minKey(cycles[i]).Less(minKey(cycles[j])) })
	target := cycles[0]
	sort.Slice(target, func(i, j int) bool { return target[i].Less(target[j]) })

	changed := false
	for _, key := range target {
		entity := remaining[key]
		dropSlots := deferrableSlots(entity)
		if len(dropSlots) == 0 {
			continue
		}
		primary, deferred := entity.Split(dropSlots)
		remaining[key] = primary
		remaining[deferred.Key()] = deferred
		changed = true
	}

	if !changed {
		return &CycleError{Keys: target}
	}

	if stillCyclic(target, remaining, s.resolver) {
		return &CycleError{Keys: target}
	}

	return nil
}

func deferrableSlots(entity objectkind.Entity) map[string]bool {
	drop := make(map[string]bool)
	for _, slot := range entity.DependencyKeys() {
		if entity.CanDefer(slot.Slot) {
			drop[slot.Slot] = true
		}
	}
	return drop
}

func minKey(keys []hubkey.Key) hubkey.Key {
	min := keys[0]
	for _, k := range keys[1:] {
		if k.Less(min) {
			min = k
		}
	}
	return min
}

func selfLoop(scc []hubkey.Key, remaining map[hubkey.Key]objectkind.Entity, res *resolver.Resolver) bool {
	if len(scc) != 1 {
		return false
	}
	key := scc[0]
	entity := remaining[key]
	for _, slot := range entity.DependencyKeys() {
		if slot.Target == key && res.Lookup(slot.Target, entity.Origin()) == resolver.Present {
			return true
		}
	}
	return false
}

// stillCyclic checks whether the entities named by keys (now possibly
// split primaries) still have an edge among themselves.
func stillCyclic(keys []hubkey.Key, remaining map[hubkey.Key]objectkind.Entity, res *resolver.Resolver) bool {
	set := make(map[hubkey.Key]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	restricted := make(map[hubkey.Key]objectkind.Entity, len(keys))
	for _, k := range keys {
		restricted[k] = remaining[k]
	}
	for _, scc := range stronglyConnectedComponents(restricted, res) {
		if len(scc) > 1 || selfLoop(scc, restricted, res) {
			return true
		}
	}
	return false
}
