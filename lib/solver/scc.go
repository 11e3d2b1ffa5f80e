// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package solver

import (
	"sort"

	"github.com/hubsync/habitude/lib/hubkey"
	"github.com/hubsync/habitude/lib/objectkind"
	"github.com/hubsync/habitude/lib/resolver"
)

// stronglyConnectedComponents runs Tarjan's algorithm over the
// subgraph induced by remaining, using each entity's dependency edges
// restricted to Present targets that are themselves in remaining.
// Returned components are in no particular order; callers sort as
// needed.
func stronglyConnectedComponents(remaining map[hubkey.Key]objectkind.Entity, res *resolver.Resolver) [][]hubkey.Key {
	keys := make([]hubkey.Key, 0, len(remaining))
	for k := range remaining {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	t := &tarjan{
		remaining: remaining,
		resolver:  res,
		index:     make(map[hubkey.Key]int),
		lowlink:   make(map[hubkey.Key]int),
		onStack:   make(map[hubkey.Key]bool),
	}

	for _, k := range keys {
		if _, visited := t.index[k]; !visited {
			t.strongconnect(k)
		}
	}

	return t.components
}

type tarjan struct {
	remaining map[hubkey.Key]objectkind.Entity
	resolver  *resolver.Resolver

	counter    int
	index      map[hubkey.Key]int
	lowlink    map[hubkey.Key]int
	onStack    map[hubkey.Key]bool
	stack      []hubkey.Key
	components [][]hubkey.Key
}

func (t *tarjan) strongconnect(v hubkey.Key) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.successors(v) {
		if _, visited := t.index[w]; !visited {
			t.strongconnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var component []hubkey.Key
		for {
			w := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.onStack[w] = false
			component = append(component, w)
			if w == v {
				break
			}
		}
		t.components = append(t.components, component)
	}
}

func (t *tarjan) successors(v hubkey.Key) []hubkey.Key {
	entity := t.remaining[v]
	var out []hubkey.Key
	for _, slot := range entity.DependencyKeys() {
		if _, ok := t.remaining[slot.Target]; !ok {
			continue
		}
		if t.resolver.Lookup(slot.Target, entity.Origin()) != resolver.Present {
			continue
		}
		out = append(out, slot.Target)
	}
	return out
}
