// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

// Package resolver classifies, given the namespace's post-expansion
// entity map, every key a declared entity's dependency edges point
// at, synthesizing phantom placeholders for keys nothing declared.
package resolver

import (
	"sort"

	"github.com/hubsync/habitude/lib/herrors"
	"github.com/hubsync/habitude/lib/hubkey"
	"github.com/hubsync/habitude/lib/objectkind"
)

// Presence classifies what lookup found for a key.
type Presence int

const (
	// Present means a real entity exists in the namespace.
	Present Presence = iota
	// Phantom means the key was referenced but never declared; the
	// resolver synthesized a placeholder carrying only the key and
	// the first reference's origin.
	Phantom
	// Discovered means the key is not declared but was confirmed to
	// exist on the remote, for read-only workflows that allow
	// external prerequisites.
	Discovered
	// Pending is reserved for deferred-update shadows the solver
	// creates; the resolver itself never returns it.
	Pending
)

func (p Presence) String() string {
	switch p {
	case Present:
		return "present"
	case Phantom:
		return "phantom"
	case Discovered:
		return "discovered"
	case Pending:
		return "pending"
	default:
		return "unknown"
	}
}

// PhantomRef is a synthesized placeholder for a referenced-but-undeclared
// key. It carries no change.Source behavior; the solver treats it as
// a graph node with indegree contribution of zero (no further
// dependencies of its own) and the processor never emits a change
// report for it.
type PhantomRef struct {
	Key    hubkey.Key
	Origin herrors.Origin
}

// Resolver answers presence queries against a fixed, already-expanded
// entity map. It is built once per run and is read-only thereafter:
// the namespace never mutates an entity once expansion completes.
type Resolver struct {
	expanded map[hubkey.Key]objectkind.Entity
	phantoms map[hubkey.Key]*PhantomRef
	observed map[hubkey.Key]bool
}

// New builds a Resolver over an already-expanded entity map. Observed
// pre-populates the Discovered set for dump/fetch-style workflows that
// confirm external prerequisites exist on the remote without
// declaring them locally.
func New(expanded map[hubkey.Key]objectkind.Entity, observed map[hubkey.Key]bool) *Resolver {
	if observed == nil {
		observed = map[hubkey.Key]bool{}
	}
	return &Resolver{
		expanded: expanded,
		phantoms: make(map[hubkey.Key]*PhantomRef),
		observed: observed,
	}
}

// Lookup classifies key, synthesizing a phantom (recording origin as
// the first reference) the first time an undeclared, unobserved key
// is looked up.
func (r *Resolver) Lookup(key hubkey.Key, referenceOrigin herrors.Origin) Presence {
	if _, ok := r.expanded[key]; ok {
		return Present
	}
	if r.observed[key] {
		return Discovered
	}
	if _, ok := r.phantoms[key]; !ok {
		r.phantoms[key] = &PhantomRef{Key: key, Origin: referenceOrigin}
	}
	return Phantom
}

// Entity returns the real entity for key, if Present.
func (r *Resolver) Entity(key hubkey.Key) (objectkind.Entity, bool) {
	entity, ok := r.expanded[key]
	return entity, ok
}

// Phantoms returns every synthesized phantom, sorted by key for
// deterministic diagnostic output.
func (r *Resolver) Phantoms() []*PhantomRef {
	out := make([]*PhantomRef, 0, len(r.phantoms))
	for _, p := range r.phantoms {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })
	return out
}

// HasPhantoms reports whether any phantom has been synthesized so
// far. The processor calls this after graph construction to decide
// whether apply mode must abort.
func (r *Resolver) HasPhantoms() bool {
	return len(r.phantoms) > 0
}
