// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

// Package objectkind implements the registry of build-system object
// kinds (tag, target, external-repo, user, group, host, channel,
// permission, build-type, content-generator, archive-type, template,
// template-call) and the deferred-update shadow kind the solver
// synthesizes to break cycles. Each concrete kind implements Entity,
// which is consumed by lib/namespace (construction), lib/solver
// (dependency-keys/can-defer/split), and lib/change (the Source half
// via EnqueueRead/Compare).
package objectkind

import (
	"fmt"

	"github.com/hubsync/habitude/lib/change"
	"github.com/hubsync/habitude/lib/herrors"
	"github.com/hubsync/habitude/lib/hubkey"
)

// DeferredPrefix names the synthetic kind a deferred-update shadow
// carries: "deferred-tag", "deferred-user", and so on.
const DeferredPrefix = "deferred-"

// DependencySlot is one outgoing edge from an entity to a target key,
// named so the solver can ask whether this specific edge is
// deferrable and, if so, drop it during cycle splitting. Slot names
// beginning with "defer:" are the ones a kind allows the solver to
// drop; see CanDefer.
type DependencySlot struct {
	Target hubkey.Key
	Slot   string
}

const deferPrefix = "defer:"

// deferrable marks a slot name as droppable by the solver when
// breaking a cycle. Kinds build their slot names with this helper so
// CanDefer has a single, consistent rule to apply.
func deferrable(name string) string { return deferPrefix + name }

func isDeferrable(slot string) bool {
	return len(slot) >= len(deferPrefix) && slot[:len(deferPrefix)] == deferPrefix
}

// Entity is the full contract a concrete object kind provides to the
// namespace, resolver, solver, and change-report phases.
type Entity interface {
	change.Source

	Key() hubkey.Key
	Origin() herrors.Origin

	// DependencyKeys lists every key this entity's declaration
	// references, each tagged with the slot it came from.
	DependencyKeys() []DependencySlot

	// CanDefer reports whether the solver may drop the edge carried by
	// slot when splitting a cycle this entity participates in.
	CanDefer(slot string) bool

	// Split produces a primary copy with every slot named in
	// dropSlots removed, plus a deferred-update shadow carrying only
	// those dropped slots. Split must only be called with slots for
	// which CanDefer returned true.
	Split(dropSlots map[string]bool) (primary Entity, deferred Entity)
}

// Constructor builds an Entity of one kind from a document's fields.
// origin is the document's origin; name is its declared name.
type Constructor func(name string, fields map[string]any, origin herrors.Origin) (Entity, error)

var registry = map[string]Constructor{}

// RegisterKind installs constructor under kind. Idempotent
// replacement is allowed at any time: neither this package nor
// lib/namespace rejects a registration made after expansion has
// begun.
func RegisterKind(kind string, constructor Constructor) {
	registry[kind] = constructor
}

// Lookup returns the constructor registered for kind, if any.
func Lookup(kind string) (Constructor, bool) {
	constructor, ok := registry[kind]
	return constructor, ok
}

// KnownKinds returns every registered kind name, in no particular
// order.
func KnownKinds() []string {
	names := make([]string, 0, len(registry))
	for kind := range registry {
		names = append(names, kind)
	}
	return names
}

func init() {
	RegisterKind("tag", newTag)
	RegisterKind("target", newTarget)
	RegisterKind("external-repo", newExternalRepo)
	RegisterKind("user", newUser)
	RegisterKind("group", newGroup)
	RegisterKind("host", newHost)
	RegisterKind("channel", newChannel)
	RegisterKind("permission", newPermission)
	RegisterKind("build-type", newBuildType)
	RegisterKind("content-generator", newContentGenerator)
	RegisterKind("archive-type", newArchiveType)
	RegisterKind("template", newTemplateDef)
}

// base carries the identity and origin every concrete kind embeds.
type base struct {
	key    hubkey.Key
	origin herrors.Origin
}

func (b base) Key() hubkey.Key        { return b.key }
func (b base) Origin() herrors.Origin { return b.origin }

func newBase(kind, name string, origin herrors.Origin) base {
	return base{key: hubkey.Key{Kind: kind, Name: name}, origin: origin}
}

// unsupportedSplit is embedded by kinds that participate in no
// deferrable slot, so Split is a programmer error if ever called.
type unsupportedSplit struct{}

func (unsupportedSplit) CanDefer(string) bool { return false }

func (e unsupportedSplit) splitPanic(key hubkey.Key) {
	panic(fmt.Sprintf("objectkind: Split called on %s, which declares no deferrable slots", key))
}
