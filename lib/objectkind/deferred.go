// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package objectkind

import (
	"fmt"

	"github.com/hubsync/habitude/lib/change"
	"github.com/hubsync/habitude/lib/herrors"
	"github.com/hubsync/habitude/lib/hubkey"
	"github.com/hubsync/habitude/lib/remote"
)

// deferredUpdate is the synthetic shadow the solver creates when it
// splits an entity to break a cycle. It carries only the dropped
// slots and is scheduled into a later tier than its primary, once
// every dropped edge's target is guaranteed to already exist on the
// remote.
type deferredUpdate struct {
	base
	unsupportedSplit

	primary hubkey.Key
	deps    []hubkey.Key

	inherit []InheritLink
	repos   []RepoLink
}

// DependencyKeys implements Entity: a shadow depends on its own
// primary plus every target of the edges it carries.
func (d *deferredUpdate) DependencyKeys() []DependencySlot {
	slots := make([]DependencySlot, 0, len(d.deps))
	for _, dep := range d.deps {
		slots = append(slots, DependencySlot{Target: dep, Slot: "shadow:" + dep.String()})
	}
	return slots
}

// Split implements Entity; a shadow never splits further.
func (d *deferredUpdate) Split(map[string]bool) (Entity, Entity) {
	d.splitPanic(d.key)
	return nil, nil
}

// EnqueueRead implements change.Source: a tag shadow re-reads the
// current inheritance and external-repo lists so Compare can diff
// only the fragment it owns against up-to-date observed state.
func (d *deferredUpdate) EnqueueRead(batch remote.Batch) []*remote.Promise {
	batch.Associate(d.key.Kind, d.key.Name)
	return []*remote.Promise{
		batch.Submit(remote.CallDescriptor{Method: "getInheritanceData", PositionalArgs: []any{d.primary.Name}}),
		batch.Submit(remote.CallDescriptor{Method: "getTagExternalRepos", PositionalArgs: []any{d.primary.Name}}),
	}
}

// Compare implements change.Source.
func (d *deferredUpdate) Compare(reads []*remote.Promise) ([]*change.Change, error) {
	var changes []*change.Change

	if len(d.inherit) > 0 {
		inheritResult, err := reads[0].Result()
		if err != nil {
			return nil, &herrors.ChangeReadError{Kind: d.key.Kind, Name: d.key.Name, Cause: err}
		}
		shadow := &Tag{base: d.base, Inherit: d.inherit}
		changes = append(changes, shadow.inheritanceChanges(asAnyList(inheritResult))...)
	}

	if len(d.repos) > 0 {
		repoResult, err := reads[1].Result()
		if err != nil {
			return nil, &herrors.ChangeReadError{Kind: d.key.Kind, Name: d.key.Name, Cause: err}
		}
		shadow := &Tag{base: d.base, Repos: d.repos}
		changes = append(changes, shadow.repoChanges(asAnyList(repoResult))...)
	}

	return changes, nil
}

func (d *deferredUpdate) String() string {
	return fmt.Sprintf("deferred-update(%s)", d.primary)
}
