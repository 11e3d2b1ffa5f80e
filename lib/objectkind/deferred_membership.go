// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package objectkind

import (
	"fmt"

	"github.com/hubsync/habitude/lib/change"
	"github.com/hubsync/habitude/lib/hubkey"
	"github.com/hubsync/habitude/lib/remote"
)

// deferredMembership is the shadow kind produced when splitting a
// user or group: it carries only the group/permission/member edges
// that were dropped from the primary to break a cycle. Unlike the tag
// shadow, it never needs to re-read remote state first: applying an
// already-granted membership a second time is a harmless no-op on a
// real hub, so the shadow just re-issues the dropped grants once its
// dependencies are guaranteed to exist.
type deferredMembership struct {
	base
	unsupportedSplit

	primary  hubkey.Key
	deps     []hubkey.Key
	memberOf string // "user" or "group"

	addGroups      []string // user shadow only
	addMembers     []string // group shadow only
	addPermissions []string
}

// DependencyKeys implements Entity.
func (d *deferredMembership) DependencyKeys() []DependencySlot {
	slots := make([]DependencySlot, 0, len(d.deps))
	for _, dep := range d.deps {
		slots = append(slots, DependencySlot{Target: dep, Slot: "shadow:" + dep.String()})
	}
	return slots
}

// Split implements Entity; a shadow never splits further.
func (d *deferredMembership) Split(map[string]bool) (Entity, Entity) {
	d.splitPanic(d.key)
	return nil, nil
}

// EnqueueRead implements change.Source: no read is needed, see the
// type doc.
func (d *deferredMembership) EnqueueRead(remote.Batch) []*remote.Promise { return nil }

// Compare implements change.Source.
func (d *deferredMembership) Compare([]*remote.Promise) ([]*change.Change, error) {
	name := d.primary.Name
	var changes []*change.Change

	for _, g := range d.addGroups {
		group := g
		changes = append(changes, &change.Change{
			Op:          "add-member",
			Parameters:  map[string]any{"group": group},
			Description: fmt.Sprintf("add user %q to group %q (deferred)", name, group),
			Submit: func(batch remote.Batch) *remote.Promise {
				return batch.Submit(remote.CallDescriptor{Method: "addGroupMember", PositionalArgs: []any{group, name}, NamedArgs: map[string]any{"strict": false}})
			},
		})
	}

	for _, m := range d.addMembers {
		member := m
		changes = append(changes, &change.Change{
			Op:          "add-member",
			Parameters:  map[string]any{"member": member},
			Description: fmt.Sprintf("add member %q to group %q (deferred)", member, name),
			Submit: func(batch remote.Batch) *remote.Promise {
				return batch.Submit(remote.CallDescriptor{Method: "addGroupMember", PositionalArgs: []any{name, member}, NamedArgs: map[string]any{"strict": false}})
			},
		})
	}

	for _, p := range d.addPermissions {
		permission := p
		changes = append(changes, &change.Change{
			Op:          "set-permission-grant",
			Parameters:  map[string]any{"permission": permission, "grant": true},
			Description: fmt.Sprintf("grant permission %q to %q %q (deferred)", permission, d.memberOf, name),
			Submit: func(batch remote.Batch) *remote.Promise {
				return batch.Submit(remote.CallDescriptor{Method: "grantPermission", PositionalArgs: []any{name, permission}, NamedArgs: map[string]any{"create": true}})
			},
		})
	}

	return changes, nil
}
