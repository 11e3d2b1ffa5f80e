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

// Group is the package-group object kind: member users, granted
// permissions, an enabled flag, and exact-* policy flags. Koji models
// groups as a special kind of user account, so its remote calls mirror
// User's.
type Group struct {
	base

	Enabled          bool
	Members          []string
	ExactMembers     bool
	Permissions      []string
	ExactPermissions bool
}

func newGroup(name string, fields map[string]any, origin herrors.Origin) (Entity, error) {
	g := &Group{base: newBase("group", name, origin)}
	var err error
	if g.Enabled, err = boolField(fields, "enabled", origin, true); err != nil {
		return nil, err
	}
	if g.Members, err = stringListField(fields, "members", origin); err != nil {
		return nil, err
	}
	if g.ExactMembers, err = boolField(fields, "exact-members", origin, false); err != nil {
		return nil, err
	}
	if g.Permissions, err = stringListField(fields, "permissions", origin); err != nil {
		return nil, err
	}
	if g.ExactPermissions, err = boolField(fields, "exact-permissions", origin, false); err != nil {
		return nil, err
	}
	return g, nil
}

func memberSlot(name string) string { return deferrable("member:" + name) }

// DependencyKeys implements Entity.
func (g *Group) DependencyKeys() []DependencySlot {
	slots := make([]DependencySlot, 0, len(g.Members)+len(g.Permissions))
	for _, m := range g.Members {
		slots = append(slots, DependencySlot{Target: hubkey.Key{Kind: "user", Name: m}, Slot: memberSlot(m)})
	}
	for _, p := range g.Permissions {
		slots = append(slots, DependencySlot{Target: hubkey.Key{Kind: "permission", Name: p}, Slot: permissionSlot(p)})
	}
	return slots
}

// CanDefer implements Entity.
func (g *Group) CanDefer(slot string) bool { return isDeferrable(slot) }

// Split implements Entity.
func (g *Group) Split(dropSlots map[string]bool) (Entity, Entity) {
	primary := &Group{base: g.base, Enabled: g.Enabled}
	deferred := &deferredMembership{base: newBase(DeferredPrefix+"group", g.key.Name, g.origin), primary: g.key, memberOf: "group"}

	for _, m := range g.Members {
		if dropSlots[memberSlot(m)] {
			deferred.addMembers = append(deferred.addMembers, m)
			deferred.deps = append(deferred.deps, hubkey.Key{Kind: "user", Name: m})
		} else {
			primary.Members = append(primary.Members, m)
		}
	}
	primary.ExactMembers = g.ExactMembers && len(primary.Members) == len(g.Members)

	for _, p := range g.Permissions {
		if dropSlots[permissionSlot(p)] {
			deferred.addPermissions = append(deferred.addPermissions, p)
			deferred.deps = append(deferred.deps, hubkey.Key{Kind: "permission", Name: p})
		} else {
			primary.Permissions = append(primary.Permissions, p)
		}
	}
	primary.ExactPermissions = g.ExactPermissions && len(primary.Permissions) == len(g.Permissions)

	deferred.deps = append(deferred.deps, primary.Key())
	return primary, deferred
}

// EnqueueRead implements change.Source. Koji groups are a kind of
// user account, so existence and permission checks reuse getUser and
// getUserPerms the same way User does.
func (g *Group) EnqueueRead(batch remote.Batch) []*remote.Promise {
	batch.Associate(g.key.Kind, g.key.Name)
	return []*remote.Promise{
		batch.Submit(remote.CallDescriptor{Method: "getUser", PositionalArgs: []any{g.key.Name}, NamedArgs: map[string]any{"strict": false}}),
		batch.Submit(remote.CallDescriptor{Method: "getGroupMembers", PositionalArgs: []any{g.key.Name}}),
		batch.Submit(remote.CallDescriptor{Method: "getUserPerms", PositionalArgs: []any{g.key.Name}}),
	}
}

// Compare implements change.Source.
func (g *Group) Compare(reads []*remote.Promise) ([]*change.Change, error) {
	name := g.key.Name

	groupResult, err := reads[0].Result()
	if err != nil {
		return nil, &herrors.ChangeReadError{Kind: g.key.Kind, Name: name, Cause: err}
	}

	var changes []*change.Change

	if groupResult == nil {
		changes = append(changes, &change.Change{
			Op:          "create-object",
			Description: fmt.Sprintf("create group %q", name),
			Submit: func(batch remote.Batch) *remote.Promise {
				return batch.Submit(remote.CallDescriptor{Method: "newGroup", PositionalArgs: []any{name}})
			},
		})
		for _, m := range g.Members {
			changes = append(changes, g.addMemberChange(m))
		}
		for _, p := range g.Permissions {
			changes = append(changes, g.addPermissionChange(p))
		}
		return changes, nil
	}

	info, _ := groupResult.(map[string]any)
	if observedStatus, ok := info["status"].(int); ok {
		enabledStatus := 0
		if !g.Enabled {
			enabledStatus = 1
		}
		if observedStatus != enabledStatus {
			changes = append(changes, g.setEnabledChange())
		}
	}

	membersResult, err := reads[1].Result()
	if err != nil {
		return nil, &herrors.ChangeReadError{Kind: g.key.Kind, Name: name, Cause: err}
	}
	observedMembers := stringSet(asStringList(membersResult))
	for _, m := range g.Members {
		if !observedMembers[m] {
			changes = append(changes, g.addMemberChange(m))
		}
	}
	if g.ExactMembers {
		desired := stringSet(g.Members)
		for m := range observedMembers {
			if !desired[m] {
				changes = append(changes, g.removeMemberChange(m))
			}
		}
	}

	permsResult, err := reads[2].Result()
	if err != nil {
		return nil, &herrors.ChangeReadError{Kind: g.key.Kind, Name: name, Cause: err}
	}
	observedPerms := stringSet(asStringList(permsResult))
	for _, p := range g.Permissions {
		if !observedPerms[p] {
			changes = append(changes, g.addPermissionChange(p))
		}
	}
	if g.ExactPermissions {
		desired := stringSet(g.Permissions)
		for p := range observedPerms {
			if !desired[p] {
				changes = append(changes, g.removePermissionChange(p))
			}
		}
	}

	return changes, nil
}

func (g *Group) setEnabledChange() *change.Change {
	name, enabled := g.key.Name, g.Enabled
	method := "disableUser"
	description := fmt.Sprintf("disable group %q", name)
	if enabled {
		method = "enableUser"
		description = fmt.Sprintf("enable group %q", name)
	}
	return &change.Change{
		Op:          "set-field",
		Parameters:  map[string]any{"field": "enabled", "value": enabled},
		Description: description,
		Submit: func(batch remote.Batch) *remote.Promise {
			return batch.Submit(remote.CallDescriptor{Method: method, PositionalArgs: []any{name}})
		},
	}
}

func (g *Group) addMemberChange(member string) *change.Change {
	name := g.key.Name
	return &change.Change{
		Op:          "add-member",
		Parameters:  map[string]any{"member": member},
		Description: fmt.Sprintf("add member %q to group %q", member, name),
		Submit: func(batch remote.Batch) *remote.Promise {
			return batch.Submit(remote.CallDescriptor{Method: "addGroupMember", PositionalArgs: []any{name, member}})
		},
	}
}

func (g *Group) removeMemberChange(member string) *change.Change {
	name := g.key.Name
	return &change.Change{
		Op:          "remove-member",
		Parameters:  map[string]any{"member": member},
		Description: fmt.Sprintf("remove member %q from group %q", member, name),
		Submit: func(batch remote.Batch) *remote.Promise {
			return batch.Submit(remote.CallDescriptor{Method: "dropGroupMember", PositionalArgs: []any{name, member}})
		},
	}
}

func (g *Group) addPermissionChange(permission string) *change.Change {
	name := g.key.Name
	return &change.Change{
		Op:          "set-permission-grant",
		Parameters:  map[string]any{"permission": permission, "grant": true},
		Description: fmt.Sprintf("grant permission %q to group %q", permission, name),
		Submit: func(batch remote.Batch) *remote.Promise {
			return batch.Submit(remote.CallDescriptor{Method: "grantPermission", PositionalArgs: []any{name, permission}, NamedArgs: map[string]any{"create": true}})
		},
	}
}

func (g *Group) removePermissionChange(permission string) *change.Change {
	name := g.key.Name
	return &change.Change{
		Op:          "set-permission-grant",
		Parameters:  map[string]any{"permission": permission, "grant": false},
		Description: fmt.Sprintf("revoke permission %q from group %q", permission, name),
		Submit: func(batch remote.Batch) *remote.Promise {
			return batch.Submit(remote.CallDescriptor{Method: "revokePermission", PositionalArgs: []any{name, permission}})
		},
	}
}
