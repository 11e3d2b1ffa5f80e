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

// User is the user object kind: optional group memberships and
// permissions, an enabled flag, and exact-* policy flags over each
// collection.
type User struct {
	base

	Enabled          bool
	Groups           []string
	ExactGroups      bool
	Permissions      []string
	ExactPermissions bool
}

func newUser(name string, fields map[string]any, origin herrors.Origin) (Entity, error) {
	u := &User{base: newBase("user", name, origin)}
	var err error
	if u.Enabled, err = boolField(fields, "enabled", origin, true); err != nil {
		return nil, err
	}
	if u.Groups, err = stringListField(fields, "groups", origin); err != nil {
		return nil, err
	}
	if u.ExactGroups, err = boolField(fields, "exact-groups", origin, false); err != nil {
		return nil, err
	}
	if u.Permissions, err = stringListField(fields, "permissions", origin); err != nil {
		return nil, err
	}
	if u.ExactPermissions, err = boolField(fields, "exact-permissions", origin, false); err != nil {
		return nil, err
	}
	return u, nil
}

func groupSlot(name string) string      { return deferrable("group:" + name) }
func permissionSlot(name string) string { return deferrable("permission:" + name) }

// DependencyKeys implements Entity.
func (u *User) DependencyKeys() []DependencySlot {
	slots := make([]DependencySlot, 0, len(u.Groups)+len(u.Permissions))
	for _, g := range u.Groups {
		slots = append(slots, DependencySlot{Target: hubkey.Key{Kind: "group", Name: g}, Slot: groupSlot(g)})
	}
	for _, p := range u.Permissions {
		slots = append(slots, DependencySlot{Target: hubkey.Key{Kind: "permission", Name: p}, Slot: permissionSlot(p)})
	}
	return slots
}

// CanDefer implements Entity: group and permission memberships may be
// dropped to break a cycle, since the account itself can be created
// without them.
func (u *User) CanDefer(slot string) bool { return isDeferrable(slot) }

// Split implements Entity.
func (u *User) Split(dropSlots map[string]bool) (Entity, Entity) {
	primary := &User{base: u.base, Enabled: u.Enabled}
	deferred := &deferredMembership{base: newBase(DeferredPrefix+"user", u.key.Name, u.origin), primary: u.key}

	for _, g := range u.Groups {
		if dropSlots[groupSlot(g)] {
			deferred.addGroups = append(deferred.addGroups, g)
			deferred.deps = append(deferred.deps, hubkey.Key{Kind: "group", Name: g})
		} else {
			primary.Groups = append(primary.Groups, g)
		}
	}
	primary.ExactGroups = u.ExactGroups && len(primary.Groups) == len(u.Groups)

	for _, p := range u.Permissions {
		if dropSlots[permissionSlot(p)] {
			deferred.addPermissions = append(deferred.addPermissions, p)
			deferred.deps = append(deferred.deps, hubkey.Key{Kind: "permission", Name: p})
		} else {
			primary.Permissions = append(primary.Permissions, p)
		}
	}
	primary.ExactPermissions = u.ExactPermissions && len(primary.Permissions) == len(u.Permissions)

	deferred.memberOf = "user"
	deferred.deps = append(deferred.deps, primary.Key())
	return primary, deferred
}

// EnqueueRead implements change.Source.
func (u *User) EnqueueRead(batch remote.Batch) []*remote.Promise {
	batch.Associate(u.key.Kind, u.key.Name)
	return []*remote.Promise{
		batch.Submit(remote.CallDescriptor{Method: "getUser", PositionalArgs: []any{u.key.Name}, NamedArgs: map[string]any{"strict": false, "groups": true}}),
		batch.Submit(remote.CallDescriptor{Method: "getUserPerms", PositionalArgs: []any{u.key.Name}}),
	}
}

// Compare implements change.Source.
func (u *User) Compare(reads []*remote.Promise) ([]*change.Change, error) {
	name := u.key.Name

	userResult, err := reads[0].Result()
	if err != nil {
		return nil, &herrors.ChangeReadError{Kind: u.key.Kind, Name: name, Cause: err}
	}

	var changes []*change.Change

	if userResult == nil {
		changes = append(changes, &change.Change{
			Op:          "create-object",
			Parameters:  map[string]any{"enabled": u.Enabled},
			Description: fmt.Sprintf("create user %q", name),
			Submit: func(batch remote.Batch) *remote.Promise {
				return batch.Submit(remote.CallDescriptor{Method: "createUser", PositionalArgs: []any{name}, NamedArgs: map[string]any{"status": u.Enabled}})
			},
		})
		for _, g := range u.Groups {
			changes = append(changes, u.addGroupChange(g))
		}
		for _, p := range u.Permissions {
			changes = append(changes, u.grantPermissionChange(p))
		}
		return changes, nil
	}

	info, _ := userResult.(map[string]any)
	if observedStatus, ok := info["status"].(int); ok {
		enabledStatus := 0
		if !u.Enabled {
			enabledStatus = 1
		}
		if observedStatus != enabledStatus {
			changes = append(changes, u.setEnabledChange())
		}
	}

	observedGroups := stringSet(asStringList(info["groups"]))
	for _, g := range u.Groups {
		if !observedGroups[g] {
			changes = append(changes, u.addGroupChange(g))
		}
	}
	if u.ExactGroups {
		desired := stringSet(u.Groups)
		for g := range observedGroups {
			if !desired[g] {
				changes = append(changes, u.removeGroupChange(g))
			}
		}
	}

	permsResult, err := reads[1].Result()
	if err != nil {
		return nil, &herrors.ChangeReadError{Kind: u.key.Kind, Name: name, Cause: err}
	}
	observedPerms := stringSet(asStringList(permsResult))
	for _, p := range u.Permissions {
		if !observedPerms[p] {
			changes = append(changes, u.grantPermissionChange(p))
		}
	}
	if u.ExactPermissions {
		desired := stringSet(u.Permissions)
		for p := range observedPerms {
			if !desired[p] {
				changes = append(changes, u.revokePermissionChange(p))
			}
		}
	}

	return changes, nil
}

func asStringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch typed := item.(type) {
		case string:
			out = append(out, typed)
		case map[string]any:
			if name, ok := typed["name"].(string); ok {
				out = append(out, name)
			}
		}
	}
	return out
}

func (u *User) setEnabledChange() *change.Change {
	name, enabled := u.key.Name, u.Enabled
	method := "disableUser"
	description := fmt.Sprintf("disable user %q", name)
	if enabled {
		method = "enableUser"
		description = fmt.Sprintf("enable user %q", name)
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

func (u *User) addGroupChange(group string) *change.Change {
	name := u.key.Name
	return &change.Change{
		Op:          "add-member",
		Parameters:  map[string]any{"group": group},
		Description: fmt.Sprintf("add user %q to group %q", name, group),
		Submit: func(batch remote.Batch) *remote.Promise {
			return batch.Submit(remote.CallDescriptor{Method: "addGroupMember", PositionalArgs: []any{group, name}, NamedArgs: map[string]any{"strict": false}})
		},
	}
}

func (u *User) removeGroupChange(group string) *change.Change {
	name := u.key.Name
	return &change.Change{
		Op:          "remove-member",
		Parameters:  map[string]any{"group": group},
		Description: fmt.Sprintf("remove user %q from group %q", name, group),
		Submit: func(batch remote.Batch) *remote.Promise {
			return batch.Submit(remote.CallDescriptor{Method: "dropGroupMember", PositionalArgs: []any{group, name}})
		},
	}
}

func (u *User) grantPermissionChange(permission string) *change.Change {
	name := u.key.Name
	return &change.Change{
		Op:          "set-permission-grant",
		Parameters:  map[string]any{"permission": permission, "grant": true},
		Description: fmt.Sprintf("grant permission %q to user %q", permission, name),
		Submit: func(batch remote.Batch) *remote.Promise {
			return batch.Submit(remote.CallDescriptor{Method: "grantPermission", PositionalArgs: []any{name, permission}, NamedArgs: map[string]any{"create": true}})
		},
	}
}

func (u *User) revokePermissionChange(permission string) *change.Change {
	name := u.key.Name
	return &change.Change{
		Op:          "set-permission-grant",
		Parameters:  map[string]any{"permission": permission, "grant": false},
		Description: fmt.Sprintf("revoke permission %q from user %q", permission, name),
		Submit: func(batch remote.Batch) *remote.Promise {
			return batch.Submit(remote.CallDescriptor{Method: "revokePermission", PositionalArgs: []any{name, permission}})
		},
	}
}
