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

// ContentGenerator is the content-generator object kind: a list of
// users permitted to import content under it, and an exact-users
// policy flag.
type ContentGenerator struct {
	base
	unsupportedSplit

	Users      []string
	ExactUsers bool
}

func newContentGenerator(name string, fields map[string]any, origin herrors.Origin) (Entity, error) {
	cg := &ContentGenerator{base: newBase("content-generator", name, origin)}
	var err error
	if cg.Users, err = stringListField(fields, "users", origin); err != nil {
		return nil, err
	}
	if cg.ExactUsers, err = boolField(fields, "exact-users", origin, false); err != nil {
		return nil, err
	}
	return cg, nil
}

// DependencyKeys implements Entity.
func (cg *ContentGenerator) DependencyKeys() []DependencySlot {
	slots := make([]DependencySlot, 0, len(cg.Users))
	for _, u := range cg.Users {
		slots = append(slots, DependencySlot{Target: hubkey.Key{Kind: "user", Name: u}, Slot: "user:" + u})
	}
	return slots
}

// EnqueueRead implements change.Source. Koji's listCGs returns every
// content generator keyed by name; there is no single-name lookup.
func (cg *ContentGenerator) EnqueueRead(batch remote.Batch) []*remote.Promise {
	batch.Associate(cg.key.Kind, cg.key.Name)
	return []*remote.Promise{
		batch.Submit(remote.CallDescriptor{Method: "listCGs"}),
	}
}

// Compare implements change.Source.
func (cg *ContentGenerator) Compare(reads []*remote.Promise) ([]*change.Change, error) {
	name := cg.key.Name

	result, err := reads[0].Result()
	if err != nil {
		return nil, &herrors.ChangeReadError{Kind: cg.key.Kind, Name: name, Cause: err}
	}

	registry, _ := result.(map[string]any)
	entry, exists := registry[name]

	var changes []*change.Change
	if !exists {
		changes = append(changes, &change.Change{
			Op:          "create-object",
			Description: fmt.Sprintf("create content generator %q", name),
			Submit: func(batch remote.Batch) *remote.Promise {
				// koji has no standalone create call; granting CG access
				// to the user "self" with create set creates the record.
				// That grant is not revoked afterwards.
				return batch.Submit(remote.CallDescriptor{Method: "grantCGAccess", PositionalArgs: []any{"self", name}, NamedArgs: map[string]any{"create": true}})
			},
		})
		for _, u := range cg.Users {
			changes = append(changes, cg.addUserChange(u))
		}
		return changes, nil
	}

	info, _ := entry.(map[string]any)
	observedUsers := stringSet(asStringList(info["users"]))
	for _, u := range cg.Users {
		if !observedUsers[u] {
			changes = append(changes, cg.addUserChange(u))
		}
	}
	if cg.ExactUsers {
		desired := stringSet(cg.Users)
		for u := range observedUsers {
			if !desired[u] {
				changes = append(changes, cg.removeUserChange(u))
			}
		}
	}
	return changes, nil
}

func (cg *ContentGenerator) addUserChange(user string) *change.Change {
	name := cg.key.Name
	return &change.Change{
		Op:          "add-member",
		Parameters:  map[string]any{"user": user},
		Description: fmt.Sprintf("grant cg-import on %q to user %q", name, user),
		Submit: func(batch remote.Batch) *remote.Promise {
			return batch.Submit(remote.CallDescriptor{Method: "grantCGAccess", PositionalArgs: []any{user, name}})
		},
	}
}

func (cg *ContentGenerator) removeUserChange(user string) *change.Change {
	name := cg.key.Name
	return &change.Change{
		Op:          "remove-member",
		Parameters:  map[string]any{"user": user},
		Description: fmt.Sprintf("revoke cg-import on %q from user %q", name, user),
		Submit: func(batch remote.Batch) *remote.Promise {
			return batch.Submit(remote.CallDescriptor{Method: "revokeCGAccess", PositionalArgs: []any{user, name}})
		},
	}
}

// Split implements Entity: ContentGenerator declares no deferrable slots.
func (c *ContentGenerator) Split(map[string]bool) (Entity, Entity) {
	c.splitPanic(c.key)
	return nil, nil
}
