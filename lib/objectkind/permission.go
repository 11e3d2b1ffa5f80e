// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package objectkind

import (
	"fmt"

	"github.com/hubsync/habitude/lib/change"
	"github.com/hubsync/habitude/lib/herrors"
	"github.com/hubsync/habitude/lib/remote"
)

// Permission is the permission object kind: an optional description,
// no outgoing dependencies.
type Permission struct {
	base
	unsupportedSplit

	Description string
}

func newPermission(name string, fields map[string]any, origin herrors.Origin) (Entity, error) {
	description, err := stringField(fields, "description", origin)
	if err != nil {
		return nil, err
	}
	return &Permission{base: newBase("permission", name, origin), Description: description}, nil
}

// DependencyKeys implements Entity.
func (p *Permission) DependencyKeys() []DependencySlot { return nil }

// EnqueueRead implements change.Source. Koji has no direct
// getPermission call; the only way to find one is to scan
// getAllPerms, mirroring the original implementation.
func (p *Permission) EnqueueRead(batch remote.Batch) []*remote.Promise {
	batch.Associate(p.key.Kind, p.key.Name)
	return []*remote.Promise{
		batch.Submit(remote.CallDescriptor{Method: "getAllPerms"}),
	}
}

// Compare implements change.Source.
func (p *Permission) Compare(reads []*remote.Promise) ([]*change.Change, error) {
	result, err := reads[0].Result()
	if err != nil {
		return nil, &herrors.ChangeReadError{Kind: p.key.Kind, Name: p.key.Name, Cause: err}
	}

	name, description := p.key.Name, p.Description
	observed := findPermission(result, name)

	if observed == nil {
		return []*change.Change{{
			Op:          "create-object",
			Parameters:  map[string]any{"description": description},
			Description: fmt.Sprintf("create permission %q", name),
			Submit: func(batch remote.Batch) *remote.Promise {
				// koji has no standalone permission-create call;
				// granting the permission to the user "self" with
				// create set creates the record. That grant is not
				// revoked afterwards.
				return batch.Submit(remote.CallDescriptor{
					Method:         "grantPermission",
					PositionalArgs: []any{"self", name},
					NamedArgs:      map[string]any{"create": true, "description": description},
				})
			},
		}}, nil
	}

	if observed["description"] != description {
		return []*change.Change{{
			Op:          "set-field",
			Parameters:  map[string]any{"field": "description", "value": description},
			Description: fmt.Sprintf("set permission %q description", name),
			Submit: func(batch remote.Batch) *remote.Promise {
				return batch.Submit(remote.CallDescriptor{Method: "editPermission", PositionalArgs: []any{name}, NamedArgs: map[string]any{"description": description}})
			},
		}}, nil
	}

	return nil, nil
}

func findPermission(result any, name string) map[string]any {
	items, ok := result.([]any)
	if !ok {
		return nil
	}
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if entry["name"] == name {
			return entry
		}
	}
	return nil
}

// Split implements Entity: Permission declares no deferrable slots.
func (p *Permission) Split(map[string]bool) (Entity, Entity) {
	p.splitPanic(p.key)
	return nil, nil
}
