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

// Target is the build target object kind: a required build tag and
// an optional destination tag that defaults to the target's own name.
type Target struct {
	base
	unsupportedSplit

	BuildTag string
	DestTag  string
}

func newTarget(name string, fields map[string]any, origin herrors.Origin) (Entity, error) {
	buildTag, err := requiredStringField(fields, "build-tag", origin)
	if err != nil {
		return nil, err
	}
	destTag, err := stringField(fields, "dest-tag", origin)
	if err != nil {
		return nil, err
	}
	if destTag == "" {
		destTag = name
	}
	return &Target{base: newBase("target", name, origin), BuildTag: buildTag, DestTag: destTag}, nil
}

// DependencyKeys implements Entity: a target depends on its build tag
// and its destination tag.
func (t *Target) DependencyKeys() []DependencySlot {
	return []DependencySlot{
		{Target: hubkey.Key{Kind: "tag", Name: t.BuildTag}, Slot: "build-tag"},
		{Target: hubkey.Key{Kind: "tag", Name: t.DestTag}, Slot: "dest-tag"},
	}
}

// EnqueueRead implements change.Source.
func (t *Target) EnqueueRead(batch remote.Batch) []*remote.Promise {
	batch.Associate(t.key.Kind, t.key.Name)
	return []*remote.Promise{
		batch.Submit(remote.CallDescriptor{Method: "getBuildTarget", PositionalArgs: []any{t.key.Name}, NamedArgs: map[string]any{"strict": false}}),
	}
}

// Compare implements change.Source.
func (t *Target) Compare(reads []*remote.Promise) ([]*change.Change, error) {
	result, err := reads[0].Result()
	if err != nil {
		return nil, &herrors.ChangeReadError{Kind: t.key.Kind, Name: t.key.Name, Cause: err}
	}

	name, buildTag, destTag := t.key.Name, t.BuildTag, t.DestTag

	if result == nil {
		return []*change.Change{t.writeChange("create-object", "createBuildTarget",
			fmt.Sprintf("create target %q (build_tag=%q dest_tag=%q)", name, buildTag, destTag),
			[]any{name, buildTag, destTag})}, nil
	}

	info, ok := result.(map[string]any)
	if !ok {
		return nil, &herrors.ChangeReadError{Kind: t.key.Kind, Name: t.key.Name, Cause: fmt.Errorf("getBuildTarget returned %T", result)}
	}

	if info["build_tag_name"] == buildTag && info["dest_tag_name"] == destTag {
		return nil, nil
	}

	return []*change.Change{t.writeChange("set-field", "editBuildTarget",
		fmt.Sprintf("edit target %q to build_tag=%q dest_tag=%q", name, buildTag, destTag),
		[]any{name, name, buildTag, destTag})}, nil
}

func (t *Target) writeChange(op, method, description string, args []any) *change.Change {
	return &change.Change{
		Op:          op,
		Parameters:  map[string]any{"build_tag": t.BuildTag, "dest_tag": t.DestTag},
		Description: description,
		Submit: func(batch remote.Batch) *remote.Promise {
			return batch.Submit(remote.CallDescriptor{Method: method, PositionalArgs: args})
		},
	}
}

// Split implements Entity: Target declares no deferrable slots.
func (t *Target) Split(map[string]bool) (Entity, Entity) {
	t.splitPanic(t.key)
	return nil, nil
}
