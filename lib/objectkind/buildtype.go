// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package objectkind

import (
	"fmt"

	"github.com/hubsync/habitude/lib/change"
	"github.com/hubsync/habitude/lib/herrors"
	"github.com/hubsync/habitude/lib/remote"
)

// BuildType is the build-type object kind: a bare name, created once
// and never edited (koji exposes no edit call for build types).
type BuildType struct {
	base
	unsupportedSplit
}

func newBuildType(name string, _ map[string]any, origin herrors.Origin) (Entity, error) {
	return &BuildType{base: newBase("build-type", name, origin)}, nil
}

// DependencyKeys implements Entity.
func (b *BuildType) DependencyKeys() []DependencySlot { return nil }

// EnqueueRead implements change.Source.
func (b *BuildType) EnqueueRead(batch remote.Batch) []*remote.Promise {
	batch.Associate(b.key.Kind, b.key.Name)
	return []*remote.Promise{
		batch.Submit(remote.CallDescriptor{Method: "listBTypes", NamedArgs: map[string]any{"query": map[string]any{"name": b.key.Name}}}),
	}
}

// Compare implements change.Source.
func (b *BuildType) Compare(reads []*remote.Promise) ([]*change.Change, error) {
	result, err := reads[0].Result()
	if err != nil {
		return nil, &herrors.ChangeReadError{Kind: b.key.Kind, Name: b.key.Name, Cause: err}
	}

	items, _ := result.([]any)
	if len(items) > 0 {
		return nil, nil
	}

	name := b.key.Name
	return []*change.Change{{
		Op:          "create-object",
		Description: fmt.Sprintf("create build type %q", name),
		Submit: func(batch remote.Batch) *remote.Promise {
			return batch.Submit(remote.CallDescriptor{Method: "addBType", PositionalArgs: []any{name}})
		},
	}}, nil
}

// Split implements Entity: BuildType declares no deferrable slots.
func (b *BuildType) Split(map[string]bool) (Entity, Entity) {
	b.splitPanic(b.key)
	return nil, nil
}
