// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package objectkind

import (
	"fmt"
	"strings"

	"github.com/hubsync/habitude/lib/change"
	"github.com/hubsync/habitude/lib/herrors"
	"github.com/hubsync/habitude/lib/remote"
)

// ArchiveType is the archive-type object kind: extensions (with
// leading-dot stripping and dedup) and an optional compression codec.
// Koji has no call to edit an archive type once created, so this
// kind's change report only ever creates.
type ArchiveType struct {
	base
	unsupportedSplit

	Description string
	Extensions  []string
	Compression string
}

func newArchiveType(name string, fields map[string]any, origin herrors.Origin) (Entity, error) {
	a := &ArchiveType{base: newBase("archive-type", name, origin)}

	var err error
	if a.Description, err = stringField(fields, "description", origin); err != nil {
		return nil, err
	}

	extensions, err := stringListField(fields, "extensions", origin)
	if err != nil {
		return nil, err
	}
	a.Extensions = dedupExtensions(extensions)

	if a.Compression, err = stringField(fields, "compression", origin); err != nil {
		return nil, err
	}
	if err := validateCompression(a.Compression); err != nil {
		return nil, fieldError("compression", origin, err)
	}

	return a, nil
}

func dedupExtensions(extensions []string) []string {
	seen := make(map[string]bool, len(extensions))
	out := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.TrimLeft(ext, ".")
		if seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	return out
}

// DependencyKeys implements Entity.
func (a *ArchiveType) DependencyKeys() []DependencySlot { return nil }

// EnqueueRead implements change.Source.
func (a *ArchiveType) EnqueueRead(batch remote.Batch) []*remote.Promise {
	batch.Associate(a.key.Kind, a.key.Name)
	return []*remote.Promise{
		batch.Submit(remote.CallDescriptor{Method: "getArchiveTypes"}),
	}
}

// Compare implements change.Source.
func (a *ArchiveType) Compare(reads []*remote.Promise) ([]*change.Change, error) {
	result, err := reads[0].Result()
	if err != nil {
		return nil, &herrors.ChangeReadError{Kind: a.key.Kind, Name: a.key.Name, Cause: err}
	}

	name := a.key.Name
	items, _ := result.([]any)
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if ok && entry["name"] == name {
			return nil, nil
		}
	}

	extensions := strings.Join(a.Extensions, " ")
	return []*change.Change{{
		Op:          "create-object",
		Parameters:  map[string]any{"description": a.Description, "extensions": a.Extensions, "compression": a.Compression},
		Description: fmt.Sprintf("create archive type %q", name),
		Submit: func(batch remote.Batch) *remote.Promise {
			return batch.Submit(remote.CallDescriptor{
				Method: "addArchiveType",
				NamedArgs: map[string]any{
					"name":             name,
					"description":      a.Description,
					"extensions":       extensions,
					"compression_type": a.Compression,
				},
			})
		},
	}}, nil
}

// Split implements Entity: ArchiveType declares no deferrable slots.
func (a *ArchiveType) Split(map[string]bool) (Entity, Entity) {
	a.splitPanic(a.key)
	return nil, nil
}
