// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package objectkind

import (
	"fmt"

	"github.com/hubsync/habitude/lib/change"
	"github.com/hubsync/habitude/lib/herrors"
	"github.com/hubsync/habitude/lib/remote"
)

// TemplateDef is the template object kind: a macro definition with a
// name, an inline or external rendering body, optional defaults, and
// an optional input-validation schema. lib/namespace intercepts
// "template" documents before they ever reach the solver; TemplateDef
// exists so introspection commands (the templates CLI subcommand) can
// describe a registered template through the same Entity shape as
// every other kind.
type TemplateDef struct {
	base
	unsupportedSplit

	Body     string
	BodyFile string
	Defaults map[string]any
	Schema   map[string]any
}

func newTemplateDef(name string, fields map[string]any, origin herrors.Origin) (Entity, error) {
	t := &TemplateDef{base: newBase("template", name, origin)}

	var err error
	if t.Body, err = stringField(fields, "body", origin); err != nil {
		return nil, err
	}
	if t.BodyFile, err = stringField(fields, "body-file", origin); err != nil {
		return nil, err
	}
	if t.Body == "" && t.BodyFile == "" {
		return nil, fieldError("body", origin, fmt.Errorf("template must declare either 'body' or 'body-file'"))
	}
	if t.Defaults, err = stringMapField(fields, "defaults", origin); err != nil {
		return nil, err
	}
	if t.Schema, err = stringMapField(fields, "schema", origin); err != nil {
		return nil, err
	}

	return t, nil
}

// DependencyKeys implements Entity: a template definition is never
// scheduled by the solver, so it declares no edges.
func (t *TemplateDef) DependencyKeys() []DependencySlot { return nil }

// EnqueueRead implements change.Source: templates are never read
// from or applied to the remote.
func (t *TemplateDef) EnqueueRead(remote.Batch) []*remote.Promise { return nil }

// Compare implements change.Source.
func (t *TemplateDef) Compare([]*remote.Promise) ([]*change.Change, error) { return nil, nil }

// Split implements Entity: TemplateDef declares no deferrable slots.
func (t *TemplateDef) Split(map[string]bool) (Entity, Entity) {
	t.splitPanic(t.key)
	return nil, nil
}
