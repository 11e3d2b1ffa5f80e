// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package objectkind

import (
	"github.com/hubsync/habitude/lib/change"
	"github.com/hubsync/habitude/lib/herrors"
	"github.com/hubsync/habitude/lib/remote"
)

// TemplateCall is a raw document whose declared type named no core
// kind. lib/namespace holds these in pending until expand() resolves
// the name against the template map; a TemplateCall never reaches the
// solver directly, it is always replaced by its expansion.
type TemplateCall struct {
	base
	unsupportedSplit

	Template string
	Data     map[string]any
}

// NewTemplateCall builds the pending entry for an unrecognized
// document type. Unlike the other constructors this is not installed
// in the kind registry: lib/namespace's resolveDocument calls it
// directly for any type it does not otherwise recognize.
func NewTemplateCall(template, name string, data map[string]any, origin herrors.Origin) *TemplateCall {
	return &TemplateCall{
		base:     newBase("template-call", name, origin),
		Template: template,
		Data:     data,
	}
}

// DependencyKeys implements Entity: unexpanded, a template call has
// no resolvable edges of its own.
func (c *TemplateCall) DependencyKeys() []DependencySlot { return nil }

// EnqueueRead implements change.Source; never called, since expand()
// always replaces a TemplateCall before the solver sees it.
func (c *TemplateCall) EnqueueRead(remote.Batch) []*remote.Promise { return nil }

// Compare implements change.Source.
func (c *TemplateCall) Compare([]*remote.Promise) ([]*change.Change, error) { return nil, nil }
