// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package namespace

import (
	"fmt"

	"github.com/hubsync/habitude/lib/docmodel"
	"github.com/hubsync/habitude/lib/herrors"
	"github.com/hubsync/habitude/lib/objectkind"
)

// Expand consumes the pending work queue in insertion order. Core
// entities install directly; template-calls are resolved against the
// template map, validated, rendered, and their output re-enqueued
// with an extended trace. Expansion is an explicit work queue rather
// than recursive function calls, so the depth bound is a plain length
// check against each entry's trace instead of a recursion-overflow
// catch.
func (n *Namespace) Expand() error {
	n.expansionStarted = true

	for len(n.pending) > 0 {
		entry := n.pending[0]
		n.pending = n.pending[1:]

		if entry.asEntity != nil {
			if err := n.install(entry.asEntity.entity); err != nil {
				return err
			}
			continue
		}

		if err := n.expandCall(entry.asCall.call); err != nil {
			return err
		}
	}

	return nil
}

func (n *Namespace) install(entity objectkind.Entity) error {
	key := entity.Key()
	existing, present := n.origins[key]
	if !present {
		n.expanded[key] = entity
		n.origins[key] = entity.Origin()
		return nil
	}

	switch n.policy {
	case RedefineError:
		return &herrors.RedefineError{
			Kind:       key.Kind,
			Name:       key.Name,
			Origin:     entity.Origin(),
			OriginalAt: existing,
		}
	case RedefineReplace:
		n.expanded[key] = entity
		n.origins[key] = entity.Origin()
	case RedefineWarn:
		n.expanded[key] = entity
		n.origins[key] = existing
		n.Diagnostics = append(n.Diagnostics, fmt.Sprintf(
			"redefinition of %s at %s (original %s) kept under warn policy", key, entity.Origin(), existing))
	case RedefineSkip:
		n.Diagnostics = append(n.Diagnostics, fmt.Sprintf(
			"redefinition of %s at %s (original %s) skipped", key, entity.Origin(), existing))
	}
	return nil
}

func (n *Namespace) expandCall(call *objectkind.TemplateCall) error {
	origin := call.Origin()

	if n.maxDepth > 0 && origin.Depth() >= n.maxDepth {
		return &herrors.ExpansionError{
			Template:      call.Template,
			Origin:        origin,
			DepthExceeded: true,
			MaxDepth:      n.maxDepth,
		}
	}

	tmpl, ok := n.templates[call.Template]
	if !ok {
		return &herrors.ExpansionError{
			Template:       call.Template,
			Origin:         origin,
			KnownTemplates: n.KnownTemplateNames(),
		}
	}

	merged := make(map[string]any, len(tmpl.Defaults)+len(call.Data))
	for k, v := range tmpl.Defaults {
		merged[k] = v
	}
	for k, v := range call.Data {
		merged[k] = v
	}

	if len(tmpl.Schema) > 0 {
		if issues := validateAgainstSchema(tmpl.Schema, merged); len(issues) > 0 {
			return &herrors.ValidationError{
				Origin:    origin,
				FieldPath: call.Template,
				Cause:     fmt.Errorf("%d issue(s): %v", len(issues), issues),
			}
		}
	}

	body, err := n.templateBody(tmpl)
	if err != nil {
		return &herrors.TemplateSyntaxError{Template: tmpl.Key().Name, Origin: origin, Cause: err}
	}

	rendered, err := n.renderer.Render(tmpl.Key().Name, body, merged)
	if err != nil {
		return &herrors.TemplateRenderError{Template: tmpl.Key().Name, Origin: origin, Cause: err}
	}

	frame := herrors.TraceEntry{Template: tmpl.Key().Name, File: tmpl.Origin().File, Line: tmpl.Origin().Line}
	childOrigin := origin.WithTrace(frame)

	docs, err := docmodel.ParseYAMLStream([]byte(rendered), childOrigin)
	if err != nil {
		return &herrors.TemplateOutputError{Template: tmpl.Key().Name, Origin: origin, Cause: err}
	}

	for _, doc := range docs {
		entry, queue, err := n.resolveDocument(doc)
		if err != nil {
			return &herrors.TemplateOutputError{Template: tmpl.Key().Name, Origin: origin, Cause: err}
		}
		if queue {
			n.pending = append(n.pending, entry)
		}
	}

	return nil
}

func (n *Namespace) templateBody(tmpl *objectkind.TemplateDef) (string, error) {
	if tmpl.Body != "" {
		return tmpl.Body, nil
	}
	if n.bodyFileRoot == nil {
		return "", fmt.Errorf("template %q declares body-file %q but no body-file loader is configured", tmpl.Key().Name, tmpl.BodyFile)
	}
	return n.bodyFileRoot(tmpl.BodyFile)
}
