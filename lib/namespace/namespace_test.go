// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package namespace

import (
	"testing"

	"github.com/hubsync/habitude/lib/docmodel"
	"github.com/hubsync/habitude/lib/herrors"
	"github.com/hubsync/habitude/lib/hubkey"
	"github.com/hubsync/habitude/lib/texttemplate"
)

func doc(typ, name string, fields map[string]any) docmodel.Document {
	return docmodel.Document{Type: typ, Name: name, Fields: fields, Origin: herrors.Origin{File: "test.yaml", Line: 1}}
}

func TestExpandSimpleChain(t *testing.T) {
	t.Parallel()

	ns := New(RedefineError, 0, texttemplate.New())

	if err := ns.Ingest(doc("tag", "a", map[string]any{})); err != nil {
		t.Fatalf("ingest a: %v", err)
	}
	if err := ns.Ingest(doc("tag", "b", map[string]any{
		"inheritance": []any{map[string]any{"parent-name": "a", "priority": 0}},
	})); err != nil {
		t.Fatalf("ingest b: %v", err)
	}

	if err := ns.Expand(); err != nil {
		t.Fatalf("expand: %v", err)
	}

	expanded := ns.Expanded()
	if _, ok := expanded[hubkey.Key{Kind: "tag", Name: "a"}]; !ok {
		t.Errorf("expected tag:a in expanded map")
	}
	if _, ok := expanded[hubkey.Key{Kind: "tag", Name: "b"}]; !ok {
		t.Errorf("expected tag:b in expanded map")
	}
}

func TestExpandTemplateWithDefaults(t *testing.T) {
	t.Parallel()

	ns := New(RedefineError, 0, texttemplate.New())

	if err := ns.Ingest(doc("template", "build-tag-template", map[string]any{
		"body": "type: tag\nname: {{ .name }}\narches: {{ .arches }}\n",
		"defaults": map[string]any{
			"arches": []any{"x86_64"},
		},
	})); err != nil {
		t.Fatalf("ingest template: %v", err)
	}

	if err := ns.Ingest(doc("build-tag-template", "mytag", map[string]any{
		"name": "mytag",
	})); err != nil {
		t.Fatalf("ingest call: %v", err)
	}

	if err := ns.Expand(); err != nil {
		t.Fatalf("expand: %v", err)
	}

	key := hubkey.Key{Kind: "tag", Name: "mytag"}
	entity, ok := ns.Expanded()[key]
	if !ok {
		t.Fatalf("expected tag:mytag in expanded map")
	}
	if got := entity.Origin().Depth(); got != 1 {
		t.Errorf("origin.trace depth = %d, want 1", got)
	}
}

func TestRedefinePolicies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		policy    RedefinePolicy
		expectErr bool
	}{
		{"error policy fails", RedefineError, true},
		{"replace policy keeps latest", RedefineReplace, false},
		{"warn policy keeps latest with diagnostic", RedefineWarn, false},
		{"skip policy keeps first", RedefineSkip, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ns := New(tc.policy, 0, texttemplate.New())
			if err := ns.Ingest(doc("permission", "admin", map[string]any{"description": "first"})); err != nil {
				t.Fatalf("ingest first: %v", err)
			}
			if err := ns.Ingest(doc("permission", "admin", map[string]any{"description": "second"})); err != nil {
				t.Fatalf("ingest second: %v", err)
			}

			err := ns.Expand()
			if tc.expectErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expand: %v", err)
			}
			if tc.policy == RedefineWarn && len(ns.Diagnostics) == 0 {
				t.Errorf("expected a diagnostic under warn policy")
			}
		})
	}
}

func TestExpandUnknownTemplateFails(t *testing.T) {
	t.Parallel()

	ns := New(RedefineError, 0, texttemplate.New())
	if err := ns.Ingest(doc("nonexistent-template", "thing", map[string]any{})); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	err := ns.Expand()
	if err == nil {
		t.Fatalf("expected an ExpansionError, got nil")
	}
	if _, ok := err.(*herrors.ExpansionError); !ok {
		t.Fatalf("expected *herrors.ExpansionError, got %T: %v", err, err)
	}
}

func TestExpandDepthExceeded(t *testing.T) {
	t.Parallel()

	ns := New(RedefineError, 1, texttemplate.New())

	if err := ns.Ingest(doc("template", "recurse", map[string]any{
		"body": "type: recurse\nname: {{ .name }}\n",
	})); err != nil {
		t.Fatalf("ingest template: %v", err)
	}
	if err := ns.Ingest(doc("recurse", "x", map[string]any{"name": "x"})); err != nil {
		t.Fatalf("ingest call: %v", err)
	}

	err := ns.Expand()
	if err == nil {
		t.Fatalf("expected a depth-exceeded ExpansionError, got nil")
	}
	expErr, ok := err.(*herrors.ExpansionError)
	if !ok {
		t.Fatalf("expected *herrors.ExpansionError, got %T: %v", err, err)
	}
	if !expErr.DepthExceeded {
		t.Errorf("expected DepthExceeded=true")
	}
}
