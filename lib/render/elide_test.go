// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"strings"
	"testing"
)

func TestElideDefaultsDropsMatchingKeys(t *testing.T) {
	t.Parallel()

	fields := map[string]any{
		"arches": "x86_64",
		"locked": false,
		"maven":  true,
	}
	defaults := map[string]any{
		"locked": false,
		"maven":  false,
	}

	elided := ElideDefaults(fields, defaults)

	if _, ok := elided["locked"]; ok {
		t.Errorf("locked should have been elided, got %v", elided)
	}
	if got, ok := elided["maven"]; !ok || got != true {
		t.Errorf("maven should survive since it differs from its default, got %v", elided)
	}
	if got, ok := elided["arches"]; !ok || got != "x86_64" {
		t.Errorf("arches has no default entry and should survive unchanged, got %v", elided)
	}
}

func TestElideDefaultsDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	fields := map[string]any{"locked": false}
	defaults := map[string]any{"locked": false}

	ElideDefaults(fields, defaults)

	if _, ok := fields["locked"]; !ok {
		t.Fatalf("input map was mutated")
	}
}

func TestFormatDocumentIncludesKindAndName(t *testing.T) {
	t.Parallel()

	doc, err := FormatDocument("tag", "build", map[string]any{"locked": true}, nil)
	if err != nil {
		t.Fatalf("FormatDocument: %v", err)
	}
	if !strings.Contains(doc, "type: tag") {
		t.Errorf("document missing type field: %q", doc)
	}
	if !strings.Contains(doc, "name: build") {
		t.Errorf("document missing name field: %q", doc)
	}
	if !strings.Contains(doc, "locked: true") {
		t.Errorf("document missing locked field: %q", doc)
	}
}

func TestFormatDocumentAppliesDefaults(t *testing.T) {
	t.Parallel()

	doc, err := FormatDocument("tag", "build", map[string]any{"locked": false}, map[string]any{"locked": false})
	if err != nil {
		t.Fatalf("FormatDocument: %v", err)
	}
	if strings.Contains(doc, "locked") {
		t.Errorf("locked should have been elided as a default, got %q", doc)
	}
}
