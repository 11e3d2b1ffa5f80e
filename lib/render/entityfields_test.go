// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package render

import "testing"

type fakeEntity struct {
	Arches     string
	Locked     bool
	Maven      bool
	unexported int
}

func TestEntityFieldsUsesKebabCaseKeys(t *testing.T) {
	t.Parallel()

	fields := EntityFields(fakeEntity{Arches: "x86_64", Locked: true, Maven: false})

	if got := fields["arches"]; got != "x86_64" {
		t.Errorf("arches = %v, want x86_64", got)
	}
	if got := fields["locked"]; got != true {
		t.Errorf("locked = %v, want true", got)
	}
	if _, ok := fields["maven"]; !ok {
		t.Errorf("maven key missing: %v", fields)
	}
	if _, ok := fields["unexported"]; ok {
		t.Errorf("unexported field should not be extracted: %v", fields)
	}
}

func TestEntityFieldsFollowsPointer(t *testing.T) {
	t.Parallel()

	entity := &fakeEntity{Arches: "aarch64"}
	fields := EntityFields(entity)

	if got := fields["arches"]; got != "aarch64" {
		t.Errorf("arches = %v, want aarch64", got)
	}
}

func TestEntityFieldsNilPointerReturnsEmpty(t *testing.T) {
	t.Parallel()

	var entity *fakeEntity
	fields := EntityFields(entity)

	if len(fields) != 0 {
		t.Errorf("expected empty map for nil pointer, got %v", fields)
	}
}

func TestEntityFieldsNonStructReturnsEmpty(t *testing.T) {
	t.Parallel()

	fields := EntityFields(42)

	if len(fields) != 0 {
		t.Errorf("expected empty map for non-struct, got %v", fields)
	}
}

func TestFieldKeyInsertsHyphenBeforeInteriorCapitals(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Arches":      "arches",
		"MavenSupport": "maven-support",
		"ID":          "i-d",
	}
	for in, want := range cases {
		if got := fieldKey(in); got != want {
			t.Errorf("fieldKey(%q) = %q, want %q", in, got, want)
		}
	}
}
