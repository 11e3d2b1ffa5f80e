// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package xmlrpc

import (
	"encoding/xml"
	"reflect"
	"testing"
)

func roundTrip(t *testing.T, v any) any {
	t.Helper()
	frag, err := marshalValue(v)
	if err != nil {
		t.Fatalf("marshalValue(%#v): %v", v, err)
	}

	var decoded rpcValue
	if err := xml.Unmarshal([]byte(frag), &decoded); err != nil {
		t.Fatalf("xml.Unmarshal(%q): %v", frag, err)
	}
	got, err := decoded.toAny()
	if err != nil {
		t.Fatalf("toAny: %v", err)
	}
	return got
}

func TestMarshalUnmarshalScalars(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"string", "hello", "hello"},
		{"int", 42, 42},
		{"bool true", true, true},
		{"bool false", false, false},
		{"nil", nil, nil},
		{"double", 3.5, 3.5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := roundTrip(t, tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestMarshalUnmarshalArray(t *testing.T) {
	t.Parallel()

	in := []any{"x86_64", "i386", 7}
	got := roundTrip(t, in)

	want := []any{"x86_64", "i386", 7}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestMarshalUnmarshalStruct(t *testing.T) {
	t.Parallel()

	in := map[string]any{
		"locked": true,
		"name":   "build",
		"count":  3,
	}
	got := roundTrip(t, in)

	want := map[string]any{
		"locked": true,
		"name":   "build",
		"count":  3,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestMarshalUnmarshalNestedStructInArray(t *testing.T) {
	t.Parallel()

	in := []any{
		map[string]any{"parent_name": "a", "priority": 0},
		map[string]any{"parent_name": "b", "priority": 10},
	}
	got, ok := roundTrip(t, in).([]any)
	if !ok || len(got) != 2 {
		t.Fatalf("got %#v, want 2-element array", got)
	}
	first, ok := got[0].(map[string]any)
	if !ok || first["parent_name"] != "a" || first["priority"] != 0 {
		t.Errorf("first element = %#v", first)
	}
}

func TestEscapesSpecialCharacters(t *testing.T) {
	t.Parallel()

	got := roundTrip(t, "a & b < c > d \"e\"")
	if got != "a & b < c > d \"e\"" {
		t.Errorf("got %q", got)
	}
}
