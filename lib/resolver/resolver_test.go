// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"reflect"
	"testing"

	"github.com/hubsync/habitude/lib/herrors"
	"github.com/hubsync/habitude/lib/hubkey"
	"github.com/hubsync/habitude/lib/objectkind"
)

func TestLookupPresent(t *testing.T) {
	t.Parallel()

	entity, err := mustConstruct(t, "permission", "admin", nil)
	if err != nil {
		t.Fatal(err)
	}
	expanded := map[hubkey.Key]objectkind.Entity{entity.Key(): entity}
	r := New(expanded, nil)

	if got := r.Lookup(entity.Key(), herrors.Origin{}); got != Present {
		t.Errorf("Lookup = %v, want Present", got)
	}
	if r.HasPhantoms() {
		t.Errorf("expected no phantoms")
	}
}

func TestLookupSynthesizesPhantomOnce(t *testing.T) {
	t.Parallel()

	r := New(map[hubkey.Key]objectkind.Entity{}, nil)
	key := hubkey.Key{Kind: "tag", Name: "missing"}
	first := herrors.Origin{File: "a.yaml", Line: 3}
	second := herrors.Origin{File: "b.yaml", Line: 9}

	if got := r.Lookup(key, first); got != Phantom {
		t.Fatalf("Lookup = %v, want Phantom", got)
	}
	if got := r.Lookup(key, second); got != Phantom {
		t.Fatalf("Lookup = %v, want Phantom", got)
	}

	phantoms := r.Phantoms()
	if len(phantoms) != 1 {
		t.Fatalf("len(Phantoms()) = %d, want 1", len(phantoms))
	}
	if !reflect.DeepEqual(phantoms[0].Origin, first) {
		t.Errorf("phantom origin = %+v, want first reference %+v", phantoms[0].Origin, first)
	}
}

func TestLookupDiscovered(t *testing.T) {
	t.Parallel()

	key := hubkey.Key{Kind: "tag", Name: "external"}
	r := New(map[hubkey.Key]objectkind.Entity{}, map[hubkey.Key]bool{key: true})

	if got := r.Lookup(key, herrors.Origin{}); got != Discovered {
		t.Errorf("Lookup = %v, want Discovered", got)
	}
	if r.HasPhantoms() {
		t.Errorf("expected no phantoms for a discovered key")
	}
}

func mustConstruct(t *testing.T, kind, name string, fields map[string]any) (objectkind.Entity, error) {
	t.Helper()
	constructor, ok := objectkind.Lookup(kind)
	if !ok {
		t.Fatalf("no constructor registered for kind %q", kind)
	}
	return constructor(name, fields, herrors.Origin{})
}
