// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

// Package hubkey defines the stable identity shared by every layer of
// the reconciliation pipeline: the namespace, resolver, solver,
// change reports, and processor all key their maps on a Key. It is
// kept dependency-free so it can sit at the bottom of the import
// graph without pulling in the object model or the remote session
// contract.
package hubkey

import (
	"fmt"
	"strings"
)

// Key is the stable identity of a declared entity: its kind (a short
// lowercase tag such as "tag" or "target") and its name (an opaque
// string, unique within that kind after expansion).
type Key struct {
	Kind string
	Name string
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.Kind, k.Name)
}

// Less provides the deterministic (kind, name) ordering the solver
// and processor use within a tier and within a chunk.
func (k Key) Less(other Key) bool {
	if k.Kind != other.Kind {
		return k.Kind < other.Kind
	}
	return k.Name < other.Name
}

// ParseKey parses the inverse of String: "kind:name". Returns an
// error if s has no colon or either side is empty.
func ParseKey(s string) (Key, error) {
	kind, name, ok := strings.Cut(s, ":")
	if !ok || kind == "" || name == "" {
		return Key{}, fmt.Errorf("hubkey: invalid key %q, want \"kind:name\"", s)
	}
	return Key{Kind: kind, Name: name}, nil
}
