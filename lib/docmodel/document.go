// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

// Package docmodel loads configuration documents from disk and
// normalizes them into a flat sequence of typed records with origin
// metadata attached. It understands two on-disk formats — YAML and
// JSONC — and the "multi" document type that fans a single document
// out into many, mirroring the conventions used across the example
// configuration formats this tool's documents are styled after.
//
// docmodel has no knowledge of the core object kinds; it hands the
// namespace package a sequence of (type string, fields map[string]any,
// origin) triples and lets the namespace decide what to do with each.
package docmodel

import (
	"fmt"
	"strings"

	"github.com/hubsync/habitude/lib/herrors"
)

// Document is one normalized configuration record: its declared
// `type` field, its remaining fields, and where it came from.
type Document struct {
	Type   string
	Name   string
	Fields map[string]any
	Origin herrors.Origin
}

// reservedPrefixes lists the field-name prefixes the loader treats as
// carrier metadata rather than object data: YAML/JSON anchors,
// comments-as-data, and forward-looking extension fields. Reserved
// fields are stripped from Fields before the document is handed
// onward, and reserved keys are skipped when expanding a `multi`
// document's entries.
var reservedPrefixes = []string{"_", "x-"}

func isReserved(key string) bool {
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// stripReserved returns a copy of fields with reserved keys removed.
func stripReserved(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if !isReserved(k) {
			out[k] = v
		}
	}
	return out
}

// multiTypeName is the document type that fans out into many
// documents, one per mapping-valued entry.
const multiTypeName = "multi"

// Normalize converts one raw decoded document (a map with at least a
// `type` key) into one or more Documents, expanding `multi` documents
// into one Document per mapping entry and assigning origin to every
// result. A nil raw document (e.g. an empty YAML document between
// `---` separators) is silently skipped; any other raw document that
// is not a map is a DocumentParseError.
func Normalize(raw any, origin herrors.Origin) ([]Document, error) {
	fields, ok := asStringMap(raw)
	if !ok {
		if raw == nil {
			return nil, nil
		}
		return nil, &herrors.DocumentParseError{
			Origin: origin,
			Cause:  fmt.Errorf("document is not a mapping (got %T)", raw),
		}
	}

	typeValue, hasType := fields["type"]
	if !hasType {
		return nil, &herrors.DocumentParseError{
			Origin: origin,
			Cause:  fmt.Errorf("document has no 'type' field"),
		}
	}
	typeName, ok := typeValue.(string)
	if !ok {
		return nil, &herrors.DocumentParseError{
			Origin: origin,
			Cause:  fmt.Errorf("'type' field must be a string (got %T)", typeValue),
		}
	}

	if typeName == multiTypeName {
		return expandMulti(fields, origin)
	}

	clean := stripReserved(fields)
	delete(clean, "type")

	name, _ := clean["name"].(string)

	return []Document{{
		Type:   typeName,
		Name:   name,
		Fields: clean,
		Origin: origin,
	}}, nil
}

// expandMulti turns a `multi` document into one document per
// mapping-valued entry in its fields (excluding `type` and reserved
// keys). The entry's key becomes the document's name unless the
// entry itself declares one.
func expandMulti(fields map[string]any, origin herrors.Origin) ([]Document, error) {
	var out []Document

	for key, value := range fields {
		if key == "type" || isReserved(key) {
			continue
		}

		entry, ok := asStringMap(value)
		if !ok {
			continue
		}

		typeValue, hasType := entry["type"]
		if !hasType {
			return nil, &herrors.DocumentParseError{
				Origin: origin,
				Cause:  fmt.Errorf("multi entry %q has no 'type' field", key),
			}
		}
		typeName, ok := typeValue.(string)
		if !ok {
			return nil, &herrors.DocumentParseError{
				Origin: origin,
				Cause:  fmt.Errorf("multi entry %q 'type' field must be a string", key),
			}
		}

		clean := stripReserved(entry)
		delete(clean, "type")

		name, hasName := clean["name"].(string)
		if !hasName || name == "" {
			name = key
			clean["name"] = key
		}

		out = append(out, Document{
			Type:   typeName,
			Name:   name,
			Fields: clean,
			Origin: origin,
		})
	}

	return out, nil
}

func asStringMap(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = v
		}
		return out, true
	default:
		return nil, false
	}
}
