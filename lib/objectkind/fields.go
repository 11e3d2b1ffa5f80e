// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package objectkind

import (
	"fmt"
	"sort"

	"github.com/hubsync/habitude/lib/herrors"
)

// fieldError wraps a field-extraction failure as the ValidationError
// the rest of the pipeline expects from a malformed declaration.
func fieldError(path string, origin herrors.Origin, cause error) error {
	return &herrors.ValidationError{Origin: origin, FieldPath: path, Cause: cause}
}

func stringField(fields map[string]any, key string, origin herrors.Origin) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fieldError(key, origin, fmt.Errorf("expected a string, got %T", raw))
	}
	return s, nil
}

func requiredStringField(fields map[string]any, key string, origin herrors.Origin) (string, error) {
	s, err := stringField(fields, key, origin)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", fieldError(key, origin, fmt.Errorf("required field is missing"))
	}
	return s, nil
}

func boolField(fields map[string]any, key string, origin herrors.Origin, defaultValue bool) (bool, error) {
	raw, ok := fields[key]
	if !ok {
		return defaultValue, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, fieldError(key, origin, fmt.Errorf("expected a bool, got %T", raw))
	}
	return b, nil
}

func intField(fields map[string]any, key string, origin herrors.Origin, defaultValue int) (int, error) {
	raw, ok := fields[key]
	if !ok {
		return defaultValue, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fieldError(key, origin, fmt.Errorf("expected a number, got %T", raw))
	}
}

func stringListField(fields map[string]any, key string, origin herrors.Origin) ([]string, error) {
	raw, ok := fields[key]
	if !ok {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fieldError(key, origin, fmt.Errorf("expected a list, got %T", raw))
	}
	out := make([]string, 0, len(items))
	for index, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fieldError(fmt.Sprintf("%s[%d]", key, index), origin, fmt.Errorf("expected a string, got %T", item))
		}
		out = append(out, s)
	}
	return out, nil
}

func stringMapField(fields map[string]any, key string, origin herrors.Origin) (map[string]any, error) {
	raw, ok := fields[key]
	if !ok {
		return nil, nil
	}
	switch m := raw.(type) {
	case map[string]any:
		return m, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, fieldError(key, origin, fmt.Errorf("map key %v is not a string", k))
			}
			out[ks] = v
		}
		return out, nil
	default:
		return nil, fieldError(key, origin, fmt.Errorf("expected a map, got %T", raw))
	}
}

// stringPackageListMapField reads a map of string to string list, the
// shape tag.group uses for group-name → package-list.
func stringPackageListMapField(fields map[string]any, key string, origin herrors.Origin) (map[string][]string, error) {
	raw, err := stringMapField(fields, key, origin)
	if err != nil || raw == nil {
		return nil, err
	}
	out := make(map[string][]string, len(raw))
	for name, value := range raw {
		items, ok := value.([]any)
		if !ok {
			return nil, fieldError(fmt.Sprintf("%s.%s", key, name), origin, fmt.Errorf("expected a list, got %T", value))
		}
		packages := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, fieldError(fmt.Sprintf("%s.%s", key, name), origin, fmt.Errorf("expected a string package name, got %T", item))
			}
			packages = append(packages, s)
		}
		out[name] = packages
	}
	return out, nil
}

// sortedKeys returns the keys of m in sorted order, for deterministic
// change emission over a map-shaped field.
func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// stringSet builds a deduplicated set from a string list, preserving
// the ability to test membership during diffing.
func stringSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
