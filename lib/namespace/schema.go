// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package namespace

import "fmt"

// validateAgainstSchema checks merged call data against a template's
// declared schema. The schema format is a lightweight structural
// subset: a map of field name to a descriptor map with "type" (one of
// "string", "bool", "int", "list", "map") and optional "required"
// (bool). A hand-rolled structural check fills the role here rather
// than pulling in a general-purpose JSON-schema engine for a handful
// of type checks.
func validateAgainstSchema(schema map[string]any, data map[string]any) []string {
	var issues []string

	for field, rawDescriptor := range schema {
		descriptor, ok := rawDescriptor.(map[string]any)
		if !ok {
			continue
		}

		value, present := data[field]

		if required, _ := descriptor["required"].(bool); required && !present {
			issues = append(issues, fmt.Sprintf("%q is required", field))
			continue
		}
		if !present {
			continue
		}

		wantType, _ := descriptor["type"].(string)
		if wantType == "" {
			continue
		}
		if !matchesType(value, wantType) {
			issues = append(issues, fmt.Sprintf("%q must be of type %q (got %T)", field, wantType, value))
		}
	}

	return issues
}

func matchesType(value any, wantType string) bool {
	switch wantType {
	case "string":
		_, ok := value.(string)
		return ok
	case "bool":
		_, ok := value.(bool)
		return ok
	case "int":
		switch value.(type) {
		case int, int64, float64:
			return true
		default:
			return false
		}
	case "list":
		_, ok := value.([]any)
		return ok
	case "map":
		_, ok := value.(map[string]any)
		return ok
	default:
		return true
	}
}
