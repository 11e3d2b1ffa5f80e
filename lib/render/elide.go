// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"reflect"

	"gopkg.in/yaml.v3"
)

// ElideDefaults strips every key from fields whose value deep-equals
// the kind's declared default for that key, to minimize noise in
// rendered output. The input map is not modified; a new map is
// returned.
func ElideDefaults(fields, defaults map[string]any) map[string]any {
	elided := make(map[string]any, len(fields))
	for key, value := range fields {
		if def, ok := defaults[key]; ok && reflect.DeepEqual(value, def) {
			continue
		}
		elided[key] = value
	}
	return elided
}

// FormatDocument renders kind/name's observed fields as a YAML
// document of the same shape lib/docmodel parses, for the dump/fetch
// CLI subcommands. defaults, when non-nil, is applied via
// ElideDefaults before marshaling.
func FormatDocument(kind, name string, fields, defaults map[string]any) (string, error) {
	if defaults != nil {
		fields = ElideDefaults(fields, defaults)
	}

	doc := map[string]any{
		"type": kind,
		"name": name,
	}
	for key, value := range fields {
		doc[key] = value
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
