// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

// Package texttemplate is the default lib/namespace.Renderer: it
// renders a template body with Go's text/template against the merged
// call data and treats the result as a YAML document stream. The
// renderer sits behind the Renderer interface as a swappable
// collaborator, so text/template fills the role directly rather than
// pulling in a templating engine no other component needs.
package texttemplate

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Renderer renders template bodies with text/template. Each call gets
// a fresh *template.Template, so concurrent calls never share parser
// state; templates are short-lived macro bodies, not hot-path code.
type Renderer struct {
	// Funcs are added to every template's function map, alongside a
	// small builtin set (toYAML-safe string helpers). Optional.
	Funcs template.FuncMap
}

// New returns a Renderer with the builtin function set installed.
func New() *Renderer {
	return &Renderer{}
}

// Render implements namespace.Renderer.
func (r *Renderer) Render(templateName, body string, data map[string]any) (string, error) {
	funcs := template.FuncMap{
		"indent": indentLines,
		"join":   strings.Join,
		"upper":  strings.ToUpper,
		"lower":  strings.ToLower,
		"quote":  func(s string) string { return fmt.Sprintf("%q", s) },
	}
	for name, fn := range r.Funcs {
		funcs[name] = fn
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Option("missingkey=error").Parse(body)
	if err != nil {
		return "", fmt.Errorf("parsing template %q: %w", templateName, err)
	}

	var out bytes.Buffer
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("rendering template %q: %w", templateName, err)
	}

	return out.String(), nil
}

func indentLines(spaces int, text string) string {
	pad := strings.Repeat(" ", spaces)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}
