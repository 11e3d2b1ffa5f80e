// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

// Package herrors defines the error taxonomy shared by the loader,
// namespace, solver, and processor: every user-facing error carries
// the full origin of the document that caused it and preserves the
// underlying cause.
package herrors

import (
	"fmt"
	"strings"
)

// TraceEntry is one frame of a template expansion chain, outermost
// caller first.
type TraceEntry struct {
	Template string
	File     string
	Line     int
}

func (t TraceEntry) String() string {
	if t.Line > 0 {
		return fmt.Sprintf("%s (%s:%d)", t.Template, t.File, t.Line)
	}
	return fmt.Sprintf("%s (%s)", t.Template, t.File)
}

// Origin records where a document or expanded entity came from: the
// file and line it was declared at, plus the template expansion trace
// that produced it (empty for documents loaded directly).
type Origin struct {
	File  string
	Line  int
	Trace []TraceEntry
}

func (o Origin) String() string {
	var b strings.Builder
	if o.File != "" {
		fmt.Fprintf(&b, "%s", o.File)
		if o.Line > 0 {
			fmt.Fprintf(&b, ":%d", o.Line)
		}
	} else {
		b.WriteString("<unknown>")
	}
	for _, frame := range o.Trace {
		fmt.Fprintf(&b, "\n    via %s", frame)
	}
	return b.String()
}

// WithTrace returns a copy of the origin with an additional trace
// frame appended. The original origin's trace is never mutated.
func (o Origin) WithTrace(frame TraceEntry) Origin {
	trace := make([]TraceEntry, len(o.Trace)+1)
	copy(trace, o.Trace)
	trace[len(o.Trace)] = frame
	return Origin{File: o.File, Line: o.Line, Trace: trace}
}

// Depth returns the expansion depth of the origin: the number of
// template frames between the raw document and this entity.
func (o Origin) Depth() int {
	return len(o.Trace)
}
