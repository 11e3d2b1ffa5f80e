// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package herrors

import "fmt"

// DocumentParseError wraps a malformed configuration document. It
// carries the file and line the parser was at when it failed.
type DocumentParseError struct {
	Origin Origin
	Cause  error
}

func (e *DocumentParseError) Error() string {
	return fmt.Sprintf("parsing document at %s: %v", e.Origin, e.Cause)
}

func (e *DocumentParseError) Unwrap() error { return e.Cause }

// ValidationError reports a document or template-call payload that
// failed its declared schema.
type ValidationError struct {
	Origin    Origin
	FieldPath string
	Cause     error
}

func (e *ValidationError) Error() string {
	if e.FieldPath != "" {
		return fmt.Sprintf("validating %q at %s: %v", e.FieldPath, e.Origin, e.Cause)
	}
	return fmt.Sprintf("validating document at %s: %v", e.Origin, e.Cause)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// TemplateSyntaxError reports a template body that failed to parse.
type TemplateSyntaxError struct {
	Template string
	Origin   Origin
	Cause    error
}

func (e *TemplateSyntaxError) Error() string {
	return fmt.Sprintf("template %q syntax at %s: %v", e.Template, e.Origin, e.Cause)
}

func (e *TemplateSyntaxError) Unwrap() error { return e.Cause }

// TemplateRenderError reports a template that parsed but failed to
// render against the call's merged data (e.g. an undefined variable).
type TemplateRenderError struct {
	Template string
	Origin   Origin
	Cause    error
}

func (e *TemplateRenderError) Error() string {
	return fmt.Sprintf("rendering template %q at %s: %v", e.Template, e.Origin, e.Cause)
}

func (e *TemplateRenderError) Unwrap() error { return e.Cause }

// TemplateOutputError reports a template render that produced
// documents the loader could not turn into valid core objects.
type TemplateOutputError struct {
	Template string
	Origin   Origin
	Cause    error
}

func (e *TemplateOutputError) Error() string {
	return fmt.Sprintf("template %q produced invalid output at %s: %v", e.Template, e.Origin, e.Cause)
}

func (e *TemplateOutputError) Unwrap() error { return e.Cause }

// ExpansionError reports a template-call that could not be expanded:
// either the named template is unknown, or the expansion depth budget
// was exceeded.
type ExpansionError struct {
	Template       string
	Origin         Origin
	KnownTemplates []string
	DepthExceeded  bool
	MaxDepth       int
}

func (e *ExpansionError) Error() string {
	if e.DepthExceeded {
		return fmt.Sprintf("expansion depth exceeded (max %d) at %s", e.MaxDepth, e.Origin)
	}
	return fmt.Sprintf("unknown template %q at %s (known: %v)", e.Template, e.Origin, e.KnownTemplates)
}

// RedefineError reports a second declaration of the same key under
// the "error" redefine policy.
type RedefineError struct {
	Kind, Name string
	Origin     Origin
	OriginalAt Origin
}

func (e *RedefineError) Error() string {
	return fmt.Sprintf("redefinition of (%s,%s) at %s (original %s)", e.Kind, e.Name, e.Origin, e.OriginalAt)
}

// ChangeReadError reports a remote read failure for a specific entity.
type ChangeReadError struct {
	Kind, Name string
	Cause      error
}

func (e *ChangeReadError) Error() string {
	return fmt.Sprintf("reading remote state for (%s,%s): %v", e.Kind, e.Name, e.Cause)
}

func (e *ChangeReadError) Unwrap() error { return e.Cause }

// CallDescriptor identifies the remote call a ChangeApplyError failed
// on, for diagnostic output.
type CallDescriptor struct {
	Method         string
	PositionalArgs []any
	NamedArgs      map[string]any
}

func (c CallDescriptor) String() string {
	return fmt.Sprintf("%s(%v, %v)", c.Method, c.PositionalArgs, c.NamedArgs)
}

// ChangeApplyError reports a remote write failure for a specific
// change, carrying the call descriptor and a human description of the
// change that failed.
type ChangeApplyError struct {
	Kind, Name  string
	Call        CallDescriptor
	Description string
	Cause       error
}

func (e *ChangeApplyError) Error() string {
	return fmt.Sprintf("applying change %q to (%s,%s) via %s: %v", e.Description, e.Kind, e.Name, e.Call, e.Cause)
}

func (e *ChangeApplyError) Unwrap() error { return e.Cause }

// PhantomError reports a phantom presence reaching a tier in apply
// mode without the skip-phantoms policy set.
type PhantomError struct {
	Kind, Name string
	Origin     Origin
}

func (e *PhantomError) Error() string {
	return fmt.Sprintf("undeclared dependency (%s,%s) referenced at %s", e.Kind, e.Name, e.Origin)
}
