// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

// Package namespace implements the template namespace: it ingests
// normalized documents, holds templates and pre-expansion entities,
// and drives recursive template-call expansion into a flat
// (kind,name) → Entity map. It owns entities from ingest until the
// solver takes over by reference; it never mutates an entity after
// expansion completes.
package namespace

import (
	"fmt"
	"sort"

	"github.com/hubsync/habitude/lib/docmodel"
	"github.com/hubsync/habitude/lib/herrors"
	"github.com/hubsync/habitude/lib/hubkey"
	"github.com/hubsync/habitude/lib/objectkind"
)

// RedefinePolicy governs what happens when a second document ingests
// the same (kind, name) key.
type RedefinePolicy int

const (
	// RedefineError fails the run on any redefinition. Default.
	RedefineError RedefinePolicy = iota
	// RedefineReplace keeps the newest declaration, discarding the
	// first one's origin.
	RedefineReplace
	// RedefineWarn keeps the newest declaration and records a
	// diagnostic instead of failing.
	RedefineWarn
	// RedefineSkip keeps the first declaration, discards later ones,
	// and records a diagnostic for each one discarded.
	RedefineSkip
)

func (p RedefinePolicy) String() string {
	switch p {
	case RedefineError:
		return "error"
	case RedefineReplace:
		return "replace"
	case RedefineWarn:
		return "warn"
	case RedefineSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// Renderer renders a template body against merged call data, yielding
// a rendered document sequence as raw YAML/JSON text. The concrete
// rendering engine is an external collaborator; this package only
// needs the contract at this boundary. See lib/texttemplate for the
// default implementation.
type Renderer interface {
	Render(templateName, body string, data map[string]any) (string, error)
}

// pendingEntity is a core object kind instance waiting to be
// installed into expanded.
type pendingEntity struct {
	entity objectkind.Entity
}

// pendingCall is a template-call waiting to be expanded, either
// sitting in the work queue as a *objectkind.TemplateCall (for kinds
// the registry does not recognize) or freshly produced by a prior
// expansion round.
type pendingCall struct {
	call *objectkind.TemplateCall
}

type pendingEntry struct {
	asEntity *pendingEntity
	asCall   *pendingCall
}

// Namespace holds templates, the pending work queue, and the
// post-expansion entity map. Zero value is not usable; construct with
// New.
type Namespace struct {
	policy       RedefinePolicy
	maxDepth     int
	renderer     Renderer
	bodyFileRoot func(path string) (string, error)

	templates map[string]*objectkind.TemplateDef
	pending   []pendingEntry
	expanded  map[hubkey.Key]objectkind.Entity
	origins   map[hubkey.Key]herrors.Origin

	expansionStarted bool
	Diagnostics      []string
}

// Option configures a Namespace at construction time.
type Option func(*Namespace)

// WithBodyFileLoader configures how `body-file` template references
// are read from disk. Without one, a template declaring `body-file`
// fails expansion when it is actually called.
func WithBodyFileLoader(loader func(path string) (string, error)) Option {
	return func(n *Namespace) { n.bodyFileRoot = loader }
}

// New constructs an empty Namespace. maxDepth bounds template
// expansion recursion; a depth of 0 disables the bound.
func New(policy RedefinePolicy, maxDepth int, renderer Renderer, opts ...Option) *Namespace {
	n := &Namespace{
		policy:    policy,
		maxDepth:  maxDepth,
		renderer:  renderer,
		templates: make(map[string]*objectkind.TemplateDef),
		expanded:  make(map[hubkey.Key]objectkind.Entity),
		origins:   make(map[hubkey.Key]herrors.Origin),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Ingest dispatches one normalized document: a "template" document
// registers into the template map; a document whose type names a
// known object kind is constructed and queued; any other type becomes
// a template-call queued for expansion.
func (n *Namespace) Ingest(doc docmodel.Document) error {
	entry, queue, err := n.resolveDocument(doc)
	if err != nil {
		return err
	}
	if queue {
		n.pending = append(n.pending, entry)
	}
	return nil
}

// resolveDocument implements the dispatch rule shared by Ingest and
// expand's recursive step: templates register directly, known kinds
// and unknown kinds both produce a pendingEntry for the caller to
// enqueue. queue is false only when doc registered a template and
// nothing needs to be queued.
func (n *Namespace) resolveDocument(doc docmodel.Document) (pendingEntry, bool, error) {
	if doc.Type == "template" {
		entity, err := buildTemplate(doc)
		if err != nil {
			return pendingEntry{}, false, err
		}
		n.templates[doc.Name] = entity
		return pendingEntry{}, false, nil
	}

	constructor, known := objectkind.Lookup(doc.Type)
	if known {
		entity, err := constructor(doc.Name, doc.Fields, doc.Origin)
		if err != nil {
			return pendingEntry{}, false, err
		}
		return pendingEntry{asEntity: &pendingEntity{entity: entity}}, true, nil
	}

	call := objectkind.NewTemplateCall(doc.Type, doc.Name, doc.Fields, doc.Origin)
	return pendingEntry{asCall: &pendingCall{call: call}}, true, nil
}

func buildTemplate(doc docmodel.Document) (*objectkind.TemplateDef, error) {
	constructor, ok := objectkind.Lookup("template")
	if !ok {
		return nil, fmt.Errorf("namespace: no constructor registered for kind %q", "template")
	}
	entity, err := constructor(doc.Name, doc.Fields, doc.Origin)
	if err != nil {
		return nil, err
	}
	return entity.(*objectkind.TemplateDef), nil
}

// Expanded returns the post-expansion entity map. Valid only after
// Expand has returned successfully.
func (n *Namespace) Expanded() map[hubkey.Key]objectkind.Entity {
	return n.expanded
}

// Template returns the registered template definition for name, if
// any, for the CLI's "templates show" subcommand.
func (n *Namespace) Template(name string) (*objectkind.TemplateDef, bool) {
	tmpl, ok := n.templates[name]
	return tmpl, ok
}

// KnownTemplateNames returns every registered template name, sorted,
// for ExpansionError's diagnostic listing.
func (n *Namespace) KnownTemplateNames() []string {
	names := make([]string, 0, len(n.templates))
	for name := range n.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
