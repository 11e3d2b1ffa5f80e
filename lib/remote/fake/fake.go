// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

// Package fake is an in-process remote.Session for tests. Two objects
// of the same kind and name share the same "object record" across
// calls, letting tests simulate create-then-read-back round trips
// without any network transport.
package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/hubsync/habitude/lib/remote"
)

// Record is one simulated hub-side object. Tests seed a Session's
// Objects map directly to simulate pre-existing remote state.
type Record struct {
	Exists bool
	Fields map[string]any
}

// Handler computes the result of a single call descriptor against
// the session's object table. Kind-specific test helpers register a
// Handler per method name (e.g. "getTag", "createTag").
type Handler func(session *Session, descriptor remote.CallDescriptor) (any, error)

// Session is an in-memory remote.Session. Method dispatch is
// pluggable via Handlers so each object kind's tests can simulate
// only the methods that kind actually calls.
type Session struct {
	mu       sync.Mutex
	Objects  map[string]*Record // key: "kind/name"
	Handlers map[string]Handler

	// FailMethods, when a method name is present with a non-nil
	// error, makes every call to that method fail with that error.
	// Used to exercise ChangeReadError/ChangeApplyError cascades.
	FailMethods map[string]error

	// calls records every descriptor submitted across every batch,
	// in submission order, for test assertions.
	calls []remote.CallDescriptor
}

// New creates an empty fake session.
func New() *Session {
	return &Session{
		Objects:     make(map[string]*Record),
		Handlers:    make(map[string]Handler),
		FailMethods: make(map[string]error),
	}
}

// Seed marks (kind, name) as already existing on the remote with the
// given fields, as if a prior apply had created it.
func (s *Session) Seed(kind, name string, fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[recordKey(kind, name)] = &Record{Exists: true, Fields: fields}
}

// Lookup returns the record for (kind, name), creating an empty
// non-existent record if none is present yet.
func (s *Session) Lookup(kind, name string) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := recordKey(kind, name)
	rec, ok := s.Objects[key]
	if !ok {
		rec = &Record{}
		s.Objects[key] = rec
	}
	return rec
}

// Calls returns every call descriptor submitted so far, across all
// batches, in submission order.
func (s *Session) Calls() []remote.CallDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]remote.CallDescriptor, len(s.calls))
	copy(out, s.calls)
	return out
}

func recordKey(kind, name string) string {
	return kind + "/" + name
}

type batch struct {
	session     *Session
	entries     []*entry
	currentKind string
	currentName string
}

type entry struct {
	descriptor remote.CallDescriptor
	promise    *remote.Promise
	kind, name string
}

func (b *batch) Submit(descriptor remote.CallDescriptor) *remote.Promise {
	promise := &remote.Promise{}
	b.entries = append(b.entries, &entry{
		descriptor: descriptor,
		promise:    promise,
		kind:       b.currentKind,
		name:       b.currentName,
	})
	return promise
}

func (b *batch) Associate(kind, name string) {
	b.currentKind = kind
	b.currentName = name
}

// OpenBatch starts a new batch.
func (s *Session) OpenBatch(_ context.Context) remote.Batch {
	return &batch{session: s}
}

// CloseBatch executes every call in the batch against the handler
// table, resolving each entry's promise. Matches the real multicall
// contract: a per-call failure resolves that promise with an error
// but does not abort sibling calls in the same batch.
func (s *Session) CloseBatch(_ context.Context, b remote.Batch) error {
	fb, ok := b.(*batch)
	if !ok {
		return fmt.Errorf("fake: batch was not opened by this session")
	}

	s.mu.Lock()
	for _, e := range fb.entries {
		s.calls = append(s.calls, e.descriptor)
	}
	s.mu.Unlock()

	for _, e := range fb.entries {
		if failErr, failing := s.FailMethods[e.descriptor.Method]; failing {
			e.promise.Resolve(nil, failErr)
			continue
		}

		handler, ok := s.Handlers[e.descriptor.Method]
		if !ok {
			e.promise.Resolve(nil, fmt.Errorf("fake: no handler registered for method %q", e.descriptor.Method))
			continue
		}

		result, err := handler(s, e.descriptor)
		e.promise.Resolve(result, err)
	}

	return nil
}
