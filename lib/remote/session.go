// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

// Package remote defines the contract the processor and change
// reports need from a hub session: open a batch, submit opaque call
// descriptors into it, and resolve promises once the batch closes.
// Two implementations are provided: lib/remote/fake, an in-memory
// session for tests, and lib/remote/xmlrpc, a session that speaks to
// a real hub over an XML-RPC-shaped multicall endpoint.
package remote

import "context"

// CallDescriptor is an opaque remote method invocation: a method
// name plus positional and named arguments. Sessions never need to
// know what a call "means" — entities build descriptors, sessions
// transport them.
type CallDescriptor struct {
	Method         string
	PositionalArgs []any
	NamedArgs      map[string]any
}

// Promise is a handle to the eventual result of one call submitted
// to a batch. Result and Err are only valid after the batch that
// produced the promise has closed; reading them earlier panics, the
// same way reading a koji VirtualCall's result before the multicall
// closes would raise.
type Promise struct {
	result   any
	err      error
	resolved bool
}

// Result returns the call's result and error. Panics if the batch has
// not yet closed.
func (p *Promise) Result() (any, error) {
	if !p.resolved {
		panic("remote: promise read before its batch closed")
	}
	return p.result, p.err
}

// Resolved reports whether the batch that owns this promise has
// closed.
func (p *Promise) Resolved() bool {
	return p.resolved
}

func (p *Promise) resolve(result any, err error) {
	p.result = result
	p.err = err
	p.resolved = true
}

// Resolve sets the promise's result and error. Session
// implementations call this from CloseBatch; it is exported so
// implementations can live in their own packages (lib/remote/fake,
// lib/remote/xmlrpc) without remote exposing a broader mutable
// surface than "resolve this promise".
func (p *Promise) Resolve(result any, err error) {
	p.resolve(result, err)
}

// Batch accumulates call descriptors submitted by entities during a
// single read or write phase. Submit returns a promise that resolves
// once Close executes the batch as one multicall against the
// session. A Batch is single-owner: only the processor opens and
// closes batches; entities only ever append to an already-open batch.
type Batch interface {
	// Submit appends a call descriptor to the batch and returns a
	// promise for its eventual result.
	Submit(descriptor CallDescriptor) *Promise

	// Associate tags all calls submitted after this point (until the
	// next Associate call) with the given key, so a session
	// implementation can produce a per-entity call log for
	// diagnostics. Purely advisory; sessions may ignore it.
	Associate(kind, name string)
}

// ErrorCategory classifies a remote failure so the caller can decide
// which typed herrors wrapper applies.
type ErrorCategory int

const (
	// ErrorCategoryGeneric is a remote error with no more specific
	// classification; it maps to ChangeReadError during the read
	// phase and ChangeApplyError during the apply phase.
	ErrorCategoryGeneric ErrorCategory = iota
)

// CallError reports that a specific call within a batch failed. The
// Category lets the caller pick the right herrors wrapper without
// inspecting the underlying transport error's type.
type CallError struct {
	Descriptor CallDescriptor
	Category   ErrorCategory
	Cause      error
}

func (e *CallError) Error() string {
	return e.Cause.Error()
}

func (e *CallError) Unwrap() error { return e.Cause }

// Session is a single-owner, single-flight connection to the hub.
// Only one batch may be open at a time; OpenBatch blocks (or should
// be called only after the previous batch closed) if that invariant
// matters to the implementation.
type Session interface {
	// OpenBatch starts a new batch. ctx governs the eventual Close
	// call's deadline and cancellation, not the call to OpenBatch
	// itself.
	OpenBatch(ctx context.Context) Batch

	// CloseBatch executes every call descriptor submitted to batch as
	// a single multicall, resolving each call's promise. It returns
	// an error only for batch-wide failures (e.g. the deadline
	// expired before the transport responded); per-call failures are
	// recorded on that call's promise instead.
	CloseBatch(ctx context.Context, batch Batch) error
}
