// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

// Package change implements the per-object state machine:
// INIT → READING → COMPARED → APPLYING → {APPLIED | FAILED}. Each
// kind in lib/objectkind implements the Source interface; this
// package knows nothing about tags, targets, or any other concrete
// kind, only about driving that interface through its phases.
package change

import (
	"fmt"

	"github.com/hubsync/habitude/lib/hubkey"
	"github.com/hubsync/habitude/lib/remote"
)

// State is one step of a Change's own lifecycle, tracked separately
// from the owning Report's state because a report's changes can be
// individually skipped (phantom dependency) without failing the
// report as a whole.
type State int

const (
	StatePending State = iota
	StateApplied
	StateSkipped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateApplied:
		return "applied"
	case StateSkipped:
		return "skipped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Change is a single typed write operation produced by diffing
// desired against observed state. Op names are drawn from a shared
// vocabulary: "create-object", "set-field", "set-inheritance",
// "add-member", "remove-member", "set-permission-grant", and
// kind-specific extensions of it.
type Change struct {
	Op          string
	Parameters  map[string]any
	Description string

	// BreaksBatch marks a change that must not share a multicall
	// batch with the change(s) it depends on — e.g. setting a tag's
	// inheritance needs its parent's numeric ID, which only exists
	// after the parent's own create-object call has actually been
	// executed by the hub, not merely submitted alongside it in the
	// same batch. The processor closes the current batch before
	// submitting a change with BreaksBatch set, and opens a fresh one
	// immediately after.
	BreaksBatch bool

	// Submit is called by enqueue, on behalf of the owning Report's
	// EnqueueWrites or EnqueueWriteStep, to turn this change into a
	// concrete remote call. It must return the
	// promise for that call.
	Submit func(batch remote.Batch) *remote.Promise

	state   State
	promise *remote.Promise
}

// State returns the change's current lifecycle state.
func (c *Change) State() State { return c.state }

// Skip marks a skippable change as skipped instead of applying it.
// Used when the change's dependency closure contains a phantom and
// the skip-phantoms policy is active.
func (c *Change) Skip() {
	if c.state != StatePending {
		return
	}
	c.state = StateSkipped
}

// enqueue submits the change to batch and records its promise; the
// change's State stays unchanged until resolve. Called by
// Report.EnqueueWrites and Report.EnqueueWriteStep, never directly.
func (c *Change) enqueue(batch remote.Batch) {
	if c.state == StateSkipped {
		return
	}
	c.promise = c.Submit(batch)
}

// resolve reads the change's promise after the batch that carried it
// has closed, recording APPLIED or FAILED.
func (c *Change) resolve() error {
	switch c.state {
	case StateSkipped:
		return nil
	case StatePending:
		if c.promise == nil {
			// Never actually enqueued (e.g. the owning report was
			// short-circuited to FAILED before reaching apply).
			c.state = StateFailed
			return fmt.Errorf("change %q never enqueued", c.Description)
		}
	default:
		return nil
	}

	_, err := c.promise.Result()
	if err != nil {
		c.state = StateFailed
		return err
	}
	c.state = StateApplied
	return nil
}

// Key identifies a Source the same way hubkey.Key identifies any
// other entity; kept as an alias so lib/change has no dependency on
// lib/objectkind (objectkind depends on change, not the reverse).
type Key = hubkey.Key
