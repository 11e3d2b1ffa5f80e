// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package change

import (
	"fmt"

	"github.com/hubsync/habitude/lib/remote"
)

// ReportState is the per-object state machine a Report walks through.
type ReportState int

const (
	ReportInit ReportState = iota
	ReportReading
	ReportCompared
	ReportApplying
	ReportApplied
	ReportFailed
)

func (s ReportState) String() string {
	switch s {
	case ReportInit:
		return "init"
	case ReportReading:
		return "reading"
	case ReportCompared:
		return "compared"
	case ReportApplying:
		return "applying"
	case ReportApplied:
		return "applied"
	case ReportFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Source is the contract a concrete object kind (lib/objectkind)
// provides to drive one ChangeReport through read, compare, and
// apply. Implementations never see batches outside these three
// methods; the processor owns every batch's lifetime.
type Source interface {
	// EnqueueRead submits the calls needed to learn this entity's
	// current remote state, returning one promise per call (order is
	// significant: the same order is handed back to Compare).
	EnqueueRead(batch remote.Batch) []*remote.Promise

	// Compare inspects the resolved read promises and returns the
	// changes needed to bring the remote object in line with the
	// entity's desired state. An empty, non-nil slice means no
	// changes are needed.
	Compare(reads []*remote.Promise) ([]*Change, error)
}

// Report drives one entity's Source through
// INIT → READING → COMPARED → APPLYING → {APPLIED | FAILED}.
type Report struct {
	Key     Key
	source  Source
	state   ReportState
	reads   []*remote.Promise
	changes []*Change

	// upstreamFailure, when non-empty, short-circuits the report to
	// FAILED without ever touching the remote, because a dependency
	// in an earlier tier already failed.
	upstreamFailure string
}

// NewReport creates a pending report for source.
func NewReport(key Key, source Source) *Report {
	return &Report{Key: key, source: source, state: ReportInit}
}

// State returns the report's current state.
func (r *Report) State() ReportState { return r.state }

// Changes returns the changes identified by Compare. Empty before
// Compare runs.
func (r *Report) Changes() []*Change { return r.changes }

// ShortCircuit marks the report FAILED without ever issuing a remote
// call, because a dependency in an earlier tier already failed. Must
// be called instead of EnqueueRead, before the report reaches any
// other phase.
func (r *Report) ShortCircuit(reason string) {
	if r.state != ReportInit {
		panic("change: ShortCircuit called after the report left INIT")
	}
	r.upstreamFailure = reason
	r.state = ReportFailed
}

// UpstreamFailureReason returns the reason passed to ShortCircuit or
// FailBatch, or "" if neither was called.
func (r *Report) UpstreamFailureReason() string { return r.upstreamFailure }

// EnqueueRead submits the entity's read probes to batch. No-op if the
// report was short-circuited.
func (r *Report) EnqueueRead(batch remote.Batch) {
	if r.state == ReportFailed {
		return
	}
	if r.state != ReportInit {
		panic(fmt.Sprintf("change: EnqueueRead called in state %s", r.state))
	}
	r.reads = r.source.EnqueueRead(batch)
	r.state = ReportReading
}

// Compare runs once the batch carrying the read promises has closed.
// It calls the source's Compare and records the resulting changes. An
// empty diff moves directly to APPLIED with zero operations.
func (r *Report) Compare() error {
	if r.state == ReportFailed {
		return nil
	}
	if r.state != ReportReading {
		panic(fmt.Sprintf("change: Compare called in state %s", r.state))
	}

	changes, err := r.source.Compare(r.reads)
	if err != nil {
		r.state = ReportFailed
		return err
	}

	r.changes = changes
	if len(r.changes) == 0 {
		r.state = ReportApplied
		return nil
	}
	r.state = ReportCompared
	return nil
}

// HasChanges reports whether Compare found any changes to apply.
func (r *Report) HasChanges() bool {
	return r.state == ReportCompared && len(r.changes) > 0
}

// EnqueueWrites submits every change's write call to batch. Changes
// already marked Skipped are not submitted. Panics unless the report
// is COMPARED; a report whose diff was empty is already APPLIED, so
// callers check HasChanges first.
func (r *Report) EnqueueWrites(batch remote.Batch) {
	if r.state != ReportCompared {
		panic(fmt.Sprintf("change: EnqueueWrites called in state %s", r.state))
	}
	r.state = ReportApplying
	for _, c := range r.changes {
		c.enqueue(batch)
	}
}

// EnqueueWriteStep submits changes[from:] to batch, stopping before a
// change with BreaksBatch set so the processor can close the current
// batch and open a fresh one around it, per the BreaksBatch contract
// on Change. A BreaksBatch change found at index from is submitted
// alone. Returns the index to resume from on the next call; the
// report is fully enqueued once the returned index equals
// len(Changes()).
func (r *Report) EnqueueWriteStep(batch remote.Batch, from int) int {
	if from == 0 {
		if r.state != ReportCompared {
			panic(fmt.Sprintf("change: EnqueueWriteStep called in state %s", r.state))
		}
		r.state = ReportApplying
	}

	for i := from; i < len(r.changes); i++ {
		c := r.changes[i]
		if c.BreaksBatch {
			if i == from {
				c.enqueue(batch)
				return i + 1
			}
			return i
		}
		c.enqueue(batch)
	}
	return len(r.changes)
}

// FailBatch forcibly settles the report to FAILED with reason,
// bypassing the normal phase sequence. Used when the batch carrying
// its read or write calls failed as a whole (a deadline, a transport
// error) rather than failing an individual call whose promise would
// otherwise carry the error.
func (r *Report) FailBatch(reason string) {
	r.state = ReportFailed
	r.upstreamFailure = reason
}

// Finish resolves every change's promise after the write batch has
// closed, settling the report to APPLIED or FAILED. Returns the first
// change error encountered, if any; the report still visits every
// change so every Change's individual State() is accurate regardless.
func (r *Report) Finish() error {
	if r.state != ReportApplying {
		panic(fmt.Sprintf("change: Finish called in state %s", r.state))
	}

	var first error
	for _, c := range r.changes {
		if err := c.resolve(); err != nil && first == nil {
			first = err
		}
	}

	if first != nil {
		r.state = ReportFailed
		return first
	}
	r.state = ReportApplied
	return nil
}

// SkipPhantomDependents marks every change as skipped without
// changing the report's own state, used for entities whose
// dependency closure contains a phantom under the skip-phantoms
// policy (the entity is still emitted, but applies nothing).
func (r *Report) SkipPhantomDependents() {
	for _, c := range r.changes {
		c.Skip()
	}
}
