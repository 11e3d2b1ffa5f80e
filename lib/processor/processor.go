// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

// Package processor drives the solver's tier stream through chunked
// read, compare, and apply phases against a remote.Session, producing
// one change.Report per entity.
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hubsync/habitude/lib/change"
	"github.com/hubsync/habitude/lib/herrors"
	"github.com/hubsync/habitude/lib/hubkey"
	"github.com/hubsync/habitude/lib/logctx"
	"github.com/hubsync/habitude/lib/objectkind"
	"github.com/hubsync/habitude/lib/remote"
	"github.com/hubsync/habitude/lib/resolver"
	"github.com/hubsync/habitude/lib/solver"
)

// Mode selects whether the processor's APPLY phase actually mutates
// the remote or only records what it would have done.
type Mode int

const (
	// ModeApply runs every phase including APPLY.
	ModeApply Mode = iota
	// ModeCompare replaces APPLY with a no-op that leaves every
	// report with changes in the COMPARED state (a report with an
	// empty diff is APPLIED). It never issues a write call.
	ModeCompare
)

// Config controls one Run. ChunkSize and BatchDeadline have sane
// zero-value defaults applied by Run.
type Config struct {
	Mode Mode

	// ChunkSize bounds how many entities are drawn from a tier per
	// READY_CHUNK step. Defaults to 50 if zero or negative.
	ChunkSize int

	// BatchDeadline bounds how long a single read or write multicall
	// may take. Defaults to 60s if zero or negative.
	BatchDeadline time.Duration

	// SkipPhantoms, when true, drops (with a diagnostic, no report)
	// any entity whose dependency closure contains a phantom instead
	// of aborting Run entirely.
	SkipPhantoms bool

	// Events, when non-nil, receives one Event per phase transition so
	// a caller (lib/tui) can render live progress. Sends are
	// non-blocking: a full channel drops the event rather than stall
	// the run.
	Events chan<- Event
}

// EventKind identifies a processor phase transition.
type EventKind int

const (
	EventTierStarted EventKind = iota
	EventChunkRead
	EventChunkCompared
	EventChunkApplied
	EventReportResolved
	EventRunFinished
)

// Event reports one phase transition of a Run, for lib/tui's progress
// observer.
type Event struct {
	Kind EventKind

	Tier      int
	TierCount int

	ChunkSize int

	Key   hubkey.Key
	State change.ReportState

	Message string
}

func (p *Processor) emit(event Event) {
	if p.cfg.Events == nil {
		return
	}
	select {
	case p.cfg.Events <- event:
	default:
	}
}

func (c Config) withDefaults() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = 50
	}
	if c.BatchDeadline <= 0 {
		c.BatchDeadline = 60 * time.Second
	}
	return c
}

// Result is the outcome of a full Run: every report produced, plus
// diagnostics describing dropped entities and a deterministic list of
// phantom keys encountered along the way.
type Result struct {
	Reports     []*change.Report
	Diagnostics []string
	Phantoms    []hubkey.Key
	Terminated  bool // true if Run stopped early on ctx cancellation
}

// Failed reports whether the run should be treated as a failure: any
// FAILED report, or any phantom reaching a tier in apply mode without
// skip-phantoms.
func (r *Result) Failed(mode Mode, skipPhantoms bool) bool {
	for _, report := range r.Reports {
		if report.State() == change.ReportFailed {
			return true
		}
	}
	if mode == ModeApply && !skipPhantoms && len(r.Phantoms) > 0 {
		return true
	}
	return false
}

// Processor drives one solver.Solver's tier stream to completion
// against a remote session.
type Processor struct {
	cfg     Config
	session remote.Session
	res     *resolver.Resolver
}

// New builds a Processor. res must be the same resolver passed to
// solver.New for any solver.Solver later given to Run, since
// phantom-closure checks consult it directly.
func New(cfg Config, session remote.Session, res *resolver.Resolver) *Processor {
	return &Processor{cfg: cfg.withDefaults(), session: session, res: res}
}

// Run drives sv's tiers to completion. ctx is checked between phase
// transitions, never mid-batch, so a cancellation never leaves a
// partially-applied chunk.
func (p *Processor) Run(ctx context.Context, sv *solver.Solver) (*Result, error) {
	log := logctx.From(ctx)

	tiers, err := sv.Tiers()
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, phantom := range p.res.Phantoms() {
		result.Phantoms = append(result.Phantoms, phantom.Key)
	}

	if p.cfg.Mode == ModeApply && !p.cfg.SkipPhantoms && p.res.HasPhantoms() {
		return result, &herrors.PhantomError{
			Kind:   p.res.Phantoms()[0].Key.Kind,
			Name:   p.res.Phantoms()[0].Key.Name,
			Origin: p.res.Phantoms()[0].Origin,
		}
	}

	failed := make(map[hubkey.Key]bool)
	dropped := make(map[hubkey.Key]bool)

	for tierIdx, tier := range tiers {
		if err := ctx.Err(); err != nil {
			result.Terminated = true
			log.Warn("processor: run cancelled", "tier", tierIdx, "error", err)
			return result, nil
		}

		p.emit(Event{Kind: EventTierStarted, Tier: tierIdx, TierCount: len(tiers)})

		for start := 0; start < len(tier.Entities); start += p.cfg.ChunkSize {
			end := start + p.cfg.ChunkSize
			if end > len(tier.Entities) {
				end = len(tier.Entities)
			}
			chunk := tier.Entities[start:end]

			if err := ctx.Err(); err != nil {
				result.Terminated = true
				log.Warn("processor: run cancelled mid-tier", "tier", tierIdx, "error", err)
				return result, nil
			}

			reports, skippedKeys, diagnostics := p.runChunk(ctx, tierIdx, chunk, failed, dropped)
			result.Diagnostics = append(result.Diagnostics, diagnostics...)
			for _, key := range skippedKeys {
				dropped[key] = true
			}
			for _, report := range reports {
				result.Reports = append(result.Reports, report)
				if report.State() == change.ReportFailed {
					failed[report.Key] = true
				}
				p.emit(Event{Kind: EventReportResolved, Tier: tierIdx, Key: report.Key, State: report.State()})
			}
		}
	}

	p.emit(Event{Kind: EventRunFinished, Message: fmt.Sprintf("%d report(s)", len(result.Reports))})
	return result, nil
}

// runChunk executes one full READY_READ → READY_COMPARE → READY_APPLY
// cycle for chunk, returning the reports it produced (including
// short-circuited ones), the keys of entities dropped under the
// skip-phantoms policy (for the caller to cascade into later tiers),
// and their diagnostics.
func (p *Processor) runChunk(ctx context.Context, tierIdx int, chunk []objectkind.Entity, failed, dropped map[hubkey.Key]bool) ([]*change.Report, []hubkey.Key, []string) {
	log := logctx.From(ctx)

	var reports []*change.Report
	var diagnostics []string
	var droppedKeys []hubkey.Key
	var live []*change.Report

	for _, entity := range chunk {
		key := entity.Key()
		report := change.NewReport(key, entity)

		if p.dependencyFailed(entity, failed) {
			report.ShortCircuit("upstream failure")
			reports = append(reports, report)
			continue
		}

		if p.cfg.SkipPhantoms && (p.phantomInClosure(entity) || p.dependencyDropped(entity, dropped)) {
			diagnostics = append(diagnostics, "skipping "+key.String()+": dependency closure contains a phantom")
			droppedKeys = append(droppedKeys, key)
			continue
		}

		live = append(live, report)
		reports = append(reports, report)
	}

	if len(live) == 0 {
		return reports, droppedKeys, diagnostics
	}

	batchCtx, cancel := context.WithTimeout(ctx, p.cfg.BatchDeadline)
	readBatch := p.session.OpenBatch(batchCtx)
	for _, report := range live {
		readBatch.Associate(report.Key.Kind, report.Key.Name)
		report.EnqueueRead(readBatch)
	}
	if err := p.session.CloseBatch(batchCtx, readBatch); err != nil {
		cancel()
		log.Error("processor: read batch failed", "error", err)
		for _, report := range live {
			report.FailBatch("read batch: " + err.Error())
		}
		return reports, droppedKeys, diagnostics
	}
	cancel()
	p.emit(Event{Kind: EventChunkRead, Tier: tierIdx, ChunkSize: len(live)})

	var compared []*change.Report
	for _, report := range live {
		if err := report.Compare(); err != nil {
			log.Warn("processor: compare failed", "key", report.Key.String(), "error", err)
			continue
		}
		if report.HasChanges() {
			compared = append(compared, report)
		}
	}

	p.emit(Event{Kind: EventChunkCompared, Tier: tierIdx, ChunkSize: len(compared)})

	if p.cfg.Mode == ModeCompare || len(compared) == 0 {
		return reports, droppedKeys, diagnostics
	}

	p.applyChunk(ctx, compared, log)
	p.emit(Event{Kind: EventChunkApplied, Tier: tierIdx, ChunkSize: len(compared)})
	return reports, droppedKeys, diagnostics
}

// applyChunk drives READY_APPLY for every report with a non-empty
// change list, honoring each change's BreaksBatch contract by closing
// the current batch and opening a fresh one around a change that
// demands isolation.
func (p *Processor) applyChunk(ctx context.Context, compared []*change.Report, log *slog.Logger) {
	progress := make([]int, len(compared))

	for {
		batchCtx, cancel := context.WithTimeout(ctx, p.cfg.BatchDeadline)
		writeBatch := p.session.OpenBatch(batchCtx)

		advanced := false
		for i, report := range compared {
			if progress[i] >= len(report.Changes()) {
				continue
			}
			writeBatch.Associate(report.Key.Kind, report.Key.Name)
			next := report.EnqueueWriteStep(writeBatch, progress[i])
			if next != progress[i] {
				advanced = true
			}
			progress[i] = next
		}

		if !advanced {
			cancel()
			break
		}

		if err := p.session.CloseBatch(batchCtx, writeBatch); err != nil {
			cancel()
			log.Error("processor: write batch failed", "error", err)
			for i, report := range compared {
				if progress[i] > 0 {
					report.FailBatch("write batch: " + err.Error())
					progress[i] = len(report.Changes())
				}
			}
			continue
		}
		cancel()
	}

	for _, report := range compared {
		if report.State() != change.ReportApplying {
			continue
		}
		if err := report.Finish(); err != nil {
			log.Warn("processor: apply failed", "key", report.Key.String(), "error", err)
		}
	}
}

// dependencyFailed reports whether any of entity's direct dependency
// targets already failed in a prior tier. Solver ordering guarantees
// every direct dependency sits in a strictly earlier tier, so checking
// direct edges alone is sufficient to cascade a transitive failure:
// the dependency itself was already short-circuited by this same
// check when its own failed dependency was discovered.
func (p *Processor) dependencyFailed(entity objectkind.Entity, failed map[hubkey.Key]bool) bool {
	for _, slot := range entity.DependencyKeys() {
		if failed[slot.Target] {
			return true
		}
	}
	return false
}

// phantomInClosure reports whether any direct dependency of entity is
// itself a phantom.
func (p *Processor) phantomInClosure(entity objectkind.Entity) bool {
	for _, slot := range entity.DependencyKeys() {
		if p.res.Lookup(slot.Target, entity.Origin()) == resolver.Phantom {
			return true
		}
	}
	return false
}

// dependencyDropped reports whether any direct dependency of entity
// was itself dropped under the skip-phantoms policy in a prior tier.
// Combined, phantomInClosure and dependencyDropped cascade the
// skip-phantoms policy transitively: an entity two hops from a
// phantom has a direct dependency that was dropped when that
// dependency's own direct phantom was discovered one tier earlier.
func (p *Processor) dependencyDropped(entity objectkind.Entity, dropped map[hubkey.Key]bool) bool {
	for _, slot := range entity.DependencyKeys() {
		if dropped[slot.Target] {
			return true
		}
	}
	return false
}
