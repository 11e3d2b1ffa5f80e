// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/hubsync/habitude/cmd/habitude/cli"
	"github.com/hubsync/habitude/lib/logctx"
	"github.com/hubsync/habitude/lib/processor"
	"github.com/hubsync/habitude/lib/render"
	"github.com/hubsync/habitude/lib/solver"
	"github.com/hubsync/habitude/lib/tui"
)

// runParams bundles the flags every reconciliation subcommand shares.
type runParams struct {
	source      sourceFlags
	hub         hubFlags
	skipPhantom bool
	interactive bool
	chunkSize   int
}

func (p *runParams) register(flagSet *pflag.FlagSet) {
	flagSet.BoolVar(&p.skipPhantom, "skip-phantoms", false, "drop entities whose dependency closure contains an undeclared reference instead of failing")
	flagSet.BoolVar(&p.interactive, "interactive", false, "show a live progress viewer instead of printing a final report")
	flagSet.IntVar(&p.chunkSize, "chunk-size", 0, "entities read/compared/applied per batch within a tier (0 uses the built-in default)")
}

// runReconcile loads args as manifest paths, builds the dependency
// graph, and drives mode's processor to completion, showing the live
// progress viewer when interactive is set. It returns the result
// without printing it; printResult renders the report.
func runReconcile(ctx context.Context, args []string, p *runParams, mode processor.Mode) (*processor.Result, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one manifest path is required")
	}
	policy, err := p.source.policy()
	if err != nil {
		return nil, err
	}
	docs, err := loadDocuments(args)
	if err != nil {
		return nil, err
	}
	ns, err := buildNamespace(docs, policy, p.source.maxDepth)
	if err != nil {
		return nil, err
	}

	logger := logctx.From(ctx)
	session, err := p.hub.session(logger)
	if err != nil {
		return nil, err
	}

	res, sv, err := buildSolver(ns.Expanded(), nil)
	if err != nil {
		return nil, err
	}

	cfg := processor.Config{
		Mode:         mode,
		ChunkSize:    p.chunkSize,
		SkipPhantoms: p.skipPhantom,
	}

	if !p.interactive {
		proc := processor.New(cfg, session, res)
		return proc.Run(ctx, sv)
	}

	events := make(chan processor.Event, 64)
	cfg.Events = events
	proc := processor.New(cfg, session, res)
	return runInteractive(ctx, proc, sv, events)
}

func runInteractive(ctx context.Context, proc *processor.Processor, sv *solver.Solver, events chan processor.Event) (*processor.Result, error) {
	type outcome struct {
		result *processor.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := proc.Run(ctx, sv)
		close(events)
		done <- outcome{result, err}
	}()

	if err := tui.Run(events); err != nil {
		return nil, err
	}
	out := <-done
	return out.result, out.err
}

// printResult renders a finished run's report and returns an
// *cli.ExitError carrying the exit-status contract's code.
func printResult(result *processor.Result, mode processor.Mode, skipPhantoms bool) error {
	width := 100
	fmt.Fprint(os.Stdout, render.RenderReport(result, render.DefaultTheme, width))

	if result.Failed(mode, skipPhantoms) {
		return &cli.ExitError{Code: 1}
	}
	return nil
}
