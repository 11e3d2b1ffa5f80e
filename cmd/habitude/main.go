// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

// Command habitude reconciles a declared set of build-system objects
// against a remote hub: expand templates into a flat manifest, solve
// a dependency-ordered apply sequence, compare it against observed
// remote state, and apply the difference.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/hubsync/habitude/cmd/habitude/cli"
	"github.com/hubsync/habitude/lib/logctx"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctx = logctx.With(ctx, cli.NewCommandLogger())

	if err := root().Execute(ctx, os.Args[1:]); err != nil {
		// A subcommand that has already printed its own report
		// returns an ExitError instead of a plain error, so main
		// doesn't print a redundant "error:" line on top of it.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
