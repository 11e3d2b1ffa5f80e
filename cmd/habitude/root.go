// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/hubsync/habitude/cmd/habitude/cli"
)

func root() *cli.Command {
	return &cli.Command{
		Name:        "habitude",
		Summary:     "Reconcile declared build-system objects against a remote hub",
		Description: "habitude expands template-based manifests into a flat object graph and reconciles it against a remote hub, one dependency tier at a time.",
		Usage:       "habitude <command> [flags]",
		Subcommands: []*cli.Command{
			expandCommand(),
			compareCommand(),
			applyCommand(),
			diffCommand(),
			syncCommand(),
			dumpCommand(),
			fetchCommand(),
			templatesCommand(),
		},
	}
}
