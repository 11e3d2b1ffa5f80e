// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/hubsync/habitude/cmd/habitude/cli"
	"github.com/hubsync/habitude/lib/processor"
)

func applyCommand() *cli.Command {
	var params runParams

	return &cli.Command{
		Name:    "apply",
		Summary: "Solve, compare, and apply changes against the remote hub",
		Usage:   "habitude apply [flags] <path>...",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("apply", pflag.ContinueOnError)
			params.source.register(flagSet)
			params.hub.register(flagSet)
			params.register(flagSet)
			return flagSet
		},
		Examples: []cli.Example{
			{Description: "Apply every manifest under a directory", Command: "habitude apply --hub-url https://koji.example.com/kojihub ./manifests"},
			{Description: "Apply with a live progress viewer", Command: "habitude apply --interactive --hub-url https://koji.example.com/kojihub ./manifests"},
		},
		Run: func(ctx context.Context, args []string) error {
			result, err := runReconcile(ctx, args, &params, processor.ModeApply)
			if err != nil {
				return err
			}
			return printResult(result, processor.ModeApply, params.skipPhantom)
		},
	}
}
