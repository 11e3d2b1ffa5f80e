// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/hubsync/habitude/cmd/habitude/cli"
	"github.com/hubsync/habitude/lib/processor"
)

func compareCommand() *cli.Command {
	var params runParams

	return &cli.Command{
		Name:    "compare",
		Summary: "Solve and compare without applying, printing a change report",
		Usage:   "habitude compare [flags] <path>...",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("compare", pflag.ContinueOnError)
			params.source.register(flagSet)
			params.hub.register(flagSet)
			params.register(flagSet)
			return flagSet
		},
		Examples: []cli.Example{
			{Description: "Compare against a real hub", Command: "habitude compare --hub-url https://koji.example.com/kojihub ./manifests"},
		},
		Run: func(ctx context.Context, args []string) error {
			result, err := runReconcile(ctx, args, &params, processor.ModeCompare)
			if err != nil {
				return err
			}
			return printResult(result, processor.ModeCompare, params.skipPhantom)
		},
	}
}
