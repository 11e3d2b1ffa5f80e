// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/hubsync/habitude/cmd/habitude/cli"
	"github.com/hubsync/habitude/lib/processor"
)

// diffCommand is a named alias for "compare": some manifests are
// written against tools that call this operation "diff" rather than
// "compare".
func diffCommand() *cli.Command {
	var params runParams

	return &cli.Command{
		Name:    "diff",
		Summary: "Alias for compare: solve and compare without applying",
		Usage:   "habitude diff [flags] <path>...",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("diff", pflag.ContinueOnError)
			params.source.register(flagSet)
			params.hub.register(flagSet)
			params.register(flagSet)
			return flagSet
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
