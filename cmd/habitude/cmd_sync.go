// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/hubsync/habitude/cmd/habitude/cli"
	"github.com/hubsync/habitude/lib/processor"
)

func syncCommand() *cli.Command {
	var params runParams
	var yes bool

	return &cli.Command{
		Name:    "sync",
		Summary: "Compare, then apply if the changes are confirmed",
		Usage:   "habitude sync [flags] <path>...",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("sync", pflag.ContinueOnError)
			flagSet.BoolVar(&yes, "yes", false, "apply without an interactive confirmation prompt")
			params.source.register(flagSet)
			params.hub.register(flagSet)
			params.register(flagSet)
			return flagSet
		},
		Examples: []cli.Example{
			{Description: "Review changes, then confirm before applying", Command: "habitude sync --hub-url https://koji.example.com/kojihub ./manifests"},
			{Description: "Apply without a prompt", Command: "habitude sync --yes --hub-url https://koji.example.com/kojihub ./manifests"},
		},
		Run: func(ctx context.Context, args []string) error {
			compareResult, err := runReconcile(ctx, args, &params, processor.ModeCompare)
			if err != nil {
				return err
			}
			fmt.Fprint(os.Stdout, renderSummary(compareResult))

			if !anyChanges(compareResult) {
				fmt.Fprintln(os.Stdout, "No changes; nothing to apply.")
				return nil
			}

			if !yes && !confirm("Apply these changes?") {
				fmt.Fprintln(os.Stdout, "Aborted; no changes applied.")
				return nil
			}

			applyResult, err := runReconcile(ctx, args, &params, processor.ModeApply)
			if err != nil {
				return err
			}
			return printResult(applyResult, processor.ModeApply, params.skipPhantom)
		},
	}
}

func anyChanges(result *processor.Result) bool {
	for _, report := range result.Reports {
		if len(report.Changes()) > 0 {
			return true
		}
	}
	return false
}

func renderSummary(result *processor.Result) string {
	return fmt.Sprintf("%d object(s) compared, %d change(s) pending.\n", len(result.Reports), countChanges(result))
}

func countChanges(result *processor.Result) int {
	total := 0
	for _, report := range result.Reports {
		total += len(report.Changes())
	}
	return total
}

func confirm(prompt string) bool {
	fmt.Fprintf(os.Stdout, "%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
