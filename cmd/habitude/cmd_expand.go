// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/hubsync/habitude/cmd/habitude/cli"
	"github.com/hubsync/habitude/lib/hubkey"
	"github.com/hubsync/habitude/lib/objectkind"
	"github.com/hubsync/habitude/lib/render"
)

func expandCommand() *cli.Command {
	var source sourceFlags

	return &cli.Command{
		Name:    "expand",
		Summary: "Ingest and expand manifests, printing the resulting object sequence",
		Usage:   "habitude expand [flags] <path>...",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("expand", pflag.ContinueOnError)
			source.register(flagSet)
			return flagSet
		},
		Examples: []cli.Example{
			{Description: "Expand every manifest under a directory", Command: "habitude expand ./manifests"},
		},
		Run: func(_ context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("expand: at least one manifest path is required")
			}
			policy, err := source.policy()
			if err != nil {
				return err
			}
			docs, err := loadDocuments(args)
			if err != nil {
				return err
			}
			ns, err := buildNamespace(docs, policy, source.maxDepth)
			if err != nil {
				return err
			}
			return printExpanded(ns.Expanded())
		},
	}
}

func printExpanded(expanded map[hubkey.Key]objectkind.Entity) error {
	keys := make([]hubkey.Key, 0, len(expanded))
	for key := range expanded {
		keys = append(keys, key)
	}
	sortKeys(keys)

	for i, key := range keys {
		if i > 0 {
			fmt.Fprintln(os.Stdout, "---")
		}
		doc, err := render.FormatDocument(key.Kind, key.Name, render.EntityFields(expanded[key]), nil)
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, doc)
	}
	return nil
}
