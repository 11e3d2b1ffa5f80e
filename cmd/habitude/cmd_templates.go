// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/hubsync/habitude/cmd/habitude/cli"
	"github.com/hubsync/habitude/lib/namespace"
	"github.com/hubsync/habitude/lib/texttemplate"
)

func templatesCommand() *cli.Command {
	return &cli.Command{
		Name:    "templates",
		Summary: "Inspect templates registered by a set of manifests",
		Subcommands: []*cli.Command{
			templatesListCommand(),
			templatesShowCommand(),
		},
	}
}

func templatesListCommand() *cli.Command {
	var source sourceFlags

	return &cli.Command{
		Name:    "list",
		Summary: "List every template name registered by a set of manifests",
		Usage:   "habitude templates list [flags] <path>...",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			source.register(flagSet)
			return flagSet
		},
		Run: func(_ context.Context, args []string) error {
			ns, err := ingestOnly(args, &source)
			if err != nil {
				return err
			}
			for _, name := range ns.KnownTemplateNames() {
				fmt.Fprintln(os.Stdout, name)
			}
			return nil
		},
	}
}

func templatesShowCommand() *cli.Command {
	var source sourceFlags

	return &cli.Command{
		Name:    "show",
		Summary: "Show one template's body, defaults, and schema",
		Usage:   "habitude templates show [flags] <name> <path>...",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("show", pflag.ContinueOnError)
			source.register(flagSet)
			return flagSet
		},
		Run: func(_ context.Context, args []string) error {
			if len(args) < 2 {
				return fmt.Errorf("templates show: a template name and at least one manifest path are required")
			}
			name, paths := args[0], args[1:]

			ns, err := ingestOnly(paths, &source)
			if err != nil {
				return err
			}
			tmpl, ok := ns.Template(name)
			if !ok {
				return fmt.Errorf("templates show: no template named %q", name)
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "name\t%s\n", name)
			if tmpl.BodyFile != "" {
				fmt.Fprintf(tw, "body-file\t%s\n", tmpl.BodyFile)
			} else {
				fmt.Fprintf(tw, "body\t%s\n", firstLine(tmpl.Body))
			}
			fmt.Fprintf(tw, "defaults\t%v\n", tmpl.Defaults)
			fmt.Fprintf(tw, "schema\t%v\n", tmpl.Schema)
			return tw.Flush()
		},
	}
}

// ingestOnly loads and ingests manifests without expanding them, for
// introspection commands that only need the template registry.
func ingestOnly(paths []string, source *sourceFlags) (*namespace.Namespace, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("at least one manifest path is required")
	}
	policy, err := source.policy()
	if err != nil {
		return nil, err
	}
	docs, err := loadDocuments(paths)
	if err != nil {
		return nil, err
	}
	ns := namespace.New(policy, source.maxDepth, texttemplate.New())
	for _, doc := range docs {
		if err := ns.Ingest(doc); err != nil {
			return nil, err
		}
	}
	return ns, nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
