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
	"github.com/hubsync/habitude/lib/objectkind"
	"github.com/hubsync/habitude/lib/remote"
	"github.com/hubsync/habitude/lib/render"
)

// dumpFetchFlags are shared by dump and fetch: both need a declared
// namespace to know how to read each key, and a set of keys to read.
type dumpFetchFlags struct {
	source sourceFlags
	hub    hubFlags
	keys   []string
}

func (f *dumpFetchFlags) register(flagSet *pflag.FlagSet) {
	f.source.register(flagSet)
	f.hub.register(flagSet)
	flagSet.StringSliceVar(&f.keys, "key", nil, "a \"kind:name\" key to read (repeatable)")
}

func dumpCommand() *cli.Command { return dumpFetchCommand("dump") }
func fetchCommand() *cli.Command {
	cmd := dumpFetchCommand("fetch")
	cmd.Summary = "Alias for dump: read observed state and render it as documents"
	return cmd
}

func dumpFetchCommand(name string) *cli.Command {
	var flags dumpFetchFlags

	return &cli.Command{
		Name:    name,
		Summary: "Read observed remote state for a set of keys and render it as documents",
		Usage:   fmt.Sprintf("habitude %s [flags] <path>...", name),
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
			flags.register(flagSet)
			return flagSet
		},
		Examples: []cli.Example{
			{Description: "Read back one tag's observed state", Command: fmt.Sprintf("habitude %s --key tag:build --hub-url https://koji.example.com/kojihub ./manifests", name)},
		},
		Run: func(ctx context.Context, args []string) error {
			return runDumpFetch(ctx, args, &flags)
		},
	}
}

func runDumpFetch(ctx context.Context, args []string, flags *dumpFetchFlags) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one manifest path is required")
	}
	if len(flags.keys) == 0 {
		return fmt.Errorf("at least one --key is required")
	}

	keys, err := parseKeys(flags.keys)
	if err != nil {
		return err
	}

	policy, err := flags.source.policy()
	if err != nil {
		return err
	}
	docs, err := loadDocuments(args)
	if err != nil {
		return err
	}
	ns, err := buildNamespace(docs, policy, flags.source.maxDepth)
	if err != nil {
		return err
	}

	logger := logctx.From(ctx)
	session, err := flags.hub.session(logger)
	if err != nil {
		return err
	}

	expanded := ns.Expanded()
	for i, key := range keys {
		entity, ok := expanded[key]
		if !ok {
			return fmt.Errorf("%s: not declared in the given manifests", key)
		}
		observed, err := readObserved(ctx, session, entity)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if i > 0 {
			fmt.Fprintln(os.Stdout, "---")
		}
		doc, err := render.FormatDocument(key.Kind, key.Name, observed, nil)
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, doc)
	}
	return nil
}

// readObserved runs one entity's read phase in isolation and returns
// its raw per-call results, tagged by call index, since only the
// entity's own Compare method knows how to interpret them by kind.
func readObserved(ctx context.Context, session remote.Session, entity objectkind.Entity) (map[string]any, error) {
	batch := session.OpenBatch(ctx)
	promises := entity.EnqueueRead(batch)
	if err := session.CloseBatch(ctx, batch); err != nil {
		return nil, err
	}

	fields := make(map[string]any, len(promises))
	for i, promise := range promises {
		result, err := promise.Result()
		if err != nil {
			return nil, err
		}
		fields[fmt.Sprintf("read-%d", i)] = result
	}
	return fields, nil
}
