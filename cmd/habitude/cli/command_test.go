// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/pflag"
)

func TestExecuteDispatchesToSubcommand(t *testing.T) {
	t.Parallel()

	var ran string
	root := &Command{
		Name: "habitude",
		Subcommands: []*Command{
			{Name: "expand", Run: func(context.Context, []string) error { ran = "expand"; return nil }},
			{Name: "apply", Run: func(context.Context, []string) error { ran = "apply"; return nil }},
		},
	}

	if err := root.Execute(context.Background(), []string{"apply"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if ran != "apply" {
		t.Errorf("ran = %q, want apply", ran)
	}
}

func TestExecuteUnknownSubcommandErrors(t *testing.T) {
	t.Parallel()

	root := &Command{
		Name:        "habitude",
		Subcommands: []*Command{{Name: "expand", Run: func(context.Context, []string) error { return nil }}},
	}

	err := root.Execute(context.Background(), []string{"nope"})
	if err == nil {
		t.Fatalf("expected an error for an unknown subcommand")
	}
}

func TestExecuteParsesFlagsBeforeRun(t *testing.T) {
	t.Parallel()

	var got string
	cmd := &Command{
		Name: "expand",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("expand", pflag.ContinueOnError)
			fs.StringVar(&got, "on-redefine", "error", "")
			return fs
		},
		Run: func(_ context.Context, args []string) error {
			if len(args) != 1 || args[0] != "manifest.yaml" {
				return errors.New("unexpected positional args")
			}
			return nil
		},
	}

	if err := cmd.Execute(context.Background(), []string{"--on-redefine", "replace", "manifest.yaml"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got != "replace" {
		t.Errorf("on-redefine = %q, want replace", got)
	}
}

func TestExecuteRequiresSubcommandWhenNoRun(t *testing.T) {
	t.Parallel()

	root := &Command{
		Name:        "habitude",
		Subcommands: []*Command{{Name: "expand", Run: func(context.Context, []string) error { return nil }}},
	}

	if err := root.Execute(context.Background(), nil); err == nil {
		t.Fatalf("expected an error when no subcommand is given")
	}
}

func TestPrintHelpIncludesSubcommandsAndExamples(t *testing.T) {
	t.Parallel()

	root := &Command{
		Name:     "habitude",
		Summary:  "Reconcile declared build-system objects",
		Examples: []Example{{Description: "Compare only", Command: "habitude compare ./manifests"}},
		Subcommands: []*Command{
			{Name: "compare", Summary: "Solve and compare"},
		},
	}

	var buf bytes.Buffer
	root.PrintHelp(&buf)
	out := buf.String()

	if !bytes.Contains(buf.Bytes(), []byte("compare")) {
		t.Errorf("help missing subcommand name, got %q", out)
	}
	if !bytes.Contains(buf.Bytes(), []byte("habitude compare ./manifests")) {
		t.Errorf("help missing example, got %q", out)
	}
}

func TestFullNameIncludesParentChain(t *testing.T) {
	t.Parallel()

	parent := &Command{Name: "templates"}
	child := &Command{Name: "show", parent: parent}

	if got := child.fullName(); got != "templates show" {
		t.Errorf("fullName() = %q, want %q", got, "templates show")
	}
}
