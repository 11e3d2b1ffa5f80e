// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/hubsync/habitude/lib/namespace"
	"github.com/hubsync/habitude/lib/remote"
	"github.com/hubsync/habitude/lib/remote/fake"
	"github.com/hubsync/habitude/lib/remote/xmlrpc"
)

// sourceFlags are the manifest-loading and expansion flags shared by
// every subcommand that needs an expanded namespace.
type sourceFlags struct {
	redefine string
	maxDepth int
}

func (f *sourceFlags) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.redefine, "on-redefine", "error", "policy for a repeated (kind,name): error or replace")
	flagSet.IntVar(&f.maxDepth, "max-template-depth", 64, "maximum template-call expansion recursion depth (0 disables the bound)")
}

func (f *sourceFlags) policy() (namespace.RedefinePolicy, error) {
	switch f.redefine {
	case "error":
		return namespace.RedefineError, nil
	case "replace":
		return namespace.RedefineReplace, nil
	default:
		return 0, fmt.Errorf("invalid --on-redefine value %q (want error or replace)", f.redefine)
	}
}

// hubFlags select and configure the remote session a run talks to.
type hubFlags struct {
	hubURL string
	fake   bool
}

func (f *hubFlags) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.hubURL, "hub-url", "", "remote hub's multicall XML-RPC endpoint")
	flagSet.BoolVar(&f.fake, "fake", false, "use an empty in-memory session instead of a real hub (for dry runs)")
}

func (f *hubFlags) session(logger *slog.Logger) (remote.Session, error) {
	if f.fake || f.hubURL == "" {
		return fake.New(), nil
	}
	return xmlrpc.New(xmlrpc.Config{Endpoint: f.hubURL, Logger: logger}), nil
}
