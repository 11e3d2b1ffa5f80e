// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/hubsync/habitude/lib/docmodel"
	"github.com/hubsync/habitude/lib/hubkey"
	"github.com/hubsync/habitude/lib/namespace"
	"github.com/hubsync/habitude/lib/objectkind"
	"github.com/hubsync/habitude/lib/resolver"
	"github.com/hubsync/habitude/lib/solver"
	"github.com/hubsync/habitude/lib/texttemplate"
)

// loadDocuments reads every manifest path, expanding directories
// recursively, into one flat ordered document sequence.
func loadDocuments(paths []string) ([]docmodel.Document, error) {
	var all []docmodel.Document
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		var docs []docmodel.Document
		if info.IsDir() {
			docs, err = docmodel.LoadDir(path)
		} else {
			docs, err = docmodel.LoadFile(path)
		}
		if err != nil {
			return nil, err
		}
		all = append(all, docs...)
	}
	return all, nil
}

// buildNamespace ingests every document and expands the resulting
// namespace into a flat entity map.
func buildNamespace(docs []docmodel.Document, policy namespace.RedefinePolicy, maxDepth int) (*namespace.Namespace, error) {
	ns := namespace.New(policy, maxDepth, texttemplate.New(), namespace.WithBodyFileLoader(func(path string) (string, error) {
		data, err := os.ReadFile(path)
		return string(data), err
	}))
	for _, doc := range docs {
		if err := ns.Ingest(doc); err != nil {
			return nil, err
		}
	}
	if err := ns.Expand(); err != nil {
		return nil, err
	}
	return ns, nil
}

// buildSolver resolves the expanded namespace against an optional set
// of externally-confirmed keys and orders it into solver tiers.
func buildSolver(expanded map[hubkey.Key]objectkind.Entity, observed map[hubkey.Key]bool) (*resolver.Resolver, *solver.Solver, error) {
	res := resolver.New(expanded, observed)
	sv := solver.New(res, expanded)
	if _, err := sv.Tiers(); err != nil {
		return nil, nil, err
	}
	return res, sv, nil
}

// parseKeys converts a set of "kind:name" CLI arguments into keys.
func parseKeys(args []string) ([]hubkey.Key, error) {
	keys := make([]hubkey.Key, 0, len(args))
	for _, arg := range args {
		key, err := hubkey.ParseKey(arg)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}
