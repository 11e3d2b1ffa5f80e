// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"

	"github.com/hubsync/habitude/lib/hubkey"
)

func TestSortKeysOrdersByKindThenName(t *testing.T) {
	t.Parallel()

	keys := []hubkey.Key{
		{Kind: "tag", Name: "build"},
		{Kind: "host", Name: "builder-1"},
		{Kind: "tag", Name: "archive"},
	}

	sortKeys(keys)

	want := []hubkey.Key{
		{Kind: "host", Name: "builder-1"},
		{Kind: "tag", Name: "archive"},
		{Kind: "tag", Name: "build"},
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("sortKeys() = %v, want %v", keys, want)
		}
	}
}
