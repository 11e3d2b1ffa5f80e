// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"sort"

	"github.com/hubsync/habitude/lib/hubkey"
)

func sortKeys(keys []hubkey.Key) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}
