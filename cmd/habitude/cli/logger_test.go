// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "testing"

func TestNewCommandLoggerReturnsUsableLogger(t *testing.T) {
	t.Parallel()

	logger := NewCommandLogger()
	if logger == nil {
		t.Fatalf("NewCommandLogger returned nil")
	}
	// Test runners redirect stderr, so this exercises the JSON-handler
	// branch; it should not panic regardless of which branch runs.
	logger.Info("test message", "key", "value")
}
