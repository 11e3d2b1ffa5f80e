// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "testing"

func TestExitErrorImplementsExitCoder(t *testing.T) {
	t.Parallel()

	var err error = &ExitError{Code: 1}

	coder, ok := err.(interface{ ExitCode() int })
	if !ok {
		t.Fatalf("ExitError does not implement ExitCode() int")
	}
	if coder.ExitCode() != 1 {
		t.Errorf("ExitCode() = %d, want 1", coder.ExitCode())
	}
	if err.Error() == "" {
		t.Errorf("expected a non-empty Error() message")
	}
}
